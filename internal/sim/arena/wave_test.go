package arena

import (
	"testing"

	"skyjoust.ai/internal/sim/fixed"
)

func queueCounts(w *World) map[EnemyType]int32 {
	counts := map[EnemyType]int32{}
	for i := int32(0); i < w.spawnQueueLen; i++ {
		counts[w.spawnQueue[i]]++
	}
	return counts
}

func TestWaveComposition(t *testing.T) {
	cases := []struct {
		wave                          int32
		wanderers, trackers, stalkers int32
		raptors                       int32
	}{
		{1, 4, 0, 0, 0},
		{2, 4, 1, 0, 0},
		{5, 2, 4, 2, 1},
		{20, 0, 6, 6, 2},
	}
	for _, tc := range cases {
		w := testWorld(1, ModeTeam)
		raptors := w.waveComposition(tc.wave)
		got := queueCounts(w)
		if got[EnemyWanderer] != tc.wanderers ||
			got[EnemyTracker] != tc.trackers ||
			got[EnemyStalker] != tc.stalkers {
			t.Errorf("wave %d queue = %dW/%dT/%dS, want %dW/%dT/%dS",
				tc.wave, got[EnemyWanderer], got[EnemyTracker], got[EnemyStalker],
				tc.wanderers, tc.trackers, tc.stalkers)
		}
		if raptors != tc.raptors {
			t.Errorf("wave %d raptors = %d, want %d", tc.wave, raptors, tc.raptors)
		}
	}
}

func TestStartWave_DrainsQueueIntoGroups(t *testing.T) {
	w := testWorld(7, ModeTeam)
	w.StartWave(1)
	if w.waveState != WaveSpawning {
		t.Fatalf("state after start = %v, want spawning", w.waveState)
	}
	queued := w.spawnQueueLen

	spawned := int32(0)
	for i := 0; i < 60*30 && w.waveState == WaveSpawning; i++ {
		w.stepWave()
	}
	for i := MaxHumans; i < MaxSlots; i++ {
		if w.chars[i].Active {
			spawned++
		}
	}
	if spawned != queued {
		t.Fatalf("spawned %d mounts for a queue of %d", spawned, queued)
	}
	if w.waveState != WavePlaying {
		t.Fatalf("state after drain = %v, want playing", w.waveState)
	}
	for i := MaxHumans; i < MaxSlots; i++ {
		c := &w.chars[i]
		if c.Active && w.mindOf(c).Kind != c.EnemyType {
			t.Fatalf("slot %d spawned without a matching mind", i)
		}
	}
}

func TestWaveCompletion_GatedOnPayloadEggs(t *testing.T) {
	w := testWorld(1, ModeTeam)
	w.wave = 1
	w.waveState = WavePlaying

	home := testCfg.fullPlatforms.Platforms[0]
	e := w.spawnEgg(home.centerX(), standY(home, testCfg.EggHalf), EnemyWanderer)
	w.stepWave()
	if w.waveState != WavePlaying {
		t.Fatal("wave completed while a payload egg was still live")
	}

	e.Active = false
	w.stepWave()
	if w.waveState != WaveTransition {
		t.Fatalf("state = %v after last payload cleared, want transition", w.waveState)
	}
	if w.transitionTimer != testCfg.TransitionTk {
		t.Fatal("transition countdown not armed")
	}
}

func TestWaveCompletion_PlainEggDoesNotGate(t *testing.T) {
	w := testWorld(1, ModeTeam)
	w.wave = 1
	w.waveState = WavePlaying
	w.spawnEgg(fixed.FromInt(160), fixed.FromInt(100), EnemyNone)
	w.stepWave()
	if w.waveState != WaveTransition {
		t.Fatal("a plain pickup egg held the wave open")
	}
}

func TestCompleteWave_BonusAndBoardClear(t *testing.T) {
	w := testWorld(1, ModeTeam)
	w.ActivateHuman(0, 0)
	w.ActivateHuman(1, 1)
	w.chars[1].DiedThisWave = true

	ground := w.spawnEnemy(EnemyWanderer, fixed.FromInt(160), fixed.FromInt(150), -1, true)
	raptor := w.spawnRaptor()

	w.completeWave()

	if w.chars[0].Score != testCfg.SurvivalBonus {
		t.Fatalf("survivor score = %d, want %d", w.chars[0].Score, testCfg.SurvivalBonus)
	}
	if w.chars[1].Score != 0 {
		t.Fatal("bonus paid to a human who died this wave")
	}
	if ground.Active {
		t.Fatal("ground mount survived the wave clear")
	}
	if w.minds[ground.Slot-MaxHumans].Kind != EnemyNone {
		t.Fatal("cleared slot kept its mind")
	}
	if !raptor.Active {
		t.Fatal("raptor deleted instead of dismissed")
	}
	if w.mindOf(raptor).Air.Phase != raptorExit {
		t.Fatalf("dismissed raptor phase = %v, want exit", w.mindOf(raptor).Air.Phase)
	}
}

func TestWaveTransition_RollsIntoNextWave(t *testing.T) {
	w := testWorld(1, ModeTeam)
	w.wave = 1
	w.waveState = WaveTransition
	w.transitionTimer = 1
	w.stepWave()
	if w.wave != 2 {
		t.Fatalf("wave = %d after transition, want 2", w.wave)
	}
	if w.waveState != WaveSpawning {
		t.Fatalf("state = %v after transition, want spawning", w.waveState)
	}
	if w.spawnQueueLen == 0 {
		t.Fatal("next wave queued nothing")
	}
}

func TestIdleHurryUpSpawnsRaptor(t *testing.T) {
	w := testWorld(1, ModeTeam)
	w.waveState = WavePlaying
	w.spawnEnemy(EnemyWanderer, fixed.FromInt(160), fixed.FromInt(150), -1, true)

	w.idleTimer = testCfg.IdleHurryTk - 1
	w.stepWave()
	if !w.raptorAlive() {
		t.Fatal("idle timeout did not force a raptor in")
	}

	// A second timeout with the raptor still hunting must not stack another.
	w.idleTimer = testCfg.IdleHurryTk - 1
	w.stepWave()
	count := 0
	for i := MaxHumans; i < MaxSlots; i++ {
		if w.chars[i].Active && w.chars[i].EnemyType == EnemyRaptor {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("raptor count = %d after second timeout, want 1", count)
	}
}

func TestHandIntro_OneWayFlags(t *testing.T) {
	w := testWorld(1, ModeTeam)
	if w.platforms().Len() != w.cfg.reducedPlatforms.Len() {
		t.Fatal("full and reduced sets must keep the same platform count")
	}

	w.StartWave(testCfg.HandActivationWave)
	if w.hand.Phase != HandPunchIntro {
		t.Fatalf("hand phase at activation wave = %v, want punch intro", w.hand.Phase)
	}

	for i := int32(0); i <= testCfg.HandIntroRiseTk+testCfg.HandIntroHoldTk; i++ {
		w.stepHand()
	}
	if !w.hand.IntroDone || !w.hand.Active {
		t.Fatal("intro never finished")
	}
	if !w.hand.PlatformsDestroyed {
		t.Fatal("punch never destroyed the pillars")
	}
	if w.platforms().Platforms[6].Left == testCfg.fullPlatforms.Platforms[6].Left {
		t.Fatal("active set did not switch to the reduced layout")
	}

	// The intro never replays: later waves leave the hand machine alone.
	w.hand.Phase = HandIdle
	w.StartWave(testCfg.HandActivationWave + 1)
	if w.hand.Phase != HandIdle {
		t.Fatal("intro replayed on a later wave")
	}
	if !w.hand.PlatformsDestroyed || !w.hand.IntroDone {
		t.Fatal("one-way flags reverted")
	}
}
