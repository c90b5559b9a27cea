package arena

import (
	"testing"

	"skyjoust.ai/internal/sim/fixed"
)

func TestShieldedFromBelow(t *testing.T) {
	w := testWorld(1, ModeTeam)
	cases := []struct {
		x, y int32
		want bool
	}{
		{fixed.FromInt(160), fixed.FromInt(40), true},  // over the center platform, at its top
		{fixed.FromInt(70), fixed.FromInt(40), false},  // open lava gap
		{fixed.FromInt(160), fixed.FromInt(30), false}, // below the platform top: exposed
		{fixed.FromInt(160), fixed.FromInt(200), true}, // high over the center stack
	}
	for _, tc := range cases {
		if got := w.shieldedFromBelow(tc.x, tc.y); got != tc.want {
			t.Errorf("shieldedFromBelow(%d, %d) = %v, want %v",
				fixed.ToInt(tc.x), fixed.ToInt(tc.y), got, tc.want)
		}
	}
}

func TestLowestGrabbable(t *testing.T) {
	w := testWorld(1, ModeTeam)
	w.hand.Active = true

	high := liveChar(w, 0, EnemyNone, fixed.FromInt(70), fixed.FromInt(38))
	low := liveChar(w, 1, EnemyNone, fixed.FromInt(240), fixed.FromInt(20))

	if got := w.lowestGrabbable(); got != low {
		t.Fatalf("picked slot %d, want the lowest exposed character", got.Slot)
	}

	// Out of reach or already held: skipped.
	low.Loco = Grabbed
	if got := w.lowestGrabbable(); got != high {
		t.Fatal("grabbed character not skipped")
	}
	high.Y = testCfg.HandReachZoneY + fixed.FromInt(1)
	if w.lowestGrabbable() != nil {
		t.Fatal("character above the reach zone targeted")
	}

	// Shielded: a platform between the character and the lava blocks the hand.
	shielded := liveChar(w, 2, EnemyNone, fixed.FromInt(160), fixed.FromInt(40))
	if w.lowestGrabbable() == shielded {
		t.Fatal("shielded character targeted")
	}
}

// armHand points the hand at c as if the commit roll had just passed.
func armHand(w *World, c *Character) {
	w.hand.Active = true
	w.hand.Phase = HandReaching
	w.hand.TargetSlot = c.Slot
	w.hand.TargetType = int32(c.EnemyType)
	w.hand.X = c.X
	w.hand.Y = testCfg.HandRestY
}

func TestHandReachGrabPull(t *testing.T) {
	w := testWorld(1, ModeTeam)
	victim := liveChar(w, 0, EnemyNone, fixed.FromInt(70), fixed.FromInt(30))
	armHand(w, victim)

	for i := 0; i < 600 && w.hand.Phase == HandReaching; i++ {
		w.stepHand()
	}
	if w.hand.Phase != HandGrabbing {
		t.Fatalf("phase after reach = %v, want grabbing", w.hand.Phase)
	}
	if victim.Loco == Grabbed {
		t.Fatal("grip locked before the grab window elapsed")
	}

	for i := 0; i < 600 && w.hand.Phase == HandGrabbing; i++ {
		w.stepHand()
	}
	if w.hand.Phase != HandPulling {
		t.Fatalf("phase after grab = %v, want pulling", w.hand.Phase)
	}
	if victim.Loco != Grabbed {
		t.Fatal("victim not held")
	}
	if victim.PlatformIdx != -1 || victim.VY != 0 {
		t.Fatal("grip did not detach the victim from normal physics")
	}
	if w.hand.GrabY != victim.Y {
		t.Fatal("escape reference height not recorded at grab time")
	}
}

func TestHandPull_DragsToLava(t *testing.T) {
	w := testWorld(1, ModeTeam)
	victim := liveChar(w, 0, EnemyNone, fixed.FromInt(70), fixed.FromInt(30))
	armHand(w, victim)

	for i := 0; i < 1200 && !victim.Dead; i++ {
		w.stepHand()
	}
	if !victim.Dead || !victim.HitLava {
		t.Fatal("held victim never drowned")
	}
	if w.hand.Phase != HandRetreating {
		t.Fatalf("phase after the kill = %v, want retreating", w.hand.Phase)
	}
	if w.hand.TargetSlot != -1 {
		t.Fatal("hand kept a grip on the corpse")
	}
}

func TestHandPull_FlappingEscapes(t *testing.T) {
	w := testWorld(1, ModeTeam)
	victim := liveChar(w, 0, EnemyNone, fixed.FromInt(70), fixed.FromInt(30))
	armHand(w, victim)

	for i := 0; i < 600 && w.hand.Phase != HandPulling; i++ {
		w.stepHand()
	}
	if w.hand.Phase != HandPulling {
		t.Fatal("never reached the pull")
	}

	// Mash flap: the impulse only lands on the press edge, so alternate.
	escaped := false
	for i := 0; i < 1200; i++ {
		if i%2 == 0 {
			w.inputs[0] = InputFlap
		} else {
			w.inputs[0] = 0
		}
		w.stepHand()
		if victim.Loco == Airborne {
			escaped = true
			break
		}
		if victim.Dead {
			t.Fatal("victim drowned while fighting the grip")
		}
	}
	if !escaped {
		t.Fatal("mashing flap never broke the grip")
	}
	if victim.VY != testCfg.HandEscapeImpulse {
		t.Fatalf("escape VY = %d, want %d", victim.VY, testCfg.HandEscapeImpulse)
	}
	if w.hand.Phase != HandRetreating || w.hand.TargetSlot != -1 {
		t.Fatal("hand kept hunting after the escape")
	}
}

func TestHandRetreat_FixedDuration(t *testing.T) {
	w := testWorld(1, ModeTeam)
	w.hand.Active = true
	w.hand.Phase = HandRetreating
	w.hand.Y = testCfg.HandReachZoneY
	w.hand.TargetSlot = -1

	for i := int32(0); i < testCfg.HandRetreatTk-1; i++ {
		w.stepHand()
		if w.hand.Phase != HandRetreating {
			t.Fatalf("retreat ended after %d ticks, want %d", i+1, testCfg.HandRetreatTk)
		}
	}
	if w.hand.Y <= testCfg.HandRestY {
		t.Fatal("hand reached rest height before the sink elapsed")
	}

	w.stepHand()
	if w.hand.Phase != HandIdle {
		t.Fatalf("phase after the sink = %v, want idle", w.hand.Phase)
	}
	if w.hand.Y != testCfg.HandRestY {
		t.Fatalf("rest Y = %d, want %d", w.hand.Y, testCfg.HandRestY)
	}
	if w.hand.Cooldown != testCfg.HandCooldownTk {
		t.Fatal("cooldown not reset when the retreat finished")
	}
}

func TestHandIdle_CooldownBlocksTargeting(t *testing.T) {
	w := testWorld(1, ModeTeam)
	w.hand.Active = true
	w.hand.Cooldown = 5
	liveChar(w, 0, EnemyNone, fixed.FromInt(70), fixed.FromInt(20))

	w.stepHand()
	if w.hand.Phase != HandIdle {
		t.Fatal("hand moved while cooling down")
	}
	if w.hand.Cooldown != 4 {
		t.Fatalf("cooldown = %d after one tick, want 4", w.hand.Cooldown)
	}
}

func TestHandReaching_LostTargetReleases(t *testing.T) {
	w := testWorld(1, ModeTeam)
	victim := liveChar(w, 0, EnemyNone, fixed.FromInt(70), fixed.FromInt(30))
	armHand(w, victim)

	victim.Y = testCfg.HandReachZoneY + fixed.FromInt(20)
	w.stepHand()
	if w.hand.Phase != HandRetreating {
		t.Fatalf("phase = %v after the target climbed out, want retreating", w.hand.Phase)
	}
	if w.hand.TargetSlot != -1 {
		t.Fatal("stale target slot retained")
	}
}
