package arena

import "testing"

func snapshotsEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSnapshotLayoutSize(t *testing.T) {
	// The wire contract: any change here is a protocol break.
	want := (11 + SpawnQueueCap) + MaxSlots*36 + MaxEnemies*10 + MaxEggs*12 + 14
	if SnapshotWords != want {
		t.Fatalf("SnapshotWords = %d, want %d", SnapshotWords, want)
	}
	w := testWorld(1, ModeTeam)
	if got := len(w.Serialize()); got != SnapshotWords {
		t.Fatalf("serialized length %d, want %d", got, SnapshotWords)
	}
}

// Round-trip idempotence across a long stretch of organic play: at every
// sampled tick, deserialize(serialize(S)) must re-serialize byte-identical.
func TestRoundTripIdempotence(t *testing.T) {
	w := testWorld(11, ModeTeam)
	w.ActivateHuman(0, 0)
	w.ActivateHuman(1, 1)
	w.StartWave(1)
	for tick := int32(0); tick < 1800; tick++ {
		w.Step(scriptedInputs(tick, 2))
		if tick%37 != 0 {
			continue
		}
		buf := w.Serialize()
		r := testWorld(999, ModePvP) // deliberately different construction
		if err := r.Deserialize(buf); err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if !snapshotsEqual(buf, r.Serialize()) {
			t.Fatalf("round trip not idempotent at tick %d", tick)
		}
	}
}

func TestRoundTrip_MidGrab(t *testing.T) {
	w := testWorld(4, ModeTeam)
	w.ActivateHuman(0, 0)
	c := &w.chars[0]
	c.Materializing = false
	c.Invincible = false
	c.Loco = Grabbed
	c.PlatformIdx = -1
	w.hand.Active = true
	w.hand.Phase = HandPulling
	w.hand.TargetSlot = 0
	w.hand.TargetType = int32(EnemyNone)
	w.hand.GrabY = c.Y
	w.hand.X, w.hand.Y = c.X, c.Y

	buf := w.Serialize()
	r := testWorld(1, ModeTeam)
	if err := r.Deserialize(buf); err != nil {
		t.Fatal(err)
	}
	if !snapshotsEqual(buf, r.Serialize()) {
		t.Fatal("mid-grab state did not round-trip")
	}
	if r.chars[0].Loco != Grabbed || r.hand.Phase != HandPulling {
		t.Fatal("grab state lost in round trip")
	}
}

// Deserialize must rebuild minds to match the stored archetype even when the
// receiving world's slot currently holds a different one.
func TestDeserialize_RebuildsMindArchetypes(t *testing.T) {
	src := testWorld(8, ModeTeam)
	src.spawnEnemy(EnemyStalker, testCfg.ViewW/2, testCfg.ViewH/2, -1, true)
	src.spawnRaptor()
	buf := src.Serialize()

	dst := testWorld(8, ModeTeam)
	dst.spawnRaptor() // occupies slot 0 with the other archetype
	if err := dst.Deserialize(buf); err != nil {
		t.Fatal(err)
	}
	if dst.minds[0].Kind != EnemyStalker {
		t.Fatalf("mind 0 kind = %v, want stalker", dst.minds[0].Kind)
	}
	if dst.minds[1].Kind != EnemyRaptor {
		t.Fatalf("mind 1 kind = %v, want raptor", dst.minds[1].Kind)
	}
	if !snapshotsEqual(buf, dst.Serialize()) {
		t.Fatal("archetype rebuild broke byte identity")
	}
}

// Rollback: replaying the same inputs from a checkpoint twice must land on
// identical snapshots, and match the world that never rolled back.
func TestRollbackReplayEquivalence(t *testing.T) {
	w := testWorld(21, ModeTeam)
	w.ActivateHuman(0, 0)
	w.StartWave(1)
	for tick := int32(0); tick < 120; tick++ {
		w.Step(scriptedInputs(tick, 1))
	}
	checkpoint := w.Serialize()

	replay := func() []int32 {
		r := testWorld(0, ModeTeam)
		if err := r.Deserialize(checkpoint); err != nil {
			t.Fatal(err)
		}
		for tick := int32(120); tick < 300; tick++ {
			r.Step(scriptedInputs(tick, 1))
		}
		return r.Serialize()
	}
	first := replay()
	second := replay()
	if !snapshotsEqual(first, second) {
		t.Fatal("two replays from the same checkpoint diverged")
	}

	for tick := int32(120); tick < 300; tick++ {
		w.Step(scriptedInputs(tick, 1))
	}
	if !snapshotsEqual(first, w.Serialize()) {
		t.Fatal("replayed snapshot differs from the uninterrupted run")
	}
}

func TestDeserialize_RejectsWrongLength(t *testing.T) {
	w := testWorld(1, ModeTeam)
	if err := w.Deserialize(make([]int32, SnapshotWords-1)); err == nil {
		t.Fatal("short buffer accepted")
	}
	if err := w.Deserialize(make([]int32, SnapshotWords+1)); err == nil {
		t.Fatal("long buffer accepted")
	}
}

func TestSnapshotBytesRoundTrip(t *testing.T) {
	w := testWorld(13, ModeTeam)
	w.ActivateHuman(0, 2)
	words := w.Serialize()
	back, err := SnapshotWordsFromBytes(SnapshotBytes(words))
	if err != nil {
		t.Fatal(err)
	}
	if !snapshotsEqual(words, back) {
		t.Fatal("byte conversion not lossless")
	}
	if _, err := SnapshotWordsFromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("unaligned byte buffer accepted")
	}
}
