package arena

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Snapshot wire format. A flat array of int32 words in fixed regions:
//
//	globals            globalWords
//	character blocks   MaxSlots  × charWords
//	mind blocks        MaxEnemies × mindWords
//	egg blocks         MaxEggs   × eggWords
//	hand block         handWords
//
// Field order and block sizes are a stable wire contract between peers; the
// encoder and decoder below are the single definition of both. Every field is
// already an integer — no conversion happens here.
const (
	globalWords = 11 + SpawnQueueCap
	charWords   = 36
	mindWords   = 10
	eggWords    = 12
	handWords   = 14

	SnapshotWords = globalWords +
		MaxSlots*charWords +
		MaxEnemies*mindWords +
		MaxEggs*eggWords +
		handWords
)

type wordWriter struct {
	buf []int32
	off int
}

func (e *wordWriter) i32(v int32) {
	e.buf[e.off] = v
	e.off++
}

func (e *wordWriter) boolean(v bool) {
	var w int32
	if v {
		w = 1
	}
	e.i32(w)
}

// pad writes n zero words, fields reserved for buffer compatibility.
func (e *wordWriter) pad(n int) {
	for i := 0; i < n; i++ {
		e.i32(0)
	}
}

type wordReader struct {
	buf []int32
	off int
}

func (d *wordReader) i32() int32 {
	v := d.buf[d.off]
	d.off++
	return v
}

func (d *wordReader) boolean() bool { return d.i32() != 0 }

func (d *wordReader) skip(n int) { d.off += n }

// Serialize captures every mutable field into a fresh word buffer.
func (w *World) Serialize() []int32 {
	e := &wordWriter{buf: make([]int32, SnapshotWords)}

	state := w.rng.State()
	e.i32(w.frame)
	e.i32(int32(state))
	e.i32(int32(state >> 32))
	e.i32(int32(w.mode))
	e.boolean(w.gameOver)
	e.i32(w.wave)
	e.i32(int32(w.waveState))
	e.i32(w.spawnTimer)
	e.i32(w.transitionTimer)
	e.i32(w.idleTimer)
	e.i32(w.spawnQueueLen)
	for i := 0; i < SpawnQueueCap; i++ {
		e.i32(int32(w.spawnQueue[i]))
	}

	for i := range w.chars {
		encodeCharacter(e, &w.chars[i])
	}
	for i := range w.minds {
		encodeMind(e, &w.minds[i])
	}
	for i := range w.eggs {
		encodeEgg(e, &w.eggs[i])
	}
	encodeHand(e, &w.hand)
	return e.buf
}

// Deserialize restores the world from a serialized buffer. Transient state is
// fully reconstructed — minds are rebuilt per stored archetype and platform
// indices re-validated — so that an immediate Serialize reproduces the buffer
// byte for byte.
func (w *World) Deserialize(buf []int32) error {
	if len(buf) != SnapshotWords {
		return fmt.Errorf("snapshot: got %d words, want %d", len(buf), SnapshotWords)
	}
	d := &wordReader{buf: buf}

	w.frame = d.i32()
	lo := uint64(uint32(d.i32()))
	hi := uint64(uint32(d.i32()))
	w.rng.SetState(lo | hi<<32)
	w.mode = GameMode(d.i32())
	w.gameOver = d.boolean()
	w.wave = d.i32()
	w.waveState = WaveState(d.i32())
	w.spawnTimer = d.i32()
	w.transitionTimer = d.i32()
	w.idleTimer = d.i32()
	w.spawnQueueLen = d.i32()
	if w.spawnQueueLen < 0 {
		w.spawnQueueLen = 0
	} else if w.spawnQueueLen > SpawnQueueCap {
		w.spawnQueueLen = SpawnQueueCap
	}
	for i := 0; i < SpawnQueueCap; i++ {
		w.spawnQueue[i] = EnemyType(d.i32())
	}

	for i := range w.chars {
		decodeCharacter(d, &w.chars[i], int32(i))
	}
	for i := range w.minds {
		decodeMind(d, &w.minds[i])
	}
	for i := range w.eggs {
		decodeEgg(d, &w.eggs[i])
	}
	decodeHand(d, &w.hand)

	// Re-validate stored indices only once the hand block has restored the
	// platform-set selection flag.
	for i := range w.chars {
		w.validatePlatformIdx(&w.chars[i])
	}
	return nil
}

// validatePlatformIdx degrades a stored index that no longer resolves into
// "no platform" rather than faulting later.
func (w *World) validatePlatformIdx(c *Character) {
	if c.PlatformIdx < 0 {
		return
	}
	if _, ok := w.platforms().At(c.PlatformIdx); !ok {
		c.PlatformIdx = -1
		if c.Loco == Grounded {
			c.Loco = Airborne
		}
	}
}

func encodeCharacter(e *wordWriter, c *Character) {
	e.i32(int32(c.EnemyType))
	e.i32(c.X)
	e.i32(c.Y)
	e.i32(c.VX)
	e.i32(c.VY)
	e.i32(c.PrevX)
	e.i32(c.PrevY)
	e.i32(int32(c.Loco))
	e.i32(c.Facing)
	e.boolean(c.Turning)
	e.i32(c.TurnTimer)
	e.i32(c.Stride)
	e.boolean(c.Flapping)
	e.i32(c.FlapTimer)
	e.boolean(c.flapHeld)
	e.boolean(c.Active)
	e.boolean(c.Dead)
	e.i32(c.RespawnTimer)
	e.boolean(c.Materializing)
	e.i32(c.MaterializeTimer)
	e.i32(c.MaterializeDur)
	e.boolean(c.MaterializeQuick)
	e.boolean(c.Invincible)
	e.i32(c.InvincibleTimer)
	e.i32(c.JoustCooldown)
	e.boolean(c.HitLava)
	e.i32(c.Score)
	e.i32(c.Lives)
	e.i32(c.NextLife)
	e.i32(c.EggsThisWave)
	e.boolean(c.DiedThisWave)
	e.i32(c.Palette)
	e.i32(c.PlatformIdx)
	e.i32(c.BounceCount)
	e.i32(c.EdgeBumps)
	e.pad(1)
}

func decodeCharacter(d *wordReader, c *Character, slot int32) {
	c.Slot = slot
	c.EnemyType = EnemyType(d.i32())
	c.X = d.i32()
	c.Y = d.i32()
	c.VX = d.i32()
	c.VY = d.i32()
	c.PrevX = d.i32()
	c.PrevY = d.i32()
	c.Loco = LocoState(d.i32())
	c.Facing = d.i32()
	c.Turning = d.boolean()
	c.TurnTimer = d.i32()
	c.Stride = d.i32()
	c.Flapping = d.boolean()
	c.FlapTimer = d.i32()
	c.flapHeld = d.boolean()
	c.Active = d.boolean()
	c.Dead = d.boolean()
	c.RespawnTimer = d.i32()
	c.Materializing = d.boolean()
	c.MaterializeTimer = d.i32()
	c.MaterializeDur = d.i32()
	c.MaterializeQuick = d.boolean()
	c.Invincible = d.boolean()
	c.InvincibleTimer = d.i32()
	c.JoustCooldown = d.i32()
	c.HitLava = d.boolean()
	c.Score = d.i32()
	c.Lives = d.i32()
	c.NextLife = d.i32()
	c.EggsThisWave = d.i32()
	c.DiedThisWave = d.boolean()
	c.Palette = d.i32()
	c.PlatformIdx = d.i32()
	c.BounceCount = d.i32()
	c.EdgeBumps = d.i32()
	d.skip(1)
}

/// The mind block holds both variants by role: ground minds leave the jaw word
// zero, raptor minds leave the ground words zero. Word positions are wire
// contract, not in-memory layout.
func encodeMind(e *wordWriter, m *mind) {
	e.i32(int32(m.Kind))
	switch {
	case m.Kind.groundTier():
		e.i32(int32(m.Ground.Phase))
		e.i32(m.Ground.PhaseTimer)
		e.i32(m.Ground.Dir)
		e.i32(m.Ground.DirTimer)
		e.i32(m.Ground.FlapAccum)
		e.i32(m.Ground.TargetPlatform)
		e.i32(m.Ground.SafetyTimer)
		e.pad(2)
	case m.Kind == EnemyRaptor:
		e.i32(int32(m.Air.Phase))
		e.i32(m.Air.PhaseTimer)
		e.i32(m.Air.Dir)
		e.pad(4)
		e.i32(m.Air.JawTimer)
		e.pad(1)
	default:
		e.pad(mindWords - 1)
	}
}

// decodeMind recreates the variant matching the stored archetype, discarding
// whatever occupied the slot before.
func decodeMind(d *wordReader, m *mind) {
	*m = mind{Kind: EnemyType(d.i32())}
	switch {
	case m.Kind.groundTier():
		m.Ground.Phase = groundPhase(d.i32())
		m.Ground.PhaseTimer = d.i32()
		m.Ground.Dir = d.i32()
		m.Ground.DirTimer = d.i32()
		m.Ground.FlapAccum = d.i32()
		m.Ground.TargetPlatform = d.i32()
		m.Ground.SafetyTimer = d.i32()
		d.skip(2)
	case m.Kind == EnemyRaptor:
		m.Air.Phase = raptorPhase(d.i32())
		m.Air.PhaseTimer = d.i32()
		m.Air.Dir = d.i32()
		d.skip(4)
		m.Air.JawTimer = d.i32()
		d.skip(1)
	default:
		d.skip(mindWords - 1)
	}
}

func encodeEgg(e *wordWriter, g *Egg) {
	e.boolean(g.Active)
	e.i32(g.X)
	e.i32(g.Y)
	e.i32(g.VX)
	e.i32(g.VY)
	e.i32(g.PrevY)
	e.i32(int32(g.OwnerType))
	e.i32(int32(g.State))
	e.i32(g.HatchTk)
	e.i32(g.Platform)
	e.i32(g.Bounces)
	e.boolean(g.HitLava)
}

func decodeEgg(d *wordReader, g *Egg) {
	g.Active = d.boolean()
	g.X = d.i32()
	g.Y = d.i32()
	g.VX = d.i32()
	g.VY = d.i32()
	g.PrevY = d.i32()
	g.OwnerType = EnemyType(d.i32())
	g.State = HatchState(d.i32())
	g.HatchTk = d.i32()
	g.Platform = d.i32()
	g.Bounces = d.i32()
	g.HitLava = d.boolean()
}

func encodeHand(e *wordWriter, h *HandState) {
	e.boolean(h.Active)
	e.i32(int32(h.Phase))
	e.i32(h.TargetSlot)
	e.i32(h.TargetType)
	e.i32(h.X)
	e.i32(h.Y)
	e.i32(h.PhaseTimer)
	e.i32(h.Cooldown)
	e.i32(h.GrabY)
	e.i32(h.Side)
	e.boolean(h.PlatformsDestroyed)
	e.boolean(h.IntroDone)
	e.pad(2)
}

func decodeHand(d *wordReader, h *HandState) {
	h.Active = d.boolean()
	h.Phase = HandPhase(d.i32())
	h.TargetSlot = d.i32()
	h.TargetType = d.i32()
	h.X = d.i32()
	h.Y = d.i32()
	h.PhaseTimer = d.i32()
	h.Cooldown = d.i32()
	h.GrabY = d.i32()
	h.Side = d.i32()
	h.PlatformsDestroyed = d.boolean()
	h.IntroDone = d.boolean()
	d.skip(2)
}

// Digest is the canonical state hash: sha256 over the serialized words in
// little-endian byte order. Tick logs, replay verification, and the tests
// all compare digests.
func (w *World) Digest() [32]byte {
	words := w.Serialize()
	raw := make([]byte, len(words)*4)
	for i, v := range words {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(v))
	}
	return sha256.Sum256(raw)
}

// SnapshotBytes converts a word buffer to its canonical little-endian byte
// form for storage or the wire.
func SnapshotBytes(words []int32) []byte {
	raw := make([]byte, len(words)*4)
	for i, v := range words {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(v))
	}
	return raw
}

// SnapshotWordsFromBytes is the inverse of SnapshotBytes.
func SnapshotWordsFromBytes(raw []byte) ([]int32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("snapshot: byte length %d not word aligned", len(raw))
	}
	words := make([]int32, len(raw)/4)
	for i := range words {
		words[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return words, nil
}
