package arena

import (
	"skyjoust.ai/internal/sim/prng"
	"skyjoust.ai/internal/sim/tuning"
)

// World is the whole simulation: a pure function of (state, inputs) per tick.
// It owns no goroutines, consults no clock, performs no I/O; the caller
// advances it with Step and reads it with RenderState or Serialize. Every
// piece of mutable state lives in the fixed-size fields below — if a field is
// not serialized, it must not influence an outcome.
type World struct {
	cfg *Config

	frame    int32
	rng      *prng.Source
	mode     GameMode
	gameOver bool

	wave            int32
	waveState       WaveState
	spawnTimer      int32
	transitionTimer int32
	idleTimer       int32
	spawnQueue      [SpawnQueueCap]EnemyType
	spawnQueueLen   int32

	chars [MaxSlots]Character
	minds [MaxEnemies]mind
	eggs  [MaxEggs]Egg
	hand  HandState

	inputs [MaxHumans]byte
}

// New builds a world from already-converted integer tuning. The same cfg
// pointer may be shared by any number of worlds; it is never written after
// construction.
func New(cfg *Config, seed uint64, mode GameMode) *World {
	w := &World{
		cfg:  cfg,
		rng:  prng.New(seed),
		mode: mode,
	}
	for i := range w.chars {
		w.chars[i].reset(int32(i))
	}
	for i := range w.minds {
		w.minds[i] = mind{Kind: EnemyNone}
	}
	w.resetHand()
	return w
}

// NewFromTuning is the convenience constructor for callers holding the
// real-valued tuning.
func NewFromTuning(t tuning.Tuning, seed uint64, mode GameMode) *World {
	return New(FromTuning(t), seed, mode)
}

func (w *World) Frame() int32    { return w.frame }
func (w *World) Wave() int32     { return w.wave }
func (w *World) GameOver() bool  { return w.gameOver }
func (w *World) Mode() GameMode  { return w.mode }
func (w *World) Config() *Config { return w.cfg }

// Human returns a read-only view of a human slot, or nil out of range.
func (w *World) Human(slot int) *Character {
	if slot < 0 || slot >= MaxHumans {
		return nil
	}
	return &w.chars[slot]
}

// Step advances the simulation one tick. inputs carries one byte per human
// slot; bits for inactive slots are ignored. The internal update order is
// part of the determinism contract: inputs, human physics, enemy AI and
// physics in ascending slot order, joust resolution, lava, eggs, hazard,
// wave bookkeeping.
func (w *World) Step(inputs [MaxHumans]byte) {
	w.frame++

	// Disconnects are honored before anything else so every peer agrees on
	// which slots exist this tick.
	for i := 0; i < MaxHumans; i++ {
		if inputs[i]&InputDisconnect != 0 {
			w.DeactivateHuman(i)
			inputs[i] = 0
		}
	}
	w.inputs = inputs

	for i := 0; i < MaxHumans; i++ {
		c := &w.chars[i]
		live := c.tickStatusTimers()
		// Any control input cuts the materialize grace short.
		if c.Materializing && inputs[i]&(InputLeft|InputRight|InputFlap) != 0 {
			c.Materializing = false
			live = true
		}
		if !live || c.Loco == Grabbed {
			continue
		}
		w.stepCharacter(c, inputs[i])
	}
	w.tickRespawns()

	for i := MaxHumans; i < MaxSlots; i++ {
		c := &w.chars[i]
		if !c.tickStatusTimers() {
			continue
		}
		m := w.mindOf(c)
		switch {
		case m.Kind == EnemyRaptor:
			w.stepRaptor(c, m)
		case m.Kind.groundTier():
			w.stepCharacter(c, w.stepGroundMind(c, m))
		default:
			w.stepIdleCharacter(c)
		}
	}

	w.resolveJousts()
	w.checkLavaDeaths()
	w.stepEggs()
	w.stepHand()
	w.stepWave()
}
