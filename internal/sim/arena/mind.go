package arena

// Enemy AI state. One mind per enemy slot, created fresh on every spawn and
// destroyed when the slot is freed — it never survives a change of occupant.
//
// The ground archetypes and the raptor need disjoint fields, so the mind is a
// tagged variant: Kind selects which half is meaningful. The snapshot maps
// both variants onto one fixed-size block by role.
type mind struct {
	Kind   EnemyType // EnemyNone marks an empty slot
	Ground groundMind
	Air    airMind
}

type groundPhase int32

const (
	phasePatrol groundPhase = 0
	phaseAttack groundPhase = 1
	phaseReturn groundPhase = 2
)

type groundMind struct {
	Phase          groundPhase
	PhaseTimer     int32
	TargetPlatform int32
	Dir            int32
	DirTimer       int32
	FlapAccum      int32
	SafetyTimer    int32
}

type raptorPhase int32

const (
	raptorEnter  raptorPhase = 0
	raptorSwoop  raptorPhase = 1
	raptorPullUp raptorPhase = 2
	raptorCircle raptorPhase = 3
	raptorExit   raptorPhase = 4
)

type airMind struct {
	Phase      raptorPhase
	PhaseTimer int32
	JawTimer   int32
	Dir        int32 // ±1 travel direction
}

// newMind draws the fresh mind's initial timers from the shared RNG. The draw
// count per spawn is fixed per archetype — spawn order is part of the
// deterministic call sequence.
func newMind(w *World, t EnemyType) mind {
	m := mind{Kind: t}
	if t.groundTier() {
		m.Ground.Phase = phasePatrol
		m.Ground.PhaseTimer = w.rollRange(w.cfg.PatrolMinTk[t], w.cfg.PatrolMaxTk[t])
		m.Ground.Dir = w.rollDir()
		m.Ground.TargetPlatform = -1
		return m
	}
	if t == EnemyRaptor {
		m.Air.Phase = raptorEnter
	}
	return m
}

// rollRange returns a uniform tick count in [min,max].
func (w *World) rollRange(min, max int32) int32 {
	if max <= min {
		return min
	}
	return min + int32(w.rng.Intn(int(max-min+1)))
}

// rollDir returns ±1.
func (w *World) rollDir() int32 {
	if w.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

func (w *World) mindOf(c *Character) *mind {
	return &w.minds[c.Slot-MaxHumans]
}

func (w *World) raptorJawOpen(c *Character) bool {
	m := w.mindOf(c)
	return m.Kind == EnemyRaptor && m.Air.JawTimer < w.cfg.JawOpenTk
}

// nearestHuman picks the wrap-aware closest living, non-materializing human.
// RNG-free so it can be called without disturbing the draw sequence.
func (w *World) nearestHuman(x int32) *Character {
	var best *Character
	var bestD int32
	for i := 0; i < MaxHumans; i++ {
		c := &w.chars[i]
		if !c.targetable() {
			continue
		}
		d := w.wrapDX(c.X, x)
		if d < 0 {
			d = -d
		}
		if best == nil || d < bestD {
			best, bestD = c, d
		}
	}
	return best
}
