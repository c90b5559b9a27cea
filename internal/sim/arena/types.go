package arena

// Slot capacities. Entity arrays are fixed size and pre-allocated; "spawning"
// scans for the first inactive slot and never grows anything.
const (
	MaxHumans     = 4
	MaxEnemies    = 12
	MaxSlots      = MaxHumans + MaxEnemies
	MaxEggs       = 24
	SpawnQueueCap = 16
)

// EnemyType identifies what rides the mount. Humans are EnemyNone.
type EnemyType int32

const (
	EnemyNone     EnemyType = -1
	EnemyWanderer EnemyType = 0
	EnemyTracker  EnemyType = 1
	EnemyStalker  EnemyType = 2
	EnemyRaptor   EnemyType = 3
)

func (e EnemyType) String() string {
	switch e {
	case EnemyWanderer:
		return "wanderer"
	case EnemyTracker:
		return "tracker"
	case EnemyStalker:
		return "stalker"
	case EnemyRaptor:
		return "raptor"
	default:
		return "none"
	}
}

// groundTier reports whether the type is one of the three patrol/attack/return
// archetypes (the raptor has its own machine and the wave-completion gate
// ignores it).
func (e EnemyType) groundTier() bool {
	return e >= EnemyWanderer && e <= EnemyStalker
}

// upgraded returns the enemy type one tier harder, capped at the strongest
// ground tier. Used for egg payloads.
func (e EnemyType) upgraded() EnemyType {
	if e == EnemyNone {
		return EnemyWanderer
	}
	if e >= EnemyStalker {
		return EnemyStalker
	}
	return e + 1
}

// LocoState is the locomotion state. Exactly one holds at any time.
type LocoState int32

const (
	Grounded LocoState = 0
	Airborne LocoState = 1
	Grabbed  LocoState = 2
)

// HatchState is the egg lifecycle stage.
type HatchState int32

const (
	EggFalling    HatchState = 0
	EggOnPlatform HatchState = 1
	EggWobbling   HatchState = 2
	EggHatchling  HatchState = 3
)

// WaveState drives the orchestrator.
type WaveState int32

const (
	WaveSpawning   WaveState = 0
	WavePlaying    WaveState = 1
	WaveTransition WaveState = 2
)

// GameMode selects the human-vs-human collision rule and starting lives.
type GameMode int32

const (
	ModeTeam GameMode = 0
	ModePvP  GameMode = 1
)

// HandPhase is the hazard actor's state.
type HandPhase int32

const (
	HandIdle       HandPhase = 0
	HandReaching   HandPhase = 1
	HandGrabbing   HandPhase = 2
	HandPulling    HandPhase = 3
	HandRetreating HandPhase = 4
	HandPunchIntro HandPhase = 5
)

// Per-slot input byte. AI decisions are encoded into the same bits so enemy
// movement runs through the identical physics path as human input.
const (
	InputLeft       = 1 << 0
	InputRight      = 1 << 1
	InputFlap       = 1 << 2
	InputDisconnect = 1 << 7
)
