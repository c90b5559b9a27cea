// Package tuning holds the real-valued gameplay constants. It is the only
// place real units exist; the arena converts everything to fixed point exactly
// once at construction. Peers must run identical tuning — the digest is
// exchanged during the handshake.
package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`
	TickRateHz      int    `yaml:"tick_rate_hz"`

	View    View    `yaml:"view"`
	Physics Physics `yaml:"physics"`
	Joust   Joust   `yaml:"joust"`
	Eggs    Eggs    `yaml:"eggs"`
	AI      AI      `yaml:"ai"`
	Raptor  Raptor  `yaml:"raptor"`
	Hand    Hand    `yaml:"hand"`
	Waves   Waves   `yaml:"waves"`
	Scoring Scoring `yaml:"scoring"`
}

type View struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	LavaOffset float64 `yaml:"lava_offset"`

	CharHalfWidth  float64 `yaml:"char_half_width"`
	CharHalfHeight float64 `yaml:"char_half_height"`
	EggHalf        float64 `yaml:"egg_half"`
	HatchlingHalfW float64 `yaml:"hatchling_half_w"`
	HatchlingHalfH float64 `yaml:"hatchling_half_h"`
}

type Physics struct {
	Gravity        float64 `yaml:"gravity"`          // units/s^2, pulls toward the lava
	TerminalFall   float64 `yaml:"terminal_fall"`    // units/s, max downward speed
	FlapImpulse    float64 `yaml:"flap_impulse"`     // units/s added per flap press
	MaxSpeedX      float64 `yaml:"max_speed_x"`      // units/s
	AccelGround    float64 `yaml:"accel_ground"`     // units/s^2
	AccelAir       float64 `yaml:"accel_air"`        // units/s^2
	FrictionGround float64 `yaml:"friction_ground"`  // units/s^2 toward zero, no input
	FrictionAir    float64 `yaml:"friction_air"`     // units/s^2 toward zero, no input
	SkidGround     float64 `yaml:"skid_ground"`      // units/s^2 against reversed input
	SkidAir        float64 `yaml:"skid_air"`         // units/s^2 against reversed input
	TurnSeconds    float64 `yaml:"turn_seconds"`     // facing-flip animation hold
	StridePeriod   float64 `yaml:"stride_period"`    // seconds per ground stride cycle
	FlapAnimatePer float64 `yaml:"flap_animate_per"` // seconds the flap pose is held
}

type Joust struct {
	Deadzone        float64 `yaml:"deadzone"`      // vertical units treated as a tie
	BouncePush      float64 `yaml:"bounce_push"`   // units/s applied to both on a tie
	WinnerRecoil    float64 `yaml:"winner_recoil"` // units/s knockback on the winner
	CooldownSeconds float64 `yaml:"cooldown_seconds"`

	RespawnSeconds     float64 `yaml:"respawn_seconds"`
	MaterializeSeconds float64 `yaml:"materialize_seconds"`
	InvincibleSeconds  float64 `yaml:"invincible_seconds"`
}

type Eggs struct {
	StickSpeed      float64 `yaml:"stick_speed"`      // land below this |vy|: stick
	RollFriction    float64 `yaml:"roll_friction"`    // units/s^2 while on a platform
	WobbleStart     float64 `yaml:"wobble_start"`     // seconds after landing
	HatchComplete   float64 `yaml:"hatch_complete"`   // seconds after landing
	HatchlingLinger float64 `yaml:"hatchling_linger"` // seconds standing before the mount arrives
}

type AI struct {
	PatrolMargin    float64 `yaml:"patrol_margin"`     // units from a platform edge
	CeilingNoFlapY  float64 `yaml:"ceiling_no_flap_y"` // above this, flap output is suppressed
	LavaAvoidY      float64 `yaml:"lava_avoid_y"`      // below this, always flap
	FastFallSpeed   float64 `yaml:"fast_fall_speed"`   // brake when falling faster than this
	TrackerFastFall float64 `yaml:"tracker_fast_fall"`
	TrackerDeadband float64 `yaml:"tracker_deadband"` // horizontal units before chasing

	PatrolMinSeconds []float64 `yaml:"patrol_min_seconds"` // per tier
	PatrolMaxSeconds []float64 `yaml:"patrol_max_seconds"` // per tier
	AttackMinSeconds []float64 `yaml:"attack_min_seconds"` // per tier
	AttackMaxSeconds []float64 `yaml:"attack_max_seconds"` // per tier
	ReturnSafetySecs float64   `yaml:"return_safety_seconds"`
	ReturnAlignX     float64   `yaml:"return_align_x"` // horizontal units counted as above target
	DirChangeMin     float64   `yaml:"dir_change_min_seconds"`
	DirChangeMax     float64   `yaml:"dir_change_max_seconds"`

	WandererFlapPerMille     int `yaml:"wanderer_flap_permille"`
	TrackerFlapLowPerMille   int `yaml:"tracker_flap_low_permille"`
	TrackerFlapHighPerMille  int `yaml:"tracker_flap_high_permille"`
	StalkerFlapBelowPerMille int `yaml:"stalker_flap_below_permille"`
	StalkerFlapAbovePerMille int `yaml:"stalker_flap_above_permille"`
	StalkerFlapNearPerMille  int `yaml:"stalker_flap_near_permille"`

	StalkerNearBand float64 `yaml:"stalker_near_band"` // vertical units around the player
}

type Raptor struct {
	EnterSpeed    float64 `yaml:"enter_speed"`
	EnterRise     float64 `yaml:"enter_rise"`
	SwoopSpeed    float64 `yaml:"swoop_speed"`
	SwoopTrackVY  float64 `yaml:"swoop_track_vy"`
	PullUpVX      float64 `yaml:"pull_up_vx"`
	PullUpVY      float64 `yaml:"pull_up_vy"`
	PullUpSeconds float64 `yaml:"pull_up_seconds"`
	CircleSpeed   float64 `yaml:"circle_speed"`
	CircleMinSecs float64 `yaml:"circle_min_seconds"`
	CircleMaxSecs float64 `yaml:"circle_max_seconds"`
	TargetHeight  float64 `yaml:"target_height"`
	JawCycle      float64 `yaml:"jaw_cycle_seconds"`
	JawOpen       float64 `yaml:"jaw_open_seconds"`
	AvoidMargin   float64 `yaml:"avoid_margin"`
	AvoidNudge    float64 `yaml:"avoid_nudge"` // units/s horizontal push away from a platform
}

type Hand struct {
	ActivationWave  int     `yaml:"activation_wave"`
	ReachZoneY      float64 `yaml:"reach_zone_y"` // targets below this height
	RestY           float64 `yaml:"rest_y"`       // hidden resting height (below the lava)
	GrabRadius      float64 `yaml:"grab_radius"`
	ReachSpeed      float64 `yaml:"reach_speed"` // units/s hand travel
	GrabSeconds     float64 `yaml:"grab_seconds"`
	PullAccel       float64 `yaml:"pull_accel"`     // units/s^2 downward during the tug
	FightImpulse    float64 `yaml:"fight_impulse"`  // units/s per human flap while held
	EscapeMargin    float64 `yaml:"escape_margin"`  // rise above grab height to break free
	EscapeImpulse   float64 `yaml:"escape_impulse"` // units/s upward on release
	RetreatSeconds  float64 `yaml:"retreat_seconds"`
	CooldownSeconds float64 `yaml:"cooldown_seconds"`
	CommitPerMille  int     `yaml:"commit_permille"`
	IntroRiseSecs   float64 `yaml:"intro_rise_seconds"`
	IntroHoldSecs   float64 `yaml:"intro_hold_seconds"`
}

type Waves struct {
	SpawnIntervalSeconds float64 `yaml:"spawn_interval_seconds"`
	SpawnGroupSize       int     `yaml:"spawn_group_size"`
	TransitionSeconds    float64 `yaml:"transition_seconds"`
	IdleHurrySeconds     float64 `yaml:"idle_hurry_seconds"`
}

type Scoring struct {
	KillPoints     []int `yaml:"kill_points"` // per enemy tier, raptor last
	EggPickup      int   `yaml:"egg_pickup"`
	EggAirBonus    int   `yaml:"egg_air_bonus"`
	SurvivalBonus  int   `yaml:"survival_bonus"`
	ExtraLifeEvery int   `yaml:"extra_life_every"`
	LivesTeam      int   `yaml:"lives_team"`
	LivesPvP       int   `yaml:"lives_pvp"`
}

// Default returns the shipped tuning. configs/tuning.yaml mirrors it; tests
// construct worlds from Default without touching the filesystem.
func Default() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      60,
		View: View{
			Width: 320, Height: 240, LavaOffset: 4,
			CharHalfWidth: 6, CharHalfHeight: 8,
			EggHalf: 3, HatchlingHalfW: 2, HatchlingHalfH: 6,
		},
		Physics: Physics{
			Gravity: 400, TerminalFall: 260, FlapImpulse: 90,
			MaxSpeedX: 120, AccelGround: 320, AccelAir: 240,
			FrictionGround: 200, FrictionAir: 60,
			SkidGround: 480, SkidAir: 300,
			TurnSeconds: 0.2, StridePeriod: 0.4, FlapAnimatePer: 0.15,
		},
		Joust: Joust{
			Deadzone: 3, BouncePush: 60, WinnerRecoil: 40,
			CooldownSeconds: 0.25, RespawnSeconds: 2,
			MaterializeSeconds: 1.5, InvincibleSeconds: 1.5,
		},
		Eggs: Eggs{
			StickSpeed: 40, RollFriction: 80,
			WobbleStart: 6, HatchComplete: 9, HatchlingLinger: 3,
		},
		AI: AI{
			PatrolMargin: 8, CeilingNoFlapY: 214, LavaAvoidY: 30,
			FastFallSpeed: 180, TrackerFastFall: 200, TrackerDeadband: 6,
			PatrolMinSeconds: []float64{1.5, 1.0, 0.6},
			PatrolMaxSeconds: []float64{4.0, 3.0, 2.0},
			AttackMinSeconds: []float64{3.0, 4.0, 5.0},
			AttackMaxSeconds: []float64{6.0, 8.0, 10.0},
			ReturnSafetySecs: 8, ReturnAlignX: 10,
			DirChangeMin: 0.4, DirChangeMax: 1.6,
			WandererFlapPerMille:     40,
			TrackerFlapLowPerMille:   30,
			TrackerFlapHighPerMille:  300,
			StalkerFlapBelowPerMille: 450,
			StalkerFlapAbovePerMille: 20,
			StalkerFlapNearPerMille:  150,
			StalkerNearBand:          12,
		},
		Raptor: Raptor{
			EnterSpeed: 90, EnterRise: 60,
			SwoopSpeed: 160, SwoopTrackVY: 40,
			PullUpVX: 70, PullUpVY: 110, PullUpSeconds: 0.7,
			CircleSpeed: 120, CircleMinSecs: 1.5, CircleMaxSecs: 3,
			TargetHeight: 150,
			JawCycle: 1.2, JawOpen: 0.4,
			AvoidMargin: 4, AvoidNudge: 50,
		},
		Hand: Hand{
			ActivationWave: 3, ReachZoneY: 40, RestY: -20,
			GrabRadius: 6, ReachSpeed: 60, GrabSeconds: 0.5,
			PullAccel: 120, FightImpulse: 30,
			EscapeMargin: 24, EscapeImpulse: 120,
			RetreatSeconds: 1.5, CooldownSeconds: 4,
			CommitPerMille: 250,
			IntroRiseSecs:  2, IntroHoldSecs: 1,
		},
		Waves: Waves{
			SpawnIntervalSeconds: 1.5, SpawnGroupSize: 2,
			TransitionSeconds: 3, IdleHurrySeconds: 30,
		},
		Scoring: Scoring{
			KillPoints:     []int{500, 750, 1000, 1000},
			EggPickup:      250,
			EggAirBonus:    250,
			SurvivalBonus:  1000,
			ExtraLifeEvery: 20000,
			LivesTeam:      5,
			LivesPvP:       3,
		},
	}
}

// Load reads tuning.yaml layered over Default so sparse overrides stay valid.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz != 60 {
		return fmt.Errorf("tick_rate_hz must be 60, got %d", t.TickRateHz)
	}
	if t.View.Width <= 0 || t.View.Height <= 0 {
		return fmt.Errorf("view dimensions must be positive")
	}
	for _, s := range [][]float64{t.AI.PatrolMinSeconds, t.AI.PatrolMaxSeconds, t.AI.AttackMinSeconds, t.AI.AttackMaxSeconds} {
		if len(s) != 3 {
			return fmt.Errorf("per-tier AI timer lists must have 3 entries")
		}
	}
	if len(t.Scoring.KillPoints) != 4 {
		return fmt.Errorf("kill_points must have 4 entries")
	}
	if t.Hand.ActivationWave < 1 {
		return fmt.Errorf("hand activation_wave must be >= 1")
	}
	return nil
}

// Digest canonicalizes the tuning through JSON and hashes it. Exchanged in
// WELCOME so peers refuse to simulate against mismatched constants.
func (t Tuning) Digest() string {
	b, _ := json.Marshal(t)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
