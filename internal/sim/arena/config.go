package arena

import (
	"math"

	"skyjoust.ai/internal/sim/fixed"
	"skyjoust.ai/internal/sim/tuning"
)

// Config is the all-integer form of the tuning. It is built exactly once per
// world; nothing below this line is ever recomputed from a float at runtime.
// Velocities and accelerations are Q16.16 per second (accelerations already
// divided down to per-tick deltas), timers are tick counts.
type Config struct {
	ViewW, ViewH int32
	LavaY        int32 // kill line: strictly below this is lava death

	HalfW, HalfH   int32
	EggHalf        int32
	HatchHalfW     int32
	HatchHalfH     int32
	WrapSpan       int32 // ViewW + 2*HalfW
	EggWrapSpan    int32

	GravityTick     int32 // per-tick velocity delta, negative
	TerminalFall    int32 // negative clamp on VY
	FlapImpulse     int32
	MaxSpeedX       int32
	AccelGroundTick int32
	AccelAirTick    int32
	FricGroundTick  int32
	FricAirTick     int32
	SkidGroundTick  int32
	SkidAirTick     int32
	TurnTicks       int32
	StrideTicks     int32
	FlapAnimTicks   int32

	JoustDeadzone int32
	BouncePush    int32
	WinnerRecoil  int32
	JoustCooldown int32
	RespawnTicks  int32
	MaterializeTk int32
	InvincibleTk  int32

	EggStickSpeed   int32
	EggFricTick     int32
	WobbleStartTk   int32
	HatchCompleteTk int32
	HatchSpawnTk    int32 // hatch-complete + linger: mount arrives

	PatrolMargin   int32
	CeilingNoFlapY int32
	LavaAvoidY     int32
	FastFall       int32 // negative VY threshold
	TrackerFast    int32
	TrackerDeadband int32
	ReturnAlignX   int32
	ReturnSafetyTk int32
	DirChangeMinTk int32
	DirChangeMaxTk int32

	PatrolMinTk [3]int32
	PatrolMaxTk [3]int32
	AttackMinTk [3]int32
	AttackMaxTk [3]int32

	WandererFlapPM     int32
	TrackerFlapLowPM   int32
	TrackerFlapHighPM  int32
	StalkerFlapBelowPM int32
	StalkerFlapAbovePM int32
	StalkerFlapNearPM  int32
	StalkerNearBand    int32

	RaptorEnterSpeed   int32
	RaptorEnterRise    int32
	RaptorSwoopSpeed   int32
	RaptorSwoopTrackVY int32
	RaptorPullUpVX     int32
	RaptorPullUpVY     int32
	RaptorPullUpTk     int32
	RaptorCircleSpeed  int32
	RaptorCircleMinTk  int32
	RaptorCircleMaxTk  int32
	RaptorTargetY      int32
	JawCycleTk         int32
	JawOpenTk          int32
	RaptorAvoidMargin  int32
	RaptorAvoidNudge   int32

	HandActivationWave int32
	HandReachZoneY     int32
	HandRestY          int32
	HandGrabRadius     int32
	HandReachSpeed     int32
	HandGrabTk         int32
	HandPullTick       int32 // per-tick downward delta during the tug
	HandFightImpulse   int32
	HandEscapeMargin   int32
	HandEscapeImpulse  int32
	HandRetreatTk      int32
	HandCooldownTk     int32
	HandCommitPM       int32
	HandIntroRiseTk    int32
	HandIntroHoldTk    int32

	SpawnIntervalTk int32
	SpawnGroupSize  int32
	TransitionTk    int32
	IdleHurryTk     int32

	KillPoints     [4]int32 // indexed by EnemyType
	EggPickup      int32
	EggAirBonus    int32
	SurvivalBonus  int32
	ExtraLifeEvery int32
	LivesTeam      int32
	LivesPvP       int32

	fullPlatforms    PlatformSet
	reducedPlatforms PlatformSet
	spawnPoints      []SpawnPoint
}

func ticks(seconds float64) int32 {
	return int32(math.Round(seconds * fixed.TickRate))
}

// perTickAccel converts units/s^2 into a Q16.16 per-tick velocity delta.
func perTickAccel(a float64) int32 {
	return fixed.PerTick(fixed.FromFloat(a))
}

// FromTuning performs the one-time real-to-integer conversion.
func FromTuning(t tuning.Tuning) *Config {
	c := &Config{
		ViewW: fixed.FromFloat(t.View.Width),
		ViewH: fixed.FromFloat(t.View.Height),
		LavaY: fixed.FromFloat(-t.View.LavaOffset),

		HalfW:      fixed.FromFloat(t.View.CharHalfWidth),
		HalfH:      fixed.FromFloat(t.View.CharHalfHeight),
		EggHalf:    fixed.FromFloat(t.View.EggHalf),
		HatchHalfW: fixed.FromFloat(t.View.HatchlingHalfW),
		HatchHalfH: fixed.FromFloat(t.View.HatchlingHalfH),

		GravityTick:     -perTickAccel(t.Physics.Gravity),
		TerminalFall:    -fixed.FromFloat(t.Physics.TerminalFall),
		FlapImpulse:     fixed.FromFloat(t.Physics.FlapImpulse),
		MaxSpeedX:       fixed.FromFloat(t.Physics.MaxSpeedX),
		AccelGroundTick: perTickAccel(t.Physics.AccelGround),
		AccelAirTick:    perTickAccel(t.Physics.AccelAir),
		FricGroundTick:  perTickAccel(t.Physics.FrictionGround),
		FricAirTick:     perTickAccel(t.Physics.FrictionAir),
		SkidGroundTick:  perTickAccel(t.Physics.SkidGround),
		SkidAirTick:     perTickAccel(t.Physics.SkidAir),
		TurnTicks:       ticks(t.Physics.TurnSeconds),
		StrideTicks:     ticks(t.Physics.StridePeriod),
		FlapAnimTicks:   ticks(t.Physics.FlapAnimatePer),

		JoustDeadzone: fixed.FromFloat(t.Joust.Deadzone),
		BouncePush:    fixed.FromFloat(t.Joust.BouncePush),
		WinnerRecoil:  fixed.FromFloat(t.Joust.WinnerRecoil),
		JoustCooldown: ticks(t.Joust.CooldownSeconds),
		RespawnTicks:  ticks(t.Joust.RespawnSeconds),
		MaterializeTk: ticks(t.Joust.MaterializeSeconds),
		InvincibleTk:  ticks(t.Joust.InvincibleSeconds),

		EggStickSpeed:   fixed.FromFloat(t.Eggs.StickSpeed),
		EggFricTick:     perTickAccel(t.Eggs.RollFriction),
		WobbleStartTk:   ticks(t.Eggs.WobbleStart),
		HatchCompleteTk: ticks(t.Eggs.HatchComplete),
		HatchSpawnTk:    ticks(t.Eggs.HatchComplete + t.Eggs.HatchlingLinger),

		PatrolMargin:    fixed.FromFloat(t.AI.PatrolMargin),
		CeilingNoFlapY:  fixed.FromFloat(t.AI.CeilingNoFlapY),
		LavaAvoidY:      fixed.FromFloat(t.AI.LavaAvoidY),
		FastFall:        -fixed.FromFloat(t.AI.FastFallSpeed),
		TrackerFast:     -fixed.FromFloat(t.AI.TrackerFastFall),
		TrackerDeadband: fixed.FromFloat(t.AI.TrackerDeadband),
		ReturnAlignX:    fixed.FromFloat(t.AI.ReturnAlignX),
		ReturnSafetyTk:  ticks(t.AI.ReturnSafetySecs),
		DirChangeMinTk:  ticks(t.AI.DirChangeMin),
		DirChangeMaxTk:  ticks(t.AI.DirChangeMax),

		WandererFlapPM:     int32(t.AI.WandererFlapPerMille),
		TrackerFlapLowPM:   int32(t.AI.TrackerFlapLowPerMille),
		TrackerFlapHighPM:  int32(t.AI.TrackerFlapHighPerMille),
		StalkerFlapBelowPM: int32(t.AI.StalkerFlapBelowPerMille),
		StalkerFlapAbovePM: int32(t.AI.StalkerFlapAbovePerMille),
		StalkerFlapNearPM:  int32(t.AI.StalkerFlapNearPerMille),
		StalkerNearBand:    fixed.FromFloat(t.AI.StalkerNearBand),

		RaptorEnterSpeed:   fixed.FromFloat(t.Raptor.EnterSpeed),
		RaptorEnterRise:    fixed.FromFloat(t.Raptor.EnterRise),
		RaptorSwoopSpeed:   fixed.FromFloat(t.Raptor.SwoopSpeed),
		RaptorSwoopTrackVY: fixed.FromFloat(t.Raptor.SwoopTrackVY),
		RaptorPullUpVX:     fixed.FromFloat(t.Raptor.PullUpVX),
		RaptorPullUpVY:     fixed.FromFloat(t.Raptor.PullUpVY),
		RaptorPullUpTk:     ticks(t.Raptor.PullUpSeconds),
		RaptorCircleSpeed:  fixed.FromFloat(t.Raptor.CircleSpeed),
		RaptorCircleMinTk:  ticks(t.Raptor.CircleMinSecs),
		RaptorCircleMaxTk:  ticks(t.Raptor.CircleMaxSecs),
		RaptorTargetY:      fixed.FromFloat(t.Raptor.TargetHeight),
		JawCycleTk:         ticks(t.Raptor.JawCycle),
		JawOpenTk:          ticks(t.Raptor.JawOpen),
		RaptorAvoidMargin:  fixed.FromFloat(t.Raptor.AvoidMargin),
		RaptorAvoidNudge:   fixed.FromFloat(t.Raptor.AvoidNudge),

		HandActivationWave: int32(t.Hand.ActivationWave),
		HandReachZoneY:     fixed.FromFloat(t.Hand.ReachZoneY),
		HandRestY:          fixed.FromFloat(t.Hand.RestY),
		HandGrabRadius:     fixed.FromFloat(t.Hand.GrabRadius),
		HandReachSpeed:     fixed.FromFloat(t.Hand.ReachSpeed),
		HandGrabTk:         ticks(t.Hand.GrabSeconds),
		HandPullTick:       perTickAccel(t.Hand.PullAccel),
		HandFightImpulse:   fixed.FromFloat(t.Hand.FightImpulse),
		HandEscapeMargin:   fixed.FromFloat(t.Hand.EscapeMargin),
		HandEscapeImpulse:  fixed.FromFloat(t.Hand.EscapeImpulse),
		HandRetreatTk:      ticks(t.Hand.RetreatSeconds),
		HandCooldownTk:     ticks(t.Hand.CooldownSeconds),
		HandCommitPM:       int32(t.Hand.CommitPerMille),
		HandIntroRiseTk:    ticks(t.Hand.IntroRiseSecs),
		HandIntroHoldTk:    ticks(t.Hand.IntroHoldSecs),

		SpawnIntervalTk: ticks(t.Waves.SpawnIntervalSeconds),
		SpawnGroupSize:  int32(t.Waves.SpawnGroupSize),
		TransitionTk:    ticks(t.Waves.TransitionSeconds),
		IdleHurryTk:     ticks(t.Waves.IdleHurrySeconds),

		EggPickup:      int32(t.Scoring.EggPickup),
		EggAirBonus:    int32(t.Scoring.EggAirBonus),
		SurvivalBonus:  int32(t.Scoring.SurvivalBonus),
		ExtraLifeEvery: int32(t.Scoring.ExtraLifeEvery),
		LivesTeam:      int32(t.Scoring.LivesTeam),
		LivesPvP:       int32(t.Scoring.LivesPvP),
	}

	for i := 0; i < 3; i++ {
		c.PatrolMinTk[i] = ticks(t.AI.PatrolMinSeconds[i])
		c.PatrolMaxTk[i] = ticks(t.AI.PatrolMaxSeconds[i])
		c.AttackMinTk[i] = ticks(t.AI.AttackMinSeconds[i])
		c.AttackMaxTk[i] = ticks(t.AI.AttackMaxSeconds[i])
	}
	for i, p := range t.Scoring.KillPoints {
		c.KillPoints[i] = int32(p)
	}

	c.WrapSpan = c.ViewW + 2*c.HalfW
	c.EggWrapSpan = c.ViewW + 2*c.EggHalf

	c.fullPlatforms, c.reducedPlatforms = buildPlatformSets()
	c.spawnPoints = buildSpawnPoints(&c.fullPlatforms, c.HalfH)
	return c
}
