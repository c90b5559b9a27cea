package arena

import "skyjoust.ai/internal/sim/fixed"

// Ground enemies do not cheat at physics. Their minds emit the same input
// bytes a player would, and those bytes run through stepCharacter unchanged.
// Because flap is edge-triggered, a mind that wants consecutive flaps must
// release the bit for at least one tick in between; FlapAccum enforces that.

// stepGroundMind produces this tick's input byte for a ground-tier enemy.
// Every RNG draw happens unconditionally along a fixed decision path, so two
// worlds with equal state consume the stream identically.
func (w *World) stepGroundMind(c *Character, m *mind) byte {
	g := &m.Ground
	switch g.Phase {
	case phasePatrol:
		return w.mindPatrol(c, g)
	case phaseAttack:
		return w.mindAttack(c, g)
	default:
		return w.mindReturn(c, g)
	}
}

func (w *World) mindPatrol(c *Character, g *groundMind) byte {
	if c.Loco != Grounded {
		// Knocked or walked off. Find a roost and come back.
		w.enterReturn(c, g)
		return 0
	}
	g.PhaseTimer--
	if g.PhaseTimer <= 0 {
		w.enterAttack(c, g)
		return w.mindAttack(c, g)
	}
	// Walk back and forth, reversing short of the edge.
	if p, ok := w.platforms().At(c.PlatformIdx); ok {
		if g.Dir > 0 && c.X > p.Right-w.cfg.PatrolMargin {
			g.Dir = -1
		} else if g.Dir < 0 && c.X < p.Left+w.cfg.PatrolMargin {
			g.Dir = 1
		}
	}
	return dirBits(g.Dir)
}

func (w *World) enterAttack(c *Character, g *groundMind) {
	tier := c.EnemyType
	g.Phase = phaseAttack
	g.PhaseTimer = w.rollRange(w.cfg.AttackMinTk[tier], w.cfg.AttackMaxTk[tier])
	g.DirTimer = 0
	g.FlapAccum = 0
}

func (w *World) enterReturn(c *Character, g *groundMind) {
	g.Phase = phaseReturn
	g.TargetPlatform = w.pickRoost(-1)
	g.SafetyTimer = w.cfg.ReturnSafetyTk
	g.FlapAccum = 0
}

func (w *World) mindAttack(c *Character, g *groundMind) byte {
	g.PhaseTimer--
	if g.PhaseTimer <= 0 {
		w.enterReturn(c, g)
		return w.mindReturn(c, g)
	}

	var input byte
	wantFlap := false

	switch c.EnemyType {
	case EnemyWanderer:
		g.DirTimer--
		if g.DirTimer <= 0 {
			g.Dir = w.rollDir()
			g.DirTimer = w.rollRange(w.cfg.DirChangeMinTk, w.cfg.DirChangeMaxTk)
		}
		input = dirBits(g.Dir)
		wantFlap = w.rng.Chance(int(w.cfg.WandererFlapPM), 1000)

	case EnemyTracker:
		target := w.nearestHuman(c.X)
		if target == nil {
			input = dirBits(g.Dir)
			wantFlap = w.rng.Chance(int(w.cfg.WandererFlapPM), 1000)
			break
		}
		dx := w.wrapDX(target.X, c.X)
		if fixed.Abs(dx) > w.cfg.TrackerDeadband {
			if dx > 0 {
				g.Dir = 1
			} else {
				g.Dir = -1
			}
			input = dirBits(g.Dir)
		}
		// Climb hard when the prey holds the height advantage, coast when
		// it does not.
		pm := w.cfg.TrackerFlapLowPM
		if target.Y > c.Y {
			pm = w.cfg.TrackerFlapHighPM
		}
		wantFlap = w.rng.Chance(int(pm), 1000)

	case EnemyStalker:
		target := w.nearestHuman(c.X)
		if target == nil {
			input = dirBits(g.Dir)
			wantFlap = w.rng.Chance(int(w.cfg.StalkerFlapNearPM), 1000)
			break
		}
		// Steer at where the prey will be, not where it is: lead by roughly
		// four tenths of a second of its current velocity.
		lead := fixed.MulShift(target.VX, 410, 10)
		dx := w.wrapDX(target.X+lead, c.X)
		if fixed.Abs(dx) > w.cfg.TrackerDeadband {
			if dx > 0 {
				g.Dir = 1
			} else {
				g.Dir = -1
			}
			input = dirBits(g.Dir)
		}
		dy := target.Y - c.Y
		pm := w.cfg.StalkerFlapNearPM
		switch {
		case dy > w.cfg.StalkerNearBand:
			pm = w.cfg.StalkerFlapBelowPM
		case dy < -w.cfg.StalkerNearBand:
			pm = w.cfg.StalkerFlapAbovePM
		}
		wantFlap = w.rng.Chance(int(pm), 1000)
	}

	// Safeguards, strongest last: never let a dive run away (trackers
	// tolerate a faster fall), stay out of the unreachable top band, and an
	// enemy skimming the kill line always flaps.
	fast := w.cfg.FastFall
	if c.EnemyType == EnemyTracker {
		fast = w.cfg.TrackerFast
	}
	if c.VY < fast {
		wantFlap = true
	}
	if c.Y > w.cfg.CeilingNoFlapY {
		wantFlap = false
	}
	if c.Y < w.cfg.LavaAvoidY {
		wantFlap = true
	}

	if g.FlapAccum > 0 {
		g.FlapAccum--
	} else if wantFlap {
		input |= InputFlap
		g.FlapAccum = 1
	}
	return input
}

func (w *World) mindReturn(c *Character, g *groundMind) byte {
	g.SafetyTimer--
	if g.SafetyTimer <= 0 {
		// Could not reach a roost in time. Give up and fight instead.
		w.enterAttack(c, g)
		return w.mindAttack(c, g)
	}

	if c.Loco == Grounded {
		tier := c.EnemyType
		if c.PlatformIdx == g.TargetPlatform {
			g.Phase = phasePatrol
			g.PhaseTimer = w.rollRange(w.cfg.PatrolMinTk[tier], w.cfg.PatrolMaxTk[tier])
			g.Dir = w.rollDir()
			return 0
		}
		landed, okL := w.platforms().At(c.PlatformIdx)
		target, okT := w.platforms().At(g.TargetPlatform)
		if okL && okT && target.Top < landed.Top {
			// The roost is below this perch: walk off the nearer edge and
			// glide down rather than climbing away from it.
			if c.X-landed.Left < landed.Right-c.X {
				return InputLeft
			}
			return InputRight
		}
		// Wrong perch, roost is above. Pick a different one and relaunch.
		g.TargetPlatform = w.pickRoost(g.TargetPlatform)
	}

	target, ok := w.platforms().At(g.TargetPlatform)
	if !ok {
		g.TargetPlatform = w.pickRoost(-1)
		target, _ = w.platforms().At(g.TargetPlatform)
	}

	var input byte
	dx := w.wrapDX(target.centerX(), c.X)
	if fixed.Abs(dx) > w.cfg.ReturnAlignX {
		if dx > 0 {
			input = InputRight
		} else {
			input = InputLeft
		}
	}

	// Pulse flaps on a fixed cadence while below the roost or falling too
	// fast; the off ticks create the rising edges the physics layer needs.
	// Aligned above the roost, coast down instead.
	perch := standY(target, w.cfg.HalfH)
	if c.Y < perch || c.VY < w.cfg.FastFall {
		g.FlapAccum++
		if g.FlapAccum%4 < 2 {
			input |= InputFlap
		}
	} else {
		g.FlapAccum = 0
	}
	if c.Y < w.cfg.LavaAvoidY {
		g.FlapAccum++
		if g.FlapAccum%2 == 0 {
			input |= InputFlap
		}
	}
	return input
}

// pickRoost chooses a landing platform uniformly at random, excluding the one
// the mind just rejected.
func (w *World) pickRoost(exclude int32) int32 {
	n := int32(w.platforms().Len())
	idx := int32(w.rng.Intn(int(n)))
	if idx == exclude {
		idx = (idx + 1 + int32(w.rng.Intn(int(n-1)))) % n
	}
	return idx
}

func dirBits(dir int32) byte {
	if dir > 0 {
		return InputRight
	}
	if dir < 0 {
		return InputLeft
	}
	return 0
}
