package arena

import "skyjoust.ai/internal/sim/fixed"

// The raptor does not ride the shared physics. It owns its velocity outright
// and moves through a five-phase loop: enter from off screen, circle at
// altitude, swoop at a human, pull up, circle again. The jaw opens and closes
// on a fixed cycle; joust resolution reads it to decide who wins a contact.

const raptorSwoopCapTk = 3 * fixed.TickRate

// spawnRaptor brings a raptor in low from a random screen edge; the enter
// phase climbs it to cruising height. Returns nil when the enemy slots are
// full.
func (w *World) spawnRaptor() *Character {
	side := w.rollDir() // +1 enters from the left edge moving right
	var x int32
	if side > 0 {
		x = -w.cfg.HalfW
	} else {
		x = w.cfg.ViewW + w.cfg.HalfW
	}
	c := w.spawnEnemy(EnemyRaptor, x, 0, -1, true)
	if c == nil {
		return nil
	}
	m := w.mindOf(c)
	m.Air.Dir = side
	c.Facing = side
	return c
}

// dismissRaptors sends every live raptor into its exit run. Already-exiting
// raptors are left alone.
func (w *World) dismissRaptors() {
	for i := MaxHumans; i < MaxSlots; i++ {
		c := &w.chars[i]
		if !c.alive() || c.EnemyType != EnemyRaptor {
			continue
		}
		m := w.mindOf(c)
		if m.Air.Phase == raptorExit {
			continue
		}
		m.Air.Phase = raptorExit
		// Leave toward the nearer edge.
		if c.X*2 < w.cfg.ViewW {
			m.Air.Dir = -1
		} else {
			m.Air.Dir = 1
		}
	}
}

func (w *World) stepRaptor(c *Character, m *mind) {
	a := &m.Air
	if c.Loco == Grabbed {
		return
	}
	c.PrevX, c.PrevY = c.X, c.Y

	a.JawTimer++
	if a.JawTimer >= w.cfg.JawCycleTk {
		a.JawTimer = 0
	}

	cfg := w.cfg
	switch a.Phase {
	case raptorEnter:
		c.VX = a.Dir * cfg.RaptorEnterSpeed
		c.VY = seekVY(cfg.RaptorTargetY-c.Y, cfg.RaptorEnterRise)
		if c.X > cfg.HalfW && c.X < cfg.ViewW-cfg.HalfW {
			a.Phase = raptorCircle
			a.PhaseTimer = w.rollRange(cfg.RaptorCircleMinTk, cfg.RaptorCircleMaxTk)
		}

	case raptorCircle:
		c.VX = a.Dir * cfg.RaptorCircleSpeed
		c.VY = seekVY(cfg.RaptorTargetY-c.Y, cfg.RaptorEnterRise)
		a.PhaseTimer--
		if a.PhaseTimer <= 0 {
			target := w.nearestHuman(c.X)
			if target == nil {
				a.PhaseTimer = w.rollRange(cfg.RaptorCircleMinTk, cfg.RaptorCircleMaxTk)
				break
			}
			if w.wrapDX(target.X, c.X) >= 0 {
				a.Dir = 1
			} else {
				a.Dir = -1
			}
			a.Phase = raptorSwoop
			a.PhaseTimer = raptorSwoopCapTk
		}

	case raptorSwoop:
		target := w.nearestHuman(c.X)
		a.PhaseTimer--
		if target == nil || c.Y <= cfg.LavaAvoidY || a.PhaseTimer <= 0 {
			w.beginPullUp(a)
			break
		}
		c.VX = a.Dir * cfg.RaptorSwoopSpeed
		// Dive steeply, but track the prey's height on the way down so a
		// flapping escape bends the dive instead of breaking it.
		c.VY = fixed.Clamp((target.Y-c.Y)*3, -cfg.RaptorSwoopSpeed, cfg.RaptorSwoopTrackVY)
		if c.Y <= target.Y {
			w.beginPullUp(a)
		}

	case raptorPullUp:
		c.VX = a.Dir * cfg.RaptorPullUpVX
		c.VY = cfg.RaptorPullUpVY
		a.PhaseTimer--
		if a.PhaseTimer <= 0 {
			a.Phase = raptorCircle
			a.PhaseTimer = w.rollRange(cfg.RaptorCircleMinTk, cfg.RaptorCircleMaxTk)
		}

	case raptorExit:
		c.VX = a.Dir * cfg.RaptorEnterSpeed
		c.VY = cfg.RaptorEnterRise
	}

	if a.Phase != raptorEnter && a.Phase != raptorExit {
		w.steerAroundPlatforms(c)
	}

	if c.VX > 0 {
		c.Facing = 1
	} else if c.VX < 0 {
		c.Facing = -1
	}

	c.X += fixed.PerTick(c.VX)
	c.Y += fixed.PerTick(c.VY)
	ceil := cfg.ViewH - cfg.HalfH
	if c.Y > ceil {
		c.Y = ceil
		if c.VY > 0 {
			c.VY = 0
		}
	}

	if a.Phase == raptorEnter || a.Phase == raptorExit {
		if a.Phase == raptorExit && (c.X < -cfg.WrapSpan/2 || c.X > cfg.ViewW+cfg.WrapSpan/2) {
			// Fully gone. Free the slot without a corpse or an egg.
			w.minds[c.Slot-MaxHumans] = mind{Kind: EnemyNone}
			c.reset(c.Slot)
		}
		return
	}
	w.wrapCharacter(c)
}

// beginPullUp veers out of a dive: climb at a fixed angle facing the other
// way, closing the jaw window's easy follow-up.
func (w *World) beginPullUp(a *airMind) {
	a.Dir = -a.Dir
	a.Phase = raptorPullUp
	a.PhaseTimer = w.cfg.RaptorPullUpTk
}

// steerAroundPlatforms deflects the raptor off the first platform its padded
// box would touch next tick: vertically away from the slab's center, with a
// horizontal shove toward open air.
func (w *World) steerAroundPlatforms(c *Character) {
	cfg := w.cfg
	nx := c.X + fixed.PerTick(c.VX)
	ny := c.Y + fixed.PerTick(c.VY)
	set := w.platforms()
	for i := int32(0); i < int32(set.Len()); i++ {
		p, _ := set.At(i)
		if nx+cfg.HalfW+cfg.RaptorAvoidMargin < p.Left ||
			nx-cfg.HalfW-cfg.RaptorAvoidMargin > p.Right ||
			ny+cfg.HalfH+cfg.RaptorAvoidMargin < p.Bottom ||
			ny-cfg.HalfH-cfg.RaptorAvoidMargin > p.Top {
			continue
		}
		if ny >= p.centerY() {
			if c.VY < cfg.RaptorEnterRise {
				c.VY = cfg.RaptorEnterRise
			}
		} else if c.VY > -cfg.RaptorEnterRise {
			c.VY = -cfg.RaptorEnterRise
		}
		if nx >= p.centerX() {
			c.VX += cfg.RaptorAvoidNudge
		} else {
			c.VX -= cfg.RaptorAvoidNudge
		}
		return
	}
}

// seekVY climbs or sinks toward a height, easing in over the last stretch.
func seekVY(dy, rate int32) int32 {
	return fixed.Clamp(dy*2, -rate, rate)
}
