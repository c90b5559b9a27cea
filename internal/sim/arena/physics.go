package arena

import "skyjoust.ai/internal/sim/fixed"

// stepCharacter integrates one character for one tick from its input byte.
// Pure kinematics plus platform snapping: it never reads or writes score,
// lives, or AI state. Grabbed characters are moved by the hand instead.
func (w *World) stepCharacter(c *Character, input byte) {
	cfg := w.cfg
	c.PrevX, c.PrevY = c.X, c.Y

	if c.Loco == Grabbed {
		return
	}

	dir := int32(0)
	if input&InputLeft != 0 {
		dir--
	}
	if input&InputRight != 0 {
		dir++
	}

	// Horizontal: accelerate with input, decelerate toward zero without.
	// Reversing against current motion uses the harder skid constant.
	grounded := c.Loco == Grounded
	switch {
	case dir != 0 && c.VX != 0 && dir*c.VX < 0:
		c.VX += dir * pick(grounded, cfg.SkidGroundTick, cfg.SkidAirTick)
	case dir != 0:
		c.VX += dir * pick(grounded, cfg.AccelGroundTick, cfg.AccelAirTick)
		c.VX = fixed.Clamp(c.VX, -cfg.MaxSpeedX, cfg.MaxSpeedX)
	default:
		c.VX = decay(c.VX, pick(grounded, cfg.FricGroundTick, cfg.FricAirTick))
	}

	if dir != 0 && dir != c.Facing {
		c.Facing = dir
		c.Turning = true
		c.TurnTimer = cfg.TurnTicks
	}

	// Flap fires once per press, on the rising edge.
	flap := input&InputFlap != 0
	if flap && !c.flapHeld {
		c.VY += cfg.FlapImpulse
		c.Flapping = true
		c.FlapTimer = cfg.FlapAnimTicks
		if c.Loco == Grounded {
			c.Loco = Airborne
			c.PlatformIdx = -1
		}
	}
	c.flapHeld = flap

	if c.Loco == Airborne {
		c.VY += cfg.GravityTick
		if c.VY < cfg.TerminalFall {
			c.VY = cfg.TerminalFall
		}
	} else {
		c.VY = 0
		if c.VX != 0 {
			c.Stride = (c.Stride + 1) % cfg.StrideTicks
		}
	}

	c.X += fixed.PerTick(c.VX)
	c.Y += fixed.PerTick(c.VY)

	w.collidePlatforms(c)
	w.wrapCharacter(c)
}

// stepIdleCharacter is the no-input-source path: gravity and friction only.
func (w *World) stepIdleCharacter(c *Character) {
	w.stepCharacter(c, 0)
}

func pick(grounded bool, g, a int32) int32 {
	if grounded {
		return g
	}
	return a
}

// decay moves v toward zero by step without overshooting.
func decay(v, step int32) int32 {
	if v > step {
		return v - step
	}
	if v < -step {
		return v + step
	}
	return 0
}
