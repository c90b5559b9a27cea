package arena

import "skyjoust.ai/internal/sim/fixed"

// Egg is one entry in the fixed-capacity egg pool. Every death drops one
// (raptors excepted) carrying the enemy type it will hatch into; humans can
// collect it at any stage for points.
type Egg struct {
	Active    bool
	X, Y      int32
	VX, VY    int32
	PrevY     int32
	OwnerType EnemyType // what hatches; EnemyNone is a plain pickup
	State     HatchState
	HatchTk   int32 // counts up from first landing, never resets
	Platform  int32 // -1 while airborne
	Bounces   int32
	HitLava   bool
}

// spawnEgg claims the first free pool slot. Drops the egg silently when the
// pool is exhausted.
func (w *World) spawnEgg(x, y int32, owner EnemyType) *Egg {
	for i := range w.eggs {
		e := &w.eggs[i]
		if e.Active {
			continue
		}
		*e = Egg{
			Active:    true,
			X:         x,
			Y:         y,
			PrevY:     y,
			OwnerType: owner,
			State:     EggFalling,
			Platform:  -1,
		}
		return e
	}
	return nil
}

func (w *World) stepEggs() {
	for i := range w.eggs {
		e := &w.eggs[i]
		if !e.Active {
			continue
		}
		if e.State == EggHatchling {
			w.stepHatchling(e)
			continue
		}
		w.stepEggBody(e)
	}
}

// stepEggBody runs the projectile stages: Falling, OnPlatform, Wobbling.
func (w *World) stepEggBody(e *Egg) {
	cfg := w.cfg
	e.PrevY = e.Y

	if e.Platform < 0 {
		e.VY += cfg.GravityTick
		if e.VY < cfg.TerminalFall {
			e.VY = cfg.TerminalFall
		}
	} else {
		// Rolling: friction only. The platform may have shrunk out from
		// under the egg, so re-validate before trusting the index.
		e.VY = 0
		e.VX = decay(e.VX, cfg.EggFricTick)
		// Rolled off the edge: fall again, keeping any hatch progress.
		if p, ok := w.platforms().At(e.Platform); !ok ||
			e.X < p.Left-cfg.EggHalf || e.X > p.Right+cfg.EggHalf {
			e.Platform = -1
		}
	}

	e.X += fixed.PerTick(e.VX)
	e.Y += fixed.PerTick(e.VY)
	w.wrapEgg(e)

	if e.Platform < 0 && e.VY <= 0 {
		w.landEgg(e)
	}

	if w.hitLava(e.Y) {
		e.HitLava = true
		e.Active = false
		return
	}

	if e.Platform >= 0 {
		e.HatchTk++
		if e.HatchTk >= cfg.HatchCompleteTk {
			e.State = EggHatchling
			e.VX, e.VY = 0, 0
		} else if e.HatchTk >= cfg.WobbleStartTk {
			e.State = EggWobbling
		}
	}

	w.collectEgg(e, cfg.EggHalf, cfg.EggHalf)
}

// landEgg checks a falling egg's feet against every platform top, sticking or
// bouncing on the impact speed.
func (w *World) landEgg(e *Egg) {
	cfg := w.cfg
	set := w.platforms()
	for i := int32(0); i < int32(set.Len()); i++ {
		p, _ := set.At(i)
		if e.X < p.Left-cfg.EggHalf || e.X > p.Right+cfg.EggHalf {
			continue
		}
		prevFeet := e.PrevY - cfg.EggHalf
		feet := e.Y - cfg.EggHalf
		if prevFeet < p.Top || feet >= p.Top {
			continue
		}
		if -e.VY <= cfg.EggStickSpeed {
			e.Y = p.Top + cfg.EggHalf
			e.VY = 0
			e.Platform = i
			if e.State == EggFalling {
				e.State = EggOnPlatform
			}
		} else {
			e.Y = p.Top + cfg.EggHalf
			e.VY = -e.VY / 2
			e.Bounces++
		}
		return
	}
}

// stepHatchling: the egg has cracked. It sits still with a taller, narrower
// hitbox, still collectible, until the mount inside climbs out.
func (w *World) stepHatchling(e *Egg) {
	cfg := w.cfg
	if w.collectEgg(e, cfg.HatchHalfW, cfg.HatchHalfH) {
		return
	}
	e.HatchTk++
	if e.HatchTk < cfg.HatchSpawnTk {
		return
	}
	if e.OwnerType == EnemyNone {
		e.Active = false
		return
	}
	idx := w.platformBeneath(e.X, e.Y)
	var y int32
	if idx >= 0 {
		p, _ := w.platforms().At(idx)
		y = standY(p, cfg.HalfH)
	} else {
		y = e.Y
	}
	// Hatched mounts skip materialization: they arrive ready.
	w.spawnEnemy(e.OwnerType, e.X, y, idx, true)
	e.Active = false
}

// collectEgg awards the pickup to the first overlapping living,
// non-materializing human. Catching the egg before it lands pays a bonus.
func (w *World) collectEgg(e *Egg, halfW, halfH int32) bool {
	cfg := w.cfg
	for i := 0; i < MaxHumans; i++ {
		c := &w.chars[i]
		if !c.targetable() {
			continue
		}
		if fixed.Abs(w.wrapDX(c.X, e.X)) > cfg.HalfW+halfW {
			continue
		}
		if fixed.Abs(c.Y-e.Y) > cfg.HalfH+halfH {
			continue
		}
		pts := cfg.EggPickup
		if e.Platform < 0 {
			pts += cfg.EggAirBonus
		}
		w.addScore(c, pts)
		c.EggsThisWave++
		w.idleTimer = 0
		e.Active = false
		return true
	}
	return false
}

func (w *World) wrapEgg(e *Egg) {
	cfg := w.cfg
	if e.X < -cfg.EggHalf {
		e.X += cfg.EggWrapSpan
	} else if e.X > cfg.ViewW+cfg.EggHalf {
		e.X -= cfg.EggWrapSpan
	}
}

// platformBeneath finds the highest platform top at or below the point, or -1
// over open lava.
func (w *World) platformBeneath(x, y int32) int32 {
	set := w.platforms()
	best := int32(-1)
	var bestTop int32
	for i := int32(0); i < int32(set.Len()); i++ {
		p, _ := set.At(i)
		if x < p.Left || x > p.Right || p.Top > y {
			continue
		}
		if best < 0 || p.Top > bestTop {
			best, bestTop = i, p.Top
		}
	}
	return best
}

// hatchPending reports whether any egg still carries a mount payload; the
// wave cannot complete while one does.
func (w *World) hatchPending() bool {
	for i := range w.eggs {
		e := &w.eggs[i]
		if e.Active && e.OwnerType.groundTier() {
			return true
		}
	}
	return false
}
