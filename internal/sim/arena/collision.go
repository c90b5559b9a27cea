package arena

import "skyjoust.ai/internal/sim/fixed"

// collidePlatforms resolves one character against the active platform set:
// landing on tops, head bumps on undersides, and walking off edges.
func (w *World) collidePlatforms(c *Character) {
	cfg := w.cfg
	set := w.platforms()

	if c.Loco == Grounded {
		p, ok := set.At(c.PlatformIdx)
		if !ok || c.X < p.Left-cfg.HalfW || c.X > p.Right+cfg.HalfW {
			// Walked off the edge (or the platform shrank under it).
			c.Loco = Airborne
			c.PlatformIdx = -1
			c.EdgeBumps++
		}
		return
	}
	if c.Loco != Airborne {
		return
	}

	if c.VY <= 0 {
		prevFeet := c.PrevY - cfg.HalfH
		feet := c.Y - cfg.HalfH
		for i := range set.Platforms {
			p := set.Platforms[i]
			if c.X < p.Left-cfg.HalfW || c.X > p.Right+cfg.HalfW {
				continue
			}
			if prevFeet >= p.Top && feet < p.Top {
				c.Y = standY(p, cfg.HalfH)
				c.VY = 0
				c.Loco = Grounded
				c.PlatformIdx = int32(i)
				return
			}
		}
		return
	}

	// Rising: head bump on the first underside crossed.
	prevHead := c.PrevY + cfg.HalfH
	head := c.Y + cfg.HalfH
	for i := range set.Platforms {
		p := set.Platforms[i]
		if c.X < p.Left-cfg.HalfW || c.X > p.Right+cfg.HalfW {
			continue
		}
		if prevHead <= p.Bottom && head > p.Bottom {
			c.Y = p.Bottom - cfg.HalfH
			c.VY = 0
			return
		}
	}
}

// wrapCharacter applies the horizontal screen wrap: beyond either edge by the
// half-width, reappear at the opposite edge with the same margin.
func (w *World) wrapCharacter(c *Character) {
	cfg := w.cfg
	if c.X > cfg.ViewW+cfg.HalfW {
		c.X -= cfg.WrapSpan
		c.PrevX -= cfg.WrapSpan
	} else if c.X < -cfg.HalfW {
		c.X += cfg.WrapSpan
		c.PrevX += cfg.WrapSpan
	}
}

// hitLava reports whether y is strictly below the lava kill line.
func (w *World) hitLava(y int32) bool {
	return y < w.cfg.LavaY
}

// wrapDX is the shortest wrap-aware horizontal offset from x2 to x1.
func (w *World) wrapDX(x1, x2 int32) int32 {
	d := x1 - x2
	if d > w.cfg.ViewW/2 {
		d -= w.cfg.ViewW
	} else if d < -w.cfg.ViewW/2 {
		d += w.cfg.ViewW
	}
	return d
}

// JoustOutcome reports how a character pair resolved.
type JoustOutcome int32

const (
	JoustNone   JoustOutcome = 0
	JoustBounce JoustOutcome = 1
	JoustKill   JoustOutcome = 2
)

// resolveJousts runs the pairwise collision pass over eligible characters.
// Pair order is fixed (ascending slot indices), which fixes the RNG-free but
// order-sensitive outcome sequence across peers.
func (w *World) resolveJousts() {
	for i := 0; i < MaxSlots; i++ {
		a := &w.chars[i]
		if !w.joustEligible(a) {
			continue
		}
		for j := i + 1; j < MaxSlots; j++ {
			b := &w.chars[j]
			if !w.joustEligible(b) {
				continue
			}
			w.resolvePair(a, b)
			if !w.joustEligible(a) {
				break
			}
		}
	}
}

func (w *World) joustEligible(c *Character) bool {
	// Grabbed characters are excluded from joust checks; the hand owns them.
	return c.targetable() && c.Loco != Grabbed && c.JoustCooldown == 0
}

// overlap tests the pair's AABBs, wrap-aware, with swept detection for
// same-frame pass-through: if the relative horizontal offset flipped sign
// since last tick while the vertical bands overlap, the characters tunneled
// through each other and must still register.
func (w *World) overlap(a, b *Character) bool {
	cfg := w.cfg
	dy := a.Y - b.Y
	if fixed.Abs(dy) >= 2*cfg.HalfH {
		return false
	}
	dx := w.wrapDX(a.X, b.X)
	if fixed.Abs(dx) < 2*cfg.HalfW {
		return true
	}
	prev := w.wrapDX(a.PrevX, b.PrevX)
	if prev == 0 || dx == 0 {
		return true
	}
	if (prev < 0) != (dx < 0) && fixed.Abs(prev) < cfg.ViewW/4 {
		return true
	}
	return false
}

func (w *World) resolvePair(a, b *Character) JoustOutcome {
	if !w.overlap(a, b) {
		return JoustNone
	}

	// Raptor pairings have their own rule, checked first; it is also the
	// only one that reacts to invincibility (with a bounce) instead of
	// skipping the pair outright.
	if a.EnemyType == EnemyRaptor || b.EnemyType == EnemyRaptor {
		return w.resolveRaptorPair(a, b)
	}
	if a.Invincible || b.Invincible {
		return JoustNone
	}

	// Same-side pairings never kill: two ground-bound mounts share a
	// faction, and same-team humans bounce under Team mode.
	if a.EnemyType.groundTier() && b.EnemyType.groundTier() {
		w.bounce(a, b)
		return JoustBounce
	}
	if a.isHuman() && b.isHuman() && w.mode == ModeTeam {
		w.bounce(a, b)
		return JoustBounce
	}

	dy := a.Y - b.Y
	if fixed.Abs(dy) <= w.cfg.JoustDeadzone {
		w.bounce(a, b)
		return JoustBounce
	}

	winner, loser := a, b
	if dy < 0 {
		winner, loser = b, a
	}
	w.applyKill(winner, loser)
	return JoustKill
}

// resolveRaptorPair: a raptor hitting a human is an instant kill of the human
// unless the jaw-open window is active (then the human wins), and invincible
// humans bounce instead. Raptors ignore ground mounts and other raptors.
func (w *World) resolveRaptorPair(a, b *Character) JoustOutcome {
	raptor, other := a, b
	if other.EnemyType == EnemyRaptor {
		raptor, other = b, a
	}
	if raptor.EnemyType != EnemyRaptor || !other.isHuman() {
		return JoustNone
	}
	if other.Invincible {
		w.bounce(raptor, other)
		return JoustBounce
	}
	if w.raptorJawOpen(raptor) {
		w.applyKill(other, raptor)
		return JoustKill
	}
	w.applyKill(raptor, other)
	return JoustKill
}

// bounce pushes both characters apart horizontally and arms the cooldown so
// the pair cannot re-trigger next tick while still overlapping.
func (w *World) bounce(a, b *Character) {
	push := w.cfg.BouncePush
	if w.wrapDX(a.X, b.X) >= 0 {
		a.VX, b.VX = push, -push
	} else {
		a.VX, b.VX = -push, push
	}
	a.JoustCooldown = w.cfg.JoustCooldown
	b.JoustCooldown = w.cfg.JoustCooldown
	a.BounceCount++
	b.BounceCount++
}

func (w *World) applyKill(winner, loser *Character) {
	recoil := w.cfg.WinnerRecoil
	if w.wrapDX(winner.X, loser.X) >= 0 {
		winner.VX = recoil
	} else {
		winner.VX = -recoil
	}
	winner.JoustCooldown = w.cfg.JoustCooldown
	w.killCharacter(loser, false, winner.Slot)
}

// checkLavaDeaths flags every living character that sank under the kill line.
// Runs after movement so the hand's own lava handling and this pass agree.
func (w *World) checkLavaDeaths() {
	for i := range w.chars {
		c := &w.chars[i]
		if c.alive() && w.hitLava(c.Y) {
			w.killCharacter(c, true, -1)
		}
	}
}
