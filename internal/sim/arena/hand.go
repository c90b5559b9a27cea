package arena

import "skyjoust.ai/internal/sim/fixed"

// HandState is the lava hand, a singleton hazard that lives for the whole
// match. It sleeps below the lava line, and once the activation wave has run
// its punch intro it periodically reaches up to drag a low-flying character
// under. The two one-way flags here — PlatformsDestroyed and IntroDone —
// never revert for the lifetime of the simulation.
type HandState struct {
	Active     bool
	Phase      HandPhase
	TargetSlot int32 // -1 when no target
	TargetType int32 // EnemyType of the target at commit time
	X, Y       int32
	PhaseTimer int32
	Cooldown   int32
	GrabY      int32 // grab height while pulling, sink origin while retreating
	Side       int32

	PlatformsDestroyed bool
	IntroDone          bool
}

// release drops any grip without touching the victim. Callers that free or
// kill a grabbed character use this to keep the hand from pulling a corpse.
func (h *HandState) release() {
	if h.Phase == HandPulling || h.Phase == HandGrabbing || h.Phase == HandReaching {
		h.Phase = HandRetreating
		h.PhaseTimer = 0
	}
	h.TargetSlot = -1
}

func (w *World) resetHand() {
	w.hand = HandState{TargetSlot: -1, Y: w.cfg.HandRestY}
}

// beginHandIntro starts the one-shot punch intro. No-op once it has run.
func (w *World) beginHandIntro() {
	h := &w.hand
	if h.IntroDone {
		return
	}
	h.Phase = HandPunchIntro
	h.PhaseTimer = w.cfg.HandIntroRiseTk + w.cfg.HandIntroHoldTk
	h.X = w.cfg.ViewW / 2
	h.Y = w.cfg.HandRestY
	h.Side = 1
}

func (w *World) stepHand() {
	h := &w.hand
	cfg := w.cfg

	switch h.Phase {
	case HandIdle:
		if h.Cooldown > 0 {
			h.Cooldown--
			return
		}
		if !h.Active {
			return
		}
		target := w.lowestGrabbable()
		if target == nil {
			return
		}
		// One roll per eligible sighting. A refused commit restarts the
		// cooldown so the hand does not re-roll every tick.
		if !w.rng.Chance(int(cfg.HandCommitPM), 1000) {
			h.Cooldown = cfg.HandCooldownTk
			return
		}
		h.TargetSlot = target.Slot
		h.TargetType = int32(target.EnemyType)
		h.X = target.X
		h.Y = cfg.HandRestY
		h.Phase = HandReaching

	case HandReaching:
		target := w.handTarget()
		if target == nil || target.Y > cfg.HandReachZoneY {
			h.release()
			return
		}
		w.handTrack(target.X)
		step := fixed.PerTick(cfg.HandReachSpeed)
		if h.Y < target.Y {
			h.Y += step
		}
		dx := fixed.Abs(w.wrapDX(target.X, h.X))
		dy := fixed.Abs(target.Y - h.Y)
		if dx <= cfg.HandGrabRadius && dy <= cfg.HandGrabRadius {
			h.Phase = HandGrabbing
			h.PhaseTimer = cfg.HandGrabTk
		}

	case HandGrabbing:
		target := w.handTarget()
		if target == nil {
			h.release()
			return
		}
		w.handTrack(target.X)
		h.PhaseTimer--
		if h.PhaseTimer > 0 {
			return
		}
		dx := fixed.Abs(w.wrapDX(target.X, h.X))
		dy := fixed.Abs(target.Y - h.Y)
		if dx > cfg.HandGrabRadius || dy > cfg.HandGrabRadius {
			h.release()
			return
		}
		// Grip locks: the victim leaves normal physics entirely.
		target.Loco = Grabbed
		target.PlatformIdx = -1
		target.VY = 0
		h.GrabY = target.Y
		h.Phase = HandPulling

	case HandPulling:
		target := w.handTarget()
		if target == nil || target.Loco != Grabbed {
			h.release()
			return
		}
		// Tug of war: grip drag halves the climb, then the pull drags down,
		// and a flapping human fights back one impulse per press.
		target.VY /= 2
		target.VY += cfg.HandPullTick
		if target.isHuman() {
			in := w.inputs[target.Slot]
			flap := in&InputFlap != 0
			if flap && !target.flapHeld {
				target.VY += cfg.HandFightImpulse
				target.Flapping = true
				target.FlapTimer = cfg.FlapAnimTicks
			}
			target.flapHeld = flap
		}
		target.PrevX, target.PrevY = target.X, target.Y
		target.Y += fixed.PerTick(target.VY)
		h.X = target.X
		h.Y = target.Y - cfg.HalfH

		if target.Y > h.GrabY+cfg.HandEscapeMargin {
			target.Loco = Airborne
			target.VY = cfg.HandEscapeImpulse
			h.release()
			return
		}
		if w.hitLava(target.Y) {
			w.killCharacter(target, true, -1)
			// killCharacter released the grip; nothing left to hold.
			h.Phase = HandRetreating
			h.PhaseTimer = 0
			h.TargetSlot = -1
		}

	case HandRetreating:
		// Fixed-duration sink back to rest. The first retreating tick
		// latches the start height in GrabY; the grip is already gone, so
		// the field is free to carry the sink origin.
		if h.PhaseTimer <= 0 {
			h.PhaseTimer = cfg.HandRetreatTk
			h.GrabY = h.Y
		}
		h.PhaseTimer--
		elapsed := cfg.HandRetreatTk - h.PhaseTimer
		h.Y = h.GrabY + lerpOverTicks(cfg.HandRestY-h.GrabY, elapsed, cfg.HandRetreatTk)
		if h.PhaseTimer <= 0 {
			h.Y = cfg.HandRestY
			h.Phase = HandIdle
			h.TargetSlot = -1
			h.Cooldown = cfg.HandCooldownTk
		}

	case HandPunchIntro:
		h.PhaseTimer--
		rise := cfg.HandIntroRiseTk
		switch {
		case h.PhaseTimer > cfg.HandIntroHoldTk:
			// Rising. Halfway up, the punch lands and the layout changes
			// for good.
			elapsed := rise + cfg.HandIntroHoldTk - h.PhaseTimer
			h.Y = cfg.HandRestY + lerpOverTicks(cfg.HandReachZoneY-cfg.HandRestY, elapsed, rise)
			if elapsed >= rise/2 {
				h.PlatformsDestroyed = true
			}
		case h.PhaseTimer > 0:
			h.Y = cfg.HandReachZoneY
		default:
			h.IntroDone = true
			h.Active = true
			h.Phase = HandRetreating
			h.PhaseTimer = 0
		}
	}
}

// handTarget resolves the stored slot, or nil if the victim is gone.
func (w *World) handTarget() *Character {
	h := &w.hand
	if h.TargetSlot < 0 || h.TargetSlot >= MaxSlots {
		return nil
	}
	c := &w.chars[h.TargetSlot]
	if !c.alive() || int32(c.EnemyType) != h.TargetType {
		return nil
	}
	return c
}

// handTrack slides the hand horizontally toward x at reach speed.
func (w *World) handTrack(x int32) {
	h := &w.hand
	dx := w.wrapDX(x, h.X)
	step := fixed.PerTick(w.cfg.HandReachSpeed)
	if dx > step {
		dx = step
	} else if dx < -step {
		dx = -step
	}
	h.X += dx
}

// lowestGrabbable scans for the lowest living, non-materializing character
// inside the reach zone with open lava beneath it. RNG-free.
func (w *World) lowestGrabbable() *Character {
	var best *Character
	for i := 0; i < MaxSlots; i++ {
		c := &w.chars[i]
		if !c.targetable() || c.Loco == Grabbed {
			continue
		}
		if c.Y > w.cfg.HandReachZoneY {
			continue
		}
		if w.shieldedFromBelow(c.X, c.Y) {
			continue
		}
		if best == nil || c.Y < best.Y {
			best = c
		}
	}
	return best
}

// shieldedFromBelow reports whether any platform sits between the given
// point and the lava, blocking the hand's path.
func (w *World) shieldedFromBelow(x, y int32) bool {
	set := w.platforms()
	for i := int32(0); i < int32(set.Len()); i++ {
		p, _ := set.At(i)
		if x >= p.Left && x <= p.Right && p.Top <= y {
			return true
		}
	}
	return false
}

// lerpOverTicks is integer linear interpolation of span across dur ticks.
func lerpOverTicks(span, elapsed, dur int32) int32 {
	if dur <= 0 {
		return span
	}
	if elapsed >= dur {
		return span
	}
	return int32(int64(span) * int64(elapsed) / int64(dur))
}
