package arena

// Character is the shared record for humans and enemies. Slot index and
// EnemyType distinguish them; enemies simply leave the progression fields at
// zero.
type Character struct {
	Slot      int32
	EnemyType EnemyType

	X, Y, VX, VY int32
	PrevX, PrevY int32

	Loco      LocoState
	Facing    int32 // ±1
	Turning   bool
	TurnTimer int32
	Stride    int32
	Flapping  bool
	FlapTimer int32
	// flapHeld is last tick's flap bit; the impulse fires on the rising edge
	// only. Part of serialized state — it affects the outcome.
	flapHeld bool

	Active bool
	Dead   bool

	RespawnTimer int32

	Materializing    bool
	MaterializeTimer int32
	MaterializeDur   int32
	MaterializeQuick bool

	Invincible      bool
	InvincibleTimer int32
	JoustCooldown   int32
	HitLava         bool

	// Humans only.
	Score        int32
	Lives        int32
	NextLife     int32
	EggsThisWave int32
	DiedThisWave bool
	Palette      int32

	PlatformIdx int32 // -1 when airborne/grabbed

	BounceCount int32
	EdgeBumps   int32
}

func (c *Character) isHuman() bool { return c.EnemyType == EnemyNone }

// alive means the character participates in the simulation this tick.
func (c *Character) alive() bool { return c.Active && !c.Dead }

// targetable means the hand and collision passes may act on it.
func (c *Character) targetable() bool { return c.alive() && !c.Materializing }

func (c *Character) reset(slot int32) {
	*c = Character{Slot: slot, EnemyType: EnemyNone, Facing: 1, PlatformIdx: -1}
}

// beginMaterialize starts the post-spawn grace window. quick skips it
// entirely (egg-hatched mounts arrive ready).
func (c *Character) beginMaterialize(dur int32, quick bool) {
	c.Materializing = !quick
	c.MaterializeTimer = 0
	c.MaterializeDur = dur
	c.MaterializeQuick = quick
}

// tickStatusTimers advances the per-character frame counters that run even
// when no input reaches the slot. Returns false while the character must be
// skipped by physics and AI.
func (c *Character) tickStatusTimers() bool {
	if !c.Active {
		return false
	}
	if c.JoustCooldown > 0 {
		c.JoustCooldown--
	}
	if c.Invincible {
		c.InvincibleTimer--
		if c.InvincibleTimer <= 0 {
			c.Invincible = false
		}
	}
	if c.Turning {
		c.TurnTimer--
		if c.TurnTimer <= 0 {
			c.Turning = false
		}
	}
	if c.Flapping {
		c.FlapTimer--
		if c.FlapTimer <= 0 {
			c.Flapping = false
		}
	}
	if c.Dead {
		return false
	}
	if c.Materializing {
		c.MaterializeTimer++
		if c.MaterializeTimer >= c.MaterializeDur || c.MaterializeQuick {
			c.Materializing = false
		}
		return false
	}
	return true
}

// spawnHuman places a human on the home platform, one lane per slot.
func (w *World) spawnHuman(slot int32) {
	c := &w.chars[slot]
	home := w.cfg.fullPlatforms.Platforms[0]
	c.X = home.centerX() + (slot-1)*3*w.cfg.HalfW
	c.Y = standY(home, w.cfg.HalfH)
	c.PrevX, c.PrevY = c.X, c.Y
	c.VX, c.VY = 0, 0
	c.Loco = Grounded
	c.PlatformIdx = 0
	c.Dead = false
	c.HitLava = false
	c.RespawnTimer = 0
	c.flapHeld = false
	c.beginMaterialize(w.cfg.MaterializeTk, false)
	c.Invincible = true
	c.InvincibleTimer = w.cfg.MaterializeTk + w.cfg.InvincibleTk
}

// ActivateHuman joins a human into a slot. Out-of-range or occupied slots are
// ignored — callers may probe freely.
func (w *World) ActivateHuman(slot int, palette int) {
	if slot < 0 || slot >= MaxHumans {
		return
	}
	c := &w.chars[slot]
	if c.Active {
		return
	}
	c.reset(int32(slot))
	c.Active = true
	c.Palette = int32(palette)
	c.NextLife = w.cfg.ExtraLifeEvery
	if w.mode == ModePvP {
		c.Lives = w.cfg.LivesPvP
	} else {
		c.Lives = w.cfg.LivesTeam
	}
	w.spawnHuman(int32(slot))
}

// DeactivateHuman frees a slot. Out-of-range indices are a no-op.
func (w *World) DeactivateHuman(slot int) {
	if slot < 0 || slot >= MaxHumans {
		return
	}
	c := &w.chars[slot]
	if !c.Active {
		return
	}
	if w.hand.Phase == HandPulling && w.hand.TargetSlot == int32(slot) {
		w.hand.release()
	}
	c.reset(int32(slot))
}

// spawnEnemy claims the first free enemy slot. Returns nil when every slot is
// taken: capacity is a soft limit and the spawn is silently dropped.
func (w *World) spawnEnemy(t EnemyType, x, y int32, platformIdx int32, quick bool) *Character {
	for i := MaxHumans; i < MaxSlots; i++ {
		c := &w.chars[i]
		if c.Active {
			continue
		}
		c.reset(int32(i))
		c.Active = true
		c.EnemyType = t
		c.X, c.Y = x, y
		c.PrevX, c.PrevY = x, y
		c.PlatformIdx = platformIdx
		if platformIdx >= 0 {
			c.Loco = Grounded
		} else {
			c.Loco = Airborne
		}
		c.beginMaterialize(w.cfg.MaterializeTk, quick)
		w.minds[i-MaxHumans] = newMind(w, t)
		return c
	}
	return nil
}

// killCharacter handles any death: egg drop, scoring, slot/respawn handling.
// killer is the winning slot for joust kills, -1 otherwise.
func (w *World) killCharacter(c *Character, lava bool, killer int32) {
	if !c.alive() {
		return
	}
	c.Dead = true
	c.HitLava = lava
	c.VX, c.VY = 0, 0
	if c.Loco == Grabbed {
		w.hand.release()
	}
	c.Loco = Airborne
	c.PlatformIdx = -1

	w.idleTimer = 0

	// Raptors leave no egg; everything else drops one carrying the next
	// tier up (humans always drop the weakest).
	if c.EnemyType != EnemyRaptor {
		w.spawnEgg(c.X, c.Y, c.EnemyType.upgraded())
	}

	if killer >= 0 && killer < MaxHumans {
		k := &w.chars[killer]
		if k.alive() && k.isHuman() && c.EnemyType != EnemyNone {
			w.addScore(k, w.cfg.KillPoints[c.EnemyType])
		}
	}

	if c.isHuman() {
		c.DiedThisWave = true
		if c.Lives > 0 {
			c.Lives--
		}
		c.RespawnTimer = w.cfg.RespawnTicks
		w.checkGameOver()
		return
	}

	// Enemies never respawn: free the slot and destroy its mind.
	w.minds[c.Slot-MaxHumans] = mind{Kind: EnemyNone}
	c.reset(c.Slot)
}

func (w *World) addScore(c *Character, pts int32) {
	if pts <= 0 || !c.isHuman() {
		return
	}
	c.Score += pts
	for w.cfg.ExtraLifeEvery > 0 && c.Score >= c.NextLife {
		c.Lives++
		c.NextLife += w.cfg.ExtraLifeEvery
	}
}

// tickRespawns revives dead humans whose countdown elapsed and who still have
// a life to spend.
func (w *World) tickRespawns() {
	for i := 0; i < MaxHumans; i++ {
		c := &w.chars[i]
		if !c.Active || !c.Dead {
			continue
		}
		if c.RespawnTimer > 0 {
			c.RespawnTimer--
		}
		if c.RespawnTimer == 0 && c.Lives > 0 {
			w.spawnHuman(int32(i))
		}
	}
}

func (w *World) checkGameOver() {
	sawHuman := false
	for i := 0; i < MaxHumans; i++ {
		c := &w.chars[i]
		if !c.Active {
			continue
		}
		sawHuman = true
		if !c.Dead || c.Lives > 0 {
			return
		}
	}
	if sawHuman {
		w.gameOver = true
	}
}
