package arena

// Wave orchestration. A wave runs Spawning (queue draining in timed groups),
// then Playing, then — once every ground enemy is dead and no egg still
// carries a mount — a fixed Transition countdown into the next wave.

// waveComposition fills the spawn queue with the wave's ground tiers and
// returns how many raptors enter immediately. The mix hardens with the wave
// number: early waves are all wanderers, trackers arrive from wave 2,
// stalkers from wave 4, raptors from wave 3.
func (w *World) waveComposition(n int32) (raptors int32) {
	total := 3 + n
	if total > SpawnQueueCap-4 {
		total = SpawnQueueCap - 4
	}
	stalkers := n - 3
	if stalkers < 0 {
		stalkers = 0
	}
	if stalkers > total/2 {
		stalkers = total / 2
	}
	trackers := n - 1
	if trackers < 0 {
		trackers = 0
	}
	if stalkers+trackers > total {
		trackers = total - stalkers
	}
	wanderers := total - stalkers - trackers

	w.spawnQueueLen = 0
	for i := int32(0); i < wanderers; i++ {
		w.enqueueSpawn(EnemyWanderer)
	}
	for i := int32(0); i < trackers; i++ {
		w.enqueueSpawn(EnemyTracker)
	}
	for i := int32(0); i < stalkers; i++ {
		w.enqueueSpawn(EnemyStalker)
	}

	raptors = n / 3
	if raptors > 2 {
		raptors = 2
	}
	return raptors
}

func (w *World) enqueueSpawn(t EnemyType) {
	if w.spawnQueueLen >= SpawnQueueCap {
		return
	}
	w.spawnQueue[w.spawnQueueLen] = t
	w.spawnQueueLen++
}

// StartWave begins wave n: per-wave stats reset, the hand's one-time intro
// when the threshold wave arrives, a shuffled spawn queue, and any immediate
// raptor entries.
func (w *World) StartWave(n int32) {
	w.wave = n
	w.waveState = WaveSpawning
	w.spawnTimer = 0
	w.idleTimer = 0

	for i := 0; i < MaxHumans; i++ {
		c := &w.chars[i]
		c.EggsThisWave = 0
		c.DiedThisWave = false
	}

	if n >= w.cfg.HandActivationWave && !w.hand.IntroDone {
		w.beginHandIntro()
	}

	raptors := w.waveComposition(n)
	w.shuffleQueue()
	for i := int32(0); i < raptors; i++ {
		w.spawnRaptor()
	}
}

// shuffleQueue is a Fisher–Yates pass over the pending spawns using the
// shared stream.
func (w *World) shuffleQueue() {
	for i := w.spawnQueueLen - 1; i > 0; i-- {
		j := int32(w.rng.Intn(int(i + 1)))
		w.spawnQueue[i], w.spawnQueue[j] = w.spawnQueue[j], w.spawnQueue[i]
	}
}

func (w *World) stepWave() {
	if w.gameOver {
		return
	}

	// Hurry-up: too long without a kill, collection, or death forces a
	// raptor in (if none is already hunting).
	w.idleTimer++
	if w.idleTimer >= w.cfg.IdleHurryTk {
		w.idleTimer = 0
		if !w.raptorAlive() {
			w.spawnRaptor()
		}
	}

	switch w.waveState {
	case WaveSpawning:
		if w.spawnQueueLen == 0 {
			w.waveState = WavePlaying
			return
		}
		w.spawnTimer--
		if w.spawnTimer > 0 {
			return
		}
		w.spawnTimer = w.cfg.SpawnIntervalTk
		w.spawnGroup()

	case WavePlaying:
		if w.groundEnemiesAlive() || w.hatchPending() {
			return
		}
		w.completeWave()

	case WaveTransition:
		w.transitionTimer--
		if w.transitionTimer <= 0 {
			w.StartWave(w.wave + 1)
		}
	}
}

// spawnGroup dequeues up to the group size, placing each at a freshly
// shuffled spawn point.
func (w *World) spawnGroup() {
	pts := w.shuffledSpawnPoints()
	n := w.cfg.SpawnGroupSize
	if n > w.spawnQueueLen {
		n = w.spawnQueueLen
	}
	for i := int32(0); i < n; i++ {
		t := w.spawnQueue[i]
		sp := pts[int(i)%len(pts)]
		w.spawnEnemy(t, sp.X, sp.Y, sp.PlatformIdx, false)
	}
	copy(w.spawnQueue[:], w.spawnQueue[n:w.spawnQueueLen])
	w.spawnQueueLen -= n
	if w.spawnQueueLen == 0 {
		w.waveState = WavePlaying
	}
}

// shuffledSpawnPoints returns a fresh Fisher–Yates order of the roosts.
// Re-shuffled on every group so spawn placement never settles into a pattern.
func (w *World) shuffledSpawnPoints() []SpawnPoint {
	src := w.cfg.spawnPoints
	pts := make([]SpawnPoint, len(src))
	copy(pts, src)
	for i := len(pts) - 1; i > 0; i-- {
		j := w.rng.Intn(i + 1)
		pts[i], pts[j] = pts[j], pts[i]
	}
	return pts
}

func (w *World) groundEnemiesAlive() bool {
	for i := MaxHumans; i < MaxSlots; i++ {
		c := &w.chars[i]
		if c.alive() && c.EnemyType.groundTier() {
			return true
		}
	}
	return false
}

func (w *World) raptorAlive() bool {
	for i := MaxHumans; i < MaxSlots; i++ {
		c := &w.chars[i]
		if c.alive() && c.EnemyType == EnemyRaptor {
			return true
		}
	}
	return false
}

// completeWave pays the survival bonus, clears the board of enemies, and
// arms the transition countdown. Raptors are dismissed rather than deleted:
// they fly out on their own.
func (w *World) completeWave() {
	for i := 0; i < MaxHumans; i++ {
		c := &w.chars[i]
		if c.Active && !c.DiedThisWave {
			w.addScore(c, w.cfg.SurvivalBonus)
		}
	}
	for i := MaxHumans; i < MaxSlots; i++ {
		c := &w.chars[i]
		if c.Active && c.EnemyType.groundTier() {
			w.minds[i-MaxHumans] = mind{Kind: EnemyNone}
			c.reset(int32(i))
		}
	}
	w.dismissRaptors()
	w.waveState = WaveTransition
	w.transitionTimer = w.cfg.TransitionTk
}
