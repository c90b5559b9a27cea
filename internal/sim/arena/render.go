package arena

import "skyjoust.ai/internal/sim/fixed"

// Render state: the one view the presentation collaborators may read. All
// fixed-point values are converted to real units and all tick counters to
// seconds here, at the boundary — nothing in this file is ever read back by
// the simulation.

type RenderState struct {
	Frame     int32         `json:"frame"`
	Wave      int32         `json:"wave"`
	WaveState string        `json:"waveState"`
	GameOver  bool          `json:"gameOver"`
	Mode      string        `json:"mode"`
	IdleSecs  float64       `json:"idleSecs"`
	Humans    []RenderHuman `json:"humans"`
	Enemies   []RenderEnemy `json:"enemies"`
	Eggs      []RenderEgg   `json:"eggs"`
	Hand      RenderHand    `json:"hand"`
}

type RenderMount struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	VX            float64 `json:"vx"`
	VY            float64 `json:"vy"`
	Facing        int32   `json:"facing"`
	Grounded      bool    `json:"grounded"`
	Grabbed       bool    `json:"grabbed"`
	Turning       bool    `json:"turning"`
	Flapping      bool    `json:"flapping"`
	Stride        int32   `json:"stride"`
	Dead          bool    `json:"dead"`
	Materializing bool    `json:"materializing"`
	Invincible    bool    `json:"invincible"`
	HitLava       bool    `json:"hitLava"`
}

type RenderHuman struct {
	Slot        int32   `json:"slot"`
	Active      bool    `json:"active"`
	Palette     int32   `json:"palette"`
	Score       int32   `json:"score"`
	Lives       int32   `json:"lives"`
	EggsWave    int32   `json:"eggsThisWave"`
	RespawnSecs float64 `json:"respawnSecs"`
	RenderMount
}

type RenderEnemy struct {
	Slot    int32  `json:"slot"`
	Type    string `json:"type"`
	JawOpen bool   `json:"jawOpen,omitempty"`
	RenderMount
}

type RenderEgg struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	State     int32   `json:"state"`
	HatchSecs float64 `json:"hatchSecs"`
	Hatchling bool    `json:"hatchling"`
}

type RenderHand struct {
	Visible            bool    `json:"visible"`
	Phase              int32   `json:"phase"`
	X                  float64 `json:"x"`
	Y                  float64 `json:"y"`
	TargetSlot         int32   `json:"targetSlot"`
	PlatformsDestroyed bool    `json:"platformsDestroyed"`
}

func (s WaveState) String() string {
	switch s {
	case WaveSpawning:
		return "spawning"
	case WavePlaying:
		return "playing"
	default:
		return "transition"
	}
}

func (m GameMode) String() string {
	if m == ModePvP {
		return "pvp"
	}
	return "team"
}

func secs(ticks int32) float64 {
	return float64(ticks) / fixed.TickRate
}

func renderMount(c *Character) RenderMount {
	return RenderMount{
		X:             fixed.ToFloat(c.X),
		Y:             fixed.ToFloat(c.Y),
		VX:            fixed.ToFloat(c.VX),
		VY:            fixed.ToFloat(c.VY),
		Facing:        c.Facing,
		Grounded:      c.Loco == Grounded,
		Grabbed:       c.Loco == Grabbed,
		Turning:       c.Turning,
		Flapping:      c.Flapping,
		Stride:        c.Stride,
		Dead:          c.Dead,
		Materializing: c.Materializing,
		Invincible:    c.Invincible,
		HitLava:       c.HitLava,
	}
}

// RenderState builds the per-tick presentation tree. Produced at the end of
// every tick, game over included.
func (w *World) RenderState() *RenderState {
	rs := &RenderState{
		Frame:     w.frame,
		Wave:      w.wave,
		WaveState: w.waveState.String(),
		GameOver:  w.gameOver,
		Mode:      w.mode.String(),
		IdleSecs:  secs(w.idleTimer),
	}

	for i := 0; i < MaxHumans; i++ {
		c := &w.chars[i]
		if !c.Active {
			continue
		}
		rs.Humans = append(rs.Humans, RenderHuman{
			Slot:        c.Slot,
			Active:      true,
			Palette:     c.Palette,
			Score:       c.Score,
			Lives:       c.Lives,
			EggsWave:    c.EggsThisWave,
			RespawnSecs: secs(c.RespawnTimer),
			RenderMount: renderMount(c),
		})
	}

	for i := MaxHumans; i < MaxSlots; i++ {
		c := &w.chars[i]
		if !c.Active {
			continue
		}
		e := RenderEnemy{
			Slot:        c.Slot,
			Type:        c.EnemyType.String(),
			RenderMount: renderMount(c),
		}
		if c.EnemyType == EnemyRaptor {
			e.JawOpen = w.raptorJawOpen(c)
		}
		rs.Enemies = append(rs.Enemies, e)
	}

	for i := range w.eggs {
		g := &w.eggs[i]
		if !g.Active {
			continue
		}
		rs.Eggs = append(rs.Eggs, RenderEgg{
			X:         fixed.ToFloat(g.X),
			Y:         fixed.ToFloat(g.Y),
			State:     int32(g.State),
			HatchSecs: secs(g.HatchTk),
			Hatchling: g.State == EggHatchling,
		})
	}

	h := &w.hand
	rs.Hand = RenderHand{
		Visible:            h.Phase != HandIdle,
		Phase:              int32(h.Phase),
		X:                  fixed.ToFloat(h.X),
		Y:                  fixed.ToFloat(h.Y),
		TargetSlot:         h.TargetSlot,
		PlatformsDestroyed: h.PlatformsDestroyed,
	}
	return rs
}
