package arena

import (
	"testing"

	"skyjoust.ai/internal/sim/fixed"
)

func TestEnemyTypeUpgrade(t *testing.T) {
	cases := []struct{ in, want EnemyType }{
		{EnemyNone, EnemyWanderer},
		{EnemyWanderer, EnemyTracker},
		{EnemyTracker, EnemyStalker},
		{EnemyStalker, EnemyStalker},
	}
	for _, c := range cases {
		if got := c.in.upgraded(); got != c.want {
			t.Errorf("upgraded(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestEggFallBounceThenStick(t *testing.T) {
	w := testWorld(1, ModeTeam)
	home := testCfg.fullPlatforms.Platforms[0]
	e := w.spawnEgg(home.centerX(), fixed.FromInt(120), EnemyTracker)
	if e == nil {
		t.Fatal("spawn failed with an empty pool")
	}

	for i := 0; i < 600 && e.State == EggFalling; i++ {
		w.stepEggs()
	}
	if e.State != EggOnPlatform {
		t.Fatalf("egg state = %v after the drop, want on-platform", e.State)
	}
	if e.Platform != 0 {
		t.Fatalf("egg stuck to platform %d, want 0", e.Platform)
	}
	if e.Y != home.Top+testCfg.EggHalf {
		t.Fatal("stuck egg not resting on the top surface")
	}
	// Falling from 120 units onto a 40-unit top is far beyond the stick
	// speed, so it must have bounced at least once on the way in.
	if e.Bounces == 0 {
		t.Fatal("hard landing did not bounce")
	}
}

func TestEggLavaDestroyed(t *testing.T) {
	w := testWorld(1, ModeTeam)
	// Over open lava between the left ledge and the mid-left platform span.
	e := w.spawnEgg(fixed.FromInt(70), fixed.FromInt(20), EnemyWanderer)
	for i := 0; i < 600 && e.Active; i++ {
		w.stepEggs()
	}
	if e.Active {
		t.Fatal("egg over open lava never died")
	}
	if !e.HitLava {
		t.Fatal("lava-destroyed egg not flagged")
	}
}

func TestEggCollection_MidairCatchBonus(t *testing.T) {
	w := testWorld(1, ModeTeam)
	home := testCfg.fullPlatforms.Platforms[0]

	// A still-falling egg pays the catch bonus even to a catcher standing
	// on a platform: the bonus follows the egg, not the collector.
	ground := &w.chars[0]
	ground.reset(0)
	ground.Active = true
	ground.Loco = Grounded
	ground.PlatformIdx = 0
	ground.X, ground.Y = home.centerX(), standY(home, testCfg.HalfH)

	falling := w.spawnEgg(ground.X, ground.Y, EnemyWanderer)
	if falling.Platform >= 0 {
		t.Fatal("fresh egg should still be in flight")
	}
	w.stepEggs()
	if got := ground.Score; got != testCfg.EggPickup+testCfg.EggAirBonus {
		t.Fatalf("falling-egg catch score = %d, want %d", got, testCfg.EggPickup+testCfg.EggAirBonus)
	}
	if ground.EggsThisWave != 1 {
		t.Fatalf("EggsThisWave = %d, want 1", ground.EggsThisWave)
	}

	// An egg already resting on a platform pays base points only, even
	// when the collector sweeps it up mid-flap.
	ground.Active = false
	air := &w.chars[1]
	air.reset(1)
	air.Active = true
	air.Loco = Airborne
	air.X, air.Y = home.centerX(), home.Top+testCfg.EggHalf

	rested := w.spawnEgg(air.X, air.Y, EnemyWanderer)
	rested.State = EggOnPlatform
	rested.Platform = 0
	rested.VX, rested.VY = 0, 0
	w.stepEggs()
	if got := air.Score; got != testCfg.EggPickup {
		t.Fatalf("rested-egg pickup score = %d, want %d", got, testCfg.EggPickup)
	}
}

func TestEggCollection_IgnoresMaterializingAndDead(t *testing.T) {
	w := testWorld(1, ModeTeam)
	c := &w.chars[0]
	c.reset(0)
	c.Active = true
	c.Materializing = true
	c.X, c.Y = fixed.FromInt(160), fixed.FromInt(150)

	e := w.spawnEgg(c.X, c.Y, EnemyWanderer)
	w.stepEggs()
	if !e.Active {
		t.Fatal("materializing human collected an egg")
	}
}

func TestEggHatchProgression(t *testing.T) {
	w := testWorld(1, ModeTeam)
	home := testCfg.fullPlatforms.Platforms[0]
	e := w.spawnEgg(home.centerX(), standY(home, testCfg.EggHalf)+fixed.FromInt(1), EnemyTracker)

	sawWobble := false
	var hatched *Character
	for i := 0; i < 60*20; i++ {
		w.stepEggs()
		if e.State == EggWobbling {
			sawWobble = true
		}
		if !e.Active {
			break
		}
	}
	if !sawWobble {
		t.Fatal("egg never wobbled")
	}
	if e.Active {
		t.Fatal("egg never finished hatching")
	}

	for i := MaxHumans; i < MaxSlots; i++ {
		if w.chars[i].Active {
			hatched = &w.chars[i]
		}
	}
	if hatched == nil {
		t.Fatal("hatchling spawned no mount")
	}
	if hatched.EnemyType != EnemyTracker {
		t.Fatalf("hatched type = %v, want the stored payload", hatched.EnemyType)
	}
	if hatched.Materializing {
		t.Fatal("hatched mount should skip the materialize window")
	}
	if hatched.PlatformIdx != 0 || hatched.Loco != Grounded {
		t.Fatal("hatched mount not standing on the platform beneath the egg")
	}
	if w.mindOf(hatched).Kind != EnemyTracker {
		t.Fatal("hatched mount has no mind")
	}
}

func TestEggPoolExhaustionDropsSilently(t *testing.T) {
	w := testWorld(1, ModeTeam)
	for i := 0; i < MaxEggs; i++ {
		if w.spawnEgg(fixed.FromInt(160), fixed.FromInt(100), EnemyWanderer) == nil {
			t.Fatalf("pool refused egg %d of %d", i, MaxEggs)
		}
	}
	if w.spawnEgg(fixed.FromInt(160), fixed.FromInt(100), EnemyWanderer) != nil {
		t.Fatal("pool over capacity")
	}
}
