package arena

import "skyjoust.ai/internal/sim/fixed"

// Platform is an immutable axis-aligned rectangle in fixed point. Characters
// stand on Top, bump their heads on Bottom.
type Platform struct {
	ID     int32
	Left   int32
	Right  int32
	Top    int32
	Bottom int32
}

func (p Platform) centerX() int32 { return (p.Left + p.Right) / 2 }
func (p Platform) centerY() int32 { return (p.Top + p.Bottom) / 2 }

// PlatformSet is a versioned, immutable platform layout. The world stores only
// indices into the active set; restoring a reference from an index is a pure
// lookup validated against the set's current bounds.
type PlatformSet struct {
	Platforms []Platform
}

// At returns the platform at idx, or false when idx is outside the set.
// Stored indices MUST go through here: the active set can shrink meaning at
// runtime (hand intro), so a stale index degrades to "no platform".
func (s *PlatformSet) At(idx int32) (Platform, bool) {
	if idx < 0 || int(idx) >= len(s.Platforms) {
		return Platform{}, false
	}
	return s.Platforms[idx], true
}

func (s *PlatformSet) Len() int { return len(s.Platforms) }

// SpawnPoint is a standing position on a platform.
type SpawnPoint struct {
	X, Y        int32
	PlatformIdx int32
}

func plat(id int32, left, right, top, bottom float64) Platform {
	return Platform{
		ID:     id,
		Left:   fixed.FromFloat(left),
		Right:  fixed.FromFloat(right),
		Top:    fixed.FromFloat(top),
		Bottom: fixed.FromFloat(bottom),
	}
}

// buildPlatformSets constructs the full and reduced layouts. Both sets have
// the same platform count and identifiers so stored indices stay meaningful
// across the one-way swap; the reduced set only shrinks the spawn pillars.
func buildPlatformSets() (full, reduced PlatformSet) {
	base := []Platform{
		plat(0, 100, 220, 40, 28),  // bottom center (human spawn)
		plat(1, 0, 56, 56, 44),     // bottom left ledge
		plat(2, 264, 320, 56, 44),  // bottom right ledge
		plat(3, 40, 104, 120, 108), // mid left
		plat(4, 216, 280, 120, 108),
		plat(5, 130, 190, 180, 168), // top center
		plat(6, 8, 44, 150, 138),    // spawn pillar left
		plat(7, 276, 312, 150, 138), // spawn pillar right
	}
	full = PlatformSet{Platforms: base}

	shrunk := make([]Platform, len(base))
	copy(shrunk, base)
	shrunk[6] = plat(6, 18, 34, 150, 138)
	shrunk[7] = plat(7, 286, 302, 150, 138)
	reduced = PlatformSet{Platforms: shrunk}
	return full, reduced
}

// platforms returns the active set. The swap is one-way: platformsDestroyed
// is asserted never to revert.
func (w *World) platforms() *PlatformSet {
	if w.hand.PlatformsDestroyed {
		return &w.cfg.reducedPlatforms
	}
	return &w.cfg.fullPlatforms
}

// standY is the Y a character centered at halfH stands at on p.
func standY(p Platform, halfH int32) int32 { return p.Top + halfH }

// buildSpawnPoints lists enemy materialization points, one per roost.
func buildSpawnPoints(full *PlatformSet, halfH int32) []SpawnPoint {
	roosts := []int32{5, 3, 4, 0, 6, 7}
	pts := make([]SpawnPoint, 0, len(roosts))
	for _, idx := range roosts {
		p := full.Platforms[idx]
		pts = append(pts, SpawnPoint{
			X:           p.centerX(),
			Y:           standY(p, halfH),
			PlatformIdx: idx,
		})
	}
	return pts
}
