package snapshot

import (
	"path/filepath"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matches", "m1", Filename(720))

	words := make([]int32, 1025)
	words[0] = 720
	words[3] = -1
	words[1024] = 1 << 30

	hdr := Header{
		MatchID:      "m1",
		Frame:        720,
		Seed:         0xdead,
		Mode:         "team",
		TuningDigest: "abc",
		Digest:       "def",
	}
	if err := WriteSnapshot(path, hdr, words); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, back, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.MatchID != "m1" || got.Frame != 720 || got.Seed != 0xdead || got.Mode != "team" {
		t.Fatalf("header round trip: %+v", got)
	}
	if got.Words != len(words) {
		t.Fatalf("word count: got %d want %d", got.Words, len(words))
	}
	if len(back) != len(words) {
		t.Fatalf("buffer length: got %d want %d", len(back), len(words))
	}
	for i := range words {
		if back[i] != words[i] {
			t.Fatalf("word %d: got %d want %d", i, back[i], words[i])
		}
	}
}

func TestReadSnapshot_MissingFile(t *testing.T) {
	if _, _, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.snap.zst")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
