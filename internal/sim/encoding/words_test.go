package encoding

import "testing"

func TestPackWordsRoundTrip(t *testing.T) {
	cases := [][]int32{
		{},
		{0, 0, 0, 0},
		{1, -1, 2147483647, -2147483648},
		{0, 5, 0, 0, 0, -7, 0},
		make([]int32, 1025),
	}
	for _, in := range cases {
		got, err := UnpackWords(PackWords(in), len(in))
		if err != nil {
			t.Fatalf("unpack: %v", err)
		}
		for i := range in {
			if got[i] != in[i] {
				t.Fatalf("word %d = %d, want %d", i, got[i], in[i])
			}
		}
	}
}

func TestUnpackWords_RejectsWrongLength(t *testing.T) {
	raw := PackWords([]int32{1, 2, 3})
	if _, err := UnpackWords(raw, 4); err == nil {
		t.Fatal("short stream accepted")
	}
	if _, err := UnpackWords(raw, 2); err == nil {
		t.Fatal("long stream accepted")
	}
}

func TestUnpackWords_RejectsOverflowingRun(t *testing.T) {
	raw := PackWords(make([]int32, 10))
	if _, err := UnpackWords(raw, 5); err == nil {
		t.Fatal("oversized zero run accepted")
	}
}
