// Package encoding packs snapshot word buffers for storage and transport.
// Snapshots are mostly zeros (empty slots serialize as zero blocks), so a
// zero-run + zigzag varint pass shrinks them well before any general
// compressor sees them.
package encoding

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// PackWords encodes words as a varint stream: a zero word is emitted as
// (0, run_len), any other word as its zigzag varint.
func PackWords(words []int32) []byte {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(words) {
		if words[i] == 0 {
			run := 1
			for j := i + 1; j < len(words) && words[j] == 0; j++ {
				run++
			}
			n := binary.PutUvarint(tmp[:], 0)
			buf.Write(tmp[:n])
			n = binary.PutUvarint(tmp[:], uint64(run))
			buf.Write(tmp[:n])
			i += run
			continue
		}
		n := binary.PutUvarint(tmp[:], zigzag(words[i]))
		buf.Write(tmp[:n])
		i++
	}
	return buf.Bytes()
}

// UnpackWords reverses PackWords. want is the expected word count; a stream
// decoding to any other length is corrupt.
func UnpackWords(raw []byte, want int) ([]int32, error) {
	out := make([]int32, 0, want)
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at byte %d", i)
		}
		i += n
		if v == 0 {
			run, n := binary.Uvarint(raw[i:])
			if n <= 0 {
				return nil, fmt.Errorf("bad run length at byte %d", i)
			}
			i += n
			if len(out)+int(run) > want {
				return nil, fmt.Errorf("zero run overflows %d words", want)
			}
			for k := uint64(0); k < run; k++ {
				out = append(out, 0)
			}
			continue
		}
		if len(out) >= want {
			return nil, fmt.Errorf("stream longer than %d words", want)
		}
		out = append(out, unzigzag(v))
	}
	if len(out) != want {
		return nil, fmt.Errorf("decoded %d words, want %d", len(out), want)
	}
	return out, nil
}

func zigzag(v int32) uint64 {
	return uint64(uint32((v << 1) ^ (v >> 31)))
}

func unzigzag(u uint64) int32 {
	x := uint32(u)
	return int32((x >> 1) ^ -(x & 1))
}
