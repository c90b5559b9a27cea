package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"skyjoust.ai/internal/sim/encoding"
)

// Header is the uncompressed-once-decoded first line of a snapshot file.
// It carries enough context to resume or replay the match without
// decoding the word buffer.
type Header struct {
	Version      int    `json:"version"`
	MatchID      string `json:"match_id"`
	Frame        int64  `json:"frame"`
	Seed         uint64 `json:"seed"`
	Mode         string `json:"mode"`
	TuningDigest string `json:"tuning_digest"`
	Digest       string `json:"digest"`
	Words        int    `json:"words"`
}

const headerVersion = 1

// Filename returns the canonical snapshot file name for a frame.
func Filename(frame int64) string {
	return fmt.Sprintf("%012d.snap.zst", frame)
}

// WriteSnapshot writes a header line followed by the packed word buffer,
// zstd-compressed, creating parent directories as needed.
func WriteSnapshot(path string, hdr Header, words []int32) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 64*1024)
	defer bw.Flush()

	hdr.Version = headerVersion
	hdr.Words = len(words)
	hb, _ := json.Marshal(hdr)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if _, err := bw.Write(encoding.PackWords(words)); err != nil {
		return err
	}
	return nil
}

// ReadSnapshot reads a snapshot file back into a header and word buffer.
func ReadSnapshot(path string) (Header, []int32, error) {
	var hdr Header
	f, err := os.Open(path)
	if err != nil {
		return hdr, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return hdr, nil, fmt.Errorf("snapshot header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, nil, fmt.Errorf("snapshot header: %w", err)
	}
	if hdr.Version != headerVersion {
		return hdr, nil, fmt.Errorf("snapshot version %d unsupported", hdr.Version)
	}
	if hdr.Words <= 0 {
		return hdr, nil, fmt.Errorf("snapshot header: bad word count %d", hdr.Words)
	}

	raw, err := io.ReadAll(br)
	if err != nil {
		return hdr, nil, err
	}
	words, err := encoding.UnpackWords(raw, hdr.Words)
	if err != nil {
		return hdr, nil, err
	}
	return hdr, words, nil
}
