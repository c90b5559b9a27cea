package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

type JSONLZstdWriter struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// FrameEntry is one simulated frame's worth of inputs, written before the
// frame is stepped. Digest is filled only on frames where the simulation
// hash was sampled.
type FrameEntry struct {
	Frame  int64   `json:"frame"`
	Inputs [4]byte `json:"inputs"`
	Digest string  `json:"digest,omitempty"`
}

// InputLogger writes one JSONL entry per simulated frame (compressed).
// The stream is sufficient to replay a match from any snapshot.
type InputLogger struct{ w *JSONLZstdWriter }

func NewInputLogger(matchDir string) *InputLogger {
	return &InputLogger{w: NewJSONLZstdWriter(filepath.Join(matchDir, "inputs"), "inputs")}
}

func (l *InputLogger) WriteFrame(v FrameEntry) error { return l.w.Write(v) }
func (l *InputLogger) Close() error                  { return l.w.Close() }

// EventLogger writes match lifecycle JSONL entries (compressed).
type EventLogger struct{ w *JSONLZstdWriter }

type MatchEvent struct {
	Frame  int64  `json:"frame"`
	Event  string `json:"event"`
	Slot   int    `json:"slot,omitempty"`
	Player string `json:"player,omitempty"`
	Wave   int32  `json:"wave,omitempty"`
}

func NewEventLogger(matchDir string) *EventLogger {
	return &EventLogger{w: NewJSONLZstdWriter(filepath.Join(matchDir, "events"), "events")}
}

func (l *EventLogger) WriteEvent(v MatchEvent) error { return l.w.Write(v) }
func (l *EventLogger) Close() error                  { return l.w.Close() }

// ReadFrames streams every FrameEntry under dir in frame order, calling fn
// for each. Files are visited in name order; the hourly naming scheme sorts
// chronologically.
func ReadFrames(dir string, fn func(FrameEntry) error) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jsonl.zst"))
	if err != nil {
		return err
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := readFrameFile(p, fn); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func readFrameFile(path string, fn func(FrameEntry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e FrameEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return sc.Err()
}
