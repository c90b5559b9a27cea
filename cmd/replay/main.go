package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	persistlog "skyjoust.ai/internal/persistence/log"
	"skyjoust.ai/internal/persistence/snapshot"
	"skyjoust.ai/internal/sim/arena"
	"skyjoust.ai/internal/sim/tuning"
)

func main() {
	var (
		snapPath   = flag.String("snapshot", "", "path to .snap.zst")
		inputsDir  = flag.String("inputs", "", "inputs dir containing inputs-*.jsonl.zst (optional)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		toFrame    = flag.Int64("to_frame", 0, "stop at frame (inclusive, optional)")
	)
	flag.Parse()

	if *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot")
		os.Exit(2)
	}

	hdr, words, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("snapshot v%d match=%s frame=%d seed=%d mode=%s words=%d digest=%s\n",
		hdr.Version, hdr.MatchID, hdr.Frame, hdr.Seed, hdr.Mode, hdr.Words, hdr.Digest)

	tp := *tuningPath
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			tune = tuning.Default()
		} else {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
	}
	if hdr.TuningDigest != "" && hdr.TuningDigest != tune.Digest() {
		fmt.Fprintf(os.Stderr, "tuning digest mismatch: have=%s snap=%s\n", tune.Digest(), hdr.TuningDigest)
		os.Exit(1)
	}

	mode := arena.ModeTeam
	if hdr.Mode == "pvp" {
		mode = arena.ModePvP
	}
	w := arena.NewFromTuning(tune, hdr.Seed, mode)
	if err := w.Deserialize(words); err != nil {
		fmt.Fprintln(os.Stderr, "import snapshot:", err)
		os.Exit(1)
	}

	if got := digestOf(w); hdr.Digest != "" && got != hdr.Digest {
		fmt.Fprintf(os.Stderr, "snapshot digest mismatch: got=%s want=%s\n", got, hdr.Digest)
		os.Exit(1)
	}

	if *inputsDir == "" {
		fmt.Println("replay ok: snapshot verified (no inputs dir given)")
		return
	}

	startFrame := int64(w.Frame())
	var stepped, checked int64
	err = persistlog.ReadFrames(*inputsDir, func(e persistlog.FrameEntry) error {
		if e.Frame < startFrame {
			return nil
		}
		if *toFrame != 0 && e.Frame > *toFrame {
			return nil
		}
		if e.Frame != int64(w.Frame()) {
			return fmt.Errorf("frame mismatch: want=%d got=%d", w.Frame(), e.Frame)
		}
		if e.Digest != "" {
			checked++
			if got := digestOf(w); got != e.Digest {
				return fmt.Errorf("digest mismatch at frame %d: got=%s want=%s", e.Frame, got, e.Digest)
			}
		}
		var inputs [arena.MaxHumans]byte
		copy(inputs[:], e.Inputs[:])
		w.Step(inputs)
		stepped++
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	if stepped == 0 {
		fmt.Fprintln(os.Stderr, "no input entries found at or after frame", startFrame)
		os.Exit(1)
	}

	fmt.Printf("replay ok: stepped=%d frames, verified=%d digests (from frame=%d to frame=%d)\n",
		stepped, checked, startFrame, w.Frame())
}

func digestOf(w *arena.World) string {
	sum := w.Digest()
	return hex.EncodeToString(sum[:])
}
