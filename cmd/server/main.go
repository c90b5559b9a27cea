package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"skyjoust.ai/internal/persistence/indexdb"
	persistlog "skyjoust.ai/internal/persistence/log"
	"skyjoust.ai/internal/persistence/snapshot"
	"skyjoust.ai/internal/sim/tuning"
	"skyjoust.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		matchID    = flag.String("match", "", "match id (default: derived from time)")
		seed       = flag.Uint64("seed", 1337, "match seed (used only when starting fresh)")
		mode       = flag.String("mode", "team", "game mode: team or pvp")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite match index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to resume from (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "resume from the latest snapshot in the match dir if present (when -snapshot is empty)")

		snapshotEvery = flag.Int64("snapshot_every", 1800, "snapshot cadence in frames (0 disables)")
		digestEvery   = flag.Int64("digest_every", 60, "digest sample cadence in frames")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	gameMode, err := ws.ParseMode(*mode)
	if err != nil {
		logger.Fatalf("mode: %v", err)
	}

	id := strings.TrimSpace(*matchID)
	if id == "" {
		id = "m_" + time.Now().UTC().Format("20060102_150405")
	}
	matchDir := filepath.Join(*dataDir, "matches", id)
	_ = os.MkdirAll(matchDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Default()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "matches.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertTuning(tune); err != nil {
			logger.Printf("index: upsert tuning: %v", err)
		}
	}

	inputLog := persistlog.NewInputLogger(matchDir)
	eventLog := persistlog.NewEventLogger(matchDir)
	defer inputLog.Close()
	defer eventLog.Close()

	host := ws.NewHost(ws.HostConfig{
		MatchID:       id,
		Mode:          gameMode,
		Seed:          *seed,
		Tuning:        tune,
		SnapshotEvery: *snapshotEvery,
		DigestEvery:   *digestEvery,
	}, logger, ws.Sinks{
		Inputs:      inputLog,
		Events:      eventLog,
		Index:       idx,
		SnapshotDir: filepath.Join(matchDir, "snapshots"),
	})

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(matchDir)
	}
	if snapshotToLoad != "" {
		hdr, words, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if hdr.MatchID != "" && hdr.MatchID != id {
			logger.Fatalf("snapshot match id mismatch: flag=%s snap=%s", id, hdr.MatchID)
		}
		if hdr.TuningDigest != "" && hdr.TuningDigest != tune.Digest() {
			logger.Fatalf("snapshot tuning digest mismatch: have %s snap %s", tune.Digest(), hdr.TuningDigest)
		}
		if err := host.Resume(words); err != nil {
			logger.Fatalf("resume snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s frame=%d", filepath.Base(snapshotToLoad), hdr.Frame)
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := host.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("match stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		s := host.Stats()
		fmt.Fprintf(rw, "# HELP skyjoust_match_frame Current match frame.\n")
		fmt.Fprintf(rw, "# TYPE skyjoust_match_frame gauge\n")
		fmt.Fprintf(rw, "skyjoust_match_frame{match=%q} %d\n", id, s.Frame)

		fmt.Fprintf(rw, "# HELP skyjoust_match_wave Current wave number.\n")
		fmt.Fprintf(rw, "# TYPE skyjoust_match_wave gauge\n")
		fmt.Fprintf(rw, "skyjoust_match_wave{match=%q} %d\n", id, s.Wave)

		fmt.Fprintf(rw, "# HELP skyjoust_match_clients Connected client count.\n")
		fmt.Fprintf(rw, "# TYPE skyjoust_match_clients gauge\n")
		fmt.Fprintf(rw, "skyjoust_match_clients{match=%q} %d\n", id, s.Clients)

		fmt.Fprintf(rw, "# HELP skyjoust_match_over Whether the match has ended.\n")
		fmt.Fprintf(rw, "# TYPE skyjoust_match_over gauge\n")
		over := 0
		if s.Over {
			over = 1
		}
		fmt.Fprintf(rw, "skyjoust_match_over{match=%q} %d\n", id, over)
	})
	if envBool("SJ_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(host, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("match %s (%s) listening on %s", id, *mode, *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func latestSnapshot(matchDir string) string {
	dir := filepath.Join(matchDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestFrame int64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		frame, err := strconv.ParseInt(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || frame > bestFrame {
			bestFrame = frame
			best = filepath.Join(dir, name)
		}
	}
	return best
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
