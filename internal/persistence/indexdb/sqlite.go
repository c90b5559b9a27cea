package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"skyjoust.ai/internal/sim/tuning"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqMatch reqKind = iota + 1
	reqSnapshot
	reqResult
)

type req struct {
	kind reqKind

	match    MatchRow
	snapshot SnapshotRow
	result   ResultRow
}

// MatchRow is recorded when a match is created and updated as players join.
type MatchRow struct {
	MatchID      string
	Mode         string
	Seed         uint64
	TuningDigest string
	StartedAt    string
}

// SnapshotRow indexes an on-disk snapshot file for resume/replay lookup.
type SnapshotRow struct {
	MatchID string
	Frame   int64
	Path    string
	Wave    int32
	Digest  string
}

// ResultRow is recorded once, when the match reaches game over.
type ResultRow struct {
	MatchID    string
	EndFrame   int64
	FinalWave  int32
	Scores     [4]int32
	RecordedAt string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Sized for a 60 Hz match writing one snapshot row every few seconds;
		// bursts drop rather than stall the sim loop.
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
			match_id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			seed INTEGER NOT NULL,
			tuning_digest TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			match_id TEXT NOT NULL,
			frame INTEGER NOT NULL,
			path TEXT NOT NULL,
			wave INTEGER NOT NULL,
			digest TEXT NOT NULL,
			PRIMARY KEY (match_id, frame)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_match_frame ON snapshots(match_id, frame DESC);`,
		`CREATE TABLE IF NOT EXISTS results (
			match_id TEXT PRIMARY KEY,
			end_frame INTEGER NOT NULL,
			final_wave INTEGER NOT NULL,
			scores_json TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) RecordMatch(r MatchRow) {
	if s == nil || s.closed.Load() {
		return
	}
	if r.StartedAt == "" {
		r.StartedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case s.ch <- req{kind: reqMatch, match: r}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
	}
}

func (s *SQLiteIndex) RecordSnapshot(r SnapshotRow) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
	}
}

func (s *SQLiteIndex) RecordResult(r ResultRow) {
	if s == nil || s.closed.Load() {
		return
	}
	if r.RecordedAt == "" {
		r.RecordedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case s.ch <- req{kind: reqResult, result: r}:
	default:
	}
}

// UpsertTuning stores the tuning values actually applied, keyed by digest,
// so an old snapshot can always be replayed against the config it ran with.
func (s *SQLiteIndex) UpsertTuning(tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	digest := tune.Digest()

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, "tuning:"+digest, string(b)); err != nil {
		return err
	}
	return tx.Commit()
}

// LatestSnapshot returns the newest indexed snapshot row for a match, or
// ok=false if none is recorded yet.
func (s *SQLiteIndex) LatestSnapshot(matchID string) (SnapshotRow, bool, error) {
	var r SnapshotRow
	row := s.db.QueryRow(
		`SELECT match_id, frame, path, wave, digest FROM snapshots WHERE match_id = ? ORDER BY frame DESC LIMIT 1`,
		matchID,
	)
	err := row.Scan(&r.MatchID, &r.Frame, &r.Path, &r.Wave, &r.Digest)
	if err == sql.ErrNoRows {
		return r, false, nil
	}
	if err != nil {
		return r, false, err
	}
	return r, true, nil
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertMatch, _ := s.db.Prepare(`INSERT OR REPLACE INTO matches(match_id,mode,seed,tuning_digest,started_at) VALUES(?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(match_id,frame,path,wave,digest) VALUES(?,?,?,?,?)`)
	insertResult, _ := s.db.Prepare(`INSERT OR REPLACE INTO results(match_id,end_frame,final_wave,scores_json,recorded_at) VALUES(?,?,?,?,?)`)
	defer func() {
		if insertMatch != nil {
			_ = insertMatch.Close()
		}
		if insertSnapshot != nil {
			_ = insertSnapshot.Close()
		}
		if insertResult != nil {
			_ = insertResult.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqMatch:
			m := r.match
			if insertMatch != nil {
				if _, err := tx.Stmt(insertMatch).Exec(
					m.MatchID,
					m.Mode,
					int64(m.Seed),
					m.TuningDigest,
					m.StartedAt,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqSnapshot:
			sn := r.snapshot
			if insertSnapshot != nil {
				if _, err := tx.Stmt(insertSnapshot).Exec(
					sn.MatchID,
					sn.Frame,
					sn.Path,
					sn.Wave,
					sn.Digest,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqResult:
			re := r.result
			scores, _ := json.Marshal(re.Scores)
			if insertResult != nil {
				if _, err := tx.Stmt(insertResult).Exec(
					re.MatchID,
					re.EndFrame,
					re.FinalWave,
					string(scores),
					re.RecordedAt,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}
