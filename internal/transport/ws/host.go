package ws

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"skyjoust.ai/internal/persistence/indexdb"
	persistlog "skyjoust.ai/internal/persistence/log"
	"skyjoust.ai/internal/persistence/snapshot"
	"skyjoust.ai/internal/protocol"
	"skyjoust.ai/internal/sim/arena"
	"skyjoust.ai/internal/sim/fixed"
	"skyjoust.ai/internal/sim/tuning"
)

var (
	ErrMatchFull = errors.New("match full")
	ErrMatchOver = errors.New("match over")
)

// Sinks are the persistence outputs a host writes to. Any of them may be
// nil; the host simply skips that output.
type Sinks struct {
	Inputs *persistlog.InputLogger
	Events *persistlog.EventLogger
	Index  *indexdb.SQLiteIndex

	// SnapshotDir receives periodic state snapshots when SnapshotEvery > 0.
	SnapshotDir string
}

type HostConfig struct {
	MatchID string
	Mode    arena.GameMode
	Seed    uint64
	Tuning  tuning.Tuning

	// SnapshotEvery is the snapshot cadence in frames; 0 disables snapshots.
	SnapshotEvery int64
	// DigestEvery is how often a digest is sampled into the input log.
	DigestEvery int64
}

type client struct {
	name string
	out  chan []byte
}

// Host owns one match: the arena world, the connected clients, and the
// 60 Hz step loop. All world access goes through the host mutex; the loop
// holds it only for the duration of one frame.
type Host struct {
	cfg          HostConfig
	log          *log.Logger
	sinks        Sinks
	tuningDigest string

	mu      sync.Mutex
	world   *arena.World
	clients [arena.MaxHumans]*client
	held    [arena.MaxHumans]byte
	parting [arena.MaxHumans]bool
	started bool
	over    bool
}

func NewHost(cfg HostConfig, logger *log.Logger, sinks Sinks) *Host {
	if cfg.DigestEvery <= 0 {
		cfg.DigestEvery = fixed.TickRate
	}
	h := &Host{
		cfg:          cfg,
		log:          logger,
		sinks:        sinks,
		tuningDigest: cfg.Tuning.Digest(),
		world:        arena.NewFromTuning(cfg.Tuning, cfg.Seed, cfg.Mode),
	}
	if sinks.Index != nil {
		sinks.Index.RecordMatch(indexdb.MatchRow{
			MatchID:      cfg.MatchID,
			Mode:         modeString(cfg.Mode),
			Seed:         cfg.Seed,
			TuningDigest: h.tuningDigest,
		})
	}
	return h
}

// Resume replaces the world state with a serialized buffer, used when the
// server restarts mid-match. The digest of the resumed state must match the
// snapshot header's; the caller verifies that.
func (h *Host) Resume(words []int32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.world.Deserialize(words); err != nil {
		return err
	}
	h.started = true
	return nil
}

// Stats is a point-in-time metrics view of the match.
type Stats struct {
	Frame   int64
	Wave    int32
	Clients int
	Over    bool
}

func (h *Host) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Stats{
		Frame: int64(h.world.Frame()),
		Wave:  h.world.Wave(),
		Over:  h.over || h.world.GameOver(),
	}
	for _, c := range h.clients {
		if c != nil {
			s.Clients++
		}
	}
	return s
}

// Join claims a free slot and activates a bird for it. The first join starts
// wave 1. Messages for the client are sent on out with non-blocking sends.
func (h *Host) Join(name string, out chan []byte) (protocol.WelcomeMsg, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.over || h.world.GameOver() {
		return protocol.WelcomeMsg{}, ErrMatchOver
	}
	slot := -1
	for i := 0; i < arena.MaxHumans; i++ {
		if h.clients[i] == nil && !h.parting[i] {
			slot = i
			break
		}
	}
	if slot < 0 {
		return protocol.WelcomeMsg{}, ErrMatchFull
	}

	h.clients[slot] = &client{name: name, out: out}
	h.held[slot] = 0
	h.world.ActivateHuman(slot, slot)
	if !h.started {
		h.started = true
		h.world.StartWave(1)
	}
	h.logEvent(persistlog.MatchEvent{
		Frame: int64(h.world.Frame()), Event: "join", Slot: slot, Player: name,
	})
	h.log.Printf("join match=%s slot=%d player=%q", h.cfg.MatchID, slot, name)

	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		MatchID:         h.cfg.MatchID,
		Slot:            slot,
		Mode:            modeString(h.cfg.Mode),
		Seed:            h.cfg.Seed,
		TickRateHz:      fixed.TickRate,
		Frame:           int64(h.world.Frame()),
		TuningDigest:    h.tuningDigest,
	}, nil
}

// Input records the latest held input byte for a slot. Reserved bits are
// masked off; only the server sets the disconnect bit.
func (h *Host) Input(slot int, input byte) {
	if slot < 0 || slot >= arena.MaxHumans {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[slot] == nil {
		return
	}
	h.held[slot] = input & protocol.InputMask
}

// Leave marks a slot as departing. The disconnect bit is injected on the
// next frame so the sim drops any carried egg deterministically, then the
// slot frees up.
func (h *Host) Leave(slot int) {
	if slot < 0 || slot >= arena.MaxHumans {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.clients[slot]
	if c == nil {
		return
	}
	h.clients[slot] = nil
	h.parting[slot] = true
	h.logEvent(persistlog.MatchEvent{
		Frame: int64(h.world.Frame()), Event: "leave", Slot: slot, Player: c.name,
	})
	h.log.Printf("leave match=%s slot=%d player=%q", h.cfg.MatchID, slot, c.name)
}

// Run drives the match at the simulation tick rate until the context is
// cancelled or the match reaches game over.
func (h *Host) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / fixed.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			h.finishLocked("shutdown")
			h.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			if done := h.step(); done {
				return nil
			}
		}
	}
}

func (h *Host) step() (done bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started || h.over {
		return h.over
	}

	var inputs [arena.MaxHumans]byte
	for i := 0; i < arena.MaxHumans; i++ {
		inputs[i] = h.held[i]
		if h.parting[i] {
			inputs[i] = arena.InputDisconnect
		}
	}

	frame := int64(h.world.Frame())
	entry := persistlog.FrameEntry{Frame: frame, Inputs: inputs}
	sampleDigest := frame%h.cfg.DigestEvery == 0
	if sampleDigest {
		entry.Digest = h.digestLocked()
	}
	if h.sinks.Inputs != nil {
		if err := h.sinks.Inputs.WriteFrame(entry); err != nil {
			h.log.Printf("input log: %v", err)
		}
	}

	// Step honors the disconnect bit itself, so the slot is free once the
	// frame has run.
	h.world.Step(inputs)

	for i := 0; i < arena.MaxHumans; i++ {
		if h.parting[i] {
			h.parting[i] = false
			h.held[i] = 0
		}
	}

	h.broadcastLocked(sampleDigest)

	after := int64(h.world.Frame())
	if h.cfg.SnapshotEvery > 0 && after%h.cfg.SnapshotEvery == 0 {
		h.writeSnapshotLocked()
	}

	if h.world.GameOver() {
		h.finishLocked("game_over")
		return true
	}
	return false
}

func (h *Host) broadcastLocked(withDigest bool) {
	render, err := json.Marshal(h.world.RenderState())
	if err != nil {
		h.log.Printf("render marshal: %v", err)
		return
	}
	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Frame:           int64(h.world.Frame()),
		Render:          render,
	}
	if withDigest {
		msg.Digest = h.digestLocked()
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, c := range h.clients {
		if c == nil {
			continue
		}
		select {
		case c.out <- b:
		default:
			// Slow client: drop the frame, the next one supersedes it.
		}
	}
}

func (h *Host) writeSnapshotLocked() {
	if h.sinks.SnapshotDir == "" {
		return
	}
	frame := int64(h.world.Frame())
	digest := h.digestLocked()
	path := filepath.Join(h.sinks.SnapshotDir, snapshot.Filename(frame))
	hdr := snapshot.Header{
		MatchID:      h.cfg.MatchID,
		Frame:        frame,
		Seed:         h.cfg.Seed,
		Mode:         modeString(h.cfg.Mode),
		TuningDigest: h.tuningDigest,
		Digest:       digest,
	}
	if err := snapshot.WriteSnapshot(path, hdr, h.world.Serialize()); err != nil {
		h.log.Printf("snapshot: %v", err)
		return
	}
	if h.sinks.Index != nil {
		h.sinks.Index.RecordSnapshot(indexdb.SnapshotRow{
			MatchID: h.cfg.MatchID,
			Frame:   frame,
			Path:    path,
			Wave:    h.world.Wave(),
			Digest:  digest,
		})
	}
}

func (h *Host) finishLocked(reason string) {
	if h.over {
		return
	}
	h.over = true

	h.writeSnapshotLocked()

	var scores [4]int32
	for i := 0; i < arena.MaxHumans; i++ {
		if c := h.world.Human(i); c != nil {
			scores[i] = c.Score
		}
	}
	if h.sinks.Index != nil && reason == "game_over" {
		h.sinks.Index.RecordResult(indexdb.ResultRow{
			MatchID:   h.cfg.MatchID,
			EndFrame:  int64(h.world.Frame()),
			FinalWave: h.world.Wave(),
			Scores:    scores,
		})
	}
	h.logEvent(persistlog.MatchEvent{
		Frame: int64(h.world.Frame()), Event: reason, Wave: h.world.Wave(),
	})
	h.log.Printf("match %s finished: reason=%s frame=%d wave=%d scores=%v",
		h.cfg.MatchID, reason, h.world.Frame(), h.world.Wave(), scores)
}

func (h *Host) logEvent(e persistlog.MatchEvent) {
	if h.sinks.Events == nil {
		return
	}
	if err := h.sinks.Events.WriteEvent(e); err != nil {
		h.log.Printf("event log: %v", err)
	}
}

func (h *Host) digestLocked() string {
	sum := h.world.Digest()
	return hex.EncodeToString(sum[:])
}

func modeString(m arena.GameMode) string {
	if m == arena.ModePvP {
		return "pvp"
	}
	return "team"
}

// ParseMode maps a mode flag value to a game mode.
func ParseMode(s string) (arena.GameMode, error) {
	switch s {
	case "team", "":
		return arena.ModeTeam, nil
	case "pvp":
		return arena.ModePvP, nil
	}
	return arena.ModeTeam, fmt.Errorf("unknown mode %q", s)
}
