package protocol

import "encoding/json"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	PlayerName      string            `json:"player_name"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	MatchID         string `json:"match_id"`
	Slot            int    `json:"slot"`
	Mode            string `json:"mode"` // "team" or "pvp"
	Seed            uint64 `json:"seed"`
	TickRateHz      int    `json:"tick_rate_hz"`
	Frame           int64  `json:"frame"` // frame the client joins at
	TuningDigest    string `json:"tuning_digest"`
}

// INPUT (client -> server): the held input bits for one tick. Frame is
// advisory; the server applies the latest byte it holds when the tick fires.
type InputMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Frame           int64  `json:"frame"`
	Input           int    `json:"input"`
}

// STATE (server -> client): one tick's render state plus the state digest.
// Render carries the arena's render tree verbatim; the protocol layer never
// looks inside it.
type StateMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Frame           int64           `json:"frame"`
	Digest          string          `json:"digest,omitempty"`
	Render          json.RawMessage `json:"render"`
}

// ERROR (server -> client) before closing a rejected session.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
