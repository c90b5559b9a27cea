// Package protocol defines the JSON wire messages and the per-tick input byte.
// The input byte is the only thing a client contributes to the simulation;
// everything else flows server to client.
package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeInput   = "INPUT"
	TypeState   = "STATE"
	TypeError   = "ERROR"
)

// Input byte bits. These mirror the simulation's input encoding exactly; the
// transport forwards the byte untouched.
const (
	InputLeft       = 1 << 0
	InputRight      = 1 << 1
	InputFlap       = 1 << 2
	InputDisconnect = 1 << 7
)

// InputMask strips bits the wire does not accept from clients. The disconnect
// bit is set by the server when a session drops, never by the client.
const InputMask = InputLeft | InputRight | InputFlap

// BaseMessage routes unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
