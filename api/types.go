// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations, DTOs, and constants.

package api

// ChannelKind enumerates the framing used by a channel.
type ChannelKind int

const (
	KindUnknown ChannelKind = iota
	KindItem
	KindPacket
)

func (k ChannelKind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindPacket:
		return "packet"
	default:
		return "unknown"
	}
}

// ChannelStats is a point-in-time telemetry snapshot of one channel.
// Counters are read without a common lock and may be mutually skewed.
type ChannelStats struct {
	Kind      string `json:"kind"`
	Slots     int    `json:"slots"`
	ReadPos   uint32 `json:"read_pos"`
	WritePos  uint32 `json:"write_pos"`
	Pending   int64  `json:"pending"`
	Published uint64 `json:"published"`
	Dropped   uint64 `json:"dropped"`
	Consumed  uint64 `json:"consumed"`
	Wraps     uint64 `json:"wraps"`   // sentinels skipped by a packet consumer
	Spooled   int    `json:"spooled"` // items held in a producer spool
	Dropping  bool   `json:"dropping"`
}
