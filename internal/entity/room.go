package entity

import "time"

// RoomBinding pairs a short shareable code with a session. SessionID is a
// weak reference: the session may be evicted while the room still exists.
type RoomBinding struct {
	Code              string    `json:"code"`
	Kind              Kind      `json:"kind"`
	SessionID         string    `json:"session_id"`
	SecondPartyJoined bool      `json:"second_party_joined"`
	CreatedAt         time.Time `json:"created_at"`
}
