package entity

// Seat is what a session token resolves to on the server.
type Seat struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Kind      Kind   `json:"kind"`
	RoomCode  string `json:"room_code,omitempty"`
	Role      Role   `json:"role"`
}

func (that *Seat) InRoom() bool {
	return that.RoomCode != ""
}

func (that *Seat) IsHost() bool {
	return that.Role == HostRole(that.Kind)
}
