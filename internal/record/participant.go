package record

// Participant identifies one connection in a session.
type Participant struct {
	UserID       string `json:"user_id"`
	ConnectionID string `json:"connection_id"`
	DisplayName  string `json:"display_name"`
}

// Is reports whether p and o are the same connection.
// A nil participant never matches.
func (p *Participant) Is(o *Participant) bool {
	if p == nil || o == nil {
		return false
	}
	return p.ConnectionID == o.ConnectionID
}

// UpdateInfo describes the origin of a record change.
type UpdateInfo struct {
	Sender Participant
	// SentServerTime is the sender's server time in seconds when the change
	// was issued. Valid only when HasSentTime is true.
	SentServerTime float64
	HasSentTime    bool
}
