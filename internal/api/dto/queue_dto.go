package dto

// QueueInteractionRequest carries the board context of a join or leave
// interaction; the acting member comes from the bearer token.
type QueueInteractionRequest struct {
	ChannelID int64 `json:"channel_id"`
	MessageID int64 `json:"message_id"`
}

// PeerResponse describes the matched counterpart.
type PeerResponse struct {
	ActorID     int64  `json:"actor_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// JoinResponse reports the join outcome.
type JoinResponse struct {
	Status string        `json:"status"`
	Peer   *PeerResponse `json:"peer,omitempty"`
}

// LeaveResponse reports a completed leave.
type LeaveResponse struct {
	Status string `json:"status"`
}

// BoardResponse is the rendered snapshot of a board's waiting lists.
type BoardResponse struct {
	ChannelID    int64    `json:"channel_id"`
	MessageID    int64    `json:"message_id"`
	Probationers []string `json:"probationers"`
	Officers     []string `json:"officers"`
}
