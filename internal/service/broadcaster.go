package service

import "formassist/internal/model"

// Message types pushed to session sockets
const (
	MsgGuidanceReady = "guidance_ready"
	MsgReviewReady   = "review_ready"
	MsgSessionReset  = "session_reset"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}

// GuidanceReady is the payload of MsgGuidanceReady
type GuidanceReady struct {
	QuestionID string                `json:"questionId"`
	Revision   int64                 `json:"revision"`
	Guidance   *model.ReviewFragment `json:"guidance"`
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToSession(string, string, interface{}) {}
func (nopBroadcaster) DisconnectSession(string)                       {}
