package model

import (
	"encoding/json"
	"time"
)

// Session is the persisted identity of one form-filling session
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	ModuleID  string    `json:"moduleId" bson:"moduleId"`
	Locale    Locale    `json:"locale" bson:"locale"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CreateSessionRequest is the body of POST /v1/sessions
type CreateSessionRequest struct {
	ModuleID string `json:"moduleId"`
	Lang     string `json:"lang"`
}

// CreateSessionResponse is returned after a session is created
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	ModuleID  string `json:"moduleId"`
	Locale    Locale `json:"locale"`
}

// SelectModuleRequest switches the module or locale of a session
type SelectModuleRequest struct {
	ModuleID string `json:"moduleId"`
	Lang     string `json:"lang"`
}

// SetAnswerRequest is the body of PATCH /v1/session/answers/{questionId}
type SetAnswerRequest struct {
	Property Property        `json:"property"`
	Value    json.RawMessage `json:"value"`
}

// SessionState is the full view of a live session
type SessionState struct {
	SessionID  string         `json:"sessionId"`
	ModuleID   string         `json:"moduleId"`
	Locale     Locale         `json:"locale"`
	Records    []AnswerRecord `json:"records"`
	VisibleIDs []string       `json:"visibleQuestionIds"`
}

// AnswerUpdate is returned after one answer mutation
type AnswerUpdate struct {
	Record     AnswerRecord `json:"record"`
	VisibleIDs []string     `json:"visibleQuestionIds"`
}
