package model

import "time"

// Improvement is a suggested rewrite of one answer
type Improvement struct {
	QuestionID string `json:"questionId" bson:"questionId"`
	Before     string `json:"before" bson:"before"`
	After      string `json:"after" bson:"after"`
	Rationale  string `json:"rationale" bson:"rationale"`
}

// ReviewRecord is the normalized whole-form review; every field is always populated
type ReviewRecord struct {
	Locale                 Locale              `json:"locale" bson:"locale"`
	ModuleID               string              `json:"moduleId" bson:"moduleId"`
	OverallRating          int                 `json:"overallRating" bson:"overallRating"`
	ScoreBreakdown         map[string]int      `json:"scoreBreakdown" bson:"scoreBreakdown"`
	SummaryText            string              `json:"summaryText" bson:"summaryText"`
	Findings               []string            `json:"findings" bson:"findings"`
	MissingEvidence        []string            `json:"missingEvidence" bson:"missingEvidence"`
	PerQuestionImprovement []Improvement       `json:"perQuestionImprovement" bson:"perQuestionImprovement"`
	PerQuestionScore       map[string]int      `json:"perQuestionScore" bson:"perQuestionScore"`
	NextSteps              map[Locale][]string `json:"nextSteps" bson:"nextSteps"`
	Disclaimer             map[Locale]string   `json:"disclaimer" bson:"disclaimer"`
}

// StoredReview is a review persisted for a session
type StoredReview struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	SessionID   string       `json:"sessionId" bson:"sessionId"`
	Review      ReviewRecord `json:"review" bson:"review"`
	Warnings    []string     `json:"warnings,omitempty" bson:"warnings,omitempty"`
	Mock        bool         `json:"mock" bson:"mock"` // Generated without a configured AI key
	GeneratedAt time.Time    `json:"generatedAt" bson:"generatedAt"`
}

// ReviewFragment is per-question guidance returned by the generation service
type ReviewFragment struct {
	ImprovedAnswer string   `json:"improvedAnswer"`
	Rationale      string   `json:"rationale"`
	Tips           []string `json:"tips"`
	Score          int      `json:"score"`
	Raw            string   `json:"raw,omitempty"`   // Verbatim text when the response was not JSON
	Error          string   `json:"error,omitempty"` // Locale placeholder when the call failed
}
