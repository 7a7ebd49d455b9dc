package model

// ExportFormat selects the shape of an exported session
type ExportFormat string

const (
	ExportJSON       ExportFormat = "json"
	ExportTranscript ExportFormat = "transcript"
)

// Extension returns the file extension for the format
func (f ExportFormat) Extension() string {
	if f == ExportTranscript {
		return "md"
	}
	return "json"
}

// ExportAnswer is one question in a structured export
type ExportAnswer struct {
	QuestionID   string      `json:"questionId"`
	Type         string      `json:"type"`
	Question     string      `json:"question"`
	Visible      bool        `json:"visible"`
	Value        AnswerValue `json:"value"`
	Rating       int         `json:"rating"`
	Length       int         `json:"length"`
	EvidenceFile string      `json:"evidenceFile,omitempty"`
}

// ExportDocument is the structured, portable form of a session
type ExportDocument struct {
	ModuleID    string         `json:"moduleId"`
	ModuleTitle string         `json:"moduleTitle"`
	Locale      Locale         `json:"locale"`
	Answers     []ExportAnswer `json:"answers"`
	Review      *ReviewRecord  `json:"review,omitempty"`
}
