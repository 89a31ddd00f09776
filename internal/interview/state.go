// Package interview drives the guided data-collection conversation:
// one ordered question per missing required field, with document
// uploads filling fields and tables out of order.
package interview

import "time"

// ConversationState is one user session's progress. It is loaded at
// the start of a request, mutated in place, and persisted at the end;
// concurrent requests for the same session are last-write-wins.
type ConversationState struct {
	SessionID string `json:"sessionId"`
	// Position indexes into the ordered required-field sequence.
	Position int `json:"position"`
	// Answers holds values entered directly in chat. They always win
	// over Extracted in the merged view.
	Answers map[string]string `json:"answers"`
	// Extracted holds values recovered from uploaded documents.
	Extracted map[string]string `json:"extracted"`
	// IngestedFiles maps content digests to extraction metadata, for
	// duplicate detection across the session.
	IngestedFiles map[string]map[string]interface{} `json:"ingestedFiles"`
	// Tables accumulates extracted section rows across uploads.
	Tables map[string][]map[string]string `json:"tables"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewState creates a fresh session state.
func NewState(sessionID string) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		SessionID:     sessionID,
		Answers:       make(map[string]string),
		Extracted:     make(map[string]string),
		IngestedFiles: make(map[string]map[string]interface{}),
		Tables:        make(map[string][]map[string]string),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Reset clears all collected data and returns to the first question.
func (s *ConversationState) Reset() {
	s.Position = 0
	s.Answers = make(map[string]string)
	s.Extracted = make(map[string]string)
	s.IngestedFiles = make(map[string]map[string]interface{})
	s.Tables = make(map[string][]map[string]string)
	s.UpdatedAt = time.Now().UTC()
}

// Merged returns the display view of collected fields: explicit chat
// answers override document-extracted values.
func (s *ConversationState) Merged() map[string]string {
	merged := make(map[string]string, len(s.Answers)+len(s.Extracted))
	for k, v := range s.Extracted {
		merged[k] = v
	}
	for k, v := range s.Answers {
		merged[k] = v
	}
	return merged
}

// Has reports whether a field is present in the merged view.
func (s *ConversationState) Has(field string) bool {
	if _, ok := s.Answers[field]; ok {
		return true
	}
	_, ok := s.Extracted[field]
	return ok
}
