// internal/interview/engine.go
package interview

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"report-intake/internal/common/logger"
	"report-intake/internal/common/metrics"
	"report-intake/internal/extract"
	"report-intake/internal/schema"
)

// Response is what a conversation turn hands back to the presentation
// layer.
type Response struct {
	Completed     bool              `json:"completed"`
	Field         string            `json:"field,omitempty"`
	Question      string            `json:"question,omitempty"`
	HelpText      string            `json:"helpText,omitempty"`
	Collected     map[string]string `json:"collected"`
	PendingFields []string          `json:"pendingFields"`
	Messages      []string          `json:"messages"`
	Warnings      []string          `json:"warnings"`
	Errors        []string          `json:"errors"`
}

// Engine is the conversation state machine. It owns no state itself;
// callers load a ConversationState, pass it through, and persist it.
type Engine struct {
	registry   *schema.Registry
	classifier IntentClassifier
	logger     logger.Logger
}

func NewEngine(registry *schema.Registry, classifier IntentClassifier, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		registry:   registry,
		classifier: classifier,
		logger:     log.With(map[string]interface{}{"component": "interview"}),
	}
}

// Reset clears the session and returns the opening question.
func (e *Engine) Reset(state *ConversationState) *Response {
	state.Reset()
	resp := e.buildResponse(state)
	resp.Messages = append(resp.Messages, "Starting over with a clean report.")
	return resp
}

// SyncToNextQuestion moves the position to the first required field
// missing from the merged view. Idempotent; called before producing any
// response since uploads satisfy fields out of sequence.
func (e *Engine) SyncToNextQuestion(state *ConversationState) {
	sequence := e.registry.RequiredSequence()
	for i, field := range sequence {
		if !state.Has(field) {
			state.Position = i
			return
		}
	}
	state.Position = len(sequence)
}

// SubmitMessage processes one chat message: disengagement and general
// queries first, otherwise the text answers the currently pending
// field.
func (e *Engine) SubmitMessage(ctx context.Context, state *ConversationState, text string) *Response {
	text = strings.TrimSpace(text)

	switch e.classify(ctx, text) {
	case IntentDecline:
		metrics.InterviewTurns.WithLabelValues("decline").Inc()
		state.Reset()
		return &Response{
			Collected:     map[string]string{},
			PendingFields: []string{},
			Messages:      []string{"Understood, stopping here. Your progress has been cleared; say anything when you want to start again."},
		}
	case IntentGeneralQuery:
		metrics.InterviewTurns.WithLabelValues("general_query").Inc()
		resp := e.buildResponse(state)
		resp.Messages = append(resp.Messages, e.statusSummary(state))
		return resp
	}

	e.SyncToNextQuestion(state)
	sequence := e.registry.RequiredSequence()

	if state.Position >= len(sequence) {
		metrics.InterviewTurns.WithLabelValues("complete").Inc()
		resp := e.buildResponse(state)
		resp.Messages = append(resp.Messages, "All required fields are already collected. You can still upload more evidence.")
		return resp
	}

	field := sequence[state.Position]
	normalized, err := e.registry.Validate(field, text)
	if err != nil {
		metrics.InterviewTurns.WithLabelValues("validation_error").Inc()
		resp := e.buildResponse(state)
		resp.Errors = append(resp.Errors, err.Error())
		return resp
	}

	state.Answers[field] = normalized
	// The invariant is one home per field: a chat answer supersedes and
	// evicts any document-extracted value.
	delete(state.Extracted, field)

	metrics.InterviewTurns.WithLabelValues("answer").Inc()
	e.logger.Info("field answered", map[string]interface{}{
		"sessionId": state.SessionID,
		"field":     field,
	})

	resp := e.buildResponse(state)
	if def, ok := e.registry.Field(field); ok {
		resp.Messages = append(resp.Messages, fmt.Sprintf("Recorded %s.", def.Label))
	}
	if resp.Completed {
		resp.Messages = append(resp.Messages, "That was the last required field. The report data set is complete.")
	}
	return resp
}

// SubmitUpload merges an extraction result into the session. Every
// field update is re-validated as if typed in chat; invalid values are
// dropped with a warning instead of rejecting the whole upload.
func (e *Engine) SubmitUpload(ctx context.Context, state *ConversationState, er *extract.Result) *Response {
	_ = ctx

	if er.Digest != "" {
		if _, seen := state.IngestedFiles[er.Digest]; seen {
			metrics.InterviewTurns.WithLabelValues("duplicate_upload").Inc()
			resp := e.buildResponse(state)
			resp.Warnings = append(resp.Warnings, "this file was already ingested in this session, skipping it")
			return resp
		}
		state.IngestedFiles[er.Digest] = er.Metadata
	}

	resp := e.buildResponse(state)
	resp.Messages = append(resp.Messages, er.Messages...)
	resp.Warnings = append(resp.Warnings, er.Warnings...)

	// Deterministic merge order for stable responses.
	fields := make([]string, 0, len(er.FieldUpdates))
	for field := range er.FieldUpdates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		raw := er.FieldUpdates[field]
		def, ok := e.registry.Field(field)
		if !ok {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("extracted unknown field %q ignored", field))
			continue
		}

		if _, answered := state.Answers[field]; answered {
			// Chat answers are authoritative; the extracted value loses.
			continue
		}
		if _, present := state.Extracted[field]; present {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s was already extracted earlier, keeping the first value", def.Label))
			continue
		}

		normalized, err := e.registry.Validate(field, raw)
		if err != nil {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("extracted value for %s rejected: %s", def.Label, err.Error()))
			continue
		}
		if normalized == "" {
			continue
		}

		state.Extracted[field] = normalized
		resp.Messages = append(resp.Messages, fmt.Sprintf("Captured %s from the upload.", def.Label))
	}

	for section, rows := range er.TableUpdates {
		for _, row := range rows {
			cleaned := make(map[string]string, len(row))
			for col, cell := range row {
				if cell = strings.TrimSpace(cell); cell != "" {
					cleaned[col] = cell
				}
			}
			if len(cleaned) > 0 {
				state.Tables[section] = append(state.Tables[section], cleaned)
			}
		}
	}

	metrics.InterviewTurns.WithLabelValues("upload").Inc()

	// Uploads can complete the interview out of order.
	rebuilt := e.buildResponse(state)
	rebuilt.Messages = resp.Messages
	rebuilt.Warnings = resp.Warnings
	rebuilt.Errors = resp.Errors
	if rebuilt.Completed {
		rebuilt.Messages = append(rebuilt.Messages, "All required fields are now collected.")
	}
	return rebuilt
}

// buildResponse syncs position and renders the standard response shape.
func (e *Engine) buildResponse(state *ConversationState) *Response {
	e.SyncToNextQuestion(state)
	sequence := e.registry.RequiredSequence()

	resp := &Response{
		Collected:     state.Merged(),
		PendingFields: []string{},
		Messages:      []string{},
		Warnings:      []string{},
		Errors:        []string{},
	}

	for _, field := range sequence {
		if !state.Has(field) {
			resp.PendingFields = append(resp.PendingFields, field)
		}
	}

	if state.Position >= len(sequence) {
		resp.Completed = true
		return resp
	}

	field := sequence[state.Position]
	resp.Field = field
	if def, ok := e.registry.Field(field); ok {
		resp.Question = def.Question
		resp.HelpText = def.HelpText
	}
	return resp
}

func (e *Engine) statusSummary(state *ConversationState) string {
	sequence := e.registry.RequiredSequence()
	collected := 0
	for _, field := range sequence {
		if state.Has(field) {
			collected++
		}
	}

	rows := 0
	for _, table := range state.Tables {
		rows += len(table)
	}

	summary := fmt.Sprintf("I collect report data through questions and uploads (CSV, spreadsheets, documents, photos). So far %d of %d required fields are filled", collected, len(sequence))
	if rows > 0 {
		summary += fmt.Sprintf(" and %d table rows are captured", rows)
	}
	return summary + "."
}
