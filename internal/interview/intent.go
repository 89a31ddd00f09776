// internal/interview/intent.go
package interview

import (
	"context"
	"strings"

	"report-intake/internal/common/genai"
)

// Intent is the engine's reading of a chat message.
type Intent string

const (
	IntentAnswer       Intent = "answer"
	IntentDecline      Intent = "decline"
	IntentGeneralQuery Intent = "general_query"
)

// IntentClassifier is the optional remote enrichment. The engine must
// behave correctly with it absent or failing.
type IntentClassifier interface {
	ParseIntent(ctx context.Context, message string) (*genai.IntentResult, error)
}

// remoteConfidenceFloor gates how sure the remote classifier must be
// before its verdict overrides the deterministic rules.
const remoteConfidenceFloor = 0.75

// exactCommands reset the conversation when the whole message is one of
// these words.
var exactCommands = map[string]bool{
	"cancel": true, "stop": true, "quit": true, "exit": true,
	"abort": true, "reset": true, "no": true, "nevermind": true,
	"never mind": true, "no thanks": true,
}

// negationPrefixes disengage when the message starts with one.
var negationPrefixes = []string{
	"no ", "don't", "do not", "not now", "stop ", "i don't want",
}

// negationPhrases disengage when embedded anywhere in the message.
var negationPhrases = []string{
	"not interested", "maybe later", "forget it", "leave me alone",
	"some other time",
}

// generalQueryPhrases short-circuit to a status/capability reply
// without touching field state.
var generalQueryPhrases = []string{
	"what can you do", "what do you do", "help", "capabilities",
	"status", "progress", "summary", "what's left", "whats left",
	"remaining", "how far", "where are we",
}

// classifyRules is the deterministic intent detector.
func classifyRules(message string) Intent {
	lower := strings.ToLower(strings.TrimSpace(message))

	if exactCommands[lower] {
		return IntentDecline
	}
	for _, prefix := range negationPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return IntentDecline
		}
	}
	for _, phrase := range negationPhrases {
		if strings.Contains(lower, phrase) {
			return IntentDecline
		}
	}
	for _, phrase := range generalQueryPhrases {
		if lower == phrase || strings.HasPrefix(lower, phrase+" ") || strings.HasPrefix(lower, phrase+"?") {
			return IntentGeneralQuery
		}
	}
	return IntentAnswer
}

// classify applies the rules and, when they see a plain answer, lets a
// confident remote classification refine the verdict. Any classifier
// failure falls back to the rule result.
func (e *Engine) classify(ctx context.Context, message string) Intent {
	intent := classifyRules(message)
	if intent != IntentAnswer || e.classifier == nil {
		return intent
	}

	result, err := e.classifier.ParseIntent(ctx, message)
	if err != nil {
		e.logger.WithError(err).Warn("intent classifier unavailable, using rule-based result", map[string]interface{}{
			"fallback": string(intent),
		})
		return intent
	}

	if result.Confidence < remoteConfidenceFloor {
		return intent
	}
	switch result.Intent {
	case "decline":
		return IntentDecline
	case "general_query":
		return IntentGeneralQuery
	}
	return intent
}
