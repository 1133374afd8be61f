package ai

import "context"

// Turn is one entry of a conversation transcript handed to the oracle.
// Role is "user" for the senior and "assistant" for the companion.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Analysis is the structured result of a transcript analysis. Mood uses
// the VERY_BAD..VERY_GOOD scale; callers substitute their own fallback
// when the oracle call fails.
type Analysis struct {
	Summary  string   `json:"summary"`
	Mood     string   `json:"mood"`
	Concerns []string `json:"concerns"`
}

// ConversationDigest summarizes one ended session for weekly reporting.
type ConversationDigest struct {
	Summary  string   `json:"summary"`
	Mood     string   `json:"mood"`
	Concerns []string `json:"concerns"`
}

// DayMetrics is one day of device data for weekly reporting.
type DayMetrics struct {
	Date       string   `json:"date"`
	Steps      int      `json:"steps"`
	SleepHours *float64 `json:"sleepHours,omitempty"`
}

// WeekContext carries the aggregated inputs for the weekly summary prose.
type WeekContext struct {
	Conversations  []ConversationDigest `json:"conversations"`
	Days           []DayMetrics         `json:"deviceData"`
	MedicationRate *float64             `json:"medicationRate"`
}

// Oracle is the external text-generation and analysis capability. All
// methods may fail or return malformed output; callers own the
// documented fallbacks.
type Oracle interface {
	// Converse returns the companion's next reply given the transcript
	// in chronological order, ending with the senior's newest message.
	Converse(ctx context.Context, seniorName string, transcript []Turn) (string, error)
	// Analyze extracts a structured summary from a full transcript.
	Analyze(ctx context.Context, transcript []Turn) (Analysis, error)
	// SummarizeWeek writes the weekly report prose.
	SummarizeWeek(ctx context.Context, week WeekContext) (string, error)
}
