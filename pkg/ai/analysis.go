package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

var validMoods = map[string]bool{
	"VERY_GOOD": true,
	"GOOD":      true,
	"NEUTRAL":   true,
	"BAD":       true,
	"VERY_BAD":  true,
}

// ParseAnalysis validates the model's free-text output as an Analysis.
// The model is expected, not guaranteed, to emit bare JSON; markdown
// code fences are tolerated, anything else is an error the caller must
// absorb with its fallback value.
func ParseAnalysis(text string) (Analysis, error) {
	cleaned := stripCodeFence(text)
	var parsed Analysis
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return Analysis{}, fmt.Errorf("parse analysis: %w", err)
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		parsed.Summary = "대화 요약을 생성하지 못했습니다."
	}
	if !validMoods[parsed.Mood] {
		parsed.Mood = "NEUTRAL"
	}
	if parsed.Concerns == nil {
		parsed.Concerns = []string{}
	}
	return parsed, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
