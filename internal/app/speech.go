package app

import (
	"context"
	"fmt"
	"strings"
)

// Speak synthesizes Korean speech for the companion's reply text and
// returns mp3 bytes.
func (a *App) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	if a.speech == nil {
		return nil, fmt.Errorf("speech synthesis not configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text required", ErrInvalidInput)
	}
	audio, err := a.speech.Speak(ctx, text, voice)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return audio, nil
}
