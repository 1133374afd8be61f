package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTTSBaseURL = "https://api.openai.com"
	defaultVoice      = "nova"
	defaultTTSModel   = "tts-1"

	// MaxInputChars caps the synthesized text length.
	MaxInputChars = 1000
)

// Synthesizer converts text into mp3 audio. Treated as an opaque
// external capability; failures surface to the caller.
type Synthesizer interface {
	Speak(ctx context.Context, text, voice string) ([]byte, error)
}

// OpenAIClient calls an OpenAI-compatible speech endpoint.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIClient constructs a speech client with the provided API key.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("tts api key required")
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    defaultTTSBaseURL,
		model:      defaultTTSModel,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// WithBaseURL overrides the API endpoint. Used by tests and proxies.
func (c *OpenAIClient) WithBaseURL(baseURL string) *OpenAIClient {
	baseURL = strings.TrimSpace(strings.TrimSuffix(baseURL, "/"))
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// Speak synthesizes the text and returns mp3 bytes.
func (c *OpenAIClient) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text required")
	}
	runes := []rune(text)
	if len(runes) > MaxInputChars {
		text = string(runes[:MaxInputChars])
	}
	if strings.TrimSpace(voice) == "" {
		voice = defaultVoice
	}
	body, err := json.Marshal(speechRequest{
		Model:          c.model,
		Voice:          voice,
		Input:          text,
		ResponseFormat: "mp3",
		Speed:          0.95,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return nil, fmt.Errorf("tts api error: %s", errResp.Error.Message)
		}
		return nil, fmt.Errorf("tts api error: %s", resp.Status)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio from tts")
	}
	return audio, nil
}

type speechRequest struct {
	Model          string  `json:"model"`
	Voice          string  `json:"voice"`
	Input          string  `json:"input"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed"`
}
