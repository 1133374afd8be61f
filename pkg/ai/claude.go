package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultClaudeBaseURL = "https://api.anthropic.com"
	anthropicVersion     = "2023-06-01"

	replyMaxTokens    = 300
	analysisMaxTokens = 500
	reportMaxTokens   = 800
)

const companionSystemPrompt = `당신은 '케어링크'의 AI 말벗입니다. 어르신과 따뜻하고 자연스러운 텍스트 채팅을 나눕니다.

- 존댓말 사용, 따뜻하고 친근한 말투, 천천히 쉬운 단어로
- 음성 통화가 아니므로 청각 관련 표현을 사용하지 마세요
- 대화 속에서 자연스럽게 기분, 식사, 약 복용, 수면, 외출, 통증, 외로움을 확인
- 의료 진단이나 처방은 절대 하지 않음
- 짧고 간결하게 (1~3문장), 이모지 최소 사용`

const analysisSystemPrompt = `대화 내용을 분석하여 JSON으로 응답하세요. 반드시 JSON만 출력하세요.`

// ClaudeClient calls the Anthropic Messages API.
type ClaudeClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClaudeClient constructs a client with the provided API key and model.
func NewClaudeClient(apiKey, model string) (*ClaudeClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("claude api key required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("claude model required")
	}
	return &ClaudeClient{
		apiKey:     apiKey,
		baseURL:    defaultClaudeBaseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// WithBaseURL overrides the API endpoint. Used by tests and proxies.
func (c *ClaudeClient) WithBaseURL(baseURL string) *ClaudeClient {
	baseURL = strings.TrimSpace(strings.TrimSuffix(baseURL, "/"))
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// Converse generates the companion's next reply.
func (c *ClaudeClient) Converse(ctx context.Context, seniorName string, transcript []Turn) (string, error) {
	system := companionSystemPrompt
	if strings.TrimSpace(seniorName) != "" {
		system = strings.ReplaceAll(system, "어르신", seniorName+" 어르신")
	}
	return c.complete(ctx, system, toAPIMessages(transcript), replyMaxTokens)
}

// Analyze asks the model for the structured session analysis and parses
// the response as untrusted JSON.
func (c *ClaudeClient) Analyze(ctx context.Context, transcript []Turn) (Analysis, error) {
	var sb strings.Builder
	for _, turn := range transcript {
		speaker := "AI"
		if turn.Role == "user" {
			speaker = "어르신"
		}
		sb.WriteString(speaker)
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	prompt := fmt.Sprintf(`다음 AI 말벗 대화를 분석해주세요:

%s

다음 JSON 형식으로 응답:
{
  "summary": "대화 요약 (2-3문장, 한국어)",
  "mood": "VERY_GOOD|GOOD|NEUTRAL|BAD|VERY_BAD",
  "concerns": ["주의사항1", "주의사항2"]
}`, strings.TrimSpace(sb.String()))
	text, err := c.complete(ctx, analysisSystemPrompt, []apiMessage{{Role: "user", Content: prompt}}, analysisMaxTokens)
	if err != nil {
		return Analysis{}, err
	}
	return ParseAnalysis(text)
}

// SummarizeWeek writes the weekly report prose from aggregated data.
func (c *ClaudeClient) SummarizeWeek(ctx context.Context, week WeekContext) (string, error) {
	raw, err := json.Marshal(week)
	if err != nil {
		return "", fmt.Errorf("marshal week context: %w", err)
	}
	prompt := fmt.Sprintf(`다음 데이터를 기반으로 어르신의 주간 건강 리포트를 작성해주세요.
보호자(자녀)가 읽을 내용이므로, 따뜻하되 핵심 정보가 명확해야 합니다.

데이터: %s

다음 형식으로 한국어 리포트를 작성하세요:
1. 종합 평가 (1문장)
2. 활동량 분석 (걸음수 트렌드)
3. 수면 분석
4. 정서 상태 (대화 기반)
5. 복약 이행률
6. 주의 필요 사항
7. 권장 사항`, raw)
	return c.complete(ctx, "", []apiMessage{{Role: "user", Content: prompt}}, reportMaxTokens)
}

func toAPIMessages(transcript []Turn) []apiMessage {
	msgs := make([]apiMessage, 0, len(transcript))
	for _, turn := range transcript {
		role := turn.Role
		if role != "assistant" {
			role = "user"
		}
		msgs = append(msgs, apiMessage{Role: role, Content: turn.Content})
	}
	return msgs
}

func (c *ClaudeClient) complete(ctx context.Context, system string, messages []apiMessage, maxTokens int) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("empty transcript")
	}
	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if strings.TrimSpace(system) != "" {
		reqBody.System = system
	}
	var resp messagesResponse
	if err := c.doJSON(ctx, c.baseURL+"/v1/messages", reqBody, &resp); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from claude")
	}
	return text, nil
}

func (c *ClaudeClient) doJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return fmt.Errorf("claude api error: %s", errResp.Error.Message)
		}
		return fmt.Errorf("claude api error: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
