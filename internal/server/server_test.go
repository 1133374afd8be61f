package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"carelink/internal/app"
	"carelink/internal/authtoken"
	"carelink/pkg/ai"
	"carelink/pkg/store"
)

type stubOracle struct{}

func (stubOracle) Converse(context.Context, string, []ai.Turn) (string, error) {
	return "네, 알겠어요!", nil
}

func (stubOracle) Analyze(context.Context, []ai.Turn) (ai.Analysis, error) {
	return ai.Analysis{Summary: "평온함", Mood: "GOOD", Concerns: []string{}}, nil
}

func (stubOracle) SummarizeWeek(context.Context, ai.WeekContext) (string, error) {
	return "안정적인 한 주였습니다.", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	tokens, err := authtoken.NewManager(authtoken.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	application, err := app.New(app.Config{
		Store:  store.NewMemoryStore(),
		Oracle: stubOracle{},
		Tokens: tokens,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	ts := httptest.NewServer(New(Config{App: application}).Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func signup(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/signup", "", map[string]string{
		"email": email, "name": "김민지", "password": "secret123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &body)
	return body.Token
}

func registerSenior(t *testing.T, ts *httptest.Server, token string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/seniors", token, map[string]string{"name": "김영희"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register senior status = %d", resp.StatusCode)
	}
	var senior struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &senior)
	return senior.ID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	for _, url := range []string{
		ts.URL + "/api/users/me",
		ts.URL + "/api/seniors",
		ts.URL + "/api/notifications",
	} {
		resp, err := http.Get(url)
		if err != nil {
			t.Fatalf("get %s: %v", url, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", url, resp.StatusCode)
		}
	}
}

func TestSignupAndMe(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "child@example.com")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/users/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	var me struct {
		Email string `json:"email"`
	}
	decodeJSON(t, resp, &me)
	if me.Email != "child@example.com" {
		t.Fatalf("me email = %q", me.Email)
	}

	// duplicate signup conflicts
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/signup", "", map[string]string{
		"email": "child@example.com", "name": "다른 사람", "password": "secret123",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", resp.StatusCode)
	}
}

func TestConversationLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "child@example.com")
	seniorID := registerSenior(t, ts, token)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/conversations/start", "", map[string]string{"seniorId": seniorID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status = %d", resp.StatusCode)
	}
	var started struct {
		ConversationID string `json:"conversationId"`
		FirstMessage   string `json:"firstMessage"`
	}
	decodeJSON(t, resp, &started)
	if started.FirstMessage == "" {
		t.Fatal("greeting missing")
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/conversations/"+started.ConversationID+"/message", "", map[string]string{"content": "안녕"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("message status = %d", resp.StatusCode)
	}
	var reply struct {
		Reply string `json:"reply"`
	}
	decodeJSON(t, resp, &reply)
	if reply.Reply != "네, 알겠어요!" {
		t.Fatalf("reply = %q", reply.Reply)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/conversations/"+started.ConversationID+"/end", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	// posting after end conflicts
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/conversations/"+started.ConversationID+"/message", "", map[string]string{"content": "계세요?"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("post after end status = %d, want 409", resp.StatusCode)
	}

	// linked family reads the transcript
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/conversations/"+started.ConversationID+"/messages", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("messages status = %d", resp.StatusCode)
	}
	var transcript struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	decodeJSON(t, resp, &transcript)
	if len(transcript.Messages) != 3 {
		t.Fatalf("transcript length = %d, want 3", len(transcript.Messages))
	}
}

func TestDashboardForbiddenWithoutLink(t *testing.T) {
	ts := newTestServer(t)
	owner := signup(t, ts, "owner@example.com")
	stranger := signup(t, ts, "stranger@example.com")
	seniorID := registerSenior(t, ts, owner)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/dashboard/"+seniorID, stranger, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/dashboard/"+seniorID, owner, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var dashboard struct {
		Status     string `json:"status"`
		LastActive string `json:"lastActive"`
	}
	decodeJSON(t, resp, &dashboard)
	if dashboard.Status != "normal" {
		t.Fatalf("status = %q, want normal", dashboard.Status)
	}
}

func TestDeviceDataAndReportFlow(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "child@example.com")
	seniorID := registerSenior(t, ts, token)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/health/device-data", "", map[string]any{
		"seniorId": seniorID, "steps": 4200,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("device-data status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/reports/generate/"+seniorID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status = %d", resp.StatusCode)
	}
	var report struct {
		ID            string `json:"id"`
		OverallStatus string `json:"overallStatus"`
	}
	decodeJSON(t, resp, &report)
	if report.OverallStatus != "NORMAL" {
		t.Fatalf("overallStatus = %q", report.OverallStatus)
	}

	// regeneration returns the same report
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/reports/generate/"+seniorID, token, nil)
	var again struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &again)
	if again.ID != report.ID {
		t.Fatalf("regenerated report id = %q, want %q", again.ID, report.ID)
	}
}

func TestSosFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "child@example.com")
	seniorID := registerSenior(t, ts, token)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sos", "", map[string]any{
		"seniorId": seniorID, "type": "FALL", "latitude": 37.5665, "longitude": 126.978,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("trigger status = %d", resp.StatusCode)
	}
	var event struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &event)

	// the linked family member got a notification
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/notifications", token, nil)
	var page struct {
		UnreadCount int `json:"unreadCount"`
	}
	decodeJSON(t, resp, &page)
	if page.UnreadCount != 1 {
		t.Fatalf("unreadCount = %d, want 1", page.UnreadCount)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/sos/"+event.ID+"/resolve", token, map[string]string{"note": "확인 완료"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/sos/"+event.ID+"/resolve", token, map[string]string{"note": "다시"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second resolve status = %d, want 409", resp.StatusCode)
	}
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "child@example.com")
	seniorID := registerSenior(t, ts, token)

	tests := []struct {
		name   string
		method string
		url    string
		token  string
		body   any
		want   int
	}{
		{"unknown senior", http.MethodPost, ts.URL + "/api/conversations/start", "", map[string]string{"seniorId": "missing"}, http.StatusNotFound},
		{"negative steps", http.MethodPost, ts.URL + "/api/health/device-data", "", map[string]any{"seniorId": seniorID, "steps": -5}, http.StatusBadRequest},
		{"bad schedule time", http.MethodPost, ts.URL + "/api/medications/alerts", token, map[string]any{"seniorId": seniorID, "name": "혈압약", "scheduleTime": "8am"}, http.StatusBadRequest},
		{"bogus invite code", http.MethodPost, ts.URL + "/api/seniors/link", token, map[string]string{"inviteCode": "nope"}, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, tc.method, tc.url, tc.token, tc.body)
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestMedicationFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "child@example.com")
	seniorID := registerSenior(t, ts, token)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/medications/alerts", token, map[string]any{
		"seniorId": seniorID, "name": "혈압약", "scheduleTime": "08:00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create alert status = %d", resp.StatusCode)
	}
	var alert struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &alert)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/medications/log", "", map[string]string{"alertId": alert.ID, "status": "TAKEN"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("log status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/medications/%s/alerts", ts.URL, seniorID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list alerts status = %d", resp.StatusCode)
	}
	var list struct {
		Alerts []struct {
			ID string `json:"id"`
		} `json:"alerts"`
	}
	decodeJSON(t, resp, &list)
	if len(list.Alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(list.Alerts))
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/medications/alerts/"+alert.ID, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deactivate status = %d", resp.StatusCode)
	}
}
