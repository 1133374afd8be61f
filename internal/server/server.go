package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"carelink/internal/app"
	"carelink/internal/ratelimit"
	"carelink/internal/util"
	"carelink/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App

	// PublicLimiter, when set, throttles the unauthenticated demo and
	// speech endpoints per client IP.
	PublicLimiter  *ratelimit.FixedWindowLimiter
	TrustedProxies *util.TrustedProxies
}

// Server exposes the HTTP API.
type Server struct {
	app     *app.App
	limiter *ratelimit.FixedWindowLimiter
	proxies *util.TrustedProxies
	mux     *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:     cfg.App,
		limiter: cfg.PublicLimiter,
		proxies: cfg.TrustedProxies,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.Handle("/api/users/me", s.withFamily(s.handleMe))

	s.mux.Handle("/api/seniors", s.withFamily(s.handleSeniors))
	s.mux.Handle("/api/seniors/link", s.withFamily(s.handleLinkSenior))
	s.mux.Handle("/api/seniors/", s.withFamily(s.handleSeniorByID))

	// senior-device endpoints, no family session
	s.mux.HandleFunc("/api/conversations/start", s.handleStartConversation)
	s.mux.Handle("/api/conversations/senior/", s.withFamily(s.handleConversationsBySenior))
	s.mux.HandleFunc("/api/conversations/", s.handleConversationByID)

	s.mux.HandleFunc("/api/health/device-data", s.handleDeviceData)
	s.mux.Handle("/api/health/", s.withFamily(s.handleHealthReads))

	s.mux.Handle("/api/medications/alerts", s.withFamily(s.handleCreateMedicationAlert))
	s.mux.Handle("/api/medications/alerts/", s.withFamily(s.handleMedicationAlertByID))
	s.mux.HandleFunc("/api/medications/log", s.handleMedicationLog)
	s.mux.Handle("/api/medications/", s.withFamily(s.handleMedicationAlertsBySenior))

	s.mux.HandleFunc("/api/sos", s.handleTriggerSos)
	s.mux.Handle("/api/sos/senior/", s.withFamily(s.handleSosBySenior))
	s.mux.Handle("/api/sos/", s.withFamily(s.handleResolveSos))

	s.mux.Handle("/api/reports/generate/", s.withFamily(s.handleGenerateReport))
	s.mux.Handle("/api/reports/", s.withFamily(s.handleReports))

	s.mux.Handle("/api/dashboard/", s.withFamily(s.handleDashboard))

	s.mux.Handle("/api/notifications", s.withFamily(s.handleNotifications))
	s.mux.Handle("/api/notifications/read-all", s.withFamily(s.handleReadAllNotifications))
	s.mux.Handle("/api/notifications/", s.withFamily(s.handleNotificationByID))

	s.mux.HandleFunc("/api/demo/chat", s.handleDemoChat)
	s.mux.HandleFunc("/api/tts", s.handleSpeak)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type familyHandler func(http.ResponseWriter, *http.Request, string)

// withFamily authenticates the family session token and passes the
// member ID to the handler.
func (s *Server) withFamily(next familyHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		familyID, err := s.app.Tokens().VerifySubject(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, familyID)
	})
}

// --- auth ---

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	member, token, err := s.app.Signup(req.Email, req.Name, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": member, "token": token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	member, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": member, "token": token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	member, err := s.app.Me(familyID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// --- seniors ---

func (s *Server) handleSeniors(w http.ResponseWriter, r *http.Request, familyID string) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name        string     `json:"name"`
			BirthDate   *time.Time `json:"birthDate"`
			Gender      string     `json:"gender"`
			Phone       string     `json:"phone"`
			ProfileNote string     `json:"profileNote"`
			Role        string     `json:"role"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		senior, err := s.app.RegisterSenior(familyID, app.SeniorInput{
			Name:        req.Name,
			BirthDate:   req.BirthDate,
			Gender:      req.Gender,
			Phone:       req.Phone,
			ProfileNote: req.ProfileNote,
			Role:        req.Role,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, senior)
	case http.MethodGet:
		seniors, err := s.app.ListMySeniors(familyID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"seniors": seniors})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleLinkSenior(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		InviteCode string `json:"inviteCode"`
		Role       string `json:"role"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	senior, err := s.app.LinkSenior(familyID, req.InviteCode, req.Role)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, senior)
}

func (s *Server) handleSeniorByID(w http.ResponseWriter, r *http.Request, familyID string) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/seniors/")
	seniorID, sub, _ := strings.Cut(rest, "/")
	if seniorID == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch {
	case sub == "" && r.Method == http.MethodGet:
		senior, err := s.app.GetSeniorDetail(familyID, seniorID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, senior)
	case sub == "note" && r.Method == http.MethodPatch:
		var req struct {
			ProfileNote string `json:"profileNote"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		senior, err := s.app.UpdateSeniorNote(familyID, seniorID, req.ProfileNote)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, senior)
	default:
		methodNotAllowed(w)
	}
}

// --- conversations ---

func (s *Server) handleStartConversation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		SeniorID string `json:"seniorId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.app.StartConversation(r.Context(), req.SeniorID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleConversationByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
	conversationID, sub, _ := strings.Cut(rest, "/")
	if conversationID == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch {
	case sub == "message" && r.Method == http.MethodPost:
		var req struct {
			Content string `json:"content"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		reply, err := s.app.PostMessage(r.Context(), conversationID, req.Content)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
	case sub == "end" && r.Method == http.MethodPost:
		result, err := s.app.EndConversation(r.Context(), conversationID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	case sub == "messages" && r.Method == http.MethodGet:
		s.withFamily(func(w http.ResponseWriter, r *http.Request, familyID string) {
			messages, err := s.app.ListConversationMessages(familyID, conversationID)
			if err != nil {
				writeAppError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
		}).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleConversationsBySenior(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	seniorID := strings.TrimPrefix(r.URL.Path, "/api/conversations/senior/")
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)
	conversations, err := s.app.ListConversations(familyID, seniorID, limit, offset)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

// --- health ---

func (s *Server) handleDeviceData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		SeniorID      string   `json:"seniorId"`
		Steps         int      `json:"steps"`
		SleepHours    *float64 `json:"sleepHours"`
		ActiveMinutes *int     `json:"activeMinutes"`
		ScreenTime    *int     `json:"screenTime"`
		AppUsageCount *int     `json:"appUsageCount"`
		BatteryLevel  *int     `json:"batteryLevel"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sample, err := s.app.SubmitDeviceSample(r.Context(), req.SeniorID, app.DeviceSampleInput{
		Steps:         req.Steps,
		SleepHours:    req.SleepHours,
		ActiveMinutes: req.ActiveMinutes,
		ScreenTime:    req.ScreenTime,
		AppUsageCount: req.AppUsageCount,
		BatteryLevel:  req.BatteryLevel,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sample)
}

func (s *Server) handleHealthReads(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/health/")
	seniorID, sub, _ := strings.Cut(rest, "/")
	switch sub {
	case "today":
		bundle, err := s.app.GetTodayHealth(familyID, seniorID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bundle)
	case "weekly":
		weekly, err := s.app.GetWeeklyHealth(familyID, seniorID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, weekly)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// --- medication ---

func (s *Server) handleCreateMedicationAlert(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		SeniorID     string   `json:"seniorId"`
		Name         string   `json:"name"`
		Dosage       string   `json:"dosage"`
		ScheduleTime string   `json:"scheduleTime"`
		Days         []string `json:"days"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	alert, err := s.app.CreateMedicationAlert(familyID, req.SeniorID, app.MedicationAlertInput{
		Name:         req.Name,
		Dosage:       req.Dosage,
		ScheduleTime: req.ScheduleTime,
		Days:         req.Days,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleMedicationAlertByID(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	alertID := strings.TrimPrefix(r.URL.Path, "/api/medications/alerts/")
	if err := s.app.DeactivateMedicationAlert(familyID, alertID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (s *Server) handleMedicationAlertsBySenior(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/medications/")
	seniorID, sub, _ := strings.Cut(rest, "/")
	if sub != "alerts" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	alerts, err := s.app.ListMedicationAlerts(familyID, seniorID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (s *Server) handleMedicationLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		AlertID string `json:"alertId"`
		Status  string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	logEntry, err := s.app.LogMedication(r.Context(), req.AlertID, domain.MedicationStatus(req.Status))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, logEntry)
}

// --- sos ---

func (s *Server) handleTriggerSos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		SeniorID  string   `json:"seniorId"`
		Type      string   `json:"type"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	event, err := s.app.TriggerSos(r.Context(), req.SeniorID, domain.SosType(req.Type), req.Latitude, req.Longitude)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleResolveSos(w http.ResponseWriter, r *http.Request, familyID string) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sos/")
	sosID, sub, _ := strings.Cut(rest, "/")
	if sub != "resolve" || r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	event, err := s.app.ResolveSos(familyID, sosID, req.Note)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleSosBySenior(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	seniorID := strings.TrimPrefix(r.URL.Path, "/api/sos/senior/")
	events, err := s.app.ListSosEvents(familyID, seniorID, queryInt(r, "limit", 20))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// --- reports ---

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	seniorID := strings.TrimPrefix(r.URL.Path, "/api/reports/generate/")
	if _, err := s.app.GetSeniorDetail(familyID, seniorID); err != nil {
		writeAppError(w, err)
		return
	}
	report, err := s.app.GenerateReport(r.Context(), seniorID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	seniorID, sub, _ := strings.Cut(rest, "/")
	switch sub {
	case "":
		reports, err := s.app.ListReports(familyID, seniorID, queryInt(r, "limit", 12))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
	case "latest":
		report, err := s.app.LatestReport(familyID, seniorID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// --- dashboard ---

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	seniorID := strings.TrimPrefix(r.URL.Path, "/api/dashboard/")
	dashboard, err := s.app.GetDashboard(r.Context(), familyID, seniorID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// --- notifications ---

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	page, err := s.app.ListMyNotifications(familyID, unreadOnly, queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleReadAllNotifications(w http.ResponseWriter, r *http.Request, familyID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.app.MarkAllNotificationsRead(familyID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotificationByID(w http.ResponseWriter, r *http.Request, familyID string) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/notifications/")
	notificationID, sub, _ := strings.Cut(rest, "/")
	if sub != "read" || r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.app.MarkNotificationRead(familyID, notificationID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- demo & tts ---

func (s *Server) handleDemoChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowPublic(w, r) {
		return
	}
	var req struct {
		Message    string `json:"message"`
		SeniorName string `json:"seniorName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sessionID := strings.TrimSpace(r.Header.Get("X-Demo-Session"))
	reply, err := s.app.DemoChat(r.Context(), sessionID, req.SeniorName, req.Message)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowPublic(w, r) {
		return
	}
	var req struct {
		Text  string `json:"text"`
		Voice string `json:"voice"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	audio, err := s.app.Speak(r.Context(), req.Text, req.Voice)
	if err != nil {
		writeAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

// --- helpers ---

// allowPublic enforces the per-IP quota on unauthenticated endpoints.
func (s *Server) allowPublic(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	if !s.limiter.Allow(util.ClientIP(r, s.proxies)) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeAppError maps the application error taxonomy to HTTP status codes.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrSeniorNotFound),
		errors.Is(err, app.ErrConversationNotFound),
		errors.Is(err, app.ErrAlertNotFound),
		errors.Is(err, app.ErrSosNotFound),
		errors.Is(err, app.ErrNotificationNotFound),
		errors.Is(err, app.ErrReportNotFound),
		errors.Is(err, app.ErrFamilyNotFound),
		errors.Is(err, app.ErrInviteCodeInvalid):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrConversationEnded),
		errors.Is(err, app.ErrSosResolved),
		errors.Is(err, app.ErrAlreadyLinked),
		errors.Is(err, app.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrNotLinked):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
