package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"carelink/internal/demo"
	"carelink/internal/util"
	"carelink/pkg/ai"
)

const demoDefaultName = "체험자"

// DemoReply is one demo chat exchange.
type DemoReply struct {
	SessionID string `json:"sessionId"`
	Response  string `json:"response"`
}

// DemoChat runs one stateless demo exchange. Session history lives in
// the Redis cache with a sliding TTL; nothing touches the database.
func (a *App) DemoChat(ctx context.Context, sessionID, seniorName, message string) (DemoReply, error) {
	if a.demoCache == nil {
		return DemoReply{}, fmt.Errorf("demo mode not configured")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return DemoReply{}, fmt.Errorf("%w: message required", ErrInvalidInput)
	}
	seniorName = strings.TrimSpace(seniorName)
	if seniorName == "" {
		seniorName = demoDefaultName
	}

	var session demo.Session
	if sessionID = strings.TrimSpace(sessionID); sessionID == "" {
		session = demo.Session{ID: util.NewID(), SeniorName: seniorName, StartedAt: a.now().UTC()}
	} else {
		loaded, err := a.demoCache.Get(ctx, sessionID)
		switch {
		case err == nil:
			session = loaded
		case errors.Is(err, demo.ErrSessionNotFound):
			session = demo.Session{ID: sessionID, SeniorName: seniorName, StartedAt: a.now().UTC()}
		default:
			return DemoReply{}, fmt.Errorf("load demo session: %w", err)
		}
	}

	session.Turns = append(session.Turns, ai.Turn{Role: "user", Content: message})
	reply, err := a.oracle.Converse(ctx, session.SeniorName, session.Turns)
	if err != nil {
		slog.Warn("demo chat oracle failed", "session_id", session.ID, "err", err)
		reply = oracleUnavailableReply
	}
	session.Turns = append(session.Turns, ai.Turn{Role: "assistant", Content: reply})

	if err := a.demoCache.Put(ctx, session); err != nil {
		slog.Warn("demo session save failed", "session_id", session.ID, "err", err)
	}
	return DemoReply{SessionID: session.ID, Response: reply}, nil
}
