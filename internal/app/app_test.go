package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"carelink/internal/authtoken"
	"carelink/internal/util"
	"carelink/pkg/ai"
	"carelink/pkg/domain"
	"carelink/pkg/notify"
	"carelink/pkg/store"
)

type fakeOracle struct {
	converse      func(seniorName string, transcript []ai.Turn) (string, error)
	analyze       func(transcript []ai.Turn) (ai.Analysis, error)
	summarizeWeek func(week ai.WeekContext) (string, error)

	mu             sync.Mutex
	summarizeCalls int
}

func (f *fakeOracle) Converse(_ context.Context, seniorName string, transcript []ai.Turn) (string, error) {
	if f.converse != nil {
		return f.converse(seniorName, transcript)
	}
	return "네, 알겠어요!", nil
}

func (f *fakeOracle) Analyze(_ context.Context, transcript []ai.Turn) (ai.Analysis, error) {
	if f.analyze != nil {
		return f.analyze(transcript)
	}
	return ai.Analysis{Summary: "평온한 하루였습니다.", Mood: "GOOD", Concerns: []string{}}, nil
}

func (f *fakeOracle) SummarizeWeek(_ context.Context, week ai.WeekContext) (string, error) {
	f.mu.Lock()
	f.summarizeCalls++
	f.mu.Unlock()
	if f.summarizeWeek != nil {
		return f.summarizeWeek(week)
	}
	return "이번 주는 전반적으로 안정적이었습니다.", nil
}

type capturePusher struct {
	mu      sync.Mutex
	pushes  []notify.Push
	failFor map[string]bool
}

func (p *capturePusher) Push(_ context.Context, msg notify.Push) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, msg)
	if p.failFor[msg.FamilyID] {
		return context.DeadlineExceeded
	}
	return nil
}

type testEnv struct {
	app    *App
	store  *store.MemoryStore
	oracle *fakeOracle
	pusher *capturePusher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	oracle := &fakeOracle{}
	pusher := &capturePusher{failFor: map[string]bool{}}
	tokens, err := authtoken.NewManager(authtoken.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	application, err := New(Config{
		Store:  st,
		Oracle: oracle,
		Pusher: pusher,
		Tokens: tokens,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return &testEnv{app: application, store: st, oracle: oracle, pusher: pusher}
}

func (e *testEnv) seedSenior(t *testing.T, name string) domain.Senior {
	t.Helper()
	senior := domain.Senior{
		ID:         util.NewID(),
		Name:       name,
		InviteCode: util.NewID(),
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := e.store.SaveSenior(senior); err != nil {
		t.Fatalf("seed senior: %v", err)
	}
	return senior
}

func (e *testEnv) seedFamily(t *testing.T, seniorID, email string) domain.FamilyMember {
	t.Helper()
	member := domain.FamilyMember{
		ID:        util.NewID(),
		Email:     email,
		Name:      "보호자",
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.SaveFamilyMember(member); err != nil {
		t.Fatalf("seed family member: %v", err)
	}
	if err := e.store.CreateFamilyLink(domain.FamilyLink{
		ID:        util.NewID(),
		SeniorID:  seniorID,
		FamilyID:  member.ID,
		Role:      "CHILD",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed family link: %v", err)
	}
	return member
}

func (e *testEnv) notificationsFor(t *testing.T, familyID string) []domain.Notification {
	t.Helper()
	items, _, err := e.store.ListNotifications(familyID, false, 100, 0)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return items
}
