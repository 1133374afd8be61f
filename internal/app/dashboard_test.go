package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"carelink/internal/util"
	"carelink/pkg/domain"
)

func TestDashboardStatusRanking(t *testing.T) {
	t.Run("unresolved sos dominates", func(t *testing.T) {
		env := newTestEnv(t)
		senior := env.seedSenior(t, "김영희")
		family := env.seedFamily(t, senior.ID, "a@example.com")
		seedEndedConversation(t, env, senior.ID, 1, domain.MoodGood, []string{"무릎 통증"})
		if err := env.store.CreateSosEvent(domain.SosEvent{
			ID:        util.NewID(),
			SeniorID:  senior.ID,
			Type:      domain.SosFall,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("seed sos: %v", err)
		}

		dashboard, err := env.app.GetDashboard(context.Background(), family.ID, senior.ID)
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		if dashboard.Status != "critical" {
			t.Fatalf("status = %q, want critical", dashboard.Status)
		}
	})

	t.Run("concerns without sos is caution", func(t *testing.T) {
		env := newTestEnv(t)
		senior := env.seedSenior(t, "김영희")
		family := env.seedFamily(t, senior.ID, "a@example.com")
		seedEndedConversation(t, env, senior.ID, 1, domain.MoodNeutral, []string{"식욕 저하"})

		dashboard, err := env.app.GetDashboard(context.Background(), family.ID, senior.ID)
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		if dashboard.Status != "caution" {
			t.Fatalf("status = %q, want caution", dashboard.Status)
		}
	})

	t.Run("no signals is normal", func(t *testing.T) {
		env := newTestEnv(t)
		senior := env.seedSenior(t, "김영희")
		family := env.seedFamily(t, senior.ID, "a@example.com")

		dashboard, err := env.app.GetDashboard(context.Background(), family.ID, senior.ID)
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		if dashboard.Status != "normal" {
			t.Fatalf("status = %q, want normal", dashboard.Status)
		}
		if dashboard.LastActive != noConversationRecord {
			t.Fatalf("lastActive = %q, want %q", dashboard.LastActive, noConversationRecord)
		}
	})
}

func TestDashboardRequiresLink(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")

	if _, err := env.app.GetDashboard(context.Background(), "stranger", senior.ID); !errors.Is(err, ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked, got %v", err)
	}
	if _, err := env.app.GetDashboard(context.Background(), "stranger", "missing"); !errors.Is(err, ErrSeniorNotFound) {
		t.Fatalf("expected ErrSeniorNotFound, got %v", err)
	}
}

func TestDashboardMedicationPending(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	family := env.seedFamily(t, senior.ID, "a@example.com")
	alert, err := env.app.CreateMedicationAlert(family.ID, senior.ID, MedicationAlertInput{
		Name:         "혈압약",
		ScheduleTime: "08:00",
	})
	if err != nil {
		t.Fatalf("create alert: %v", err)
	}

	dashboard, err := env.app.GetDashboard(context.Background(), family.ID, senior.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dashboard.Medications) != 1 || dashboard.Medications[0].Status != domain.MedicationPending {
		t.Fatalf("expected PENDING for unlogged alert, got %+v", dashboard.Medications)
	}

	if _, err := env.app.LogMedication(context.Background(), alert.ID, domain.MedicationTaken); err != nil {
		t.Fatalf("log medication: %v", err)
	}
	dashboard, err = env.app.GetDashboard(context.Background(), family.ID, senior.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dashboard.Medications[0].Status != domain.MedicationTaken {
		t.Fatalf("expected TAKEN after log, got %q", dashboard.Medications[0].Status)
	}
}

func TestTimeAgoRendering(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		past time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "방금 전"},
		{now.Add(-5 * time.Minute), "5분 전"},
		{now.Add(-3 * time.Hour), "3시간 전"},
		{now.Add(-49 * time.Hour), "2일 전"},
	}
	for _, tc := range tests {
		if got := timeAgo(now, tc.past); got != tc.want {
			t.Fatalf("timeAgo(%v) = %q, want %q", tc.past, got, tc.want)
		}
	}
}
