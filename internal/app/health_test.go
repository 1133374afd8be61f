package app

import (
	"context"
	"testing"
	"time"

	"carelink/internal/util"
	"carelink/pkg/domain"
)

func seedSample(t *testing.T, env *testEnv, seniorID string, daysAgo, steps int) {
	t.Helper()
	date := startOfDay(env.app.now().AddDate(0, 0, -daysAgo))
	if _, err := env.store.UpsertDeviceSample(domain.DeviceDataSample{
		ID:       util.NewID(),
		SeniorID: seniorID,
		Date:     date,
		Steps:    steps,
	}); err != nil {
		t.Fatalf("seed sample: %v", err)
	}
}

func healthAlerts(t *testing.T, env *testEnv, familyID string) []domain.Notification {
	t.Helper()
	alerts := []domain.Notification{}
	for _, n := range env.notificationsFor(t, familyID) {
		if n.Type == domain.NotificationHealthAlert {
			alerts = append(alerts, n)
		}
	}
	return alerts
}

func TestAnomalyCheckSkippedWithoutBaseline(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	family := env.seedFamily(t, senior.ID, "a@example.com")

	// one prior day only; with today that is 2 samples, below the
	// 3-sample minimum even for a zero-step day
	seedSample(t, env, senior.ID, 1, 5000)
	if _, err := env.app.SubmitDeviceSample(context.Background(), senior.ID, DeviceSampleInput{Steps: 0}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if alerts := healthAlerts(t, env, family.ID); len(alerts) != 0 {
		t.Fatalf("no alert expected without baseline, got %d", len(alerts))
	}
}

func TestAnomalyAlertNeedsBothConditions(t *testing.T) {
	tests := []struct {
		name       string
		prior      []int
		todaySteps int
		wantAlert  bool
	}{
		{"both conditions met", []int{2000, 2000}, 400, true},
		{"absolute floor only", []int{1500, 1500}, 900, false},
		{"relative drop only", []int{3000, 3000}, 1200, false},
		{"boundary steps equal floor", []int{2500, 2500}, 1000, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			senior := env.seedSenior(t, "김영희")
			family := env.seedFamily(t, senior.ID, "a@example.com")
			for i, steps := range tc.prior {
				seedSample(t, env, senior.ID, i+1, steps)
			}

			if _, err := env.app.SubmitDeviceSample(context.Background(), senior.ID, DeviceSampleInput{Steps: tc.todaySteps}); err != nil {
				t.Fatalf("submit: %v", err)
			}
			alerts := healthAlerts(t, env, family.ID)
			if tc.wantAlert && len(alerts) != 1 {
				t.Fatalf("expected one health alert, got %d", len(alerts))
			}
			if !tc.wantAlert && len(alerts) != 0 {
				t.Fatalf("expected no health alert, got %d", len(alerts))
			}
		})
	}
}

// steps = 1000 with baseline average 2000 must not alert: both
// comparisons are strict.
func TestAnomalyBoundaryStrictness(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	family := env.seedFamily(t, senior.ID, "a@example.com")
	seedSample(t, env, senior.ID, 1, 2500)
	seedSample(t, env, senior.ID, 2, 2500)

	// window average becomes (2500+2500+1000)/3 = 2000
	if _, err := env.app.SubmitDeviceSample(context.Background(), senior.ID, DeviceSampleInput{Steps: 1000}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if alerts := healthAlerts(t, env, family.ID); len(alerts) != 0 {
		t.Fatalf("boundary value must not alert, got %d alerts", len(alerts))
	}
}

func TestSubmitDeviceSampleIdempotentPerDay(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")

	sleep := 6.5
	if _, err := env.app.SubmitDeviceSample(context.Background(), senior.ID, DeviceSampleInput{Steps: 3000}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := env.app.SubmitDeviceSample(context.Background(), senior.ID, DeviceSampleInput{Steps: 4200, SleepHours: &sleep})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.Steps != 4200 {
		t.Fatalf("stored steps = %d, want the second write's value", second.Steps)
	}

	now := env.app.now()
	samples, err := env.store.ListDeviceSamples(senior.ID, startOfDay(now), endOfDay(now))
	if err != nil {
		t.Fatalf("list samples: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("expected exactly one sample for the day, got %d", len(samples))
	}
	if samples[0].Steps != 4200 || samples[0].SleepHours == nil || *samples[0].SleepHours != 6.5 {
		t.Fatalf("sample does not reflect second write: %+v", samples[0])
	}
}

func TestSubmitDeviceSampleValidation(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")

	if _, err := env.app.SubmitDeviceSample(context.Background(), senior.ID, DeviceSampleInput{Steps: -1}); err == nil {
		t.Fatal("negative steps must be rejected")
	}
	bad := 25.0
	if _, err := env.app.SubmitDeviceSample(context.Background(), senior.ID, DeviceSampleInput{Steps: 0, SleepHours: &bad}); err == nil {
		t.Fatal("sleepHours above 24 must be rejected")
	}
	if _, err := env.app.SubmitDeviceSample(context.Background(), "missing", DeviceSampleInput{Steps: 100}); err == nil {
		t.Fatal("unknown senior must be rejected")
	}
}

func TestGetWeeklyHealthStats(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	family := env.seedFamily(t, senior.ID, "a@example.com")
	env.app.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}
	seedSample(t, env, senior.ID, 1, 3000)
	seedSample(t, env, senior.ID, 2, 5000)

	weekly, err := env.app.GetWeeklyHealth(family.ID, senior.ID)
	if err != nil {
		t.Fatalf("weekly health: %v", err)
	}
	if weekly.Stats.AvgSteps != 4000 || weekly.Stats.DaysWithData != 2 {
		t.Fatalf("unexpected stats %+v", weekly.Stats)
	}
	if weekly.Stats.AvgSleep != nil {
		t.Fatalf("avgSleep must be nil with no sleep data, got %v", *weekly.Stats.AvgSleep)
	}
}
