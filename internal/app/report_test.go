package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"carelink/internal/util"
	"carelink/pkg/ai"
	"carelink/pkg/domain"
	"carelink/pkg/store"
)

func seedEndedConversation(t *testing.T, env *testEnv, seniorID string, daysAgo int, mood domain.MoodScore, concerns []string) {
	t.Helper()
	startedAt := env.app.now().UTC().AddDate(0, 0, -daysAgo)
	endedAt := startedAt.Add(20 * time.Minute)
	conversation := domain.Conversation{
		ID:        util.NewID(),
		SeniorID:  seniorID,
		StartedAt: startedAt,
		EndedAt:   &endedAt,
		Summary:   "요약",
		Mood:      mood,
		Concerns:  concerns,
	}
	if err := env.store.CreateConversation(conversation); err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
}

func seedMedicationLogs(t *testing.T, env *testEnv, seniorID string, taken, missed int) {
	t.Helper()
	alert := domain.MedicationAlert{
		ID:           util.NewID(),
		SeniorID:     seniorID,
		Name:         "혈압약",
		ScheduleTime: "08:00",
		Days:         []string{"MON"},
		IsActive:     true,
		CreatedAt:    env.app.now().UTC(),
	}
	if err := env.store.CreateMedicationAlert(alert); err != nil {
		t.Fatalf("seed alert: %v", err)
	}
	scheduledAt := env.app.now().UTC().AddDate(0, 0, -1)
	appendLogs := func(status domain.MedicationStatus, n int) {
		for i := 0; i < n; i++ {
			if err := env.store.AppendMedicationLog(domain.MedicationLog{
				ID:          util.NewID(),
				AlertID:     alert.ID,
				Status:      status,
				ScheduledAt: scheduledAt.Add(time.Duration(i) * time.Minute),
				CreatedAt:   scheduledAt,
			}); err != nil {
				t.Fatalf("seed log: %v", err)
			}
		}
	}
	appendLogs(domain.MedicationTaken, taken)
	appendLogs(domain.MedicationMissed, missed)
}

func TestGenerateReportIdempotent(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	seedSample(t, env, senior.ID, 1, 4000)
	seedEndedConversation(t, env, senior.ID, 2, domain.MoodGood, nil)

	first, err := env.app.GenerateReport(context.Background(), senior.ID)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	second, err := env.app.GenerateReport(context.Background(), senior.ID)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if env.oracle.summarizeCalls != 1 {
		t.Fatalf("oracle must not be re-invoked for an existing week, calls = %d", env.oracle.summarizeCalls)
	}
	reports, err := env.store.ListWeeklyReports(senior.ID, 10)
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected one stored report, got %d", len(reports))
	}
}

func TestGenerateReportAggregates(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	seedSample(t, env, senior.ID, 1, 3000)
	seedSample(t, env, senior.ID, 2, 5000)
	seedEndedConversation(t, env, senior.ID, 1, domain.MoodGood, []string{"무릎 통증"})
	seedEndedConversation(t, env, senior.ID, 3, domain.MoodVeryGood, []string{"무릎 통증", "식욕 저하"})
	seedMedicationLogs(t, env, senior.ID, 3, 1)

	report, err := env.app.GenerateReport(context.Background(), senior.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if report.AvgSteps == nil || *report.AvgSteps != 4000 {
		t.Fatalf("avgSteps = %v, want 4000", report.AvgSteps)
	}
	if report.MedicationRate == nil || *report.MedicationRate != 0.75 {
		t.Fatalf("medicationRate = %v, want 0.75", report.MedicationRate)
	}
	// moods 4 and 5 average to 4.5
	if report.MoodTrend != domain.TrendImproving {
		t.Fatalf("moodTrend = %q, want improving", report.MoodTrend)
	}
	if len(report.Concerns) != 2 {
		t.Fatalf("concerns must be deduplicated, got %v", report.Concerns)
	}
	// 2 concerns with a non-declining trend and decent adherence
	if report.OverallStatus != domain.ReportCaution {
		t.Fatalf("overallStatus = %q, want CAUTION", report.OverallStatus)
	}
}

func TestGenerateReportSummaryFallback(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	env.oracle.summarizeWeek = func(ai.WeekContext) (string, error) {
		return "", errors.New("oracle down")
	}

	report, err := env.app.GenerateReport(context.Background(), senior.ID)
	if err != nil {
		t.Fatalf("generate must not fail on oracle error: %v", err)
	}
	if report.Summary != reportFailedSummary {
		t.Fatalf("summary = %q, want fixed fallback", report.Summary)
	}
}

func TestOverallStatusPrecedence(t *testing.T) {
	t.Run("concern count beats good adherence", func(t *testing.T) {
		env := newTestEnv(t)
		senior := env.seedSenior(t, "김영희")
		for i := 0; i < 4; i++ {
			seedEndedConversation(t, env, senior.ID, i+1, domain.MoodGood, []string{fmt.Sprintf("걱정 %d", i)})
		}
		seedMedicationLogs(t, env, senior.ID, 9, 1) // rate 0.9

		report, err := env.app.GenerateReport(context.Background(), senior.ID)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if report.OverallStatus != domain.ReportWarning {
			t.Fatalf("overallStatus = %q, want WARNING", report.OverallStatus)
		}
	})

	t.Run("declining mood alone is caution", func(t *testing.T) {
		env := newTestEnv(t)
		senior := env.seedSenior(t, "김영희")
		seedEndedConversation(t, env, senior.ID, 1, domain.MoodVeryBad, nil)
		seedEndedConversation(t, env, senior.ID, 2, domain.MoodBad, nil)

		report, err := env.app.GenerateReport(context.Background(), senior.ID)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if report.MoodTrend != domain.TrendDeclining {
			t.Fatalf("moodTrend = %q, want declining", report.MoodTrend)
		}
		if report.OverallStatus != domain.ReportCaution {
			t.Fatalf("overallStatus = %q, want CAUTION", report.OverallStatus)
		}
	})

	t.Run("low adherence alone is warning", func(t *testing.T) {
		env := newTestEnv(t)
		senior := env.seedSenior(t, "김영희")
		seedMedicationLogs(t, env, senior.ID, 1, 3) // rate 0.25

		report, err := env.app.GenerateReport(context.Background(), senior.ID)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if report.OverallStatus != domain.ReportWarning {
			t.Fatalf("overallStatus = %q, want WARNING", report.OverallStatus)
		}
	})

	t.Run("quiet week is normal", func(t *testing.T) {
		env := newTestEnv(t)
		senior := env.seedSenior(t, "김영희")
		seedEndedConversation(t, env, senior.ID, 1, domain.MoodGood, nil)

		report, err := env.app.GenerateReport(context.Background(), senior.ID)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if report.OverallStatus != domain.ReportNormal {
			t.Fatalf("overallStatus = %q, want NORMAL", report.OverallStatus)
		}
	})
}

func TestMoodTrendClassification(t *testing.T) {
	tests := []struct {
		moods []domain.MoodScore
		want  domain.MoodTrend
	}{
		{[]domain.MoodScore{domain.MoodVeryGood, domain.MoodGood}, domain.TrendImproving},
		{[]domain.MoodScore{domain.MoodNeutral, domain.MoodNeutral}, domain.TrendStable},
		{[]domain.MoodScore{domain.MoodBad, domain.MoodVeryBad}, domain.TrendDeclining},
		{nil, domain.TrendStable}, // no moods defaults to neutral 3.0
	}
	for _, tc := range tests {
		conversations := make([]domain.Conversation, 0, len(tc.moods))
		for _, mood := range tc.moods {
			conversations = append(conversations, domain.Conversation{Mood: mood})
		}
		if got := moodTrendOf(conversations); got != tc.want {
			t.Fatalf("moodTrendOf(%v) = %q, want %q", tc.moods, got, tc.want)
		}
	}
}

// racingReportStore inserts a rival report for the same week right
// before the wrapped store sees the aggregator's own insert, forcing
// the duplicate-key path.
type racingReportStore struct {
	store.Store
	rival   domain.WeeklyReport
	planted bool
}

func (s *racingReportStore) CreateWeeklyReport(report domain.WeeklyReport) error {
	if !s.planted {
		s.planted = true
		s.rival.SeniorID = report.SeniorID
		s.rival.WeekStart = report.WeekStart
		s.rival.WeekEnd = report.WeekEnd
		if err := s.Store.CreateWeeklyReport(s.rival); err != nil {
			return err
		}
	}
	return s.Store.CreateWeeklyReport(report)
}

func TestGenerateReportLosingRaceReturnsWinner(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	seedSample(t, env, senior.ID, 1, 4000)

	racing := &racingReportStore{
		Store: env.store,
		rival: domain.WeeklyReport{
			ID:            util.NewID(),
			Summary:       "먼저 저장된 주간 리포트입니다.",
			MoodTrend:     domain.TrendStable,
			Concerns:      []string{},
			OverallStatus: domain.ReportNormal,
			CreatedAt:     env.app.now().UTC(),
		},
	}
	env.app.store = racing

	report, err := env.app.GenerateReport(context.Background(), senior.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if report.ID != racing.rival.ID {
		t.Fatalf("report id = %q, want the earlier writer's %q", report.ID, racing.rival.ID)
	}
	if report.Summary != racing.rival.Summary {
		t.Fatalf("report summary = %q, want %q", report.Summary, racing.rival.Summary)
	}
	reports, err := env.store.ListWeeklyReports(senior.ID, 10)
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("stored reports = %d, want 1", len(reports))
	}
}
