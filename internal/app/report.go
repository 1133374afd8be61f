package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"carelink/internal/util"
	"carelink/pkg/ai"
	"carelink/pkg/domain"
	"carelink/pkg/store"
)

const reportFailedSummary = "주간 리포트 생성 중 오류가 발생했습니다."

// reportStatusRules is the ordered decision table for a report's
// overall status. Rules are evaluated top to bottom; the first match
// wins, so the WARNING thresholds always dominate the CAUTION ones.
var reportStatusRules = []struct {
	status domain.ReportStatus
	match  func(concerns []string, medicationRate *float64, trend domain.MoodTrend) bool
}{
	{domain.ReportWarning, func(concerns []string, rate *float64, _ domain.MoodTrend) bool {
		return len(concerns) > 3 || (rate != nil && *rate < 0.5)
	}},
	{domain.ReportCaution, func(concerns []string, _ *float64, trend domain.MoodTrend) bool {
		return len(concerns) > 1 || trend == domain.TrendDeclining
	}},
	{domain.ReportNormal, func([]string, *float64, domain.MoodTrend) bool { return true }},
}

// moodTrendRules classifies the average mood ordinal, highest
// threshold first.
var moodTrendRules = []struct {
	min   float64
	trend domain.MoodTrend
}{
	{3.5, domain.TrendImproving},
	{2.5, domain.TrendStable},
	{0, domain.TrendDeclining},
}

// GenerateReport folds the trailing week into one report. Generation
// is idempotent per (senior, weekStart): an existing report is
// returned unchanged, and a writer losing the unique-key race reads
// back the winner instead of erroring.
func (a *App) GenerateReport(ctx context.Context, seniorID string) (domain.WeeklyReport, error) {
	if _, found, err := a.store.GetSenior(seniorID); err != nil {
		return domain.WeeklyReport{}, fmt.Errorf("lookup senior: %w", err)
	} else if !found {
		return domain.WeeklyReport{}, ErrSeniorNotFound
	}

	now := a.now().UTC()
	weekStart := startOfDay(now.AddDate(0, 0, -7))
	weekEnd := now

	if existing, found, err := a.store.GetWeeklyReport(seniorID, weekStart); err != nil {
		return domain.WeeklyReport{}, fmt.Errorf("lookup weekly report: %w", err)
	} else if found {
		return existing, nil
	}

	var (
		samples       []domain.DeviceDataSample
		medLogs       []domain.MedicationLog
		conversations []domain.Conversation
	)
	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		samples, err = a.store.ListDeviceSamples(seniorID, weekStart, weekEnd)
		return err
	})
	group.Go(func() error {
		var err error
		medLogs, err = a.store.ListMedicationLogs(seniorID, weekStart, weekEnd)
		return err
	})
	group.Go(func() error {
		var err error
		conversations, err = a.store.ListEndedConversationsInWindow(seniorID, weekStart, weekEnd)
		return err
	})
	if err := group.Wait(); err != nil {
		return domain.WeeklyReport{}, fmt.Errorf("collect weekly data: %w", err)
	}

	var avgSteps *float64
	if len(samples) > 0 {
		total := 0
		for _, s := range samples {
			total += s.Steps
		}
		mean := float64(total) / float64(len(samples))
		avgSteps = &mean
	}
	var avgSleep *float64
	if mean, ok := meanSleep(samples); ok {
		avgSleep = &mean
	}
	var medicationRate *float64
	if len(medLogs) > 0 {
		taken := 0
		for _, logEntry := range medLogs {
			if logEntry.Status == domain.MedicationTaken {
				taken++
			}
		}
		rate := float64(taken) / float64(len(medLogs))
		medicationRate = &rate
	}

	trend := moodTrendOf(conversations)
	concerns := dedupeConcerns(conversations)
	summary := a.weeklySummary(ctx, conversations, samples, medicationRate)

	status := domain.ReportNormal
	for _, rule := range reportStatusRules {
		if rule.match(concerns, medicationRate, trend) {
			status = rule.status
			break
		}
	}

	report := domain.WeeklyReport{
		ID:             util.NewID(),
		SeniorID:       seniorID,
		WeekStart:      weekStart,
		WeekEnd:        weekEnd,
		Summary:        summary,
		AvgSteps:       avgSteps,
		AvgSleep:       avgSleep,
		MedicationRate: medicationRate,
		MoodTrend:      trend,
		Concerns:       concerns,
		OverallStatus:  status,
		CreatedAt:      now,
	}
	if err := a.store.CreateWeeklyReport(report); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			winner, found, readErr := a.store.GetWeeklyReport(seniorID, weekStart)
			if readErr != nil {
				return domain.WeeklyReport{}, fmt.Errorf("read back weekly report: %w", readErr)
			}
			if found {
				return winner, nil
			}
		}
		return domain.WeeklyReport{}, fmt.Errorf("create weekly report: %w", err)
	}
	return report, nil
}

// ListReports returns recent reports for a linked senior, newest week first.
func (a *App) ListReports(familyID, seniorID string, limit int) ([]domain.WeeklyReport, error) {
	if _, err := a.requireLinkedSenior(familyID, seniorID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 12
	}
	reports, err := a.store.ListWeeklyReports(seniorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list weekly reports: %w", err)
	}
	return reports, nil
}

// LatestReport returns the most recent report for a linked senior.
func (a *App) LatestReport(familyID, seniorID string) (domain.WeeklyReport, error) {
	if _, err := a.requireLinkedSenior(familyID, seniorID); err != nil {
		return domain.WeeklyReport{}, err
	}
	report, found, err := a.store.LatestWeeklyReport(seniorID)
	if err != nil {
		return domain.WeeklyReport{}, fmt.Errorf("lookup latest report: %w", err)
	}
	if !found {
		return domain.WeeklyReport{}, ErrReportNotFound
	}
	return report, nil
}

// weeklySummary asks the oracle for report prose; failure substitutes
// the fixed fallback message.
func (a *App) weeklySummary(ctx context.Context, conversations []domain.Conversation, samples []domain.DeviceDataSample, medicationRate *float64) string {
	week := ai.WeekContext{MedicationRate: medicationRate}
	for _, c := range conversations {
		week.Conversations = append(week.Conversations, ai.ConversationDigest{
			Summary:  c.Summary,
			Mood:     string(c.Mood),
			Concerns: c.Concerns,
		})
	}
	for _, s := range samples {
		week.Days = append(week.Days, ai.DayMetrics{
			Date:       s.Date.Format("2006-01-02"),
			Steps:      s.Steps,
			SleepHours: s.SleepHours,
		})
	}
	summary, err := a.oracle.SummarizeWeek(ctx, week)
	if err != nil {
		slog.Warn("oracle weekly summary failed", "err", err)
		return reportFailedSummary
	}
	return summary
}

// moodTrendOf averages each ended conversation's mood on the 1-5
// scale, defaulting neutral when no conversation carries a mood.
func moodTrendOf(conversations []domain.Conversation) domain.MoodTrend {
	total, n := 0, 0
	for _, c := range conversations {
		if c.Mood != "" {
			total += c.Mood.Ordinal()
			n++
		}
	}
	avg := 3.0
	if n > 0 {
		avg = float64(total) / float64(n)
	}
	for _, rule := range moodTrendRules {
		if avg >= rule.min {
			return rule.trend
		}
	}
	return domain.TrendDeclining
}

// dedupeConcerns unions concern lists preserving first-seen order.
func dedupeConcerns(conversations []domain.Conversation) []string {
	seen := make(map[string]struct{})
	unique := []string{}
	for _, c := range conversations {
		for _, concern := range c.Concerns {
			if _, ok := seen[concern]; ok {
				continue
			}
			seen[concern] = struct{}{}
			unique = append(unique, concern)
		}
	}
	return unique
}
