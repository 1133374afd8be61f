package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"carelink/internal/util"
	"carelink/pkg/domain"
)

// DeviceSampleInput carries one day of device metrics.
type DeviceSampleInput struct {
	Steps         int
	SleepHours    *float64
	ActiveMinutes *int
	ScreenTime    *int
	AppUsageCount *int
	BatteryLevel  *int
}

// TodayHealth bundles today's sample, latest conversation and
// medication logs for the dashboard's today view.
type TodayHealth struct {
	Sample       *domain.DeviceDataSample `json:"deviceData"`
	Conversation *domain.Conversation     `json:"conversation"`
	Medications  []domain.MedicationLog   `json:"medications"`
}

// WeeklyHealth is the trailing-7-day series with summary stats.
type WeeklyHealth struct {
	Daily         []domain.DeviceDataSample `json:"daily"`
	Conversations []domain.Conversation     `json:"conversations"`
	Stats         WeeklyStats               `json:"stats"`
}

type WeeklyStats struct {
	AvgSteps           int      `json:"avgSteps"`
	AvgSleep           *float64 `json:"avgSleep"`
	TotalConversations int      `json:"totalConversations"`
	DaysWithData       int      `json:"daysWithData"`
}

// SubmitDeviceSample upserts today's sample for the senior and runs
// the anomaly check as a side effect.
func (a *App) SubmitDeviceSample(ctx context.Context, seniorID string, input DeviceSampleInput) (domain.DeviceDataSample, error) {
	if err := validateSample(input); err != nil {
		return domain.DeviceDataSample{}, err
	}
	senior, found, err := a.store.GetSenior(seniorID)
	if err != nil {
		return domain.DeviceDataSample{}, fmt.Errorf("lookup senior: %w", err)
	}
	if !found {
		return domain.DeviceDataSample{}, ErrSeniorNotFound
	}

	now := a.now().UTC()
	stored, err := a.store.UpsertDeviceSample(domain.DeviceDataSample{
		ID:            util.NewID(),
		SeniorID:      seniorID,
		Date:          startOfDay(now),
		Steps:         input.Steps,
		SleepHours:    input.SleepHours,
		ActiveMinutes: input.ActiveMinutes,
		ScreenTime:    input.ScreenTime,
		AppUsageCount: input.AppUsageCount,
		BatteryLevel:  input.BatteryLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return domain.DeviceDataSample{}, fmt.Errorf("upsert device sample: %w", err)
	}

	a.checkHealthAlert(ctx, senior, stored)
	return stored, nil
}

// checkHealthAlert evaluates the new sample against the trailing
// 7-day step baseline. Fewer than 3 samples means no baseline yet, so
// no check runs. An alert needs both the relative drop and the
// absolute floor; either alone is not enough.
func (a *App) checkHealthAlert(ctx context.Context, senior domain.Senior, today domain.DeviceDataSample) {
	windowStart := startOfDay(today.Date.AddDate(0, 0, -6))
	samples, err := a.store.ListDeviceSamples(senior.ID, windowStart, endOfDay(today.Date))
	if err != nil {
		slog.Error("health check: list samples failed", "senior_id", senior.ID, "err", err)
		return
	}
	if len(samples) < 3 {
		return
	}
	total := 0
	for _, s := range samples {
		total += s.Steps
	}
	avgSteps := float64(total) / float64(len(samples))

	if float64(today.Steps) < avgSteps*0.5 && today.Steps < 1000 {
		a.dispatch(ctx, senior.ID, domain.NotificationHealthAlert,
			fmt.Sprintf("⚠️ %s 어르신 활동량 감소", senior.Name),
			fmt.Sprintf("오늘 걸음수 %d보로 평소(%d보) 대비 크게 감소했습니다.", today.Steps, int(math.Round(avgSteps))),
			map[string]any{"steps": today.Steps, "avgSteps": math.Round(avgSteps)},
		)
	}
}

// GetTodayHealth returns today's bundle for a linked senior.
func (a *App) GetTodayHealth(familyID, seniorID string) (TodayHealth, error) {
	if _, err := a.requireLinkedSenior(familyID, seniorID); err != nil {
		return TodayHealth{}, err
	}
	now := a.now()
	today := startOfDay(now)

	var bundle TodayHealth
	if sample, found, err := a.store.GetDeviceSample(seniorID, today); err != nil {
		return TodayHealth{}, fmt.Errorf("lookup device sample: %w", err)
	} else if found {
		bundle.Sample = &sample
	}
	conversations, err := a.store.ListConversationsBySenior(seniorID, 1, 0)
	if err != nil {
		return TodayHealth{}, fmt.Errorf("list conversations: %w", err)
	}
	if len(conversations) > 0 && !conversations[0].StartedAt.Before(today) {
		conversation := conversations[0]
		bundle.Conversation = &conversation
	}
	logs, err := a.store.ListMedicationLogs(seniorID, today, endOfDay(now))
	if err != nil {
		return TodayHealth{}, fmt.Errorf("list medication logs: %w", err)
	}
	bundle.Medications = logs
	return bundle, nil
}

// GetWeeklyHealth returns the trailing-7-day series and stats.
func (a *App) GetWeeklyHealth(familyID, seniorID string) (WeeklyHealth, error) {
	if _, err := a.requireLinkedSenior(familyID, seniorID); err != nil {
		return WeeklyHealth{}, err
	}
	now := a.now()
	weekAgo := startOfDay(now.AddDate(0, 0, -7))

	daily, err := a.store.ListDeviceSamples(seniorID, weekAgo, now.UTC())
	if err != nil {
		return WeeklyHealth{}, fmt.Errorf("list device samples: %w", err)
	}
	conversations, err := a.store.ListEndedConversationsInWindow(seniorID, weekAgo, now.UTC())
	if err != nil {
		return WeeklyHealth{}, fmt.Errorf("list conversations: %w", err)
	}

	stats := WeeklyStats{
		TotalConversations: len(conversations),
		DaysWithData:       len(daily),
	}
	if len(daily) > 0 {
		total := 0
		for _, d := range daily {
			total += d.Steps
		}
		stats.AvgSteps = int(math.Round(float64(total) / float64(len(daily))))
	}
	if avg, ok := meanSleep(daily); ok {
		rounded := math.Round(avg*10) / 10
		stats.AvgSleep = &rounded
	}
	return WeeklyHealth{Daily: daily, Conversations: conversations, Stats: stats}, nil
}

func meanSleep(samples []domain.DeviceDataSample) (float64, bool) {
	total, n := 0.0, 0
	for _, s := range samples {
		if s.SleepHours != nil {
			total += *s.SleepHours
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

func validateSample(input DeviceSampleInput) error {
	if input.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative", ErrInvalidInput)
	}
	if input.SleepHours != nil && (*input.SleepHours < 0 || *input.SleepHours > 24) {
		return fmt.Errorf("%w: sleepHours must be within 0-24", ErrInvalidInput)
	}
	if input.BatteryLevel != nil && (*input.BatteryLevel < 0 || *input.BatteryLevel > 100) {
		return fmt.Errorf("%w: batteryLevel must be within 0-100", ErrInvalidInput)
	}
	if input.ActiveMinutes != nil && *input.ActiveMinutes < 0 {
		return fmt.Errorf("%w: activeMinutes must be non-negative", ErrInvalidInput)
	}
	if input.ScreenTime != nil && *input.ScreenTime < 0 {
		return fmt.Errorf("%w: screenTime must be non-negative", ErrInvalidInput)
	}
	if input.AppUsageCount != nil && *input.AppUsageCount < 0 {
		return fmt.Errorf("%w: appUsageCount must be non-negative", ErrInvalidInput)
	}
	return nil
}
