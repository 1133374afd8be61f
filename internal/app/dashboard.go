package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"carelink/pkg/domain"
)

const noConversationRecord = "대화 기록 없음"

// Dashboard is the resolved status bundle for one senior. It is a
// read-side fold recomputed on every call; nothing here is persisted.
type Dashboard struct {
	Senior              domain.Senior             `json:"senior"`
	Status              string                    `json:"status"`
	LastActive          string                    `json:"lastActive"`
	TodaySample         *domain.DeviceDataSample  `json:"todayData"`
	WeekSamples         []domain.DeviceDataSample `json:"weeklyData"`
	AvgSteps            int                       `json:"avgSteps"`
	LatestConversation  *domain.Conversation      `json:"latestConversation"`
	Medications         []AlertStatus             `json:"medications"`
	LatestReport        *domain.WeeklyReport      `json:"latestReport"`
	UnresolvedSos       []domain.SosEvent         `json:"unresolvedSos"`
	UnreadNotifications int                       `json:"unreadNotifications"`
}

// dashboardStatusRules ranks the dashboard severity. SOS always
// dominates; an ended conversation with concerns outranks normal.
var dashboardStatusRules = []struct {
	status string
	match  func(unresolvedSos []domain.SosEvent, latest *domain.Conversation) bool
}{
	{"critical", func(sos []domain.SosEvent, _ *domain.Conversation) bool { return len(sos) > 0 }},
	{"caution", func(_ []domain.SosEvent, latest *domain.Conversation) bool {
		return latest != nil && len(latest.Concerns) > 0
	}},
	{"normal", func([]domain.SosEvent, *domain.Conversation) bool { return true }},
}

// GetDashboard gathers the senior's latest signals concurrently and
// folds them into one status bundle for the requesting family member.
func (a *App) GetDashboard(ctx context.Context, familyID, seniorID string) (Dashboard, error) {
	senior, err := a.requireLinkedSenior(familyID, seniorID)
	if err != nil {
		return Dashboard{}, err
	}

	now := a.now()
	today := startOfDay(now)
	weekAgo := today.AddDate(0, 0, -7)

	var (
		todaySample   *domain.DeviceDataSample
		weekSamples   []domain.DeviceDataSample
		latestEnded   *domain.Conversation
		medications   []AlertStatus
		latestReport  *domain.WeeklyReport
		unresolvedSos []domain.SosEvent
		unreadCount   int
	)
	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		sample, found, err := a.store.GetDeviceSample(seniorID, today)
		if err != nil {
			return fmt.Errorf("lookup today sample: %w", err)
		}
		if found {
			todaySample = &sample
		}
		return nil
	})
	group.Go(func() error {
		var err error
		weekSamples, err = a.store.ListDeviceSamples(seniorID, weekAgo, now.UTC())
		if err != nil {
			return fmt.Errorf("list week samples: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		conversation, found, err := a.store.LatestEndedConversation(seniorID)
		if err != nil {
			return fmt.Errorf("lookup latest conversation: %w", err)
		}
		if found {
			latestEnded = &conversation
		}
		return nil
	})
	group.Go(func() error {
		var err error
		medications, err = a.medicationStatusToday(seniorID)
		return err
	})
	group.Go(func() error {
		report, found, err := a.store.LatestWeeklyReport(seniorID)
		if err != nil {
			return fmt.Errorf("lookup latest report: %w", err)
		}
		if found {
			latestReport = &report
		}
		return nil
	})
	group.Go(func() error {
		var err error
		unresolvedSos, err = a.store.ListUnresolvedSosEvents(seniorID)
		if err != nil {
			return fmt.Errorf("list unresolved sos: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		unreadCount, err = a.store.CountUnreadNotifications(familyID)
		if err != nil {
			return fmt.Errorf("count unread notifications: %w", err)
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return Dashboard{}, err
	}

	status := "normal"
	for _, rule := range dashboardStatusRules {
		if rule.match(unresolvedSos, latestEnded) {
			status = rule.status
			break
		}
	}

	lastActive := noConversationRecord
	if latestEnded != nil {
		lastActive = timeAgo(now, latestEnded.StartedAt)
	}

	avgSteps := 0
	if len(weekSamples) > 0 {
		total := 0
		for _, s := range weekSamples {
			total += s.Steps
		}
		avgSteps = int(math.Round(float64(total) / float64(len(weekSamples))))
	}

	return Dashboard{
		Senior:              senior,
		Status:              status,
		LastActive:          lastActive,
		TodaySample:         todaySample,
		WeekSamples:         weekSamples,
		AvgSteps:            avgSteps,
		LatestConversation:  latestEnded,
		Medications:         medications,
		LatestReport:        latestReport,
		UnresolvedSos:       unresolvedSos,
		UnreadNotifications: unreadCount,
	}, nil
}

// timeAgo renders a past instant relative to now in Korean.
func timeAgo(now, past time.Time) string {
	diff := now.Sub(past)
	mins := int(diff.Minutes())
	switch {
	case mins < 1:
		return "방금 전"
	case mins < 60:
		return fmt.Sprintf("%d분 전", mins)
	case mins < 24*60:
		return fmt.Sprintf("%d시간 전", mins/60)
	default:
		return fmt.Sprintf("%d일 전", mins/(24*60))
	}
}
