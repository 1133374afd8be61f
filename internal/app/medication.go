package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"carelink/internal/util"
	"carelink/pkg/domain"
)

var scheduleTimePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

var allDays = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// MedicationAlertInput carries a new reminder definition.
type MedicationAlertInput struct {
	Name         string
	Dosage       string
	ScheduleTime string
	Days         []string
}

// AlertStatus pairs an active alert with today's derived dose status.
type AlertStatus struct {
	Alert  domain.MedicationAlert  `json:"alert"`
	Status domain.MedicationStatus `json:"status"`
}

// CreateMedicationAlert registers a recurring reminder for a linked senior.
func (a *App) CreateMedicationAlert(familyID, seniorID string, input MedicationAlertInput) (domain.MedicationAlert, error) {
	if _, err := a.requireLinkedSenior(familyID, seniorID); err != nil {
		return domain.MedicationAlert{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.MedicationAlert{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if !scheduleTimePattern.MatchString(input.ScheduleTime) {
		return domain.MedicationAlert{}, fmt.Errorf("%w: scheduleTime must be HH:MM", ErrInvalidInput)
	}
	days := input.Days
	if len(days) == 0 {
		days = allDays
	}

	alert := domain.MedicationAlert{
		ID:           util.NewID(),
		SeniorID:     seniorID,
		Name:         input.Name,
		Dosage:       strings.TrimSpace(input.Dosage),
		ScheduleTime: input.ScheduleTime,
		Days:         days,
		IsActive:     true,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.store.CreateMedicationAlert(alert); err != nil {
		return domain.MedicationAlert{}, fmt.Errorf("create medication alert: %w", err)
	}
	return alert, nil
}

// ListMedicationAlerts returns a linked senior's active reminders.
func (a *App) ListMedicationAlerts(familyID, seniorID string) ([]domain.MedicationAlert, error) {
	if _, err := a.requireLinkedSenior(familyID, seniorID); err != nil {
		return nil, err
	}
	alerts, err := a.store.ListActiveMedicationAlerts(seniorID)
	if err != nil {
		return nil, fmt.Errorf("list medication alerts: %w", err)
	}
	return alerts, nil
}

// DeactivateMedicationAlert logically deletes a reminder.
func (a *App) DeactivateMedicationAlert(familyID, alertID string) error {
	alert, found, err := a.store.GetMedicationAlert(alertID)
	if err != nil {
		return fmt.Errorf("lookup medication alert: %w", err)
	}
	if !found {
		return ErrAlertNotFound
	}
	if _, err := a.requireLinkedSenior(familyID, alert.SeniorID); err != nil {
		return err
	}
	if err := a.store.DeactivateMedicationAlert(alertID); err != nil {
		return fmt.Errorf("deactivate medication alert: %w", err)
	}
	return nil
}

// LogMedication appends one dose record from the senior's device. A
// MISSED record also fans a missed-dose alert out to the family.
func (a *App) LogMedication(ctx context.Context, alertID string, status domain.MedicationStatus) (domain.MedicationLog, error) {
	alert, found, err := a.store.GetMedicationAlert(alertID)
	if err != nil {
		return domain.MedicationLog{}, fmt.Errorf("lookup medication alert: %w", err)
	}
	if !found {
		return domain.MedicationLog{}, ErrAlertNotFound
	}
	if status == "" {
		status = domain.MedicationTaken
	}
	switch status {
	case domain.MedicationTaken, domain.MedicationSkipped, domain.MedicationMissed:
	default:
		return domain.MedicationLog{}, fmt.Errorf("%w: invalid medication status %q", ErrInvalidInput, status)
	}

	now := a.now().UTC()
	logEntry := domain.MedicationLog{
		ID:          util.NewID(),
		AlertID:     alertID,
		Status:      status,
		ScheduledAt: now,
		CreatedAt:   now,
	}
	if status == domain.MedicationTaken {
		logEntry.TakenAt = &now
	}
	if err := a.store.AppendMedicationLog(logEntry); err != nil {
		return domain.MedicationLog{}, fmt.Errorf("append medication log: %w", err)
	}

	if status == domain.MedicationMissed {
		if senior, found, err := a.store.GetSenior(alert.SeniorID); err == nil && found {
			a.dispatch(ctx, senior.ID, domain.NotificationMedicationMissed,
				fmt.Sprintf("💊 %s 어르신 복약 미확인", senior.Name),
				fmt.Sprintf("%s 어르신이 %s 복용을 확인하지 않으셨습니다.", senior.Name, alert.Name),
				map[string]any{"medicationName": alert.Name, "alertId": alert.ID},
			)
		}
	}
	return logEntry, nil
}

// medicationStatusToday derives per-alert dose status for the day: the
// most recent log scoped to today, else PENDING.
func (a *App) medicationStatusToday(seniorID string) ([]AlertStatus, error) {
	alerts, err := a.store.ListActiveMedicationAlerts(seniorID)
	if err != nil {
		return nil, fmt.Errorf("list medication alerts: %w", err)
	}
	now := a.now()
	logs, err := a.store.ListMedicationLogs(seniorID, startOfDay(now), endOfDay(now))
	if err != nil {
		return nil, fmt.Errorf("list medication logs: %w", err)
	}

	latest := make(map[string]domain.MedicationLog, len(logs))
	for _, logEntry := range logs {
		prev, ok := latest[logEntry.AlertID]
		if !ok || logEntry.CreatedAt.After(prev.CreatedAt) {
			latest[logEntry.AlertID] = logEntry
		}
	}
	statuses := make([]AlertStatus, 0, len(alerts))
	for _, alert := range alerts {
		status := domain.MedicationPending
		if logEntry, ok := latest[alert.ID]; ok {
			status = logEntry.Status
		}
		statuses = append(statuses, AlertStatus{Alert: alert, Status: status})
	}
	return statuses, nil
}
