package store

import (
	"errors"
	"time"

	"carelink/pkg/domain"
)

// ErrDuplicateKey is returned when an insert violates a unique
// constraint (family link per pair, weekly report per week). Callers
// use it to read back the winning row instead of failing.
var ErrDuplicateKey = errors.New("duplicate key")

// Store defines persistence operations for the monitoring pipeline.
type Store interface {
	// family members
	SaveFamilyMember(domain.FamilyMember) error
	GetFamilyMemberByEmail(email string) (domain.FamilyMember, bool, error)
	GetFamilyMemberByID(id string) (domain.FamilyMember, bool, error)

	// seniors
	SaveSenior(domain.Senior) error
	GetSenior(id string) (domain.Senior, bool, error)
	GetSeniorByInviteCode(code string) (domain.Senior, bool, error)

	// family links
	CreateFamilyLink(domain.FamilyLink) error
	GetFamilyLink(seniorID, familyID string) (domain.FamilyLink, bool, error)
	ListFamilyLinksBySenior(seniorID string) ([]domain.FamilyLink, error)
	ListFamilyLinksByFamily(familyID string) ([]domain.FamilyLink, error)

	// conversations
	CreateConversation(domain.Conversation) error
	GetConversation(id string) (domain.Conversation, bool, error)
	EndConversation(id string, endedAt time.Time, summary string, mood domain.MoodScore, concerns []string) error
	ListConversationsBySenior(seniorID string, limit, offset int) ([]domain.Conversation, error)
	LatestEndedConversation(seniorID string) (domain.Conversation, bool, error)
	ListEndedConversationsInWindow(seniorID string, from, to time.Time) ([]domain.Conversation, error)

	// messages
	AppendMessage(domain.Message) error
	// ListMessages returns the most recent messages in chronological
	// order; limit <= 0 returns the full transcript.
	ListMessages(conversationID string, limit int) ([]domain.Message, error)

	// device samples
	UpsertDeviceSample(domain.DeviceDataSample) (domain.DeviceDataSample, error)
	GetDeviceSample(seniorID string, date time.Time) (domain.DeviceDataSample, bool, error)
	ListDeviceSamples(seniorID string, from, to time.Time) ([]domain.DeviceDataSample, error)

	// medication
	CreateMedicationAlert(domain.MedicationAlert) error
	GetMedicationAlert(id string) (domain.MedicationAlert, bool, error)
	ListActiveMedicationAlerts(seniorID string) ([]domain.MedicationAlert, error)
	DeactivateMedicationAlert(id string) error
	AppendMedicationLog(domain.MedicationLog) error
	ListMedicationLogs(seniorID string, from, to time.Time) ([]domain.MedicationLog, error)

	// sos
	CreateSosEvent(domain.SosEvent) error
	GetSosEvent(id string) (domain.SosEvent, bool, error)
	ResolveSosEvent(id, resolvedBy string, resolvedAt time.Time, note string) error
	ListUnresolvedSosEvents(seniorID string) ([]domain.SosEvent, error)
	ListSosEvents(seniorID string, limit int) ([]domain.SosEvent, error)

	// weekly reports
	CreateWeeklyReport(domain.WeeklyReport) error
	GetWeeklyReport(seniorID string, weekStart time.Time) (domain.WeeklyReport, bool, error)
	ListWeeklyReports(seniorID string, limit int) ([]domain.WeeklyReport, error)
	LatestWeeklyReport(seniorID string) (domain.WeeklyReport, bool, error)

	// notifications
	CreateNotification(domain.Notification) error
	GetNotification(id string) (domain.Notification, bool, error)
	ListNotifications(familyID string, unreadOnly bool, limit, offset int) ([]domain.Notification, int, error)
	CountUnreadNotifications(familyID string) (int, error)
	MarkNotificationRead(id, familyID string) error
	MarkAllNotificationsRead(familyID string) error
}
