package domain

import "time"

type MoodScore string

const (
	MoodVeryGood MoodScore = "VERY_GOOD"
	MoodGood     MoodScore = "GOOD"
	MoodNeutral  MoodScore = "NEUTRAL"
	MoodBad      MoodScore = "BAD"
	MoodVeryBad  MoodScore = "VERY_BAD"
)

// Ordinal maps a mood onto the 1-5 scale used by the weekly trend.
// Unknown values count as neutral.
func (m MoodScore) Ordinal() int {
	switch m {
	case MoodVeryGood:
		return 5
	case MoodGood:
		return 4
	case MoodBad:
		return 2
	case MoodVeryBad:
		return 1
	default:
		return 3
	}
}

type MessageRole string

const (
	RoleSenior    MessageRole = "SENIOR"
	RoleAssistant MessageRole = "ASSISTANT"
)

type MedicationStatus string

const (
	MedicationTaken   MedicationStatus = "TAKEN"
	MedicationSkipped MedicationStatus = "SKIPPED"
	MedicationMissed  MedicationStatus = "MISSED"
	MedicationPending MedicationStatus = "PENDING"
)

type SosType string

const (
	SosManual     SosType = "MANUAL"
	SosFall       SosType = "FALL"
	SosInactivity SosType = "INACTIVITY"
)

type NotificationType string

const (
	NotificationSos                 NotificationType = "SOS"
	NotificationHealthAlert         NotificationType = "HEALTH_ALERT"
	NotificationConversationSummary NotificationType = "CONVERSATION_SUMMARY"
	NotificationMedicationMissed    NotificationType = "MEDICATION_MISSED"
)

type ReportStatus string

const (
	ReportNormal  ReportStatus = "NORMAL"
	ReportCaution ReportStatus = "CAUTION"
	ReportWarning ReportStatus = "WARNING"
)

type MoodTrend string

const (
	TrendImproving MoodTrend = "improving"
	TrendStable    MoodTrend = "stable"
	TrendDeclining MoodTrend = "declining"
)

// FamilyMember is an authenticated caregiver account.
type FamilyMember struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Senior is the monitored individual. InviteCode is assigned at
// registration and never changes.
type Senior struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	BirthDate   *time.Time `json:"birthDate,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	ProfileNote string     `json:"profileNote,omitempty"`
	InviteCode  string     `json:"inviteCode"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FamilyLink joins a family member to a senior. At most one link per
// (senior, family) pair.
type FamilyLink struct {
	ID        string    `json:"id"`
	SeniorID  string    `json:"seniorId"`
	FamilyID  string    `json:"familyId"`
	Role      string    `json:"role"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

// Conversation is one chat session. EndedAt == nil means active.
// Summary, Mood and Concerns are set together when the session ends.
type Conversation struct {
	ID        string     `json:"id"`
	SeniorID  string     `json:"seniorId"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Summary   string     `json:"summary,omitempty"`
	Mood      MoodScore  `json:"mood,omitempty"`
	Concerns  []string   `json:"concerns"`
}

// Ended reports whether the session reached its terminal state.
func (c Conversation) Ended() bool { return c.EndedAt != nil }

type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// DeviceDataSample is the single per-day device snapshot for a senior.
// Writes for the same (senior, day) replace the stored values.
type DeviceDataSample struct {
	ID            string    `json:"id"`
	SeniorID      string    `json:"seniorId"`
	Date          time.Time `json:"date"`
	Steps         int       `json:"steps"`
	SleepHours    *float64  `json:"sleepHours,omitempty"`
	ActiveMinutes *int      `json:"activeMinutes,omitempty"`
	ScreenTime    *int      `json:"screenTime,omitempty"`
	AppUsageCount *int      `json:"appUsageCount,omitempty"`
	BatteryLevel  *int      `json:"batteryLevel,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// MedicationAlert is a recurring reminder definition. Deactivation is
// logical via IsActive.
type MedicationAlert struct {
	ID           string    `json:"id"`
	SeniorID     string    `json:"seniorId"`
	Name         string    `json:"name"`
	Dosage       string    `json:"dosage,omitempty"`
	ScheduleTime string    `json:"scheduleTime"`
	Days         []string  `json:"days"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MedicationLog is one append-only dose record.
type MedicationLog struct {
	ID          string           `json:"id"`
	AlertID     string           `json:"alertId"`
	Status      MedicationStatus `json:"status"`
	TakenAt     *time.Time       `json:"takenAt,omitempty"`
	ScheduledAt time.Time        `json:"scheduledAt"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// SosEvent is created unresolved and transitions to resolved at most once.
type SosEvent struct {
	ID         string     `json:"id"`
	SeniorID   string     `json:"seniorId"`
	Type       SosType    `json:"type"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy string     `json:"resolvedBy,omitempty"`
	Note       string     `json:"note,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// WeeklyReport is unique per (senior, weekStart).
type WeeklyReport struct {
	ID             string       `json:"id"`
	SeniorID       string       `json:"seniorId"`
	WeekStart      time.Time    `json:"weekStart"`
	WeekEnd        time.Time    `json:"weekEnd"`
	Summary        string       `json:"summary"`
	AvgSteps       *float64     `json:"avgSteps,omitempty"`
	AvgSleep       *float64     `json:"avgSleep,omitempty"`
	MedicationRate *float64     `json:"medicationRate,omitempty"`
	MoodTrend      MoodTrend    `json:"moodTrend"`
	Concerns       []string     `json:"concerns"`
	OverallStatus  ReportStatus `json:"overallStatus"`
	CreatedAt      time.Time    `json:"createdAt"`
}

type Notification struct {
	ID        string           `json:"id"`
	FamilyID  string           `json:"familyId"`
	SeniorID  string           `json:"seniorId,omitempty"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Payload   map[string]any   `json:"payload,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
