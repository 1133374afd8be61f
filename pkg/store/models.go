package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type FamilyMemberModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type SeniorModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	BirthDate   *time.Time
	Gender      string
	Phone       string
	ProfileNote string    `gorm:"type:text"`
	InviteCode  string    `gorm:"uniqueIndex;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}

type FamilyLinkModel struct {
	ID        string    `gorm:"primaryKey"`
	SeniorID  string    `gorm:"not null;uniqueIndex:idx_links_senior_family"`
	FamilyID  string    `gorm:"not null;uniqueIndex:idx_links_senior_family;index"`
	Role      string    `gorm:"not null"`
	IsPrimary bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type ConversationModel struct {
	ID        string    `gorm:"primaryKey"`
	SeniorID  string    `gorm:"not null;index"`
	StartedAt time.Time `gorm:"not null;index"`
	EndedAt   *time.Time
	Summary   string         `gorm:"type:text"`
	Mood      string
	Concerns  datatypes.JSON `gorm:"type:jsonb"`
}

type MessageModel struct {
	ID             string    `gorm:"primaryKey"`
	ConversationID string    `gorm:"not null;index"`
	Role           string    `gorm:"not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

type DeviceSampleModel struct {
	ID            string    `gorm:"primaryKey"`
	SeniorID      string    `gorm:"not null;uniqueIndex:idx_samples_senior_date"`
	Date          time.Time `gorm:"not null;uniqueIndex:idx_samples_senior_date;index"`
	Steps         int       `gorm:"not null"`
	SleepHours    *float64
	ActiveMinutes *int
	ScreenTime    *int
	AppUsageCount *int
	BatteryLevel  *int
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time
}

type MedicationAlertModel struct {
	ID           string         `gorm:"primaryKey"`
	SeniorID     string         `gorm:"not null;index"`
	Name         string         `gorm:"not null"`
	Dosage       string
	ScheduleTime string         `gorm:"not null"`
	Days         datatypes.JSON `gorm:"type:jsonb"`
	IsActive     bool           `gorm:"not null;index"`
	CreatedAt    time.Time      `gorm:"not null"`
}

type MedicationLogModel struct {
	ID          string    `gorm:"primaryKey"`
	AlertID     string    `gorm:"not null;index"`
	Status      string    `gorm:"not null"`
	TakenAt     *time.Time
	ScheduledAt time.Time `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
}

type SosEventModel struct {
	ID         string  `gorm:"primaryKey"`
	SeniorID   string  `gorm:"not null;index"`
	Type       string  `gorm:"not null"`
	Latitude   *float64
	Longitude  *float64
	Resolved   bool `gorm:"not null;index"`
	ResolvedAt *time.Time
	ResolvedBy string
	Note       string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

type WeeklyReportModel struct {
	ID             string    `gorm:"primaryKey"`
	SeniorID       string    `gorm:"not null;uniqueIndex:idx_reports_senior_week"`
	WeekStart      time.Time `gorm:"not null;uniqueIndex:idx_reports_senior_week;index"`
	WeekEnd        time.Time `gorm:"not null"`
	Summary        string    `gorm:"type:text"`
	AvgSteps       *float64
	AvgSleep       *float64
	MedicationRate *float64
	MoodTrend      string
	Concerns       datatypes.JSON `gorm:"type:jsonb"`
	OverallStatus  string         `gorm:"not null"`
	CreatedAt      time.Time      `gorm:"not null"`
}

type NotificationModel struct {
	ID        string `gorm:"primaryKey"`
	FamilyID  string `gorm:"not null;index"`
	SeniorID  string `gorm:"index"`
	Type      string `gorm:"not null"`
	Title     string `gorm:"not null"`
	Body      string `gorm:"type:text;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	IsRead    bool           `gorm:"not null;index"`
	CreatedAt time.Time      `gorm:"not null;index"`
}
