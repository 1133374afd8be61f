package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"carelink/pkg/domain"
)

const migrateLockID int64 = 52195219

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&FamilyMemberModel{},
			&SeniorModel{},
			&FamilyLinkModel{},
			&ConversationModel{},
			&MessageModel{},
			&DeviceSampleModel{},
			&MedicationAlertModel{},
			&MedicationLogModel{},
			&SosEventModel{},
			&WeeklyReportModel{},
			&NotificationModel{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return err
}

// SaveFamilyMember registers or updates a family member account.
func (s *GormStore) SaveFamilyMember(m domain.FamilyMember) error {
	model := familyMemberToModel(m)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "password_hash", "updated_at"}),
	}).Create(&model).Error
}

// GetFamilyMemberByEmail looks up an account by email.
func (s *GormStore) GetFamilyMemberByEmail(email string) (domain.FamilyMember, bool, error) {
	var model FamilyMemberModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.FamilyMember{}, false, nil
		}
		return domain.FamilyMember{}, false, err
	}
	return familyMemberFromModel(model), true, nil
}

// GetFamilyMemberByID returns an account by ID.
func (s *GormStore) GetFamilyMemberByID(id string) (domain.FamilyMember, bool, error) {
	var model FamilyMemberModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.FamilyMember{}, false, nil
		}
		return domain.FamilyMember{}, false, err
	}
	return familyMemberFromModel(model), true, nil
}

// SaveSenior stores or updates a senior profile.
func (s *GormStore) SaveSenior(sr domain.Senior) error {
	model := seniorToModel(sr)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "birth_date", "gender", "phone", "profile_note", "updated_at"}),
	}).Create(&model).Error
}

// GetSenior retrieves a senior by ID.
func (s *GormStore) GetSenior(id string) (domain.Senior, bool, error) {
	var model SeniorModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Senior{}, false, nil
		}
		return domain.Senior{}, false, err
	}
	return seniorFromModel(model), true, nil
}

// GetSeniorByInviteCode resolves an invite code.
func (s *GormStore) GetSeniorByInviteCode(code string) (domain.Senior, bool, error) {
	var model SeniorModel
	if err := s.db.Where("invite_code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Senior{}, false, nil
		}
		return domain.Senior{}, false, err
	}
	return seniorFromModel(model), true, nil
}

// CreateFamilyLink inserts a link; ErrDuplicateKey when the pair exists.
func (s *GormStore) CreateFamilyLink(link domain.FamilyLink) error {
	model := familyLinkToModel(link)
	if err := s.db.Create(&model).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

// GetFamilyLink returns the link for a (senior, family) pair.
func (s *GormStore) GetFamilyLink(seniorID, familyID string) (domain.FamilyLink, bool, error) {
	var model FamilyLinkModel
	if err := s.db.Where("senior_id = ? AND family_id = ?", seniorID, familyID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.FamilyLink{}, false, nil
		}
		return domain.FamilyLink{}, false, err
	}
	return familyLinkFromModel(model), true, nil
}

// ListFamilyLinksBySenior returns every family member linked to a senior.
func (s *GormStore) ListFamilyLinksBySenior(seniorID string) ([]domain.FamilyLink, error) {
	var models []FamilyLinkModel
	if err := s.db.Where("senior_id = ?", seniorID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	links := make([]domain.FamilyLink, 0, len(models))
	for _, model := range models {
		links = append(links, familyLinkFromModel(model))
	}
	return links, nil
}

// ListFamilyLinksByFamily returns every senior linked to a family member.
func (s *GormStore) ListFamilyLinksByFamily(familyID string) ([]domain.FamilyLink, error) {
	var models []FamilyLinkModel
	if err := s.db.Where("family_id = ?", familyID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	links := make([]domain.FamilyLink, 0, len(models))
	for _, model := range models {
		links = append(links, familyLinkFromModel(model))
	}
	return links, nil
}

// CreateConversation creates a new conversation record.
func (s *GormStore) CreateConversation(c domain.Conversation) error {
	model := conversationToModel(c)
	return s.db.Create(&model).Error
}

// GetConversation returns one conversation by ID.
func (s *GormStore) GetConversation(id string) (domain.Conversation, bool, error) {
	var model ConversationModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Conversation{}, false, nil
		}
		return domain.Conversation{}, false, err
	}
	return conversationFromModel(model), true, nil
}

// EndConversation writes end time, summary, mood and concerns in one update.
func (s *GormStore) EndConversation(id string, endedAt time.Time, summary string, mood domain.MoodScore, concerns []string) error {
	raw, _ := json.Marshal(emptyIfNil(concerns))
	return s.db.Model(&ConversationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"ended_at": endedAt.UTC(),
			"summary":  summary,
			"mood":     string(mood),
			"concerns": raw,
		}).Error
}

// ListConversationsBySenior returns conversations newest first.
func (s *GormStore) ListConversationsBySenior(seniorID string, limit, offset int) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []ConversationModel
	if err := s.db.Where("senior_id = ?", seniorID).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Conversation, 0, len(models))
	for _, model := range models {
		items = append(items, conversationFromModel(model))
	}
	return items, nil
}

// LatestEndedConversation returns the most recent ended session.
func (s *GormStore) LatestEndedConversation(seniorID string) (domain.Conversation, bool, error) {
	var model ConversationModel
	if err := s.db.Where("senior_id = ? AND ended_at IS NOT NULL", seniorID).
		Order("started_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Conversation{}, false, nil
		}
		return domain.Conversation{}, false, err
	}
	return conversationFromModel(model), true, nil
}

// ListEndedConversationsInWindow returns ended sessions started within [from, to].
func (s *GormStore) ListEndedConversationsInWindow(seniorID string, from, to time.Time) ([]domain.Conversation, error) {
	var models []ConversationModel
	if err := s.db.Where("senior_id = ? AND started_at >= ? AND started_at <= ? AND ended_at IS NOT NULL",
		seniorID, from.UTC(), to.UTC()).
		Order("started_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Conversation, 0, len(models))
	for _, model := range models {
		items = append(items, conversationFromModel(model))
	}
	return items, nil
}

// AppendMessage records a message.
func (s *GormStore) AppendMessage(msg domain.Message) error {
	model := messageToModel(msg)
	return s.db.Create(&model).Error
}

// ListMessages returns recent messages in chronological order.
func (s *GormStore) ListMessages(conversationID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		var models []MessageModel
		if err := s.db.Where("conversation_id = ?", conversationID).
			Order("created_at ASC").
			Find(&models).Error; err != nil {
			return nil, err
		}
		msgs := make([]domain.Message, 0, len(models))
		for _, model := range models {
			msgs = append(msgs, messageFromModel(model))
		}
		return msgs, nil
	}
	var models []MessageModel
	if err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	msgs := make([]domain.Message, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		msgs = append(msgs, messageFromModel(models[i]))
	}
	return msgs, nil
}

// UpsertDeviceSample merges the day's snapshot and returns the stored row.
func (s *GormStore) UpsertDeviceSample(sample domain.DeviceDataSample) (domain.DeviceDataSample, error) {
	model := deviceSampleToModel(sample)
	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "senior_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"steps", "sleep_hours", "active_minutes", "screen_time",
			"app_usage_count", "battery_level", "updated_at",
		}),
	}).Create(&model).Error; err != nil {
		return domain.DeviceDataSample{}, err
	}
	stored, ok, err := s.GetDeviceSample(sample.SeniorID, sample.Date)
	if err != nil {
		return domain.DeviceDataSample{}, err
	}
	if !ok {
		return domain.DeviceDataSample{}, fmt.Errorf("device sample missing after upsert")
	}
	return stored, nil
}

// GetDeviceSample returns the snapshot for one calendar day.
func (s *GormStore) GetDeviceSample(seniorID string, date time.Time) (domain.DeviceDataSample, bool, error) {
	var model DeviceSampleModel
	if err := s.db.Where("senior_id = ? AND date = ?", seniorID, date.UTC()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DeviceDataSample{}, false, nil
		}
		return domain.DeviceDataSample{}, false, err
	}
	return deviceSampleFromModel(model), true, nil
}

// ListDeviceSamples returns samples with date in [from, to], oldest first.
func (s *GormStore) ListDeviceSamples(seniorID string, from, to time.Time) ([]domain.DeviceDataSample, error) {
	var models []DeviceSampleModel
	if err := s.db.Where("senior_id = ? AND date >= ? AND date <= ?", seniorID, from.UTC(), to.UTC()).
		Order("date ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	samples := make([]domain.DeviceDataSample, 0, len(models))
	for _, model := range models {
		samples = append(samples, deviceSampleFromModel(model))
	}
	return samples, nil
}

// CreateMedicationAlert registers a reminder definition.
func (s *GormStore) CreateMedicationAlert(alert domain.MedicationAlert) error {
	model := medicationAlertToModel(alert)
	return s.db.Create(&model).Error
}

// GetMedicationAlert returns one alert by ID.
func (s *GormStore) GetMedicationAlert(id string) (domain.MedicationAlert, bool, error) {
	var model MedicationAlertModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MedicationAlert{}, false, nil
		}
		return domain.MedicationAlert{}, false, err
	}
	return medicationAlertFromModel(model), true, nil
}

// ListActiveMedicationAlerts returns active alerts ordered by schedule time.
func (s *GormStore) ListActiveMedicationAlerts(seniorID string) ([]domain.MedicationAlert, error) {
	var models []MedicationAlertModel
	if err := s.db.Where("senior_id = ? AND is_active = ?", seniorID, true).
		Order("schedule_time ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	alerts := make([]domain.MedicationAlert, 0, len(models))
	for _, model := range models {
		alerts = append(alerts, medicationAlertFromModel(model))
	}
	return alerts, nil
}

// DeactivateMedicationAlert clears the active flag; rows are never deleted.
func (s *GormStore) DeactivateMedicationAlert(id string) error {
	return s.db.Model(&MedicationAlertModel{}).Where("id = ?", id).Update("is_active", false).Error
}

// AppendMedicationLog records one dose outcome.
func (s *GormStore) AppendMedicationLog(logEntry domain.MedicationLog) error {
	model := medicationLogToModel(logEntry)
	return s.db.Create(&model).Error
}

// ListMedicationLogs returns a senior's logs scheduled within [from, to],
// oldest first.
func (s *GormStore) ListMedicationLogs(seniorID string, from, to time.Time) ([]domain.MedicationLog, error) {
	var models []MedicationLogModel
	if err := s.db.
		Joins("JOIN medication_alert_models ON medication_alert_models.id = medication_log_models.alert_id").
		Where("medication_alert_models.senior_id = ? AND medication_log_models.scheduled_at >= ? AND medication_log_models.scheduled_at <= ?",
			seniorID, from.UTC(), to.UTC()).
		Order("medication_log_models.created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	logs := make([]domain.MedicationLog, 0, len(models))
	for _, model := range models {
		logs = append(logs, medicationLogFromModel(model))
	}
	return logs, nil
}

// CreateSosEvent records a new emergency trigger.
func (s *GormStore) CreateSosEvent(event domain.SosEvent) error {
	model := sosEventToModel(event)
	return s.db.Create(&model).Error
}

// GetSosEvent returns one event by ID.
func (s *GormStore) GetSosEvent(id string) (domain.SosEvent, bool, error) {
	var model SosEventModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SosEvent{}, false, nil
		}
		return domain.SosEvent{}, false, err
	}
	return sosEventFromModel(model), true, nil
}

// ResolveSosEvent marks an unresolved event resolved. The resolved
// guard keeps the transition one-way.
func (s *GormStore) ResolveSosEvent(id, resolvedBy string, resolvedAt time.Time, note string) error {
	return s.db.Model(&SosEventModel{}).
		Where("id = ? AND resolved = ?", id, false).
		Updates(map[string]any{
			"resolved":    true,
			"resolved_at": resolvedAt.UTC(),
			"resolved_by": resolvedBy,
			"note":        note,
		}).Error
}

// ListUnresolvedSosEvents returns open events, newest first.
func (s *GormStore) ListUnresolvedSosEvents(seniorID string) ([]domain.SosEvent, error) {
	var models []SosEventModel
	if err := s.db.Where("senior_id = ? AND resolved = ?", seniorID, false).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	events := make([]domain.SosEvent, 0, len(models))
	for _, model := range models {
		events = append(events, sosEventFromModel(model))
	}
	return events, nil
}

// ListSosEvents returns recent events, newest first.
func (s *GormStore) ListSosEvents(seniorID string, limit int) ([]domain.SosEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []SosEventModel
	if err := s.db.Where("senior_id = ?", seniorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	events := make([]domain.SosEvent, 0, len(models))
	for _, model := range models {
		events = append(events, sosEventFromModel(model))
	}
	return events, nil
}

// CreateWeeklyReport inserts a report; ErrDuplicateKey when one already
// exists for the (senior, weekStart) pair.
func (s *GormStore) CreateWeeklyReport(report domain.WeeklyReport) error {
	model := weeklyReportToModel(report)
	if err := s.db.Create(&model).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

// GetWeeklyReport returns the report for a (senior, weekStart) pair.
func (s *GormStore) GetWeeklyReport(seniorID string, weekStart time.Time) (domain.WeeklyReport, bool, error) {
	var model WeeklyReportModel
	if err := s.db.Where("senior_id = ? AND week_start = ?", seniorID, weekStart.UTC()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.WeeklyReport{}, false, nil
		}
		return domain.WeeklyReport{}, false, err
	}
	return weeklyReportFromModel(model), true, nil
}

// ListWeeklyReports returns recent reports, newest week first.
func (s *GormStore) ListWeeklyReports(seniorID string, limit int) ([]domain.WeeklyReport, error) {
	if limit <= 0 {
		limit = 12
	}
	var models []WeeklyReportModel
	if err := s.db.Where("senior_id = ?", seniorID).
		Order("week_start DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	reports := make([]domain.WeeklyReport, 0, len(models))
	for _, model := range models {
		reports = append(reports, weeklyReportFromModel(model))
	}
	return reports, nil
}

// LatestWeeklyReport returns the most recent report.
func (s *GormStore) LatestWeeklyReport(seniorID string) (domain.WeeklyReport, bool, error) {
	var model WeeklyReportModel
	if err := s.db.Where("senior_id = ?", seniorID).
		Order("week_start DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.WeeklyReport{}, false, nil
		}
		return domain.WeeklyReport{}, false, err
	}
	return weeklyReportFromModel(model), true, nil
}

// CreateNotification records a delivery for one recipient.
func (s *GormStore) CreateNotification(n domain.Notification) error {
	model := notificationToModel(n)
	return s.db.Create(&model).Error
}

// GetNotification looks up one notification by id.
func (s *GormStore) GetNotification(id string) (domain.Notification, bool, error) {
	var model NotificationModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Notification{}, false, nil
		}
		return domain.Notification{}, false, err
	}
	return notificationFromModel(model), true, nil
}

// ListNotifications returns a recipient's notifications, newest first,
// with the total matching count.
func (s *GormStore) ListNotifications(familyID string, unreadOnly bool, limit, offset int) ([]domain.Notification, int, error) {
	if limit <= 0 {
		limit = 30
	}
	query := s.db.Model(&NotificationModel{}).Where("family_id = ?", familyID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var models []NotificationModel
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	items := make([]domain.Notification, 0, len(models))
	for _, model := range models {
		items = append(items, notificationFromModel(model))
	}
	return items, int(total), nil
}

// CountUnreadNotifications returns the recipient's unread count.
func (s *GormStore) CountUnreadNotifications(familyID string) (int, error) {
	var count int64
	if err := s.db.Model(&NotificationModel{}).
		Where("family_id = ? AND is_read = ?", familyID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// MarkNotificationRead flags one notification read, scoped to its recipient.
func (s *GormStore) MarkNotificationRead(id, familyID string) error {
	return s.db.Model(&NotificationModel{}).
		Where("id = ? AND family_id = ?", id, familyID).
		Update("is_read", true).Error
}

// MarkAllNotificationsRead flags every unread notification read.
func (s *GormStore) MarkAllNotificationsRead(familyID string) error {
	return s.db.Model(&NotificationModel{}).
		Where("family_id = ? AND is_read = ?", familyID, false).
		Update("is_read", true).Error
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func familyMemberToModel(m domain.FamilyMember) FamilyMemberModel {
	return FamilyMemberModel{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func familyMemberFromModel(m FamilyMemberModel) domain.FamilyMember {
	return domain.FamilyMember{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func seniorToModel(sr domain.Senior) SeniorModel {
	return SeniorModel{
		ID:          sr.ID,
		Name:        sr.Name,
		BirthDate:   sr.BirthDate,
		Gender:      sr.Gender,
		Phone:       sr.Phone,
		ProfileNote: sr.ProfileNote,
		InviteCode:  sr.InviteCode,
		CreatedAt:   sr.CreatedAt,
		UpdatedAt:   sr.UpdatedAt,
	}
}

func seniorFromModel(m SeniorModel) domain.Senior {
	return domain.Senior{
		ID:          m.ID,
		Name:        m.Name,
		BirthDate:   m.BirthDate,
		Gender:      m.Gender,
		Phone:       m.Phone,
		ProfileNote: m.ProfileNote,
		InviteCode:  m.InviteCode,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func familyLinkToModel(l domain.FamilyLink) FamilyLinkModel {
	return FamilyLinkModel{
		ID:        l.ID,
		SeniorID:  l.SeniorID,
		FamilyID:  l.FamilyID,
		Role:      l.Role,
		IsPrimary: l.IsPrimary,
		CreatedAt: l.CreatedAt,
	}
}

func familyLinkFromModel(m FamilyLinkModel) domain.FamilyLink {
	return domain.FamilyLink{
		ID:        m.ID,
		SeniorID:  m.SeniorID,
		FamilyID:  m.FamilyID,
		Role:      m.Role,
		IsPrimary: m.IsPrimary,
		CreatedAt: m.CreatedAt,
	}
}

func conversationToModel(c domain.Conversation) ConversationModel {
	raw, _ := json.Marshal(emptyIfNil(c.Concerns))
	return ConversationModel{
		ID:        c.ID,
		SeniorID:  c.SeniorID,
		StartedAt: c.StartedAt,
		EndedAt:   c.EndedAt,
		Summary:   c.Summary,
		Mood:      string(c.Mood),
		Concerns:  raw,
	}
}

func conversationFromModel(m ConversationModel) domain.Conversation {
	concerns := []string{}
	if len(m.Concerns) > 0 {
		_ = json.Unmarshal(m.Concerns, &concerns)
	}
	return domain.Conversation{
		ID:        m.ID,
		SeniorID:  m.SeniorID,
		StartedAt: m.StartedAt,
		EndedAt:   m.EndedAt,
		Summary:   m.Summary,
		Mood:      domain.MoodScore(m.Mood),
		Concerns:  concerns,
	}
}

func messageToModel(msg domain.Message) MessageModel {
	return MessageModel{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
}

func messageFromModel(m MessageModel) domain.Message {
	return domain.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           domain.MessageRole(m.Role),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func deviceSampleToModel(s domain.DeviceDataSample) DeviceSampleModel {
	return DeviceSampleModel{
		ID:            s.ID,
		SeniorID:      s.SeniorID,
		Date:          s.Date.UTC(),
		Steps:         s.Steps,
		SleepHours:    s.SleepHours,
		ActiveMinutes: s.ActiveMinutes,
		ScreenTime:    s.ScreenTime,
		AppUsageCount: s.AppUsageCount,
		BatteryLevel:  s.BatteryLevel,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func deviceSampleFromModel(m DeviceSampleModel) domain.DeviceDataSample {
	return domain.DeviceDataSample{
		ID:            m.ID,
		SeniorID:      m.SeniorID,
		Date:          m.Date,
		Steps:         m.Steps,
		SleepHours:    m.SleepHours,
		ActiveMinutes: m.ActiveMinutes,
		ScreenTime:    m.ScreenTime,
		AppUsageCount: m.AppUsageCount,
		BatteryLevel:  m.BatteryLevel,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func medicationAlertToModel(a domain.MedicationAlert) MedicationAlertModel {
	raw, _ := json.Marshal(emptyIfNil(a.Days))
	return MedicationAlertModel{
		ID:           a.ID,
		SeniorID:     a.SeniorID,
		Name:         a.Name,
		Dosage:       a.Dosage,
		ScheduleTime: a.ScheduleTime,
		Days:         raw,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
	}
}

func medicationAlertFromModel(m MedicationAlertModel) domain.MedicationAlert {
	days := []string{}
	if len(m.Days) > 0 {
		_ = json.Unmarshal(m.Days, &days)
	}
	return domain.MedicationAlert{
		ID:           m.ID,
		SeniorID:     m.SeniorID,
		Name:         m.Name,
		Dosage:       m.Dosage,
		ScheduleTime: m.ScheduleTime,
		Days:         days,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
	}
}

func medicationLogToModel(l domain.MedicationLog) MedicationLogModel {
	return MedicationLogModel{
		ID:          l.ID,
		AlertID:     l.AlertID,
		Status:      string(l.Status),
		TakenAt:     l.TakenAt,
		ScheduledAt: l.ScheduledAt,
		CreatedAt:   l.CreatedAt,
	}
}

func medicationLogFromModel(m MedicationLogModel) domain.MedicationLog {
	return domain.MedicationLog{
		ID:          m.ID,
		AlertID:     m.AlertID,
		Status:      domain.MedicationStatus(m.Status),
		TakenAt:     m.TakenAt,
		ScheduledAt: m.ScheduledAt,
		CreatedAt:   m.CreatedAt,
	}
}

func sosEventToModel(e domain.SosEvent) SosEventModel {
	return SosEventModel{
		ID:         e.ID,
		SeniorID:   e.SeniorID,
		Type:       string(e.Type),
		Latitude:   e.Latitude,
		Longitude:  e.Longitude,
		Resolved:   e.Resolved,
		ResolvedAt: e.ResolvedAt,
		ResolvedBy: e.ResolvedBy,
		Note:       e.Note,
		CreatedAt:  e.CreatedAt,
	}
}

func sosEventFromModel(m SosEventModel) domain.SosEvent {
	return domain.SosEvent{
		ID:         m.ID,
		SeniorID:   m.SeniorID,
		Type:       domain.SosType(m.Type),
		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
		Resolved:   m.Resolved,
		ResolvedAt: m.ResolvedAt,
		ResolvedBy: m.ResolvedBy,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
	}
}

func weeklyReportToModel(r domain.WeeklyReport) WeeklyReportModel {
	raw, _ := json.Marshal(emptyIfNil(r.Concerns))
	return WeeklyReportModel{
		ID:             r.ID,
		SeniorID:       r.SeniorID,
		WeekStart:      r.WeekStart.UTC(),
		WeekEnd:        r.WeekEnd.UTC(),
		Summary:        r.Summary,
		AvgSteps:       r.AvgSteps,
		AvgSleep:       r.AvgSleep,
		MedicationRate: r.MedicationRate,
		MoodTrend:      string(r.MoodTrend),
		Concerns:       raw,
		OverallStatus:  string(r.OverallStatus),
		CreatedAt:      r.CreatedAt,
	}
}

func weeklyReportFromModel(m WeeklyReportModel) domain.WeeklyReport {
	concerns := []string{}
	if len(m.Concerns) > 0 {
		_ = json.Unmarshal(m.Concerns, &concerns)
	}
	return domain.WeeklyReport{
		ID:             m.ID,
		SeniorID:       m.SeniorID,
		WeekStart:      m.WeekStart,
		WeekEnd:        m.WeekEnd,
		Summary:        m.Summary,
		AvgSteps:       m.AvgSteps,
		AvgSleep:       m.AvgSleep,
		MedicationRate: m.MedicationRate,
		MoodTrend:      domain.MoodTrend(m.MoodTrend),
		Concerns:       concerns,
		OverallStatus:  domain.ReportStatus(m.OverallStatus),
		CreatedAt:      m.CreatedAt,
	}
}

func notificationToModel(n domain.Notification) NotificationModel {
	var payload datatypes.JSON
	if n.Payload != nil {
		raw, _ := json.Marshal(n.Payload)
		payload = raw
	}
	return NotificationModel{
		ID:        n.ID,
		FamilyID:  n.FamilyID,
		SeniorID:  n.SeniorID,
		Type:      string(n.Type),
		Title:     n.Title,
		Body:      n.Body,
		Payload:   payload,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func notificationFromModel(m NotificationModel) domain.Notification {
	var payload map[string]any
	if len(m.Payload) > 0 {
		_ = json.Unmarshal(m.Payload, &payload)
	}
	return domain.Notification{
		ID:        m.ID,
		FamilyID:  m.FamilyID,
		SeniorID:  m.SeniorID,
		Type:      domain.NotificationType(m.Type),
		Title:     m.Title,
		Body:      m.Body,
		Payload:   payload,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}
