package store

import (
	"sort"
	"sync"
	"time"

	"carelink/pkg/domain"
)

// MemoryStore keeps all entities in-process. It backs unit tests and
// the demo deployment profile.
type MemoryStore struct {
	mu            sync.RWMutex
	family        map[string]domain.FamilyMember
	familyByEmail map[string]string
	seniors       map[string]domain.Senior
	links         []domain.FamilyLink
	conversations map[string]domain.Conversation
	messages      map[string][]domain.Message
	samples       map[string]map[string]domain.DeviceDataSample // seniorID -> dateKey
	medAlerts     map[string]domain.MedicationAlert
	medLogs       []domain.MedicationLog
	sosEvents     map[string]domain.SosEvent
	reports       []domain.WeeklyReport
	notifications []domain.Notification
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		family:        make(map[string]domain.FamilyMember),
		familyByEmail: make(map[string]string),
		seniors:       make(map[string]domain.Senior),
		conversations: make(map[string]domain.Conversation),
		messages:      make(map[string][]domain.Message),
		samples:       make(map[string]map[string]domain.DeviceDataSample),
		medAlerts:     make(map[string]domain.MedicationAlert),
		sosEvents:     make(map[string]domain.SosEvent),
	}
}

func dateKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

func (m *MemoryStore) SaveFamilyMember(f domain.FamilyMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.family[f.ID] = f
	m.familyByEmail[f.Email] = f.ID
	return nil
}

func (m *MemoryStore) GetFamilyMemberByEmail(email string) (domain.FamilyMember, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.familyByEmail[email]
	if !ok {
		return domain.FamilyMember{}, false, nil
	}
	f, ok := m.family[id]
	return f, ok, nil
}

func (m *MemoryStore) GetFamilyMemberByID(id string) (domain.FamilyMember, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.family[id]
	return f, ok, nil
}

func (m *MemoryStore) SaveSenior(s domain.Senior) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seniors[s.ID] = s
	return nil
}

func (m *MemoryStore) GetSenior(id string) (domain.Senior, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.seniors[id]
	return s, ok, nil
}

func (m *MemoryStore) GetSeniorByInviteCode(code string) (domain.Senior, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.seniors {
		if s.InviteCode == code {
			return s, true, nil
		}
	}
	return domain.Senior{}, false, nil
}

func (m *MemoryStore) CreateFamilyLink(link domain.FamilyLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.links {
		if existing.SeniorID == link.SeniorID && existing.FamilyID == link.FamilyID {
			return ErrDuplicateKey
		}
	}
	m.links = append(m.links, link)
	return nil
}

func (m *MemoryStore) GetFamilyLink(seniorID, familyID string) (domain.FamilyLink, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, link := range m.links {
		if link.SeniorID == seniorID && link.FamilyID == familyID {
			return link, true, nil
		}
	}
	return domain.FamilyLink{}, false, nil
}

func (m *MemoryStore) ListFamilyLinksBySenior(seniorID string) ([]domain.FamilyLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.FamilyLink, 0)
	for _, link := range m.links {
		if link.SeniorID == seniorID {
			res = append(res, link)
		}
	}
	return res, nil
}

func (m *MemoryStore) ListFamilyLinksByFamily(familyID string) ([]domain.FamilyLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.FamilyLink, 0)
	for _, link := range m.links {
		if link.FamilyID == familyID {
			res = append(res, link)
		}
	}
	return res, nil
}

func (m *MemoryStore) CreateConversation(c domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[c.ID] = c
	return nil
}

func (m *MemoryStore) GetConversation(id string) (domain.Conversation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations[id]
	return c, ok, nil
}

func (m *MemoryStore) EndConversation(id string, endedAt time.Time, summary string, mood domain.MoodScore, concerns []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[id]
	if !ok {
		return nil
	}
	ended := endedAt.UTC()
	c.EndedAt = &ended
	c.Summary = summary
	c.Mood = mood
	c.Concerns = emptyIfNil(concerns)
	m.conversations[id] = c
	return nil
}

func (m *MemoryStore) ListConversationsBySenior(seniorID string, limit, offset int) ([]domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	all := m.conversationsOf(seniorID, false)
	sort.Slice(all, func(i, j int) bool { return all[i].StartedAt.After(all[j].StartedAt) })
	if offset >= len(all) {
		return []domain.Conversation{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryStore) LatestEndedConversation(seniorID string) (domain.Conversation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ended := m.conversationsOf(seniorID, true)
	if len(ended) == 0 {
		return domain.Conversation{}, false, nil
	}
	sort.Slice(ended, func(i, j int) bool { return ended[i].StartedAt.After(ended[j].StartedAt) })
	return ended[0], true, nil
}

func (m *MemoryStore) ListEndedConversationsInWindow(seniorID string, from, to time.Time) ([]domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Conversation, 0)
	for _, c := range m.conversationsOf(seniorID, true) {
		if !c.StartedAt.Before(from) && !c.StartedAt.After(to) {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].StartedAt.Before(res[j].StartedAt) })
	return res, nil
}

func (m *MemoryStore) conversationsOf(seniorID string, endedOnly bool) []domain.Conversation {
	res := make([]domain.Conversation, 0)
	for _, c := range m.conversations {
		if c.SeniorID != seniorID {
			continue
		}
		if endedOnly && !c.Ended() {
			continue
		}
		res = append(res, c)
	}
	return res
}

func (m *MemoryStore) AppendMessage(msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], msg)
	return nil
}

func (m *MemoryStore) ListMessages(conversationID string, limit int) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := make([]domain.Message, len(m.messages[conversationID]))
	copy(msgs, m.messages[conversationID])
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (m *MemoryStore) UpsertDeviceSample(sample domain.DeviceDataSample) (domain.DeviceDataSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byDay := m.samples[sample.SeniorID]
	if byDay == nil {
		byDay = make(map[string]domain.DeviceDataSample)
		m.samples[sample.SeniorID] = byDay
	}
	key := dateKey(sample.Date)
	if existing, ok := byDay[key]; ok {
		existing.Steps = sample.Steps
		existing.SleepHours = sample.SleepHours
		existing.ActiveMinutes = sample.ActiveMinutes
		existing.ScreenTime = sample.ScreenTime
		existing.AppUsageCount = sample.AppUsageCount
		existing.BatteryLevel = sample.BatteryLevel
		existing.UpdatedAt = sample.UpdatedAt
		byDay[key] = existing
		return existing, nil
	}
	byDay[key] = sample
	return sample, nil
}

func (m *MemoryStore) GetDeviceSample(seniorID string, date time.Time) (domain.DeviceDataSample, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.samples[seniorID][dateKey(date)]
	return s, ok, nil
}

func (m *MemoryStore) ListDeviceSamples(seniorID string, from, to time.Time) ([]domain.DeviceDataSample, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.DeviceDataSample, 0)
	for _, s := range m.samples[seniorID] {
		if !s.Date.Before(from) && !s.Date.After(to) {
			res = append(res, s)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}

func (m *MemoryStore) CreateMedicationAlert(alert domain.MedicationAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.medAlerts[alert.ID] = alert
	return nil
}

func (m *MemoryStore) GetMedicationAlert(id string) (domain.MedicationAlert, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.medAlerts[id]
	return a, ok, nil
}

func (m *MemoryStore) ListActiveMedicationAlerts(seniorID string) ([]domain.MedicationAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.MedicationAlert, 0)
	for _, a := range m.medAlerts {
		if a.SeniorID == seniorID && a.IsActive {
			res = append(res, a)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ScheduleTime < res[j].ScheduleTime })
	return res, nil
}

func (m *MemoryStore) DeactivateMedicationAlert(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.medAlerts[id]
	if !ok {
		return nil
	}
	a.IsActive = false
	m.medAlerts[id] = a
	return nil
}

func (m *MemoryStore) AppendMedicationLog(logEntry domain.MedicationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.medLogs = append(m.medLogs, logEntry)
	return nil
}

func (m *MemoryStore) ListMedicationLogs(seniorID string, from, to time.Time) ([]domain.MedicationLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.MedicationLog, 0)
	for _, l := range m.medLogs {
		alert, ok := m.medAlerts[l.AlertID]
		if !ok || alert.SeniorID != seniorID {
			continue
		}
		if !l.ScheduledAt.Before(from) && !l.ScheduledAt.After(to) {
			res = append(res, l)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) CreateSosEvent(event domain.SosEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sosEvents[event.ID] = event
	return nil
}

func (m *MemoryStore) GetSosEvent(id string) (domain.SosEvent, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sosEvents[id]
	return e, ok, nil
}

func (m *MemoryStore) ResolveSosEvent(id, resolvedBy string, resolvedAt time.Time, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sosEvents[id]
	if !ok || e.Resolved {
		return nil
	}
	at := resolvedAt.UTC()
	e.Resolved = true
	e.ResolvedAt = &at
	e.ResolvedBy = resolvedBy
	e.Note = note
	m.sosEvents[id] = e
	return nil
}

func (m *MemoryStore) ListUnresolvedSosEvents(seniorID string) ([]domain.SosEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.SosEvent, 0)
	for _, e := range m.sosEvents {
		if e.SeniorID == seniorID && !e.Resolved {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) ListSosEvents(seniorID string, limit int) ([]domain.SosEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	res := make([]domain.SosEvent, 0)
	for _, e := range m.sosEvents {
		if e.SeniorID == seniorID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *MemoryStore) CreateWeeklyReport(report domain.WeeklyReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reports {
		if existing.SeniorID == report.SeniorID && existing.WeekStart.Equal(report.WeekStart) {
			return ErrDuplicateKey
		}
	}
	m.reports = append(m.reports, report)
	return nil
}

func (m *MemoryStore) GetWeeklyReport(seniorID string, weekStart time.Time) (domain.WeeklyReport, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reports {
		if r.SeniorID == seniorID && r.WeekStart.Equal(weekStart) {
			return r, true, nil
		}
	}
	return domain.WeeklyReport{}, false, nil
}

func (m *MemoryStore) ListWeeklyReports(seniorID string, limit int) ([]domain.WeeklyReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 12
	}
	res := make([]domain.WeeklyReport, 0)
	for _, r := range m.reports {
		if r.SeniorID == seniorID {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].WeekStart.After(res[j].WeekStart) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *MemoryStore) LatestWeeklyReport(seniorID string) (domain.WeeklyReport, bool, error) {
	reports, err := m.ListWeeklyReports(seniorID, 1)
	if err != nil || len(reports) == 0 {
		return domain.WeeklyReport{}, false, err
	}
	return reports[0], true, nil
}

func (m *MemoryStore) CreateNotification(n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *MemoryStore) ListNotifications(familyID string, unreadOnly bool, limit, offset int) ([]domain.Notification, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 30
	}
	res := make([]domain.Notification, 0)
	for _, n := range m.notifications {
		if n.FamilyID != familyID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	total := len(res)
	if offset >= len(res) {
		return []domain.Notification{}, total, nil
	}
	res = res[offset:]
	if len(res) > limit {
		res = res[:limit]
	}
	return res, total, nil
}

func (m *MemoryStore) GetNotification(id string) (domain.Notification, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.notifications {
		if n.ID == id {
			return n, true, nil
		}
	}
	return domain.Notification{}, false, nil
}

func (m *MemoryStore) CountUnreadNotifications(familyID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, n := range m.notifications {
		if n.FamilyID == familyID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) MarkNotificationRead(id, familyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.notifications {
		if n.ID == id && n.FamilyID == familyID {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}

func (m *MemoryStore) MarkAllNotificationsRead(familyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.notifications {
		if n.FamilyID == familyID && !n.IsRead {
			m.notifications[i].IsRead = true
		}
	}
	return nil
}
