package reminder

import (
	"context"
	"testing"
	"time"

	notifRepo "townhall/database/repository/notification"
	"townhall/models"
	"townhall/services/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockScheduledRepo struct {
	mock.Mock
}

func (m *MockScheduledRepo) Create(s *models.ScheduledNotification) error {
	return m.Called(s).Error(0)
}

func (m *MockScheduledRepo) GetDue(now time.Time) ([]models.ScheduledNotification, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScheduledNotification), args.Error(1)
}

func (m *MockScheduledRepo) Promote(s *models.ScheduledNotification, n *models.Notification) error {
	return m.Called(s, n).Error(0)
}

type MockDeviceRepo struct {
	mock.Mock
}

func (m *MockDeviceRepo) Register(t *models.DeviceToken) error {
	return m.Called(t).Error(0)
}

func (m *MockDeviceRepo) GetByUser(uid string) ([]models.DeviceToken, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DeviceToken), args.Error(1)
}

func (m *MockDeviceRepo) GetTokensByUser(uid string) ([]string, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDeviceRepo) Delete(uid, token string) error {
	return m.Called(uid, token).Error(0)
}

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Available() bool {
	return m.Called().Bool(0)
}

func (m *MockPushSender) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*notification.PushReport, error) {
	args := m.Called(ctx, tokens, title, body, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.PushReport), args.Error(1)
}

func newTestDrainer() (*Drainer, *MockScheduledRepo, *MockDeviceRepo, *MockPushSender) {
	scheduled := new(MockScheduledRepo)
	devices := new(MockDeviceRepo)
	push := new(MockPushSender)

	d := &Drainer{
		Scheduled: scheduled,
		Devices:   devices,
		Push:      push,
		Logger:    zap.NewNop(),
	}
	return d, scheduled, devices, push
}

func dueReminder(id, uid string) models.ScheduledNotification {
	return models.ScheduledNotification{
		ID:            id,
		UserID:        uid,
		Title:         "Appointment Reminder",
		Message:       `"Budget Review" starts in one hour`,
		Type:          models.NotificationTypeAppointmentReminder,
		AppointmentID: "appt-1",
		ScheduledFor:  time.Now().Add(-time.Minute),
	}
}

func TestDrainPromotesDueReminder(t *testing.T) {
	d, scheduled, devices, push := newTestDrainer()

	rec := dueReminder("sched-1", "mayor-1")
	scheduled.On("GetDue", mock.Anything).Return([]models.ScheduledNotification{rec}, nil)
	scheduled.On("Promote", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.ID == "rem-sched-1" &&
			n.UserID == rec.UserID &&
			n.Title == rec.Title &&
			n.Message == rec.Message &&
			n.Type == rec.Type &&
			n.AppointmentID == rec.AppointmentID
	})).Return(nil)
	devices.On("GetTokensByUser", "mayor-1").Return([]string{"tok-a"}, nil)
	push.On("SendMulticast", mock.Anything, []string{"tok-a"}, rec.Title, rec.Message, mock.Anything).
		Return(&notification.PushReport{SuccessCount: 1}, nil)

	drained := d.DrainDueReminders(context.Background())

	assert.Equal(t, 1, drained)
	scheduled.AssertNumberOfCalls(t, "Promote", 1)
	push.AssertNumberOfCalls(t, "SendMulticast", 1)
}

func TestDrainSkipsClaimedReminder(t *testing.T) {
	d, scheduled, devices, push := newTestDrainer()

	// The first record was claimed by a concurrent drain; the second is ours.
	claimed := dueReminder("sched-1", "mayor-1")
	fresh := dueReminder("sched-2", "mayor-2")
	scheduled.On("GetDue", mock.Anything).Return([]models.ScheduledNotification{claimed, fresh}, nil)
	scheduled.On("Promote", mock.MatchedBy(func(s *models.ScheduledNotification) bool {
		return s.ID == "sched-1"
	}), mock.Anything).Return(notifRepo.ErrAlreadySent)
	scheduled.On("Promote", mock.MatchedBy(func(s *models.ScheduledNotification) bool {
		return s.ID == "sched-2"
	}), mock.Anything).Return(nil)
	devices.On("GetTokensByUser", "mayor-2").Return([]string{"tok-b"}, nil)
	push.On("SendMulticast", mock.Anything, []string{"tok-b"}, mock.Anything, mock.Anything, mock.Anything).
		Return(&notification.PushReport{SuccessCount: 1}, nil)

	drained := d.DrainDueReminders(context.Background())

	assert.Equal(t, 1, drained)
	// A lost claim never produces a push for that record.
	devices.AssertNotCalled(t, "GetTokensByUser", "mayor-1")
	push.AssertNumberOfCalls(t, "SendMulticast", 1)
}

func TestDrainAbortsCycleOnPromotionError(t *testing.T) {
	d, scheduled, devices, push := newTestDrainer()

	first := dueReminder("sched-1", "mayor-1")
	second := dueReminder("sched-2", "mayor-2")
	scheduled.On("GetDue", mock.Anything).Return([]models.ScheduledNotification{first, second}, nil)
	scheduled.On("Promote", mock.Anything, mock.Anything).Return(assert.AnError)

	drained := d.DrainDueReminders(context.Background())

	assert.Equal(t, 0, drained)
	scheduled.AssertNumberOfCalls(t, "Promote", 1)
	devices.AssertNotCalled(t, "GetTokensByUser", mock.Anything)
	push.AssertNotCalled(t, "SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDrainSurvivesDueQueryError(t *testing.T) {
	d, scheduled, _, _ := newTestDrainer()

	scheduled.On("GetDue", mock.Anything).Return(nil, assert.AnError)

	drained := d.DrainDueReminders(context.Background())

	assert.Equal(t, 0, drained)
	scheduled.AssertNotCalled(t, "Promote", mock.Anything, mock.Anything)
}

func TestDrainPushFailureDoesNotAbortCycle(t *testing.T) {
	d, scheduled, devices, push := newTestDrainer()

	first := dueReminder("sched-1", "mayor-1")
	second := dueReminder("sched-2", "mayor-2")
	scheduled.On("GetDue", mock.Anything).Return([]models.ScheduledNotification{first, second}, nil)
	scheduled.On("Promote", mock.Anything, mock.Anything).Return(nil)
	devices.On("GetTokensByUser", mock.Anything).Return([]string{"tok-a"}, nil)
	push.On("SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	drained := d.DrainDueReminders(context.Background())

	assert.Equal(t, 2, drained)
	scheduled.AssertNumberOfCalls(t, "Promote", 2)
}

func TestDrainNoTokensSkipsPush(t *testing.T) {
	d, scheduled, devices, push := newTestDrainer()

	rec := dueReminder("sched-1", "mayor-1")
	scheduled.On("GetDue", mock.Anything).Return([]models.ScheduledNotification{rec}, nil)
	scheduled.On("Promote", mock.Anything, mock.Anything).Return(nil)
	devices.On("GetTokensByUser", "mayor-1").Return([]string{}, nil)

	drained := d.DrainDueReminders(context.Background())

	assert.Equal(t, 1, drained)
	push.AssertNotCalled(t, "SendMulticast", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
