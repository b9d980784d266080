package notification

import (
	"context"
	"testing"
	"time"

	"townhall/database"
	"townhall/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(n *models.Notification) error {
	return m.Called(n).Error(0)
}

func (m *MockNotificationRepo) GetByID(id string) (*models.Notification, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationRepo) GetByRecipient(uid string, limit int64) ([]models.Notification, error) {
	args := m.Called(uid, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationRepo) CountUnread(uid string) (int64, error) {
	args := m.Called(uid)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) MarkRead(id string) error {
	return m.Called(id).Error(0)
}

func (m *MockNotificationRepo) Delete(id string) error {
	return m.Called(id).Error(0)
}

func (m *MockNotificationRepo) DeleteAllForRecipient(uid string) error {
	return m.Called(uid).Error(0)
}

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

func (m *MockPushSender) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*PushReport, error) {
	args := m.Called(ctx, tokens, title, body, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PushReport), args.Error(1)
}

func newTestController() (*Controller, *MockNotificationRepo, *MockScheduledRepo, *MockDeviceRepo, *MockPushSender, database.ChangeFeed) {
	repo := new(MockNotificationRepo)
	scheduled := new(MockScheduledRepo)
	devices := new(MockDeviceRepo)
	push := new(MockPushSender)
	feed := database.NewMemoryChangeFeed()

	c := NewController(repo, scheduled, devices, push, feed, zap.NewNop(), 20)
	return c, repo, scheduled, devices, push, feed
}

func sampleFeedPage() []models.Notification {
	return []models.Notification{
		{ID: "n-3", UserID: "mayor-1", Title: "Appointment Status Updated", Type: models.NotificationTypeStatusChanged, Read: false},
		{ID: "n-2", UserID: "mayor-1", Title: "Appointment Reminder", Type: models.NotificationTypeAppointmentReminder, Read: false},
		{ID: "n-1", UserID: "mayor-1", Title: "New Appointment", Type: models.NotificationTypeAppointmentCreated, Read: true},
	}
}

func TestLoadNotificationsComputesUnread(t *testing.T) {
	c, repo, _, _, _, _ := newTestController()

	repo.On("GetByRecipient", "mayor-1", int64(20)).Return(sampleFeedPage(), nil)

	c.LoadNotifications("mayor-1")

	assert.False(t, c.Loading())
	assert.Len(t, c.Notifications(), 3)
	assert.Equal(t, 2, c.UnreadCount())
	assert.Empty(t, c.LastError())
}

func TestMarkAsReadIdempotent(t *testing.T) {
	c, repo, _, _, _, _ := newTestController()

	repo.On("GetByRecipient", "mayor-1", int64(20)).Return(sampleFeedPage(), nil)
	repo.On("MarkRead", "n-2").Return(nil)

	c.LoadNotifications("mayor-1")
	assert.Equal(t, 2, c.UnreadCount())

	assert.NoError(t, c.MarkAsRead("n-2"))
	assert.Equal(t, 1, c.UnreadCount())

	// Marking the same record again changes nothing.
	assert.NoError(t, c.MarkAsRead("n-2"))
	assert.Equal(t, 1, c.UnreadCount())
	repo.AssertNumberOfCalls(t, "MarkRead", 2)
}

func TestMarkAsReadRemoteFailureLeavesLocalState(t *testing.T) {
	c, repo, _, _, _, _ := newTestController()

	repo.On("GetByRecipient", "mayor-1", int64(20)).Return(sampleFeedPage(), nil)
	repo.On("MarkRead", "n-2").Return(assert.AnError)

	c.LoadNotifications("mayor-1")

	assert.Error(t, c.MarkAsRead("n-2"))
	// The remote write failed, so the local view did not move.
	assert.Equal(t, 2, c.UnreadCount())
	assert.NotEmpty(t, c.LastError())
}

func TestDeleteRecomputesUnread(t *testing.T) {
	c, repo, _, _, _, _ := newTestController()

	fullPage := sampleFeedPage()
	afterFirst := []models.Notification{fullPage[0], fullPage[1]}
	afterSecond := []models.Notification{fullPage[1]}

	// Each delete is emitted onto the feed and the live subscription
	// re-queries the store, so the stub mirrors the shrinking remote set.
	repo.On("GetByRecipient", "mayor-1", int64(20)).Return(fullPage, nil).Once()
	repo.On("GetByRecipient", "mayor-1", int64(20)).Return(afterFirst, nil).Once()
	repo.On("GetByRecipient", "mayor-1", int64(20)).Return(afterSecond, nil).Once()
	repo.On("Delete", "n-1").Return(nil)
	repo.On("Delete", "n-3").Return(nil)

	c.LoadNotifications("mayor-1")

	// Deleting an already-read record leaves the unread count alone.
	assert.NoError(t, c.DeleteNotification("n-1"))
	assert.Equal(t, 2, c.UnreadCount())
	assert.Len(t, c.Notifications(), 2)

	// Deleting an unread record drops it.
	assert.NoError(t, c.DeleteNotification("n-3"))
	assert.Equal(t, 1, c.UnreadCount())
	assert.Len(t, c.Notifications(), 1)
}

func TestDeleteDoesNotMutateRepositoryPage(t *testing.T) {
	c, repo, _, _, _, _ := newTestController()

	page := sampleFeedPage()
	repo.On("GetByRecipient", "mayor-1", int64(20)).Return(page, nil)
	repo.On("Delete", "n-3").Return(nil)

	c.LoadNotifications("mayor-1")
	c.Unsubscribe()

	assert.NoError(t, c.DeleteNotification("n-3"))
	assert.Len(t, c.Notifications(), 2)

	// The view shrank, but the slice the repository handed out is intact.
	if assert.Len(t, page, 3) {
		assert.Equal(t, "n-3", page[0].ID)
		assert.Equal(t, "n-2", page[1].ID)
		assert.Equal(t, "n-1", page[2].ID)
	}
}

func TestLiveViewRefreshesOnFeedEvent(t *testing.T) {
	c, repo, _, _, _, feed := newTestController()

	repo.On("GetByRecipient", "mayor-1", int64(20)).Return(sampleFeedPage(), nil)

	c.LoadNotifications("mayor-1")
	repo.AssertNumberOfCalls(t, "GetByRecipient", 1)

	feed.EmitCreate(database.CollNotifications, &models.Notification{ID: "n-4", UserID: "mayor-1"})
	repo.AssertNumberOfCalls(t, "GetByRecipient", 2)

	// Events for other identities do not touch this view.
	feed.EmitCreate(database.CollNotifications, &models.Notification{ID: "n-5", UserID: "someone-else"})
	repo.AssertNumberOfCalls(t, "GetByRecipient", 2)
}

func TestReloadReleasesPriorSubscription(t *testing.T) {
	c, repo, _, _, _, feed := newTestController()

	repo.On("GetByRecipient", "mayor-1", int64(20)).Return(sampleFeedPage(), nil)

	c.LoadNotifications("mayor-1")
	c.LoadNotifications("mayor-1")
	repo.AssertNumberOfCalls(t, "GetByRecipient", 2)

	// A single live subscription remains: one event, one refresh.
	feed.EmitCreate(database.CollNotifications, &models.Notification{ID: "n-4", UserID: "mayor-1"})
	repo.AssertNumberOfCalls(t, "GetByRecipient", 3)

	c.Unsubscribe()
	feed.EmitCreate(database.CollNotifications, &models.Notification{ID: "n-5", UserID: "mayor-1"})
	repo.AssertNumberOfCalls(t, "GetByRecipient", 3)
}

func TestSendNotificationPersistsAndEmits(t *testing.T) {
	c, repo, _, _, _, _ := newTestController()

	repo.On("GetByRecipient", "mayor-1", int64(20)).Return(sampleFeedPage(), nil)
	repo.On("Create", mock.MatchedBy(func(n *models.Notification) bool {
		return n.ID != "" && !n.CreatedAt.IsZero() && n.UserID == "mayor-1"
	})).Return(nil)

	c.LoadNotifications("mayor-1")

	err := c.SendNotification(&models.Notification{
		UserID:  "mayor-1",
		Title:   "Test Notification",
		Message: "diagnostic send",
		Type:    models.NotificationTypeTest,
	})

	assert.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Create", 1)
	// The emitted event flows back through the live subscription.
	repo.AssertNumberOfCalls(t, "GetByRecipient", 2)
}

func TestScheduleNotificationWritesDeferredRecord(t *testing.T) {
	c, _, scheduled, _, _, _ := newTestController()

	when := time.Now().Add(45 * time.Minute)
	scheduled.On("Create", mock.MatchedBy(func(s *models.ScheduledNotification) bool {
		return s.ScheduledFor.Equal(when) && !s.Sent && s.UserID == "mayor-1"
	})).Return(nil)

	err := c.ScheduleNotification(&models.Notification{
		UserID: "mayor-1",
		Title:  "Appointment Reminder",
		Type:   models.NotificationTypeAppointmentReminder,
	}, when)

	assert.NoError(t, err)
	scheduled.AssertNumberOfCalls(t, "Create", 1)
}

func TestClearAllEmptiesView(t *testing.T) {
	c, repo, _, _, _, _ := newTestController()

	repo.On("GetByRecipient", "mayor-1", int64(20)).Return(sampleFeedPage(), nil)
	repo.On("DeleteAllForRecipient", "mayor-1").Return(nil)

	c.LoadNotifications("mayor-1")
	assert.NoError(t, c.ClearAll())

	assert.Empty(t, c.Notifications())
	assert.Equal(t, 0, c.UnreadCount())
}

func TestSetupPushNotificationsStages(t *testing.T) {
	t.Run("provider unavailable", func(t *testing.T) {
		c, repo, _, devices, push, _ := newTestController()
		repo.On("GetByRecipient", "mayor-1", int64(20)).Return(sampleFeedPage(), nil)
		c.LoadNotifications("mayor-1")

		push.On("Available").Return(false)

		assert.False(t, c.SetupPushNotifications(context.Background(), "tok-a", "android"))
		assert.False(t, c.PushEnabled())
		devices.AssertNotCalled(t, "Register", mock.Anything)
	})

	t.Run("empty token", func(t *testing.T) {
		c, repo, _, devices, push, _ := newTestController()
		repo.On("GetByRecipient", "mayor-1", int64(20)).Return(sampleFeedPage(), nil)
		c.LoadNotifications("mayor-1")

		push.On("Available").Return(true)

		assert.False(t, c.SetupPushNotifications(context.Background(), "", "android"))
		assert.False(t, c.PushEnabled())
		devices.AssertNotCalled(t, "Register", mock.Anything)
	})

	t.Run("no active identity", func(t *testing.T) {
		c, _, _, devices, push, _ := newTestController()

		push.On("Available").Return(true)

		assert.False(t, c.SetupPushNotifications(context.Background(), "tok-a", "android"))
		assert.False(t, c.PushEnabled())
		devices.AssertNotCalled(t, "Register", mock.Anything)
	})

	t.Run("registration succeeds", func(t *testing.T) {
		c, repo, _, devices, push, _ := newTestController()
		repo.On("GetByRecipient", "mayor-1", int64(20)).Return(sampleFeedPage(), nil)
		c.LoadNotifications("mayor-1")

		push.On("Available").Return(true)
		devices.On("Register", mock.MatchedBy(func(d *models.DeviceToken) bool {
			return d.UserID == "mayor-1" && d.Token == "tok-a" && d.Platform == "android"
		})).Return(nil)

		assert.True(t, c.SetupPushNotifications(context.Background(), "tok-a", "android"))
		assert.True(t, c.PushEnabled())
	})
}

func TestCheckNotificationPermissionMirrorsAvailability(t *testing.T) {
	c, _, _, _, push, _ := newTestController()

	push.On("Available").Return(true).Once()
	assert.True(t, c.CheckNotificationPermission())
	assert.True(t, c.PushEnabled())

	push.On("Available").Return(false).Once()
	assert.False(t, c.CheckNotificationPermission())
	assert.False(t, c.PushEnabled())
}
