package appointment

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

type MockAppointmentRepo struct {
	mock.Mock
}

func (m *MockAppointmentRepo) Create(a *models.Appointment) error {
	return m.Called(a).Error(0)
}

func (m *MockAppointmentRepo) GetByID(id string) (*models.Appointment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepo) GetAll() ([]models.Appointment, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepo) GetByAssignee(uid string) ([]models.Appointment, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepo) Update(a *models.Appointment) error {
	return m.Called(a).Error(0)
}

func (m *MockAppointmentRepo) UpdateStatus(id, status string) error {
	return m.Called(id, status).Error(0)
}

func (m *MockAppointmentRepo) Delete(id string) error {
	return m.Called(id).Error(0)
}

func newTestService() (*DefaultAppointmentService, *MockAppointmentRepo, *database.MemoryChangeFeed) {
	repo := new(MockAppointmentRepo)
	feed := database.NewMemoryChangeFeed()
	svc := &DefaultAppointmentService{
		Repo:   repo,
		Feed:   feed,
		Logger: zap.NewNop(),
	}
	return svc, repo, feed
}

func TestCreateEmitsOntoChangeFeed(t *testing.T) {
	svc, repo, feed := newTestService()

	var created []*models.Appointment
	feed.OnCreate(database.CollAppointments, func(doc any) {
		if a, ok := doc.(*models.Appointment); ok {
			created = append(created, a)
		}
	})

	repo.On("Create", mock.Anything).Return(nil)

	appt, err := svc.Create(context.Background(), &models.Appointment{
		Title:         "Budget Review",
		When:          time.Now().Add(2 * time.Hour),
		AssignedToUID: "mayor-1",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, models.AppointmentStatusPending, appt.Status)
	if assert.Len(t, created, 1) {
		assert.Equal(t, appt.ID, created[0].ID)
	}
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc, repo, _ := newTestService()

	cases := []models.Appointment{
		{When: time.Now().Add(time.Hour), AssignedToUID: "mayor-1"},
		{Title: "Untimed", AssignedToUID: "mayor-1"},
		{Title: "Unassigned", When: time.Now().Add(time.Hour)},
	}
	for _, appt := range cases {
		_, err := svc.Create(context.Background(), &appt)
		assert.Error(t, err)
	}
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestUpdateStatusEmitsBothSnapshots(t *testing.T) {
	svc, repo, feed := newTestService()

	var gotBefore, gotAfter *models.Appointment
	feed.OnUpdate(database.CollAppointments, func(before, after any) {
		gotBefore = before.(*models.Appointment)
		gotAfter = after.(*models.Appointment)
	})

	existing := &models.Appointment{ID: "appt-1", Title: "Budget Review", Status: models.AppointmentStatusPending, AssignedToUID: "mayor-1"}
	repo.On("GetByID", "appt-1").Return(existing, nil)
	repo.On("UpdateStatus", "appt-1", models.AppointmentStatusDone).Return(nil)

	after, err := svc.UpdateStatus(context.Background(), "appt-1", models.AppointmentStatusDone)

	assert.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusDone, after.Status)
	if assert.NotNil(t, gotBefore) && assert.NotNil(t, gotAfter) {
		assert.Equal(t, models.AppointmentStatusPending, gotBefore.Status)
		assert.Equal(t, models.AppointmentStatusDone, gotAfter.Status)
	}
}

func TestUpdateStatusMissingAppointment(t *testing.T) {
	svc, repo, _ := newTestService()

	repo.On("GetByID", "ghost").Return(nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "ghost", models.AppointmentStatusDone)

	assert.ErrorIs(t, err, ErrNotFound)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestDeleteEmitsRemovedDocument(t *testing.T) {
	svc, repo, feed := newTestService()

	var removed []any
	feed.Subscribe(database.CollAppointments, func(ev database.ChangeEvent) {
		if ev.After == nil {
			removed = append(removed, ev.Before)
		}
	})

	existing := &models.Appointment{ID: "appt-1", Title: "Budget Review"}
	repo.On("GetByID", "appt-1").Return(existing, nil)
	repo.On("Delete", "appt-1").Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), "appt-1"))
	assert.Len(t, removed, 1)
}
