package appointment

import (
	"context"
	"errors"
	"fmt"

	"townhall/database"
	appointmentRepo "townhall/database/repository/appointment"
	"townhall/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the target appointment does not exist.
var ErrNotFound = errors.New("appointment not found")

// DefaultAppointmentService is the production implementation. Every
// successful write is mirrored onto the change feed so the event-triggered
// notifier and live-query subscribers observe it.
type DefaultAppointmentService struct {
	Repo   appointmentRepo.AppointmentRepository
	Feed   database.ChangeFeed
	Logger *zap.Logger
}

// Create inserts a new appointment. Status is set exactly once here; all
// later status values arrive via UpdateStatus.
func (s *DefaultAppointmentService) Create(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	if appt.Title == "" {
		return nil, fmt.Errorf("appointment title is required")
	}
	if appt.When.IsZero() {
		return nil, fmt.Errorf("appointment time is required")
	}
	if appt.AssignedToUID == "" {
		return nil, fmt.Errorf("appointment assignee is required")
	}

	appt.ID = uuid.NewString()
	appt.Status = models.AppointmentStatusPending

	if err := s.Repo.Create(appt); err != nil {
		return nil, err
	}
	s.Feed.EmitCreate(database.CollAppointments, appt)
	return appt, nil
}

func (s *DefaultAppointmentService) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrNotFound
	}
	return appt, nil
}

func (s *DefaultAppointmentService) List(ctx context.Context) ([]models.Appointment, error) {
	return s.Repo.GetAll()
}

func (s *DefaultAppointmentService) ListByAssignee(ctx context.Context, uid string) ([]models.Appointment, error) {
	return s.Repo.GetByAssignee(uid)
}

// Update replaces the mutable fields. The before snapshot is captured first
// so the change feed carries both sides; a non-status edit is still emitted
// and the notifier no-ops on it.
func (s *DefaultAppointmentService) Update(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	before, err := s.Repo.GetByID(appt.ID)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, ErrNotFound
	}

	if err := s.Repo.Update(appt); err != nil {
		return nil, err
	}
	s.Feed.EmitUpdate(database.CollAppointments, before, appt)
	return appt, nil
}

// UpdateStatus sets the status field. Any status may follow any other.
func (s *DefaultAppointmentService) UpdateStatus(ctx context.Context, id, status string) (*models.Appointment, error) {
	before, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, ErrNotFound
	}

	if err := s.Repo.UpdateStatus(id, status); err != nil {
		return nil, err
	}

	after := *before
	after.Status = status
	s.Feed.EmitUpdate(database.CollAppointments, before, &after)
	return &after, nil
}

// Delete removes the appointment outright; there is no tombstone.
func (s *DefaultAppointmentService) Delete(ctx context.Context, id string) error {
	before, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	if before == nil {
		return ErrNotFound
	}

	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.Feed.EmitDelete(database.CollAppointments, before)
	s.Logger.Info("appointment deleted", zap.String("id", id))
	return nil
}
