package appointment

import (
	"context"

	"townhall/models"
)

// AppointmentService defines scheduling operations. Status transitions are
// not validated server-side and concurrent edits resolve last-write-wins.
type AppointmentService interface {
	Create(ctx context.Context, appt *models.Appointment) (*models.Appointment, error)
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context) ([]models.Appointment, error)
	ListByAssignee(ctx context.Context, uid string) ([]models.Appointment, error)
	Update(ctx context.Context, appt *models.Appointment) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Appointment, error)
	Delete(ctx context.Context, id string) error
}
