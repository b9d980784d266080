package appointmentRepo

import "townhall/models"

// AppointmentRepository defines methods for appointment data access.
// Writes are last-write-wins; no document is locked across operations.
type AppointmentRepository interface {
	// Create inserts a new appointment record.
	Create(appt *models.Appointment) error
	// GetByID retrieves an appointment by its unique ID, nil when absent.
	GetByID(id string) (*models.Appointment, error)
	// GetAll retrieves all appointments, newest scheduled first.
	GetAll() ([]models.Appointment, error)
	// GetByAssignee retrieves appointments assigned to a user.
	GetByAssignee(uid string) ([]models.Appointment, error)
	// Update replaces the mutable fields of an appointment.
	Update(appt *models.Appointment) error
	// UpdateStatus sets only the status field.
	UpdateStatus(id, status string) error
	// Delete removes an appointment record (hard delete, no tombstone).
	Delete(id string) error
}
