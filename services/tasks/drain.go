package tasks

import (
	"github.com/hibiken/asynq"
)

// TypeReminderDrain is the task type for one reminder drain cycle.
const TypeReminderDrain = "reminder:drain"

// NewDrainTask builds the periodic drain task. It carries no payload; the
// drainer always queries for whatever is currently due.
func NewDrainTask() *asynq.Task {
	return asynq.NewTask(TypeReminderDrain, nil)
}
