package task

import "github.com/google/uuid"

type CreatedEvent struct {
	Task Task
}

type UpdatedEvent struct {
	Task Task
}

// StatusChangedEvent fires only when an update moved the task between
// statuses; the matching history entry is written in the same transaction.
type StatusChangedEvent struct {
	Task           Task
	PreviousStatus Status
}

type DeletedEvent struct {
	ID uuid.UUID
}
