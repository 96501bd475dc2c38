package courier

import "github.com/google/uuid"

type CreatedEvent struct {
	Courier Courier
}

type UpdatedEvent struct {
	Courier Courier
}

type DeletedEvent struct {
	ID uuid.UUID
}
