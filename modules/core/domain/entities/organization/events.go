package organization

import "github.com/google/uuid"

type CreatedEvent struct {
	Organization Organization
}

type UpdatedEvent struct {
	Organization Organization
}

type DeletedEvent struct {
	ID uuid.UUID
}
