package user

import "github.com/google/uuid"

type CreatedEvent struct {
	User User
}

type UpdatedEvent struct {
	User User
}

type DeletedEvent struct {
	ID uuid.UUID
}
