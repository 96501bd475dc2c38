package client

import "github.com/google/uuid"

type CreatedEvent struct {
	Client Client
}

type UpdatedEvent struct {
	Client Client
}

type DeletedEvent struct {
	ID uuid.UUID
}
