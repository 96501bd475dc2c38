package organization

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	id        uuid.UUID
	name      string
	createdAt time.Time
	updatedAt time.Time
}

func New(name string) Organization {
	return Organization{
		id:   uuid.New(),
		name: strings.TrimSpace(name),
	}
}

func Hydrate(id uuid.UUID, name string, createdAt, updatedAt time.Time) Organization {
	return Organization{
		id:        id,
		name:      name,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (o Organization) ID() uuid.UUID        { return o.id }
func (o Organization) Name() string         { return o.name }
func (o Organization) CreatedAt() time.Time { return o.createdAt }
func (o Organization) UpdatedAt() time.Time { return o.updatedAt }
func (o Organization) IsZero() bool         { return o.id == uuid.Nil }

func (o Organization) Rename(name string) Organization {
	o.name = strings.TrimSpace(name)
	return o
}
