package address

import (
	"context"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

var ErrNotFound = gerrors.New("address not found")

type Address struct {
	ID           uuid.UUID `json:"id"`
	Street       string    `json:"street,omitempty"`
	StreetNumber string    `json:"streetNumber,omitempty"`
	Complement   string    `json:"complement,omitempty"`
	City         string    `json:"city,omitempty"`
	Province     string    `json:"province,omitempty"`
	PostalCode   string    `json:"postalCode,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Payload is the inbound representation of an address. All fields are
// optional; an all-blank payload means "no address supplied".
type Payload struct {
	Street       string `json:"street"`
	StreetNumber string `json:"streetNumber"`
	Complement   string `json:"complement"`
	City         string `json:"city"`
	Province     string `json:"province"`
	PostalCode   string `json:"postalCode"`
}

func (p *Payload) Normalize() {
	p.Street = strings.TrimSpace(p.Street)
	p.StreetNumber = strings.TrimSpace(p.StreetNumber)
	p.Complement = strings.TrimSpace(p.Complement)
	p.City = strings.TrimSpace(p.City)
	p.Province = strings.TrimSpace(p.Province)
	p.PostalCode = strings.TrimSpace(p.PostalCode)
}

func (p *Payload) Empty() bool {
	p.Normalize()
	return p.Street == "" && p.StreetNumber == "" && p.Complement == "" &&
		p.City == "" && p.Province == "" && p.PostalCode == ""
}

func (p *Payload) ToAddress(id uuid.UUID) Address {
	p.Normalize()
	return Address{
		ID:           id,
		Street:       p.Street,
		StreetNumber: p.StreetNumber,
		Complement:   p.Complement,
		City:         p.City,
		Province:     p.Province,
		PostalCode:   p.PostalCode,
	}
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Address, error)
	Create(ctx context.Context, a Address) (Address, error)
	Update(ctx context.Context, a Address) error
	Delete(ctx context.Context, id uuid.UUID) error
}
