package persistence

import (
	"context"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/courierdesk/courierdesk/modules/logistics/domain/entities/address"
	"github.com/courierdesk/courierdesk/pkg/composables"
)

const (
	addressFindQuery = `
        SELECT
            a.id,
            a.street,
            a.street_number,
            a.complement,
            a.city,
            a.province,
            a.postal_code,
            a.created_at,
            a.updated_at
        FROM addresses a`

	addressInsertQuery = `
        INSERT INTO addresses (id, street, street_number, complement, city, province, postal_code, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	addressUpdateQuery = `
        UPDATE addresses
        SET street = $2,
            street_number = $3,
            complement = $4,
            city = $5,
            province = $6,
            postal_code = $7,
            updated_at = NOW()
        WHERE id = $1`

	addressDeleteQuery = `DELETE FROM addresses WHERE id = $1`
)

type PgAddressRepository struct{}

func NewAddressRepository() address.Repository {
	return &PgAddressRepository{}
}

func (g *PgAddressRepository) GetByID(ctx context.Context, id uuid.UUID) (address.Address, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return address.Address{}, err
	}

	row := tx.QueryRow(ctx, addressFindQuery+" WHERE a.id = $1", id)
	a, err := scanAddress(row)
	if err != nil {
		if gerrors.Is(err, pgx.ErrNoRows) {
			return address.Address{}, address.ErrNotFound
		}
		return address.Address{}, gerrors.Wrap(err, "failed to get address")
	}
	return a, nil
}

func (g *PgAddressRepository) Create(ctx context.Context, a address.Address) (address.Address, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return address.Address{}, err
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err = tx.Exec(ctx, addressInsertQuery,
		a.ID,
		nullIfBlank(a.Street),
		nullIfBlank(a.StreetNumber),
		nullIfBlank(a.Complement),
		nullIfBlank(a.City),
		nullIfBlank(a.Province),
		nullIfBlank(a.PostalCode),
	)
	if err != nil {
		return address.Address{}, gerrors.Wrap(err, "failed to create address")
	}
	return g.GetByID(ctx, a.ID)
}

func (g *PgAddressRepository) Update(ctx context.Context, a address.Address) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, addressUpdateQuery,
		a.ID,
		nullIfBlank(a.Street),
		nullIfBlank(a.StreetNumber),
		nullIfBlank(a.Complement),
		nullIfBlank(a.City),
		nullIfBlank(a.Province),
		nullIfBlank(a.PostalCode),
	)
	if err != nil {
		return gerrors.Wrap(err, "failed to update address")
	}
	if tag.RowsAffected() == 0 {
		return address.ErrNotFound
	}
	return nil
}

func (g *PgAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, addressDeleteQuery, id); err != nil {
		return gerrors.Wrap(err, "failed to delete address")
	}
	return nil
}

func scanAddress(row pgx.Row) (address.Address, error) {
	var (
		id                   uuid.UUID
		street, streetNumber *string
		complement, city     *string
		province, postalCode *string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &street, &streetNumber, &complement, &city, &province, &postalCode, &createdAt, &updatedAt); err != nil {
		return address.Address{}, err
	}
	return address.Address{
		ID:           id,
		Street:       deref(street),
		StreetNumber: deref(streetNumber),
		Complement:   deref(complement),
		City:         deref(city),
		Province:     deref(province),
		PostalCode:   deref(postalCode),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}
