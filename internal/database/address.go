package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SavedAddress is a destination the user has shipped to before.
type SavedAddress struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	ZipCode   string    `json:"zip_code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
	UseCount  int       `json:"use_count"`
}

type AddressStore struct {
	db *DB
}

func NewAddressStore(db *DB) *AddressStore {
	return &AddressStore{db: db}
}

// Save upserts by (address, zip_code): an existing row gets its use count
// bumped and last_used refreshed; the name only changes when a non-empty one
// is supplied. Returns the stored row and whether it was newly created.
func (s *AddressStore) Save(ctx context.Context, address, zipCode, name string) (*SavedAddress, bool, error) {
	var a SavedAddress
	err := s.db.QueryRow(ctx, `
		INSERT INTO saved_addresses (id, address, zip_code, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address, zip_code) DO UPDATE SET
			last_used = now(),
			use_count = saved_addresses.use_count + 1,
			name = COALESCE(NULLIF(EXCLUDED.name, ''), saved_addresses.name)
		RETURNING id, address, zip_code, COALESCE(name, ''), created_at, last_used, use_count`,
		uuid.New(), address, zipCode, name,
	).Scan(&a.ID, &a.Address, &a.ZipCode, &a.Name, &a.CreatedAt, &a.LastUsed, &a.UseCount)
	if err != nil {
		return nil, false, fmt.Errorf("failed to save address: %w", err)
	}
	return &a, a.UseCount == 1, nil
}

// List returns saved addresses, most recently used first.
func (s *AddressStore) List(ctx context.Context) ([]SavedAddress, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, address, zip_code, COALESCE(name, ''), created_at, last_used, use_count
		FROM saved_addresses
		ORDER BY last_used DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	var addresses []SavedAddress
	for rows.Next() {
		var a SavedAddress
		if err := rows.Scan(&a.ID, &a.Address, &a.ZipCode, &a.Name, &a.CreatedAt, &a.LastUsed, &a.UseCount); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (s *AddressStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM saved_addresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
