package recordsync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStore persists record fields and carrier tokens in Postgres.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to Postgres and verifies the connection.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SetShipmentField sets one whitelisted column on a shipment row. The column
// name is interpolated only after the whitelist check; the value is bound.
func (s *PostgresStore) SetShipmentField(ctx context.Context, shipmentName, field, value string) error {
	if err := checkShipmentField(field); err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE shipments SET %s = $1, modified_at = NOW() WHERE name = $2", field)
	result, err := s.db.ExecContext(ctx, query, value, shipmentName)
	if err != nil {
		return fmt.Errorf("updating shipment %s: %w", shipmentName, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("shipment %s not found", shipmentName)
	}
	return nil
}

// SetDeliveryNoteField sets one whitelisted column on a delivery note row.
func (s *PostgresStore) SetDeliveryNoteField(ctx context.Context, noteName, field, value string) error {
	if err := checkDeliveryNoteField(field); err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE delivery_notes SET %s = $1, modified_at = NOW() WHERE name = $2", field)
	result, err := s.db.ExecContext(ctx, query, value, noteName)
	if err != nil {
		return fmt.Errorf("updating delivery note %s: %w", noteName, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("delivery note %s not found", noteName)
	}
	return nil
}

// LoadToken returns the stored token for a carrier, empty when absent.
func (s *PostgresStore) LoadToken(ctx context.Context, carrierName string) (string, error) {
	var token string
	err := s.db.GetContext(ctx, &token,
		"SELECT token FROM carrier_tokens WHERE carrier = $1", carrierName)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading token for %s: %w", carrierName, err)
	}
	return token, nil
}

// SaveToken upserts a carrier auth token.
func (s *PostgresStore) SaveToken(ctx context.Context, carrierName string, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO carrier_tokens (carrier, token, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (carrier) DO UPDATE SET token = $2, updated_at = NOW()`,
		carrierName, token)
	if err != nil {
		return fmt.Errorf("saving token for %s: %w", carrierName, err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
