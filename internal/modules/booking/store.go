// README: Booking ledger backed by PostgreSQL.
package booking

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"matasaa/internal/modules/pricing"
)

type Store struct {
	db *pgxpool.Pool
}

var _ Ledger = (*Store)(nil)

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Record(ctx context.Context, a Attempt) error {
	sub := a.Submission
	_, err := s.db.Exec(ctx, `
        INSERT INTO booking_attempts (
            id, session_id, status, booking_id,
            customer_name, customer_email, customer_phone,
            pickup_address, dropoff_address, pickup_datetime,
            vehicle_type, passengers, estimated_price, quote_source,
            notes, failure_message, created_at
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7,
            $8, $9, $10,
            $11, $12, $13, $14,
            $15, $16, $17
        )`,
		a.ID, a.SessionID, string(a.Status), nullIfEmpty(a.BookingID),
		sub.FullName, sub.Email, sub.Phone,
		sub.PickupAddress, sub.DropoffAddress, sub.PickupDateTime(),
		string(sub.VehicleType), sub.Passengers, sub.EstimatedPrice, string(sub.QuoteSource),
		sub.Notes, nullIfEmpty(a.FailureMessage), a.CreatedAt,
	)
	return err
}

// ListBySession returns a session's attempts, oldest first.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]Attempt, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id::text, session_id, status, booking_id,
               customer_name, customer_email, customer_phone,
               pickup_address, dropoff_address, pickup_datetime,
               vehicle_type, passengers, estimated_price::float8, quote_source,
               notes, failure_message, created_at
        FROM booking_attempts
        WHERE session_id = $1
        ORDER BY created_at`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var bookingID, failure sql.NullString
		var status, pickupAt, vehicle, source string
		sub := &a.Submission
		if err := rows.Scan(
			&a.ID, &a.SessionID, &status, &bookingID,
			&sub.FullName, &sub.Email, &sub.Phone,
			&sub.PickupAddress, &sub.DropoffAddress, &pickupAt,
			&vehicle, &sub.Passengers, &sub.EstimatedPrice, &source,
			&sub.Notes, &failure, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.Status = AttemptStatus(status)
		sub.PickupDate, sub.PickupTime, _ = strings.Cut(pickupAt, " ")
		sub.VehicleType = pricing.VehicleType(vehicle)
		sub.QuoteSource = pricing.Source(source)
		a.BookingID = bookingID.String
		a.FailureMessage = failure.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
