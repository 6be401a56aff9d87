package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS hospitals (
		id uuid PRIMARY KEY,
		name text NOT NULL,
		address text NOT NULL,
		contact text,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS doctors (
		id uuid PRIMARY KEY,
		name text NOT NULL,
		specialization text NOT NULL,
		hospital_id uuid NOT NULL REFERENCES hospitals(id),
		is_active boolean NOT NULL DEFAULT true,
		slot_templates text[] NOT NULL DEFAULT '{}',
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id uuid PRIMARY KEY,
		name text NOT NULL,
		email text,
		role text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id uuid PRIMARY KEY,
		user_id uuid NOT NULL REFERENCES users(id),
		doctor_id uuid NOT NULL REFERENCES doctors(id),
		appointment_date timestamptz NOT NULL,
		status text NOT NULL DEFAULT 'scheduled',
		notes text,
		meet_link text,
		call_status text NOT NULL DEFAULT 'not_started',
		call_start_time timestamptz,
		call_end_time timestamptz,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_doctor_date
		ON appointments (doctor_id, appointment_date)
		WHERE status <> 'cancelled'`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_user
		ON appointments (user_id, appointment_date DESC)`,
	`CREATE TABLE IF NOT EXISTS event_logs (
		id bigserial PRIMARY KEY,
		event_type text NOT NULL,
		appointment_id uuid,
		payload jsonb,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
