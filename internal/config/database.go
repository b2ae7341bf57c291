package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	// Create users table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			password VARCHAR(255) NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			invitations_left INTEGER NOT NULL DEFAULT 10 CHECK (invitations_left >= 0),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create classes table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS classes (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			coach_name VARCHAR(255) NOT NULL,
			day_of_week VARCHAR(16) NOT NULL,
			time_slot TIMESTAMP NOT NULL,
			duration_minutes INTEGER NOT NULL,
			capacity INTEGER NOT NULL,
			available_slots INTEGER NOT NULL CHECK (available_slots >= 0),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create bookings table (one active booking per user/class pair)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS bookings (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			class_id VARCHAR(36) NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, class_id)
		)
	`)
	if err != nil {
		return err
	}

	// Create invitations table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS invitations (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			invited_name VARCHAR(255) NOT NULL,
			invited_age INTEGER NOT NULL,
			invited_email VARCHAR(255) NOT NULL,
			invited_phone VARCHAR(32) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_bookings_class_id ON bookings(class_id)",
		"CREATE INDEX IF NOT EXISTS idx_invitations_user_id ON invitations(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_classes_name ON classes(name)",
	}

	for _, idx := range indexes {
		_, err = db.Exec(idx)
		if err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
