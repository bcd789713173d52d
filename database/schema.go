package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the database tables if they don't exist
func InitSchema(db *sql.DB) error {
	reportsTable := `
		CREATE TABLE IF NOT EXISTS reports (
			seq BIGINT NOT NULL AUTO_INCREMENT,
			id VARCHAR(32) NOT NULL,
			title VARCHAR(255) NOT NULL DEFAULT '',
			description TEXT,
			type VARCHAR(128) NOT NULL DEFAULT '',
			latitude DOUBLE NULL,
			longitude DOUBLE NULL,
			address VARCHAR(512) NOT NULL DEFAULT '',
			priority VARCHAR(64) NOT NULL DEFAULT 'normal',
			status VARCHAR(32) NOT NULL DEFAULT 'new',
			department VARCHAR(128) NOT NULL DEFAULT '',
			assignee VARCHAR(128) NOT NULL DEFAULT '',
			image VARCHAR(512) NOT NULL DEFAULT '',
			created_at TIMESTAMP(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
			updated_at TIMESTAMP(3) NULL,
			PRIMARY KEY (seq),
			UNIQUE KEY reports_id (id),
			INDEX reports_coords (latitude, longitude)
		)
	`
	if _, err := db.Exec(reportsTable); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}

	tokensTable := `
		CREATE TABLE IF NOT EXISTS device_tokens (
			token VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (token)
		)
	`
	if _, err := db.Exec(tokensTable); err != nil {
		return fmt.Errorf("failed to create device_tokens table: %w", err)
	}

	log.Info("Database schema ensured")
	return nil
}
