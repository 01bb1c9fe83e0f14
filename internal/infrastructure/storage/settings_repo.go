package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	"github.com/jbctechsolutions/parley/internal/domain/session"
)

// Compile-time check that SettingsRepository implements SettingsStore.
var _ ports.SettingsStore = (*SettingsRepository)(nil)

// SettingsRepository implements SettingsStore using SQLite. One row per
// provider identity; saving replaces the remembered settings wholesale.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Save inserts or replaces the settings row for the identity.
func (r *SettingsRepository) Save(settings session.Settings) error {
	query := `
		INSERT INTO provider_settings (identity, credential, model, base_url, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			credential = excluded.credential,
			model = excluded.model,
			base_url = excluded.base_url,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		string(settings.Identity),
		settings.Credential,
		settings.Model,
		settings.BaseURL,
		time.Now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save provider settings: %w", err)
	}

	return nil
}

// Get retrieves the remembered settings for an identity, or (nil, nil)
// when the provider has never been configured.
func (r *SettingsRepository) Get(id provider.Identity) (*session.Settings, error) {
	query := `
		SELECT identity, credential, model, base_url
		FROM provider_settings
		WHERE identity = ?
	`

	var (
		identity string
		settings session.Settings
	)
	err := r.db.QueryRow(query, string(id)).Scan(
		&identity, &settings.Credential, &settings.Model, &settings.BaseURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider settings: %w", err)
	}

	settings.Identity = provider.Identity(identity)
	return &settings, nil
}
