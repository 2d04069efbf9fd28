package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Session *sessionSchema `toml:"session,omitempty"`
	Copiers []copierSchema `toml:"copiers"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported copiers schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type copierSchema struct {
	ID        string `toml:"id"`
	Label     string `toml:"label"`
	SecretRef string `toml:"secret_ref"`
	AddedAt   string `toml:"added_at,omitempty"`
}

type sessionSchema struct {
	SavedTokenRef   string `toml:"saved_token_ref"`
	SavedTokenLabel string `toml:"saved_token_label,omitempty"`
	UpdatedAt       string `toml:"updated_at,omitempty"`
}
