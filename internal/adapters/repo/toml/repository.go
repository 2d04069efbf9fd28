package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/bnema/copytrade-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	copiersFileMode = 0o600
	copiersDirMode  = 0o700
	tempFilePattern = ".copiers-*.toml.tmp"
)

// Repository keeps the copier list and the saved-token session in one TOML
// file. Writes replace the file atomically.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.CopierRepository = (*Repository)(nil)

func NewRepository(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("copiers path is empty")
	}

	normalized, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{path: normalized, mu: lockForPath(normalized)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

// Save inserts the copier or replaces the entry with the same id, keeping
// insertion order.
func (r *Repository) Save(ctx context.Context, copier domain.Copier) error {
	return r.update(ctx, func(file *fileSchema) error {
		encoded := toCopierSchema(copier)
		for i := range file.Copiers {
			if file.Copiers[i].ID == encoded.ID {
				file.Copiers[i] = encoded
				return nil
			}
		}

		file.Copiers = append(file.Copiers, encoded)
		return nil
	})
}

func (r *Repository) Delete(ctx context.Context, id domain.CopierID) error {
	return r.update(ctx, func(file *fileSchema) error {
		for i := range file.Copiers {
			if file.Copiers[i].ID == string(id) {
				file.Copiers = append(file.Copiers[:i], file.Copiers[i+1:]...)
				return nil
			}
		}

		return domain.ErrCopierNotFound
	})
}

func (r *Repository) List(ctx context.Context) ([]domain.Copier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	copiers := make([]domain.Copier, 0, len(file.Copiers))
	for _, entry := range file.Copiers {
		copiers = append(copiers, fromCopierSchema(entry))
	}

	return copiers, nil
}

func (r *Repository) GetSession(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Session{}, err
	}
	if file.Session == nil {
		return domain.Session{}, nil
	}

	return domain.Session{
		SavedTokenRef:   file.Session.SavedTokenRef,
		SavedTokenLabel: file.Session.SavedTokenLabel,
		UpdatedAt:       parseTime(file.Session.UpdatedAt),
	}, nil
}

// SaveSession stores the session; a zero session removes the table.
func (r *Repository) SaveSession(ctx context.Context, session domain.Session) error {
	return r.update(ctx, func(file *fileSchema) error {
		if session == (domain.Session{}) {
			file.Session = nil
			return nil
		}

		file.Session = &sessionSchema{
			SavedTokenRef:   session.SavedTokenRef,
			SavedTokenLabel: session.SavedTokenLabel,
			UpdatedAt:       formatTime(session.UpdatedAt),
		}
		return nil
	})
}

func (r *Repository) update(ctx context.Context, mutate func(*fileSchema) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	if err := mutate(&file); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read copiers file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode copiers file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, copiersDirMode); err != nil {
		return fmt.Errorf("create copiers directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode copiers file: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp copiers file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp copiers file: %w", err)
	}

	if err := tempFile.Chmod(copiersFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp copiers file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp copiers file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace copiers file: %w", err)
	}
	cleanup = false

	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve copiers path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toCopierSchema(copier domain.Copier) copierSchema {
	return copierSchema{
		ID:        string(copier.ID),
		Label:     copier.Label,
		SecretRef: copier.SecretRef,
		AddedAt:   formatTime(copier.AddedAt),
	}
}

func fromCopierSchema(entry copierSchema) domain.Copier {
	return domain.Copier{
		ID:        domain.CopierID(entry.ID),
		Label:     entry.Label,
		SecretRef: entry.SecretRef,
		AddedAt:   parseTime(entry.AddedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
