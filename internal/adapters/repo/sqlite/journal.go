package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/bnema/copytrade-cli/internal/ports"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// MaxEntries caps the journal; older logins are pruned on every insert.
const MaxEntries = 50

const schema = `
CREATE TABLE IF NOT EXISTS logins (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	login_id TEXT NOT NULL,
	account_type TEXT NOT NULL,
	role TEXT NOT NULL,
	token TEXT NOT NULL,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS logins_recorded_at ON logins (recorded_at);
`

type Journal struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ ports.LoginJournal = (*Journal)(nil)

// Open creates the database file and its directory when missing.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Journal, error) {
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		logger.Warn("set WAL mode", zap.Error(err))
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		logger.Warn("set synchronous mode", zap.Error(err))
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create logins table: %w", err)
	}

	return &Journal{db: db, logger: logger}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores the login with its token masked and prunes entries beyond
// MaxEntries.
func (j *Journal) Record(ctx context.Context, record domain.LoginRecord) error {
	if record.At.IsZero() {
		record.At = time.Now()
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO logins (login_id, account_type, role, token, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		record.LoginID, string(record.AccountType), string(record.Role), domain.MaskToken(record.Token), record.At.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert login: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM logins WHERE id NOT IN (SELECT id FROM logins ORDER BY recorded_at DESC, id DESC LIMIT ?)`,
		MaxEntries,
	); err != nil {
		return fmt.Errorf("prune logins: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history transaction: %w", err)
	}

	return nil
}

// List returns the newest entries first. A non-positive limit returns all.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.LoginRecord, error) {
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT login_id, account_type, role, token, recorded_at FROM logins ORDER BY recorded_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query logins: %w", err)
	}
	defer rows.Close()

	records := make([]domain.LoginRecord, 0, limit)
	for rows.Next() {
		var (
			record      domain.LoginRecord
			accountType string
			role        string
			recordedAt  int64
		)
		if err := rows.Scan(&record.LoginID, &accountType, &role, &record.Token, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan login: %w", err)
		}
		record.AccountType = domain.AccountType(accountType)
		record.Role = domain.Role(role)
		record.At = time.Unix(0, recordedAt).UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logins: %w", err)
	}

	return records, nil
}

func (j *Journal) Clear(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM logins`); err != nil {
		return fmt.Errorf("clear logins: %w", err)
	}

	return nil
}
