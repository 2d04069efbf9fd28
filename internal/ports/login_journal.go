package ports

import (
	"context"

	"github.com/bnema/copytrade-cli/internal/domain"
)

type LoginJournal interface {
	Record(ctx context.Context, record domain.LoginRecord) error
	List(ctx context.Context, limit int) ([]domain.LoginRecord, error)
	Clear(ctx context.Context) error
}
