package ports

import (
	"context"

	"github.com/bnema/copytrade-cli/internal/domain"
)

type CopierRepository interface {
	List(ctx context.Context) ([]domain.Copier, error)
	Save(ctx context.Context, copier domain.Copier) error
	Delete(ctx context.Context, id domain.CopierID) error
	GetSession(ctx context.Context) (domain.Session, error)
	SaveSession(ctx context.Context, session domain.Session) error
}
