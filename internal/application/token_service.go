package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/bnema/copytrade-cli/internal/ports"
)

const (
	copierSecretPrefix  = "copytrade/copiers/"
	sessionSecretPrefix = "copytrade/session/"
)

func CopierSecretKey(id domain.CopierID) string {
	return copierSecretPrefix + string(id)
}

func SavedTokenSecretKey(id domain.CopierID) string {
	return sessionSecretPrefix + string(id)
}

// TokenService manages copier tokens and the saved session token. Token
// values live in the secret store, metadata in the copier repository.
type TokenService struct {
	repo  ports.CopierRepository
	store ports.SecretStore
	clock ports.Clock
}

func NewTokenService(repo ports.CopierRepository, store ports.SecretStore, clock ports.Clock) *TokenService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &TokenService{
		repo:  repo,
		store: store,
		clock: clock,
	}
}

// AddCopier stores a copier token. Adding a token that is already stored
// returns the existing entry with added=false.
func (s *TokenService) AddCopier(ctx context.Context, raw string) (domain.Copier, bool, error) {
	token := domain.NormalizeToken(raw)
	if token == "" {
		return domain.Copier{}, false, domain.ErrEmptyToken
	}

	id := domain.CopierIDForToken(token)

	copiers, err := s.repo.List(ctx)
	if err != nil {
		return domain.Copier{}, false, fmt.Errorf("list copiers: %w", err)
	}
	for _, existing := range copiers {
		if existing.ID == id {
			return existing, false, nil
		}
	}

	copier := domain.Copier{
		ID:        id,
		Label:     domain.MaskToken(token),
		SecretRef: CopierSecretKey(id),
		AddedAt:   s.clock.Now(),
	}

	if err := s.store.Put(ctx, copier.SecretRef, token); err != nil {
		return domain.Copier{}, false, fmt.Errorf("store copier secret: %w", err)
	}

	if err := s.repo.Save(ctx, copier); err != nil {
		if rollbackErr := s.store.Delete(ctx, copier.SecretRef); rollbackErr != nil {
			return domain.Copier{}, false, fmt.Errorf("save copier and rollback stored secret: %w", errors.Join(err, rollbackErr))
		}

		return domain.Copier{}, false, fmt.Errorf("save copier: %w", err)
	}

	return copier, true, nil
}

// RemoveCopier deletes a copier selected by id, id prefix or token value.
// The metadata goes first; if the secret cannot be deleted the metadata is
// restored.
func (s *TokenService) RemoveCopier(ctx context.Context, selector string) (domain.Copier, error) {
	copier, err := s.findCopier(ctx, selector)
	if err != nil {
		return domain.Copier{}, err
	}

	if err := s.repo.Delete(ctx, copier.ID); err != nil {
		return domain.Copier{}, fmt.Errorf("delete copier: %w", err)
	}

	if copier.SecretRef == "" {
		return copier, nil
	}

	if err := s.store.Delete(ctx, copier.SecretRef); err != nil {
		if restoreErr := s.repo.Save(ctx, copier); restoreErr != nil {
			return domain.Copier{}, fmt.Errorf("delete copier secret and restore copier: %w", errors.Join(err, restoreErr))
		}

		return domain.Copier{}, fmt.Errorf("delete copier secret: %w", err)
	}

	return copier, nil
}

func (s *TokenService) ListCopiers(ctx context.Context) ([]domain.Copier, error) {
	copiers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list copiers: %w", err)
	}

	return copiers, nil
}

// CopierTokens resolves every stored copier to its token, in list order.
func (s *TokenService) CopierTokens(ctx context.Context) ([]string, error) {
	copiers, err := s.ListCopiers(ctx)
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(copiers))
	for _, copier := range copiers {
		token, err := s.store.Get(ctx, copier.SecretRef)
		if err != nil {
			return nil, fmt.Errorf("read secret for copier %s: %w", copier.ID, err)
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// SaveToken makes token the default for the next invocation. The previous
// saved secret is deleted only after the session points at the new one.
func (s *TokenService) SaveToken(ctx context.Context, raw string) error {
	token := domain.NormalizeToken(raw)
	if token == "" {
		return domain.ErrEmptyToken
	}

	previous, err := s.repo.GetSession(ctx)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	secretKey := SavedTokenSecretKey(domain.CopierIDForToken(token))

	if err := s.store.Put(ctx, secretKey, token); err != nil {
		return fmt.Errorf("store saved token: %w", err)
	}

	session := domain.Session{
		SavedTokenRef:   secretKey,
		SavedTokenLabel: domain.MaskToken(token),
		UpdatedAt:       s.clock.Now(),
	}

	if err := s.repo.SaveSession(ctx, session); err != nil {
		if rollbackErr := s.store.Delete(ctx, secretKey); rollbackErr != nil {
			return fmt.Errorf("save session and rollback stored token: %w", errors.Join(err, rollbackErr))
		}

		return fmt.Errorf("save session: %w", err)
	}

	if previous.SavedTokenRef == "" || previous.SavedTokenRef == secretKey {
		return nil
	}

	if err := s.store.Delete(ctx, previous.SavedTokenRef); err != nil {
		var rollbackErr error
		if restoreErr := s.repo.SaveSession(ctx, previous); restoreErr != nil {
			rollbackErr = errors.Join(rollbackErr, restoreErr)
		}
		if newSecretDeleteErr := s.store.Delete(ctx, secretKey); newSecretDeleteErr != nil {
			rollbackErr = errors.Join(rollbackErr, newSecretDeleteErr)
		}
		if rollbackErr != nil {
			return fmt.Errorf("delete previous saved token and rollback session: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("delete previous saved token: %w", err)
	}

	return nil
}

// SavedToken returns the saved token and its session metadata.
func (s *TokenService) SavedToken(ctx context.Context) (string, domain.Session, error) {
	session, err := s.repo.GetSession(ctx)
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	if session.SavedTokenRef == "" {
		return "", domain.Session{}, domain.ErrNoSavedToken
	}

	token, err := s.store.Get(ctx, session.SavedTokenRef)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", session, domain.ErrNoSavedToken
		}
		return "", session, fmt.Errorf("read saved token: %w", err)
	}

	return token, session, nil
}

// ResolveToken returns explicit when given, the saved token otherwise.
func (s *TokenService) ResolveToken(ctx context.Context, explicit string) (string, error) {
	if token := domain.NormalizeToken(explicit); token != "" {
		return token, nil
	}

	token, _, err := s.SavedToken(ctx)
	if err != nil {
		return "", err
	}

	return token, nil
}

// BatchTokens returns the stored copier tokens, or the saved token alone
// when no copier is stored.
func (s *TokenService) BatchTokens(ctx context.Context) ([]string, error) {
	tokens, err := s.CopierTokens(ctx)
	if err != nil {
		return nil, err
	}
	if len(tokens) > 0 {
		return tokens, nil
	}

	saved, _, err := s.SavedToken(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoSavedToken) {
			return nil, domain.ErrNoCopiers
		}
		return nil, err
	}

	return []string{saved}, nil
}

func (s *TokenService) findCopier(ctx context.Context, selector string) (domain.Copier, error) {
	selector = domain.NormalizeToken(selector)
	if selector == "" {
		return domain.Copier{}, domain.ErrEmptyToken
	}

	copiers, err := s.repo.List(ctx)
	if err != nil {
		return domain.Copier{}, fmt.Errorf("list copiers: %w", err)
	}

	byToken := domain.CopierIDForToken(selector)
	var matches []domain.Copier
	for _, copier := range copiers {
		if copier.ID == domain.CopierID(selector) || copier.ID == byToken {
			return copier, nil
		}
		if strings.HasPrefix(string(copier.ID), selector) {
			matches = append(matches, copier)
		}
	}

	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return domain.Copier{}, fmt.Errorf("copier id prefix %q is ambiguous", selector)
	}

	return domain.Copier{}, domain.ErrCopierNotFound
}
