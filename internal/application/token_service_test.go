package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/bnema/copytrade-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceAddCopierStoresSecretThenMetadata(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	clock := mocks.NewMockClock(t)
	service := NewTokenService(repo, store, clock)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	id := domain.CopierIDForToken("copier-token-1")

	repo.EXPECT().List(mockAnyContext()).Return(nil, nil)
	clock.EXPECT().Now().Return(now)
	store.EXPECT().Put(mockAnyContext(), CopierSecretKey(id), "copier-token-1").Return(nil)
	repo.EXPECT().Save(mockAnyContext(), domain.Copier{
		ID:        id,
		Label:     "copi…n-1",
		SecretRef: CopierSecretKey(id),
		AddedAt:   now,
	}).Return(nil)

	copier, added, err := service.AddCopier(context.Background(), "  copier-token-1 \n")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, id, copier.ID)
	assert.Equal(t, "copytrade/copiers/"+string(id), copier.SecretRef)
}

func TestTokenServiceAddCopierSkipsDuplicate(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewTokenService(repo, store, mocks.NewMockClock(t))

	existing := domain.Copier{ID: domain.CopierIDForToken("copier-token-1"), Label: "copi…n-1"}
	repo.EXPECT().List(mockAnyContext()).Return([]domain.Copier{existing}, nil)

	copier, added, err := service.AddCopier(context.Background(), "copier-token-1")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, existing, copier)
}

func TestTokenServiceAddCopierRejectsEmptyToken(t *testing.T) {
	service := NewTokenService(mocks.NewMockCopierRepository(t), mocks.NewMockSecretStore(t), mocks.NewMockClock(t))

	_, _, err := service.AddCopier(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrEmptyToken)
}

func TestTokenServiceAddCopierRollsBackSecretWhenSaveFails(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	clock := mocks.NewMockClock(t)
	service := NewTokenService(repo, store, clock)

	id := domain.CopierIDForToken("copier-token-1")
	saveErr := errors.New("disk full")

	repo.EXPECT().List(mockAnyContext()).Return(nil, nil)
	clock.EXPECT().Now().Return(time.Time{})
	store.EXPECT().Put(mockAnyContext(), CopierSecretKey(id), "copier-token-1").Return(nil)
	repo.EXPECT().Save(mockAnyContext(), mock.Anything).Return(saveErr)
	store.EXPECT().Delete(mockAnyContext(), CopierSecretKey(id)).Return(nil)

	_, _, err := service.AddCopier(context.Background(), "copier-token-1")
	require.ErrorIs(t, err, saveErr)
	assert.ErrorContains(t, err, "save copier")
}

func TestTokenServiceAddCopierJoinsRollbackFailure(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	clock := mocks.NewMockClock(t)
	service := NewTokenService(repo, store, clock)

	saveErr := errors.New("disk full")
	rollbackErr := errors.New("pass locked")

	repo.EXPECT().List(mockAnyContext()).Return(nil, nil)
	clock.EXPECT().Now().Return(time.Time{})
	store.EXPECT().Put(mockAnyContext(), mock.Anything, "copier-token-1").Return(nil)
	repo.EXPECT().Save(mockAnyContext(), mock.Anything).Return(saveErr)
	store.EXPECT().Delete(mockAnyContext(), mock.Anything).Return(rollbackErr)

	_, _, err := service.AddCopier(context.Background(), "copier-token-1")
	require.ErrorIs(t, err, saveErr)
	require.ErrorIs(t, err, rollbackErr)
}

func TestTokenServiceRemoveCopierByTokenOrPrefix(t *testing.T) {
	id := domain.CopierIDForToken("copier-token-1")
	copier := domain.Copier{ID: id, SecretRef: CopierSecretKey(id)}
	other := domain.Copier{ID: "ffffffffffff", SecretRef: CopierSecretKey("ffffffffffff")}

	for _, selector := range []string{"copier-token-1", string(id), string(id)[:5]} {
		t.Run(selector, func(t *testing.T) {
			repo := mocks.NewMockCopierRepository(t)
			store := mocks.NewMockSecretStore(t)
			service := NewTokenService(repo, store, mocks.NewMockClock(t))

			repo.EXPECT().List(mockAnyContext()).Return([]domain.Copier{other, copier}, nil)
			repo.EXPECT().Delete(mockAnyContext(), id).Return(nil)
			store.EXPECT().Delete(mockAnyContext(), copier.SecretRef).Return(nil)

			removed, err := service.RemoveCopier(context.Background(), selector)
			require.NoError(t, err)
			assert.Equal(t, copier, removed)
		})
	}
}

func TestTokenServiceRemoveCopierNotFound(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	service := NewTokenService(repo, mocks.NewMockSecretStore(t), mocks.NewMockClock(t))

	repo.EXPECT().List(mockAnyContext()).Return([]domain.Copier{{ID: "aaaaaaaaaaaa"}}, nil)

	_, err := service.RemoveCopier(context.Background(), "zzz")
	require.ErrorIs(t, err, domain.ErrCopierNotFound)
}

func TestTokenServiceRemoveCopierRejectsAmbiguousPrefix(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	service := NewTokenService(repo, mocks.NewMockSecretStore(t), mocks.NewMockClock(t))

	repo.EXPECT().List(mockAnyContext()).Return([]domain.Copier{{ID: "abc111111111"}, {ID: "abc222222222"}}, nil)

	_, err := service.RemoveCopier(context.Background(), "abc")
	require.ErrorContains(t, err, "ambiguous")
}

func TestTokenServiceRemoveCopierRestoresMetadataWhenSecretDeleteFails(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewTokenService(repo, store, mocks.NewMockClock(t))

	copier := domain.Copier{ID: "abc111111111", SecretRef: CopierSecretKey("abc111111111")}
	deleteErr := errors.New("pass locked")

	repo.EXPECT().List(mockAnyContext()).Return([]domain.Copier{copier}, nil)
	repo.EXPECT().Delete(mockAnyContext(), copier.ID).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), copier.SecretRef).Return(deleteErr)
	repo.EXPECT().Save(mockAnyContext(), copier).Return(nil)

	_, err := service.RemoveCopier(context.Background(), "abc1")
	require.ErrorIs(t, err, deleteErr)
}

func TestTokenServiceCopierTokensKeepsListOrder(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewTokenService(repo, store, mocks.NewMockClock(t))

	repo.EXPECT().List(mockAnyContext()).Return([]domain.Copier{
		{ID: "b", SecretRef: "ref-b"},
		{ID: "a", SecretRef: "ref-a"},
	}, nil)
	store.EXPECT().Get(mockAnyContext(), "ref-b").Return("token-b", nil)
	store.EXPECT().Get(mockAnyContext(), "ref-a").Return("token-a", nil)

	tokens, err := service.CopierTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"token-b", "token-a"}, tokens)
}

func TestTokenServiceSaveTokenFirstTime(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	clock := mocks.NewMockClock(t)
	service := NewTokenService(repo, store, clock)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	key := SavedTokenSecretKey(domain.CopierIDForToken("saved-token-1"))

	repo.EXPECT().GetSession(mockAnyContext()).Return(domain.Session{}, nil)
	store.EXPECT().Put(mockAnyContext(), key, "saved-token-1").Return(nil)
	clock.EXPECT().Now().Return(now)
	repo.EXPECT().SaveSession(mockAnyContext(), domain.Session{
		SavedTokenRef:   key,
		SavedTokenLabel: "save…n-1",
		UpdatedAt:       now,
	}).Return(nil)

	require.NoError(t, service.SaveToken(context.Background(), "saved-token-1"))
}

func TestTokenServiceSaveTokenRotationDeletesPreviousSecret(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	clock := mocks.NewMockClock(t)
	service := NewTokenService(repo, store, clock)

	previous := domain.Session{SavedTokenRef: "copytrade/session/old", SavedTokenLabel: "old"}
	key := SavedTokenSecretKey(domain.CopierIDForToken("saved-token-2"))

	repo.EXPECT().GetSession(mockAnyContext()).Return(previous, nil)
	store.EXPECT().Put(mockAnyContext(), key, "saved-token-2").Return(nil)
	clock.EXPECT().Now().Return(time.Time{})
	repo.EXPECT().SaveSession(mockAnyContext(), mock.MatchedBy(func(session domain.Session) bool {
		return session.SavedTokenRef == key
	})).Return(nil)
	store.EXPECT().Delete(mockAnyContext(), previous.SavedTokenRef).Return(nil)

	require.NoError(t, service.SaveToken(context.Background(), "saved-token-2"))
}

func TestTokenServiceSaveTokenRollsBackWhenPreviousSecretDeleteFails(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	clock := mocks.NewMockClock(t)
	service := NewTokenService(repo, store, clock)

	previous := domain.Session{SavedTokenRef: "copytrade/session/old", SavedTokenLabel: "old"}
	key := SavedTokenSecretKey(domain.CopierIDForToken("saved-token-2"))
	deleteErr := errors.New("delete old secret failed")

	repo.EXPECT().GetSession(mockAnyContext()).Return(previous, nil)
	store.EXPECT().Put(mockAnyContext(), key, "saved-token-2").Return(nil)
	clock.EXPECT().Now().Return(time.Time{})
	repo.EXPECT().SaveSession(mockAnyContext(), mock.MatchedBy(func(session domain.Session) bool {
		return session.SavedTokenRef == key
	})).Return(nil).Once()
	store.EXPECT().Delete(mockAnyContext(), previous.SavedTokenRef).Return(deleteErr)
	repo.EXPECT().SaveSession(mockAnyContext(), previous).Return(nil).Once()
	store.EXPECT().Delete(mockAnyContext(), key).Return(nil)

	err := service.SaveToken(context.Background(), "saved-token-2")
	require.ErrorIs(t, err, deleteErr)
	assert.ErrorContains(t, err, "delete previous saved token")
}

func TestTokenServiceSaveSameTokenKeepsSecret(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	clock := mocks.NewMockClock(t)
	service := NewTokenService(repo, store, clock)

	key := SavedTokenSecretKey(domain.CopierIDForToken("saved-token-1"))

	repo.EXPECT().GetSession(mockAnyContext()).Return(domain.Session{SavedTokenRef: key}, nil)
	store.EXPECT().Put(mockAnyContext(), key, "saved-token-1").Return(nil)
	clock.EXPECT().Now().Return(time.Time{})
	repo.EXPECT().SaveSession(mockAnyContext(), mock.Anything).Return(nil)

	require.NoError(t, service.SaveToken(context.Background(), "saved-token-1"))
}

func TestTokenServiceSavedTokenWithoutSession(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	service := NewTokenService(repo, mocks.NewMockSecretStore(t), mocks.NewMockClock(t))

	repo.EXPECT().GetSession(mockAnyContext()).Return(domain.Session{}, nil)

	_, _, err := service.SavedToken(context.Background())
	require.ErrorIs(t, err, domain.ErrNoSavedToken)
}

func TestTokenServiceSavedTokenWithMissingSecret(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewTokenService(repo, store, mocks.NewMockClock(t))

	repo.EXPECT().GetSession(mockAnyContext()).Return(domain.Session{SavedTokenRef: "ref"}, nil)
	store.EXPECT().Get(mockAnyContext(), "ref").Return("", fmt.Errorf("read: %w", domain.ErrSecretNotFound))

	_, _, err := service.SavedToken(context.Background())
	require.ErrorIs(t, err, domain.ErrNoSavedToken)
}

func TestTokenServiceResolveTokenPrefersExplicit(t *testing.T) {
	service := NewTokenService(mocks.NewMockCopierRepository(t), mocks.NewMockSecretStore(t), mocks.NewMockClock(t))

	token, err := service.ResolveToken(context.Background(), " explicit-token ")
	require.NoError(t, err)
	assert.Equal(t, "explicit-token", token)
}

func TestTokenServiceResolveTokenFallsBackToSaved(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewTokenService(repo, store, mocks.NewMockClock(t))

	repo.EXPECT().GetSession(mockAnyContext()).Return(domain.Session{SavedTokenRef: "ref"}, nil)
	store.EXPECT().Get(mockAnyContext(), "ref").Return("saved-token-1", nil)

	token, err := service.ResolveToken(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "saved-token-1", token)
}

func TestTokenServiceBatchTokensFallsBackToSavedToken(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	store := mocks.NewMockSecretStore(t)
	service := NewTokenService(repo, store, mocks.NewMockClock(t))

	repo.EXPECT().List(mockAnyContext()).Return(nil, nil)
	repo.EXPECT().GetSession(mockAnyContext()).Return(domain.Session{SavedTokenRef: "ref"}, nil)
	store.EXPECT().Get(mockAnyContext(), "ref").Return("saved-token-1", nil)

	tokens, err := service.BatchTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"saved-token-1"}, tokens)
}

func TestTokenServiceBatchTokensWithNothingStored(t *testing.T) {
	repo := mocks.NewMockCopierRepository(t)
	service := NewTokenService(repo, mocks.NewMockSecretStore(t), mocks.NewMockClock(t))

	repo.EXPECT().List(mockAnyContext()).Return(nil, nil)
	repo.EXPECT().GetSession(mockAnyContext()).Return(domain.Session{}, nil)

	_, err := service.BatchTokens(context.Background())
	require.ErrorIs(t, err, domain.ErrNoCopiers)
}

func mockAnyContext() interface{} {
	return mock.Anything
}
