package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	journal, err := Open(context.Background(), filepath.Join(t.TempDir(), "history", "history.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })

	return journal
}

func TestJournalRecordMasksTokenAndListsNewestFirst(t *testing.T) {
	journal := openTestJournal(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, journal.Record(context.Background(), domain.LoginRecord{
		LoginID:     "VRTC100",
		AccountType: domain.AccountTypeDemo,
		Role:        domain.RoleTrader,
		Token:       "demo-trader-token",
		At:          base,
	}))
	require.NoError(t, journal.Record(context.Background(), domain.LoginRecord{
		LoginID:     "CR200",
		AccountType: domain.AccountTypeReal,
		Role:        domain.RoleCopier,
		Token:       "copier-token-xyz",
		At:          base.Add(time.Minute),
	}))

	records, err := journal.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.LoginRecord{
		LoginID:     "CR200",
		AccountType: domain.AccountTypeReal,
		Role:        domain.RoleCopier,
		Token:       "copi…xyz",
		At:          base.Add(time.Minute),
	}, records[0])
	assert.Equal(t, "VRTC100", records[1].LoginID)
	assert.Equal(t, "demo…ken", records[1].Token)
}

func TestJournalCapsAtMaxEntries(t *testing.T) {
	journal := openTestJournal(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < MaxEntries+5; i++ {
		require.NoError(t, journal.Record(context.Background(), domain.LoginRecord{
			LoginID: fmt.Sprintf("CR%03d", i),
			Role:    domain.RoleSession,
			At:      base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := journal.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, MaxEntries)
	assert.Equal(t, fmt.Sprintf("CR%03d", MaxEntries+4), records[0].LoginID)
	assert.Equal(t, "CR005", records[MaxEntries-1].LoginID)
}

func TestJournalListLimit(t *testing.T) {
	journal := openTestJournal(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, journal.Record(context.Background(), domain.LoginRecord{LoginID: fmt.Sprintf("CR%d", i)}))
	}

	records, err := journal.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestJournalClear(t *testing.T) {
	journal := openTestJournal(t)
	require.NoError(t, journal.Record(context.Background(), domain.LoginRecord{LoginID: "CR1"}))

	require.NoError(t, journal.Clear(context.Background()))

	records, err := journal.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestJournalPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	journal, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	require.NoError(t, journal.Record(context.Background(), domain.LoginRecord{LoginID: "CR1", Role: domain.RoleSession}))
	require.NoError(t, journal.Close())

	reopened, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	records, err := reopened.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CR1", records[0].LoginID)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	require.ErrorContains(t, err, "history path is empty")
}
