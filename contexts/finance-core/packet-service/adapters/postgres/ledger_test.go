package postgresadapter

import (
	"context"
	"sync"
	"testing"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// statementLog collects the SQL gorm builds without executing it.
type statementLog struct {
	mu  sync.Mutex
	sql []string
}

func (l *statementLog) record(db *gorm.DB) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sql = append(l.sql, db.Statement.SQL.String())
}

func (l *statementLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.sql...)
}

func newDryRunDB(t *testing.T) (*gorm.DB, *statementLog) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost port=5432 user=redpacket dbname=redpacket sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	log := &statementLog{}
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:record_query", log.record))
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:record_update", log.record))
	return db, log
}

func TestLedgerBalanceLocksRowByKind(t *testing.T) {
	db, log := newDryRunDB(t)
	vault := entities.VaultAccount(entities.PacketID{1}, entities.NativeAsset(0))

	_, exists, err := ledger{tx: db}.Balance(context.Background(), vault)
	require.NoError(t, err)
	assert.True(t, exists)

	statements := log.all()
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], `FROM "ledger_accounts"`)
	assert.Contains(t, statements[0], "kind = $1 AND owner = $2 AND asset_key = $3")
	assert.Contains(t, statements[0], "FOR UPDATE")
}

func TestLedgerDebitIsGuardedByBalance(t *testing.T) {
	db, log := newDryRunDB(t)
	account := entities.PrincipalAccount("alice", entities.TokenAsset("usdc", 6))

	// Nothing executes, so the guarded update reports no row and the
	// follow-up lookup classifies the miss as a shortfall.
	err := ledger{tx: db}.Debit(context.Background(), account, 10)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)

	statements := log.all()
	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], `UPDATE "ledger_accounts"`)
	assert.Contains(t, statements[0], "balance >= $")
	assert.Contains(t, statements[1], "FOR UPDATE")
}
