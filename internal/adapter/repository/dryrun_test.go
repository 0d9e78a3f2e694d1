package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqlRecorder keeps every statement a dry-run session builds, with vars inlined
type sqlRecorder struct {
	mu    sync.Mutex
	stmts []string
}

func (r *sqlRecorder) record(tx *gorm.DB) {
	if tx.Statement.SQL.Len() == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmts = append(r.stmts, tx.Dialector.Explain(tx.Statement.SQL.String(), tx.Statement.Vars...))
}

func (r *sqlRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stmts...)
}

func (r *sqlRecorder) only(t *testing.T) string {
	t.Helper()
	stmts := r.all()
	require.Len(t, stmts, 1, "statements: %v", stmts)
	return stmts[0]
}

// newDryRunDB opens a postgres-dialect session that builds SQL without connecting
func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost port=5432 user=insights dbname=insights sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)

	rec := &sqlRecorder{}
	cb := db.Callback()
	require.NoError(t, cb.Create().After("gorm:create").Register("test:record_sql", rec.record))
	require.NoError(t, cb.Query().After("gorm:query").Register("test:record_sql", rec.record))
	require.NoError(t, cb.Update().After("gorm:update").Register("test:record_sql", rec.record))
	require.NoError(t, cb.Row().After("gorm:row").Register("test:record_sql", rec.record))
	return db, rec
}
