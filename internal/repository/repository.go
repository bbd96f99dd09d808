// Package repository 是基于 PostgreSQL 的排班账本
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/ledger"
)

var (
	_ ledger.Store = (*Repository)(nil)
	_ ledger.Tx    = (*queries)(nil)
)

// querier 同时被 *sql.DB 和 *sql.Tx 实现
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries 实现所有的读写操作，timeout 为 0 时沿用调用方的 context
type queries struct {
	db      querier
	timeout time.Duration
}

func (q *queries) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, q.timeout)
}

type Repository struct {
	*queries
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		queries: &queries{
			db:      dbpool,
			timeout: time.Duration(cfg.Database.QueryTimeout) * time.Second,
		},
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// WithTx 以 SERIALIZABLE 隔离级别执行 fn。
// 提交时的序列化失败会被转换为 domain.ErrConflict，调用方不应自动重试
func (r *Repository) WithTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return classify(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify(err)
	}

	return nil
}
