package xcontext

import (
	"context"

	"gorm.io/gorm"
)

// dbTx is shared by every context derived from the one returned by
// WithDBTransaction, so committing or rolling back through any of them ends
// the same transaction.
type dbTx struct {
	tx   *gorm.DB
	done bool
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the running transaction if there is one, otherwise the database
// attached by WithDB. The returned handle is bound to ctx.
func DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(dbTxKey{}).(*dbTx); ok && !tx.done {
		return tx.tx.WithContext(ctx)
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db.WithContext(ctx)
}

// WithDBTransaction begins a transaction. Every repository call made with the
// returned context runs inside it.
func WithDBTransaction(ctx context.Context) context.Context {
	tx := DB(ctx).Begin()
	return context.WithValue(ctx, dbTxKey{}, &dbTx{tx: tx})
}

// WithCommitDBTransaction commits the transaction started by
// WithDBTransaction. It is a no-op if the transaction already ended.
func WithCommitDBTransaction(ctx context.Context) error {
	tx, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || tx.done {
		return nil
	}

	tx.done = true
	return tx.tx.Commit().Error
}

// WithRollbackDBTransaction rolls the transaction back unless it has been
// committed. It is safe to defer right after WithDBTransaction.
func WithRollbackDBTransaction(ctx context.Context) {
	tx, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || tx.done {
		return
	}

	tx.done = true
	tx.tx.Rollback()
}
