package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type snapshotKey struct{}

// Snapshotter runs a unit of work against one consistent read view.
type Snapshotter struct {
	db *sqlx.DB
}

// NewSnapshotter constructs a snapshotter over db.
func NewSnapshotter(db *sqlx.DB) *Snapshotter {
	return &Snapshotter{db: db}
}

// Run opens a read-only REPEATABLE READ transaction, stores it in the context
// handed to fn and commits once fn returns. Repository reads issued with that
// context go through the transaction. A context already carrying a snapshot
// is reused as is.
func (s *Snapshotter) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(snapshotKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, snapshotKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	committed = true
	return nil
}

// InSnapshot reports whether ctx carries an open snapshot.
func InSnapshot(ctx context.Context) bool {
	_, ok := ctx.Value(snapshotKey{}).(*sqlx.Tx)
	return ok
}

// queryer returns the snapshot transaction carried by ctx, or db when there is none.
func queryer(ctx context.Context, db *sqlx.DB) sqlx.QueryerContext {
	if tx, ok := ctx.Value(snapshotKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}
