package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx   *fakeTx
	opts pgx.TxOptions
	err  error
}

func (b *fakeBeginner) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.opts = opts
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestTransactor_Commit(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	tr := NewTransactor(db)

	var got pgx.Tx
	err := tr.WithinTx(context.Background(), func(_ context.Context, tx pgx.Tx) error {
		got = tx
		return nil
	})
	require.NoError(t, err)

	assert.Same(t, db.tx, got)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
	assert.Equal(t, pgx.ReadCommitted, db.opts.IsoLevel)
}

func TestTransactor_Rollback(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	tr := NewTransactor(db)
	boom := errors.New("boom")

	err := tr.WithinTx(context.Background(), func(context.Context, pgx.Tx) error {
		return boom
	})

	assert.Same(t, boom, err)
	assert.False(t, db.tx.committed)
	assert.True(t, db.tx.rolledBack)
}

func TestTransactor_BeginAndCommitErrors(t *testing.T) {
	boom := errors.New("boom")

	err := NewTransactor(&fakeBeginner{err: boom}).WithinTx(context.Background(), func(context.Context, pgx.Tx) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})
	assert.ErrorIs(t, err, boom)

	db := &fakeBeginner{tx: &fakeTx{commitErr: boom}}
	err = NewTransactor(db).WithinTx(context.Background(), func(context.Context, pgx.Tx) error { return nil })
	assert.ErrorIs(t, err, boom)
	assert.True(t, db.tx.rolledBack)
}
