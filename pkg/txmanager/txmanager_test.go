package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionBookingService/pkg/sqlfake"
)

func TestDo_CommitsOnSuccess(t *testing.T) {
	db, fake := sqlfake.Open()
	defer db.Close()
	m := NewTransactionManager(db)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		assert.True(t, IsInTransaction(ctx))
		_, err := GetExecutor(ctx, db).ExecContext(ctx, "UPDATE bookings SET status = $1", "paid")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"begin", "commit"}, fake.Events())
	require.Len(t, fake.Queries(), 1)
	assert.True(t, fake.LastQuery().InTx, "executor from ctx must be the transaction")
}

func TestDo_RollsBackOnError(t *testing.T) {
	db, fake := sqlfake.Open()
	defer db.Close()
	m := NewTransactionManager(db)

	boom := errors.New("conflict")
	err := m.Do(context.Background(), func(ctx context.Context) error {
		if _, err := GetExecutor(ctx, db).ExecContext(ctx, "UPDATE bookings SET status = $1", "paid"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"begin", "rollback"}, fake.Events())
}

func TestDo_RollsBackOnPanic(t *testing.T) {
	db, fake := sqlfake.Open()
	defer db.Close()
	m := NewTransactionManager(db)

	assert.Panics(t, func() {
		_ = m.Do(context.Background(), func(context.Context) error {
			panic("boom")
		})
	})
	assert.Equal(t, []string{"begin", "rollback"}, fake.Events())
}

func TestDo_NestedCallReusesOuterTransaction(t *testing.T) {
	db, fake := sqlfake.Open()
	defer db.Close()
	m := NewTransactionManager(db)

	err := m.DoSerializable(context.Background(), func(outer context.Context) error {
		return m.Do(outer, func(inner context.Context) error {
			assert.Same(t, GetExecutor(outer, db), GetExecutor(inner, db))
			_, err := GetExecutor(inner, db).ExecContext(inner, "SELECT 1")
			return err
		})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"begin", "commit"}, fake.Events(), "one transaction for nested calls")
	require.Len(t, fake.TxOptions(), 1)
	assert.Equal(t, sql.LevelSerializable, sql.IsolationLevel(fake.TxOptions()[0].Isolation))
}

func TestDo_NestedErrorRollsBackOuter(t *testing.T) {
	db, fake := sqlfake.Open()
	defer db.Close()
	m := NewTransactionManager(db)

	boom := errors.New("inner failed")
	err := m.Do(context.Background(), func(outer context.Context) error {
		return m.Do(outer, func(context.Context) error { return boom })
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"begin", "rollback"}, fake.Events())
}

func TestDo_CommitFailure(t *testing.T) {
	db, fake := sqlfake.Open()
	defer db.Close()
	m := NewTransactionManager(db)
	fake.FailCommit(errors.New("serialization failure"))

	err := m.Do(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, ErrTransaction)
	assert.Contains(t, err.Error(), "serialization failure")
}

func TestDoReadOnly_Options(t *testing.T) {
	db, fake := sqlfake.Open()
	defer db.Close()

	require.NoError(t, NewTransactionManager(db).DoReadOnly(context.Background(), func(context.Context) error { return nil }))
	require.Len(t, fake.TxOptions(), 1)
	assert.True(t, fake.TxOptions()[0].ReadOnly)
}

func TestGetExecutor_OutsideTransaction(t *testing.T) {
	db, _ := sqlfake.Open()
	defer db.Close()

	assert.False(t, IsInTransaction(context.Background()))
	assert.Same(t, db, GetExecutor(context.Background(), db))
}
