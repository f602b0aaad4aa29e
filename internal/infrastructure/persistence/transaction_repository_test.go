package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/allocation"
	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransactions(count int) []allocation.NewTransaction {
	transactions := make([]allocation.NewTransaction, count)
	for i := range transactions {
		transactions[i] = allocation.NewTransaction{
			PropertyID:  uuid.New(),
			Amount:      valueobject.NewMoneyBRL(int64(1000 * (i + 1))),
			Date:        time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
			Category:    "TAX_IRPJ",
			Description: "IRPJ cota",
		}
	}
	return transactions
}

func TestGormTransactionWriter_CreateTransactions(t *testing.T) {
	t.Run("writes the batch inside one transaction", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		writer := NewGormTransactionWriter(gormDB)
		transactions := sampleTransactions(3)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "transactions"`).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		ids, err := writer.CreateTransactions(context.Background(), transactions)
		require.NoError(t, err)
		require.Len(t, ids, 3)
		for _, id := range ids {
			assert.NotEqual(t, uuid.Nil, id)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back and creates nothing", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		writer := NewGormTransactionWriter(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "transactions"`).
			WillReturnError(sql.ErrTxDone)
		mock.ExpectRollback()

		ids, err := writer.CreateTransactions(context.Background(), sampleTransactions(2))
		assert.Error(t, err)
		assert.Nil(t, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch rejected without touching the database", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()

		writer := NewGormTransactionWriter(gormDB)

		_, err := writer.CreateTransactions(context.Background(), nil)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
