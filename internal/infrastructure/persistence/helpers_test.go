package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory sqlite database with every table migrated.
// One connection keeps the in-memory database shared and serializes writers.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// newMockDB opens GORM over sqlmock with the postgres dialect
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

var testOrderDate = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

// newTestOrder builds a DRAFT order with two lines
func newTestOrder(t *testing.T, id, customerID string) *order.Order {
	t.Helper()

	o, err := order.NewOrder(id, customerID, testOrderDate, order.Header{
		ProjectID:        "PRJ00000001",
		WorkStart:        testOrderDate,
		WorkEnd:          time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		PaymentCondition: "月末締め翌月末払い",
		BuyerResponsible: "山田",
	})
	require.NoError(t, err)

	_, err = o.AddItem(order.ItemInput{PersonName: "佐藤", BaseFee: 600000, ShortageRate: 4000, ExcessRate: 3500, Quantity: 1})
	require.NoError(t, err)
	half := decimal.RequireFromString("0.5")
	_, err = o.AddItem(order.ItemInput{PersonName: "鈴木", Effort: &half, BaseFee: 500000, Quantity: 1})
	require.NoError(t, err)

	o.ClearDomainEvents()
	return o
}
