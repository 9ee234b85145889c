package storagetesting

import (
	"database/sql"
	"os"
	"testing"

	pgmodels "github.com/MichalMitros/restock-monitor/internal/platform/storage/gen/postgres/public/model"
	"github.com/MichalMitros/restock-monitor/internal/platform/storage/gen/postgres/public/table"
	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"

	_ "github.com/lib/pq"
)

// Open opens connection to DB.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("please provide database URL via DATABASE_URL environment variable")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("can't open connection to %q: %s", dbURL, err)
	}

	return db
}

// InsertSubscriptions is a helper test function to insert user subscriptions.
func InsertSubscriptions(t *testing.T, exc qrm.Executable, subscriptions ...pgmodels.UserSubscriptions) {
	t.Helper()

	if len(subscriptions) == 0 {
		return
	}

	_, err := table.UserSubscriptions.INSERT(
		table.UserSubscriptions.Email,
		table.UserSubscriptions.Brand,
		table.UserSubscriptions.IsActive,
	).MODELS(subscriptions).Exec(exc)
	if err != nil {
		t.Fatal("can't insert subscriptions", err)
	}
}

// InsertStock is a helper test function to insert product stock rows.
func InsertStock(t *testing.T, exc qrm.Executable, stock ...pgmodels.ProductStock) {
	t.Helper()

	if len(stock) == 0 {
		return
	}

	_, err := table.ProductStock.INSERT(
		table.ProductStock.MutableColumns.Except(table.ProductStock.CreatedAt),
	).MODELS(stock).Exec(exc)
	if err != nil {
		t.Fatal("can't insert product stock", err)
	}
}

// GetStock is a helper test function to get stock row of a product.
func GetStock(t *testing.T, queryable qrm.Queryable, brand, productName string) pgmodels.ProductStock {
	t.Helper()

	var stock pgmodels.ProductStock
	err := table.ProductStock.SELECT(table.ProductStock.AllColumns).
		WHERE(pg.AND(
			table.ProductStock.Brand.EQ(pg.String(brand)),
			table.ProductStock.ProductName.EQ(pg.String(productName)),
		)).
		Query(queryable, &stock)
	if err != nil {
		t.Fatal("can't get product stock", err)
	}

	return stock
}

// GetNotifications is a helper test function to get all notifications of the brand ordered by creation time.
func GetNotifications(t *testing.T, queryable qrm.Queryable, brand string) []pgmodels.RestockNotifications {
	t.Helper()

	notifications := []pgmodels.RestockNotifications{}
	err := table.RestockNotifications.SELECT(table.RestockNotifications.AllColumns).
		WHERE(table.RestockNotifications.Brand.EQ(pg.String(brand))).
		ORDER_BY(table.RestockNotifications.CreatedAt, table.RestockNotifications.ID).
		Query(queryable, &notifications)
	if err != nil {
		t.Fatal("can't get notifications", err)
	}

	return notifications
}

// GetRun is a helper test function to get run by ID.
func GetRun(t *testing.T, queryable qrm.Queryable, id int) pgmodels.MonitorRuns {
	t.Helper()

	var run pgmodels.MonitorRuns
	err := table.MonitorRuns.SELECT(table.MonitorRuns.AllColumns).
		WHERE(table.MonitorRuns.ID.EQ(pg.Int32(int32(id)))).
		Query(queryable, &run)
	if err != nil {
		t.Fatal("can't get run", err)
	}

	return run
}

// CleanupData removes all rows from monitor tables.
func CleanupData(t *testing.T, exc qrm.Executable) {
	t.Helper()

	_, err := table.RestockNotifications.DELETE().WHERE(table.RestockNotifications.ID.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete notifications data", err)
	}

	_, err = table.ProductStock.DELETE().WHERE(table.ProductStock.ID.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete product stock data", err)
	}

	_, err = table.UserSubscriptions.DELETE().WHERE(table.UserSubscriptions.ID.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete subscriptions data", err)
	}

	_, err = table.MonitorRuns.DELETE().WHERE(table.MonitorRuns.ID.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete runs data", err)
	}
}
