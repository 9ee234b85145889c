package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	pgmodels "github.com/MichalMitros/restock-monitor/internal/platform/storage/gen/postgres/public/model"
	"github.com/MichalMitros/restock-monitor/internal/platform/storage/gen/postgres/public/table"
	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

const (
	contentType = "Content-Type"
	waitTimeout = time.Minute
)

// LatestRunID returns ID of the latest run or 0 if there is no run yet.
func LatestRunID(t *testing.T, queryable qrm.Queryable) int {
	t.Helper()

	var runs []pgmodels.MonitorRuns
	err := table.MonitorRuns.SELECT(table.MonitorRuns.ID).
		ORDER_BY(table.MonitorRuns.ID.DESC()).
		LIMIT(1).
		Query(queryable, &runs)
	if err != nil {
		require.FailNow(t, "can't get latest run", err)
	}

	if len(runs) == 0 {
		return 0
	}
	return int(runs[0].ID)
}

// WaitForRunToBeFinished is blocking helper function, returns first run newer than afterID after it is finished.
func WaitForRunToBeFinished(t *testing.T, queryable qrm.Queryable, afterID int) pgmodels.MonitorRuns {
	t.Helper()

	deadline := time.After(waitTimeout)
	for {
		select {
		case <-deadline:
			require.FailNow(t, "run wasn't finished in time")
		case <-time.After(time.Millisecond * 250):
		}

		var runs []pgmodels.MonitorRuns
		err := table.MonitorRuns.SELECT(table.MonitorRuns.AllColumns).
			WHERE(pg.AND(
				table.MonitorRuns.ID.GT(pg.Int(int64(afterID))),
				table.MonitorRuns.FinishedAt.IS_NOT_NULL(),
			)).
			ORDER_BY(table.MonitorRuns.ID).
			LIMIT(1).
			Query(queryable, &runs)
		if err != nil {
			require.FailNow(t, "can't get finished run", err)
		}

		if len(runs) > 0 {
			return runs[0]
		}
	}
}

// PrepareMockedShop is helper function for mocking shop product page.
// Returns shop server and function for setting page to return, page number is from 0 to len(pages) exclusive.
func PrepareMockedShop(t *testing.T, pages []string) (*httptest.Server, func(int)) {
	t.Helper()

	var pageToReturnIx atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
		wrt.Header().Add(contentType, "text/html; charset=utf-8")
		wrt.WriteHeader(http.StatusOK)
		_, _ = wrt.Write([]byte(pages[pageToReturnIx.Load()]))
	}))

	t.Cleanup(func() {
		srv.Close()
	})

	return srv, func(i int) { pageToReturnIx.Store(int32(i)) }
}

// PrepareNotificationEndpoint is helper function for mocking notification endpoint.
// Returns endpoint server and function returning all received payloads.
func PrepareNotificationEndpoint(t *testing.T) (*httptest.Server, func() []models.RestockPayload) {
	t.Helper()

	var mu sync.Mutex
	received := []models.RestockPayload{}

	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
		var payload models.RestockPayload
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			wrt.WriteHeader(http.StatusBadRequest)
			return
		}

		mu.Lock()
		received = append(received, payload)
		mu.Unlock()

		wrt.WriteHeader(http.StatusAccepted)
	}))

	t.Cleanup(func() {
		srv.Close()
	})

	return srv, func() []models.RestockPayload {
		mu.Lock()
		defer mu.Unlock()
		return append([]models.RestockPayload{}, received...)
	}
}

// DeleteRMQQueueOnCleanup is helper function for deleting RMQ queue after test is finished.
func DeleteRMQQueueOnCleanup(t *testing.T, channel *amqp.Channel, queueName string) {
	t.Helper()

	t.Cleanup(func() {
		_, err := channel.QueueDelete(queueName, false, false, true)
		if err != nil {
			require.FailNow(t, "can't delete queue", queueName, err)
		}
	})
}

// CatalogYAML returns catalog with single text strategy brand tracking provided product pages.
func CatalogYAML(brand string, urls ...string) []byte {
	catalog := fmt.Sprintf("brands:\n  - name: %s\n    strategy: text\n    products:\n", brand)
	for _, url := range urls {
		catalog += fmt.Sprintf("      - %s\n", url)
	}
	return []byte(catalog)
}
