package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/MichalMitros/restock-monitor/internal/platform/storage/gen/postgres/public/table"
	"github.com/MichalMitros/restock-monitor/internal/stockstate"
	"github.com/samber/lo"

	pgmodels "github.com/MichalMitros/restock-monitor/internal/platform/storage/gen/postgres/public/model"
	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
)

// Postgres is storage for stock states, restock notifications and runs.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns new Postgres.
func NewPostgres(db *sql.DB) Postgres {
	return Postgres{
		db: db,
	}
}

// StartRun creates new unfinished run in database and returns it.
func (p Postgres) StartRun(ctx context.Context) (*models.Run, error) {
	var newRun pgmodels.MonitorRuns
	err := table.MonitorRuns.INSERT(table.MonitorRuns.CreatedAt).
		VALUES(pg.DEFAULT).
		RETURNING(table.MonitorRuns.ID, table.MonitorRuns.CreatedAt).
		QueryContext(ctx, p.db, &newRun)
	if err != nil {
		return nil, fmt.Errorf("can't insert run into database: %w", err)
	}

	return &models.Run{
		ID:        int(newRun.ID),
		CreatedAt: newRun.CreatedAt,
	}, nil
}

// FinishRun sets run as finished and updates run's statistics.
func (p Postgres) FinishRun(ctx context.Context, run *models.Run) error {
	columnList := table.MonitorRuns.AllColumns.Except(table.MonitorRuns.ID, table.MonitorRuns.CreatedAt)

	result, err := table.MonitorRuns.UPDATE(columnList).
		MODEL(toDBRun(run)).
		WHERE(table.MonitorRuns.ID.EQ(pg.Int32(int32(run.ID)))).
		ExecContext(ctx, p.db)
	if err != nil {
		return fmt.Errorf("can't update run: %w", err)
	}

	if rowsAffected, err := result.RowsAffected(); rowsAffected == 0 || err != nil {
		return fmt.Errorf("can't update run %d: %w", run.ID, errors.Join(err, sql.ErrNoRows))
	}

	return nil
}

// UpsertStock stores observed availability of a product and returns what changed.
// Upserts of the same product are serialized with transaction level advisory lock.
func (p Postgres) UpsertStock(ctx context.Context, obs models.Observation) (models.TransitionOutcome, error) {
	var outcome models.TransitionOutcome

	err := runInTransaction(ctx, p.db, func(tx *sql.Tx) error {
		if err := lockIdentity(ctx, tx, obs.Identity); err != nil {
			return fmt.Errorf("can't lock product %s: %w", obs.Identity, err)
		}

		prev, err := getStockState(ctx, tx, obs.Identity)
		if err != nil && !errors.Is(err, qrm.ErrNoRows) {
			return fmt.Errorf("can't get stock state from database: %w", err)
		}

		next, transition := stockstate.Apply(prev, obs)

		if prev == nil {
			err = insertStockState(ctx, tx, &next)
		} else {
			err = updateStockState(ctx, tx, &next)
		}
		if err != nil {
			return err
		}

		outcome = transition

		return nil
	})
	if err != nil {
		return models.TransitionOutcome{}, fmt.Errorf("%w %s: %w", platform.ErrPersistence, obs.Identity, err)
	}

	return outcome, nil
}

// FetchPending claims and returns undelivered notifications created inside recency window
// which have at least one subscriber and aren't claimed by other cycle.
func (p Postgres) FetchPending(ctx context.Context, query models.PendingQuery) ([]models.RestockNotification, error) {
	notifications := table.RestockNotifications

	pending := notifications.SELECT(notifications.ID).
		WHERE(pg.AND(
			notifications.EmailSent.IS_FALSE(),
			notifications.CreatedAt.GT_EQ(pg.TimestampzT(query.CreatedAfter)),
			notifications.SubscribersNotified.GT(pg.Int(0)),
			pg.OR(
				notifications.ClaimedUntil.IS_NULL(),
				notifications.ClaimedUntil.LT(pg.TimestampzT(query.Now)),
			),
		)).
		FOR(pg.UPDATE().SKIP_LOCKED())

	var claimed []pgmodels.RestockNotifications
	err := notifications.UPDATE().
		SET(
			notifications.ClaimedUntil.SET(pg.TimestampzT(query.ClaimUntil)),
		).
		WHERE(notifications.ID.IN(pending)).
		RETURNING(notifications.AllColumns).
		QueryContext(ctx, p.db, &claimed)
	if err != nil {
		return nil, fmt.Errorf("can't claim pending notifications: %w", err)
	}

	result := lo.Map(claimed, func(_ pgmodels.RestockNotifications, ix int) models.RestockNotification {
		return FromDBNotification(&claimed[ix])
	})
	sortNotifications(result)

	return result, nil
}

// RenewClaim moves claim of undelivered notifications still claimed until claimedUntil to until
// and returns ids of renewed ones. Notifications claimed by other cycle meanwhile are left untouched.
func (p Postgres) RenewClaim(ctx context.Context, ids []int64, claimedUntil, until time.Time) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	notifications := table.RestockNotifications

	var renewed []pgmodels.RestockNotifications
	err := notifications.UPDATE().
		SET(
			notifications.ClaimedUntil.SET(pg.TimestampzT(until)),
		).
		WHERE(pg.AND(
			notifications.ID.IN(idExpressions(ids)...),
			notifications.EmailSent.IS_FALSE(),
			notifications.ClaimedUntil.EQ(pg.TimestampzT(claimedUntil)),
		)).
		RETURNING(notifications.ID).
		QueryContext(ctx, p.db, &renewed)
	if err != nil {
		return nil, fmt.Errorf("can't renew notifications claim: %w", err)
	}

	held := lo.Map(renewed, func(n pgmodels.RestockNotifications, _ int) int64 { return n.ID })
	sort.Slice(held, func(i, j int) bool { return held[i] < held[j] })

	return held, nil
}

// ReleaseClaim clears claim of undelivered notifications, delivery columns stay untouched.
func (p Postgres) ReleaseClaim(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	notifications := table.RestockNotifications

	_, err := notifications.UPDATE().
		SET(
			notifications.ClaimedUntil.SET(pg.TimestampzExp(pg.NULL)),
		).
		WHERE(pg.AND(
			notifications.ID.IN(idExpressions(ids)...),
			notifications.EmailSent.IS_FALSE(),
		)).
		ExecContext(ctx, p.db)
	if err != nil {
		return fmt.Errorf("can't release notifications claim: %w", err)
	}

	return nil
}

// MarkDelivered sets delivery outcome of all provided notifications in one statement and releases their claim.
// Subscribers count reported for successful delivery replaces the one counted at creation.
func (p Postgres) MarkDelivered(ctx context.Context, ids []int64, delivery models.Delivery) error {
	if len(ids) == 0 {
		return nil
	}

	notifications := table.RestockNotifications

	assignments := []any{
		notifications.SentAt.SET(pg.TimestampzT(delivery.At)),
		notifications.ClaimedUntil.SET(pg.TimestampzExp(pg.NULL)),
	}
	if delivery.Success && delivery.Notified != nil {
		assignments = append(assignments, notifications.SubscribersNotified.SET(pg.Int32(*delivery.Notified)))
	}

	_, err := notifications.UPDATE().
		SET(notifications.EmailSent.SET(pg.Bool(delivery.Success)), assignments...).
		WHERE(pg.AND(
			notifications.ID.IN(idExpressions(ids)...),
			notifications.EmailSent.IS_FALSE(),
		)).
		ExecContext(ctx, p.db)
	if err != nil {
		return fmt.Errorf("can't mark notifications delivered: %w", err)
	}

	return nil
}

// Subscribe activates restock subscription of email for the brand.
func (p Postgres) Subscribe(ctx context.Context, email, brand string) error {
	subscriptions := table.UserSubscriptions

	_, err := subscriptions.INSERT(subscriptions.Email, subscriptions.Brand, subscriptions.IsActive).
		VALUES(email, brand, true).
		ON_CONFLICT(subscriptions.Email, subscriptions.Brand).
		DO_UPDATE(
			pg.SET(
				subscriptions.IsActive.SET(pg.Bool(true)),
			),
		).
		ExecContext(ctx, p.db)
	if err != nil {
		return fmt.Errorf("can't subscribe %s to %s: %w", email, brand, err)
	}

	return nil
}

// Unsubscribe deactivates restock subscriptions of email for the brand, brand is matched ignoring case.
func (p Postgres) Unsubscribe(ctx context.Context, email, brand string) error {
	subscriptions := table.UserSubscriptions

	_, err := subscriptions.UPDATE().
		SET(
			subscriptions.IsActive.SET(pg.Bool(false)),
		).
		WHERE(pg.AND(
			subscriptions.Email.EQ(pg.String(email)),
			pg.LOWER(subscriptions.Brand).EQ(pg.LOWER(pg.String(brand))),
		)).
		ExecContext(ctx, p.db)
	if err != nil {
		return fmt.Errorf("can't unsubscribe %s from %s: %w", email, brand, err)
	}

	return nil
}

func idExpressions(ids []int64) []pg.Expression {
	return lo.Map(ids, func(id int64, _ int) pg.Expression { return pg.Int64(id) })
}

func lockIdentity(ctx context.Context, db qrm.Executable, identity models.ProductIdentity) error {
	_, err := pg.RawStatement(
		"SELECT pg_advisory_xact_lock(hashtext(#identity))",
		pg.RawArgs{"#identity": identity.Key()},
	).ExecContext(ctx, db)

	return err
}

func getStockState(ctx context.Context, db qrm.Queryable, identity models.ProductIdentity) (*models.StockState, error) {
	var stock pgmodels.ProductStock
	err := table.ProductStock.SELECT(table.ProductStock.AllColumns).
		WHERE(pg.AND(
			table.ProductStock.Brand.EQ(pg.String(identity.Brand)),
			table.ProductStock.ProductName.EQ(pg.String(identity.ProductName)),
		)).
		QueryContext(ctx, db, &stock)
	if err != nil {
		return nil, err
	}

	return FromDBStock(&stock), nil
}

func insertStockState(ctx context.Context, db qrm.Executable, state *models.StockState) error {
	_, err := table.ProductStock.INSERT(
		table.ProductStock.MutableColumns.Except(table.ProductStock.CreatedAt),
	).
		MODEL(ToDBStock(state)).
		ExecContext(ctx, db)
	if err != nil {
		return fmt.Errorf("can't insert stock state into database: %w", err)
	}

	return nil
}

func updateStockState(ctx context.Context, db qrm.Executable, state *models.StockState) error {
	columnList := pg.ColumnList{
		table.ProductStock.IsInStock,
		table.ProductStock.LastChecked,
		table.ProductStock.StockChangeDetectedAt,
		table.ProductStock.StockURL,
	}

	_, err := table.ProductStock.UPDATE(columnList).
		MODEL(ToDBStock(state)).
		WHERE(table.ProductStock.ID.EQ(pg.Int64(state.ID))).
		ExecContext(ctx, db)
	if err != nil {
		return fmt.Errorf("can't update stock state: %w", err)
	}

	return nil
}

func sortNotifications(notifications []models.RestockNotification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		if notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].ID < notifications[j].ID
		}
		return notifications[i].CreatedAt.Before(notifications[j].CreatedAt)
	})
}

func runInTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	var (
		tx  *sql.Tx
		err error
	)

	if tx, err = db.BeginTx(ctx, nil); err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("can't rollback transaction: %w (rollback reason: %w)", rbErr, err)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit transaction: %w", err)
	}

	return nil
}
