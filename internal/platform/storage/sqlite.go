package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MichalMitros/restock-monitor/internal/platform"
	"github.com/MichalMitros/restock-monitor/internal/platform/models"
	"github.com/MichalMitros/restock-monitor/internal/stockstate"
	"github.com/samber/lo"

	_ "modernc.org/sqlite"
)

// Timestamps are stored as unix milliseconds in UTC.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS product_stock (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	brand TEXT NOT NULL,
	product_name TEXT NOT NULL,
	is_in_stock INTEGER NOT NULL DEFAULT 0,
	last_checked INTEGER NOT NULL,
	stock_change_detected_at INTEGER,
	stock_url TEXT,
	created_at INTEGER NOT NULL DEFAULT (CAST(strftime('%s', 'now') AS INTEGER) * 1000),
	UNIQUE (brand, product_name)
);

CREATE TABLE IF NOT EXISTS user_subscriptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL,
	brand TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at INTEGER NOT NULL DEFAULT (CAST(strftime('%s', 'now') AS INTEGER) * 1000),
	UNIQUE (email, brand)
);

CREATE TABLE IF NOT EXISTS restock_notifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	brand TEXT NOT NULL,
	product_name TEXT NOT NULL,
	product_url TEXT,
	subscribers_notified INTEGER NOT NULL DEFAULT 0,
	email_sent INTEGER NOT NULL DEFAULT 0,
	sent_at INTEGER,
	claimed_until INTEGER,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS restock_notifications_pending_idx
	ON restock_notifications (created_at)
	WHERE email_sent = 0;

CREATE TABLE IF NOT EXISTS monitor_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at INTEGER NOT NULL,
	finished_at INTEGER,
	success INTEGER,
	status_message TEXT,
	checked_products INTEGER,
	in_stock_products INTEGER,
	skipped_products INTEGER,
	failed_products INTEGER,
	restocks_detected INTEGER,
	brands_notified INTEGER,
	failed_notifications INTEGER
);

CREATE TRIGGER IF NOT EXISTS product_stock_restock_insert
AFTER INSERT ON product_stock
WHEN NEW.stock_change_detected_at IS NOT NULL
BEGIN
	INSERT INTO restock_notifications (brand, product_name, product_url, subscribers_notified, created_at)
	SELECT NEW.brand, NEW.product_name, NEW.stock_url, COUNT(*), NEW.stock_change_detected_at
	FROM user_subscriptions
	WHERE LOWER(user_subscriptions.brand) = LOWER(NEW.brand) AND user_subscriptions.is_active = 1;
END;

CREATE TRIGGER IF NOT EXISTS product_stock_restock_update
AFTER UPDATE OF stock_change_detected_at ON product_stock
WHEN NEW.stock_change_detected_at IS NOT NULL
	AND NEW.stock_change_detected_at IS NOT OLD.stock_change_detected_at
BEGIN
	INSERT INTO restock_notifications (brand, product_name, product_url, subscribers_notified, created_at)
	SELECT NEW.brand, NEW.product_name, NEW.stock_url, COUNT(*), NEW.stock_change_detected_at
	FROM user_subscriptions
	WHERE LOWER(user_subscriptions.brand) = LOWER(NEW.brand) AND user_subscriptions.is_active = 1;
END;
`

// SQLite is single file storage for stock states, restock notifications and runs.
// It mirrors Postgres schema and semantics for local runs.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens SQLite database under path.
// All queries go through single connection, so upserts and claims are serialized.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("can't open sqlite database %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	return db, nil
}

// NewSQLite creates schema if needed and returns new SQLite.
func NewSQLite(ctx context.Context, db *sql.DB) (SQLite, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return SQLite{}, fmt.Errorf("can't init sqlite schema: %w", err)
	}

	return SQLite{
		db: db,
	}, nil
}

// StartRun creates new unfinished run in database and returns it.
func (s SQLite) StartRun(ctx context.Context) (*models.Run, error) {
	createdAt := time.Now().UTC().Truncate(time.Millisecond)

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO monitor_runs (created_at) VALUES (?)`,
		createdAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("can't insert run into database: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("can't get inserted run id: %w", err)
	}

	return &models.Run{
		ID:        int(id),
		CreatedAt: createdAt,
	}, nil
}

// FinishRun sets run as finished and updates run's statistics.
func (s SQLite) FinishRun(ctx context.Context, run *models.Run) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE monitor_runs SET
			finished_at = ?,
			success = ?,
			status_message = ?,
			checked_products = ?,
			in_stock_products = ?,
			skipped_products = ?,
			failed_products = ?,
			restocks_detected = ?,
			brands_notified = ?,
			failed_notifications = ?
		WHERE id = ?`,
		nullMillis(run.FinishedAt),
		nullBool(run.IsSuccess),
		nullString(run.StatusMessage),
		nullInt32(run.CheckedProducts),
		nullInt32(run.InStockProducts),
		nullInt32(run.SkippedProducts),
		nullInt32(run.FailedProducts),
		nullInt32(run.RestocksDetected),
		nullInt32(run.BrandsNotified),
		nullInt32(run.FailedNotifications),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("can't update run: %w", err)
	}

	if rowsAffected, err := result.RowsAffected(); rowsAffected == 0 || err != nil {
		return fmt.Errorf("can't update run %d: %w", run.ID, errors.Join(err, sql.ErrNoRows))
	}

	return nil
}

// GetRun returns run by ID.
func (s SQLite) GetRun(ctx context.Context, id int) (*models.Run, error) {
	var (
		run           models.Run
		createdAt     int64
		finishedAt    sql.NullInt64
		success       sql.NullBool
		statusMessage sql.NullString
		counters      [7]sql.NullInt32
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, finished_at, success, status_message,
			checked_products, in_stock_products, skipped_products, failed_products,
			restocks_detected, brands_notified, failed_notifications
		FROM monitor_runs WHERE id = ?`, id,
	).Scan(
		&run.ID, &createdAt, &finishedAt, &success, &statusMessage,
		&counters[0], &counters[1], &counters[2], &counters[3],
		&counters[4], &counters[5], &counters[6],
	)
	if err != nil {
		return nil, fmt.Errorf("can't get run %d: %w", id, err)
	}

	run.CreatedAt = fromMillis(createdAt)
	run.FinishedAt = optionalMillis(finishedAt)
	if success.Valid {
		run.IsSuccess = lo.ToPtr(success.Bool)
	}
	if statusMessage.Valid {
		run.StatusMessage = lo.ToPtr(statusMessage.String)
	}
	run.CheckedProducts = optionalInt32(counters[0])
	run.InStockProducts = optionalInt32(counters[1])
	run.SkippedProducts = optionalInt32(counters[2])
	run.FailedProducts = optionalInt32(counters[3])
	run.RestocksDetected = optionalInt32(counters[4])
	run.BrandsNotified = optionalInt32(counters[5])
	run.FailedNotifications = optionalInt32(counters[6])

	return &run, nil
}

// UpsertStock stores observed availability of a product and returns what changed.
func (s SQLite) UpsertStock(ctx context.Context, obs models.Observation) (models.TransitionOutcome, error) {
	var outcome models.TransitionOutcome

	err := runInTransaction(ctx, s.db, func(tx *sql.Tx) error {
		prev, err := s.getStockState(ctx, tx, obs.Identity)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("can't get stock state from database: %w", err)
		}

		next, transition := stockstate.Apply(prev, obs)

		if prev == nil {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO product_stock (brand, product_name, is_in_stock, last_checked, stock_change_detected_at, stock_url)
				VALUES (?, ?, ?, ?, ?, ?)`,
				next.Identity.Brand,
				next.Identity.ProductName,
				boolInt(next.IsInStock),
				toMillis(next.LastChecked),
				nullMillis(next.StockChangeDetectedAt),
				nullString(next.StockURL),
			)
			if err != nil {
				return fmt.Errorf("can't insert stock state into database: %w", err)
			}
		} else {
			_, err = tx.ExecContext(ctx, `
				UPDATE product_stock SET
					is_in_stock = ?,
					last_checked = ?,
					stock_change_detected_at = ?,
					stock_url = ?
				WHERE id = ?`,
				boolInt(next.IsInStock),
				toMillis(next.LastChecked),
				nullMillis(next.StockChangeDetectedAt),
				nullString(next.StockURL),
				next.ID,
			)
			if err != nil {
				return fmt.Errorf("can't update stock state: %w", err)
			}
		}

		outcome = transition

		return nil
	})
	if err != nil {
		return models.TransitionOutcome{}, fmt.Errorf("%w %s: %w", platform.ErrPersistence, obs.Identity, err)
	}

	return outcome, nil
}

// Subscribe activates restock subscription of email for the brand.
func (s SQLite) Subscribe(ctx context.Context, email, brand string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_subscriptions (email, brand, is_active) VALUES (?, ?, 1)
		ON CONFLICT (email, brand) DO UPDATE SET is_active = 1`,
		email,
		brand,
	)
	if err != nil {
		return fmt.Errorf("can't subscribe %s to %s: %w", email, brand, err)
	}

	return nil
}

// Unsubscribe deactivates restock subscriptions of email for the brand, brand is matched ignoring case.
func (s SQLite) Unsubscribe(ctx context.Context, email, brand string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_subscriptions SET is_active = 0 WHERE email = ? AND LOWER(brand) = LOWER(?)`,
		email,
		brand,
	)
	if err != nil {
		return fmt.Errorf("can't unsubscribe %s from %s: %w", email, brand, err)
	}

	return nil
}

// GetStockState returns current stock state of a product.
// It returns sql.ErrNoRows for products which were never stored.
func (s SQLite) GetStockState(ctx context.Context, identity models.ProductIdentity) (*models.StockState, error) {
	return s.getStockState(ctx, s.db, identity)
}

// FetchPending claims and returns undelivered notifications created inside recency window
// which have at least one subscriber and aren't claimed by other cycle.
func (s SQLite) FetchPending(ctx context.Context, query models.PendingQuery) ([]models.RestockNotification, error) {
	rows, err := s.db.QueryContext(ctx, `
		UPDATE restock_notifications SET claimed_until = ?
		WHERE email_sent = 0
			AND created_at >= ?
			AND subscribers_notified > 0
			AND (claimed_until IS NULL OR claimed_until < ?)
		RETURNING id, brand, product_name, product_url, subscribers_notified, email_sent, sent_at, created_at`,
		toMillis(query.ClaimUntil),
		toMillis(query.CreatedAfter),
		toMillis(query.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("can't claim pending notifications: %w", err)
	}
	defer rows.Close()

	var result []models.RestockNotification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("can't scan pending notification: %w", err)
		}
		result = append(result, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read pending notifications: %w", err)
	}

	sortNotifications(result)

	return result, nil
}

// RenewClaim moves claim of undelivered notifications still claimed until claimedUntil to until
// and returns ids of renewed ones. Notifications claimed by other cycle meanwhile are left untouched.
func (s SQLite) RenewClaim(ctx context.Context, ids []int64, claimedUntil, until time.Time) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := []any{toMillis(until), toMillis(claimedUntil)}
	args = append(args, lo.ToAnySlice(ids)...)

	rows, err := s.db.QueryContext(ctx, `
		UPDATE restock_notifications SET claimed_until = ?
		WHERE email_sent = 0 AND claimed_until = ? AND id IN (`+placeholders(len(ids))+`)
		RETURNING id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("can't renew notifications claim: %w", err)
	}
	defer rows.Close()

	var held []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("can't scan renewed notification: %w", err)
		}
		held = append(held, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read renewed notifications: %w", err)
	}

	sort.Slice(held, func(i, j int) bool { return held[i] < held[j] })

	return held, nil
}

// ReleaseClaim clears claim of undelivered notifications, delivery columns stay untouched.
func (s SQLite) ReleaseClaim(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE restock_notifications SET claimed_until = NULL
		WHERE email_sent = 0 AND id IN (`+placeholders(len(ids))+`)`,
		lo.ToAnySlice(ids)...,
	)
	if err != nil {
		return fmt.Errorf("can't release notifications claim: %w", err)
	}

	return nil
}

// MarkDelivered sets delivery outcome of all provided notifications in one statement and releases their claim.
// Subscribers count reported for successful delivery replaces the one counted at creation.
func (s SQLite) MarkDelivered(ctx context.Context, ids []int64, delivery models.Delivery) error {
	if len(ids) == 0 {
		return nil
	}

	var notified sql.NullInt32
	if delivery.Success && delivery.Notified != nil {
		notified = sql.NullInt32{Int32: *delivery.Notified, Valid: true}
	}

	args := []any{boolInt(delivery.Success), toMillis(delivery.At), notified}
	args = append(args, lo.ToAnySlice(ids)...)

	_, err := s.db.ExecContext(ctx, `
		UPDATE restock_notifications SET
			email_sent = ?,
			sent_at = ?,
			subscribers_notified = COALESCE(?, subscribers_notified),
			claimed_until = NULL
		WHERE email_sent = 0 AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("can't mark notifications delivered: %w", err)
	}

	return nil
}

// Notifications returns all restock notifications of the brand ordered by creation time.
func (s SQLite) Notifications(ctx context.Context, brand string) ([]models.RestockNotification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, brand, product_name, product_url, subscribers_notified, email_sent, sent_at, created_at
		FROM restock_notifications
		WHERE LOWER(brand) = LOWER(?)
		ORDER BY created_at, id`,
		brand,
	)
	if err != nil {
		return nil, fmt.Errorf("can't get notifications: %w", err)
	}
	defer rows.Close()

	var result []models.RestockNotification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("can't scan notification: %w", err)
		}
		result = append(result, notification)
	}

	return result, rows.Err()
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s SQLite) getStockState(ctx context.Context, db rowQueryer, identity models.ProductIdentity) (*models.StockState, error) {
	var (
		state            models.StockState
		lastChecked      int64
		changeDetectedAt sql.NullInt64
		stockURL         sql.NullString
	)

	err := db.QueryRowContext(ctx, `
		SELECT id, brand, product_name, is_in_stock, last_checked, stock_change_detected_at, stock_url
		FROM product_stock
		WHERE brand = ? AND product_name = ?`,
		identity.Brand,
		identity.ProductName,
	).Scan(
		&state.ID,
		&state.Identity.Brand,
		&state.Identity.ProductName,
		&state.IsInStock,
		&lastChecked,
		&changeDetectedAt,
		&stockURL,
	)
	if err != nil {
		return nil, err
	}

	state.LastChecked = fromMillis(lastChecked)
	state.StockChangeDetectedAt = optionalMillis(changeDetectedAt)
	if stockURL.Valid {
		state.StockURL = lo.ToPtr(stockURL.String)
	}

	return &state, nil
}

func scanNotification(row rowScanner) (models.RestockNotification, error) {
	var (
		notification models.RestockNotification
		productURL   sql.NullString
		sentAt       sql.NullInt64
		createdAt    int64
	)

	err := row.Scan(
		&notification.ID,
		&notification.Brand,
		&notification.ProductName,
		&productURL,
		&notification.SubscribersNotified,
		&notification.EmailSent,
		&sentAt,
		&createdAt,
	)
	if err != nil {
		return models.RestockNotification{}, err
	}

	if productURL.Valid {
		notification.ProductURL = lo.ToPtr(productURL.String)
	}
	notification.SentAt = optionalMillis(sentAt)
	notification.CreatedAt = fromMillis(createdAt)

	return notification, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func optionalMillis(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}
	return lo.ToPtr(fromMillis(ms.Int64))
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullInt64 {
	if b == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: boolInt(*b), Valid: true}
}

func nullInt32(i *int32) sql.NullInt32 {
	if i == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *i, Valid: true}
}

func optionalInt32(i sql.NullInt32) *int32 {
	if !i.Valid {
		return nil
	}
	return lo.ToPtr(i.Int32)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
