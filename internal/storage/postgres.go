package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ration-bot/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// maxWindowDays caps the delivery window used to select report rows.
const maxWindowDays = 366

const orderColumns = `id, user_id, first_name, last_name, phone, address,
	delivery_date, duration, comments, order_date, last_updated`

type PostgresStorage struct {
	db             *sqlx.DB
	logger         *zap.Logger
	now            func() time.Time
	readRetryDelay time.Duration
}

func NewPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return NewWithDB(db, logger), nil
}

// NewWithDB wraps an already opened connection.
func NewWithDB(db *sqlx.DB, logger *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:             db,
		logger:         logger,
		now:            time.Now,
		readRetryDelay: 200 * time.Millisecond,
	}
}

// DB exposes the pool for migrations.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AddOrder inserts the order and stamps order_date and last_updated with the
// same instant.
func (s *PostgresStorage) AddOrder(ctx context.Context, o NewOrder) (Order, error) {
	const query = `
		INSERT INTO orders (
			user_id, first_name, last_name, phone, address,
			delivery_date, duration, comments, order_date, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`

	now := s.now().UTC()
	order := Order{
		UserID:       o.UserID,
		FirstName:    o.FirstName,
		LastName:     o.LastName,
		Phone:        o.Phone,
		Address:      o.Address,
		DeliveryDate: o.DeliveryDate.UTC(),
		EatingDate:   EatingDate(o.DeliveryDate.UTC()),
		Duration:     o.Duration,
		Comments:     o.Comments,
		OrderDate:    now,
		LastUpdated:  now,
	}

	err := s.db.QueryRowxContext(ctx, query,
		order.UserID,
		order.FirstName,
		order.LastName,
		order.Phone,
		order.Address,
		order.DeliveryDate,
		order.Duration,
		order.Comments,
		now,
	).Scan(&order.ID)
	if err != nil {
		return Order{}, &StorageError{Op: "add order", Err: err}
	}

	return order, nil
}

// FindLatestOrderByUser returns the most recently placed order of the user.
func (s *PostgresStorage) FindLatestOrderByUser(ctx context.Context, userID string) (Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC, id DESC
		LIMIT 1`

	var order Order
	err := s.read(ctx, "find latest order", func() error {
		return s.db.GetContext(ctx, &order, query, userID)
	})
	if err != nil {
		return Order{}, err
	}
	return normalize(order), nil
}

// UpdateDeliveryAddress changes the address and refreshes last_updated.
func (s *PostgresStorage) UpdateDeliveryAddress(ctx context.Context, orderID int64, address string) (Order, error) {
	query := `UPDATE orders
		SET address = $1, last_updated = $2
		WHERE id = $3
		RETURNING ` + orderColumns

	var order Order
	err := s.db.GetContext(ctx, &order, query, address, s.now().UTC(), orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return Order{}, &StorageError{Op: "update delivery address", Err: err}
	}
	return normalize(order), nil
}

// ListActiveOnDay returns orders whose delivery window touches the day
// [start, end), oldest last_updated first. Durations are clamped to
// maxWindowDays so the window end stays a valid timestamp, and days are
// added as 24 hour spans independent of the session time zone.
func (s *PostgresStorage) ListActiveOnDay(ctx context.Context, start, end time.Time) ([]Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE delivery_date < $2
		  AND delivery_date + (LEAST(GREATEST(duration, 1), $3) - 1) * INTERVAL '24 hours' >= $1
		ORDER BY last_updated ASC, id ASC`

	var orders []Order
	err := s.read(ctx, "list active orders", func() error {
		orders = orders[:0]
		return s.db.SelectContext(ctx, &orders, query, start.UTC(), end.UTC(), maxWindowDays)
	})
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i] = normalize(orders[i])
	}
	return orders, nil
}

func (s *PostgresStorage) IsAdmin(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM admins WHERE admin_id = $1)`

	var exists bool
	err := s.read(ctx, "is admin", func() error {
		return s.db.GetContext(ctx, &exists, query, userID)
	})
	return exists, err
}

// AddAdmin is idempotent.
func (s *PostgresStorage) AddAdmin(ctx context.Context, userID string) error {
	const query = `INSERT INTO admins (admin_id) VALUES ($1) ON CONFLICT (admin_id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return &StorageError{Op: "add admin", Err: err}
	}
	return nil
}

func (s *PostgresStorage) DropAllOrders(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders`)
	if err != nil {
		return &StorageError{Op: "drop orders", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Info("Orders dropped", zap.Int64("rows", n))
	}
	return nil
}

func (s *PostgresStorage) DropAllAdmins(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM admins`)
	if err != nil {
		return &StorageError{Op: "drop admins", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Info("Admins dropped", zap.Int64("rows", n))
	}
	return nil
}

// read runs a query and repeats it once on failure. Missing rows are not
// retried and come back as ErrNotFound.
func (s *PostgresStorage) read(ctx context.Context, op string, query func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.readRetryDelay), 1),
		ctx,
	)

	err := backoff.RetryNotify(
		func() error {
			err := query()
			if errors.Is(err, sql.ErrNoRows) {
				return backoff.Permanent(err)
			}
			return err
		},
		policy,
		func(err error, next time.Duration) {
			s.logger.Warn("Read failed, retrying once",
				zap.String("op", op),
				zap.Duration("next_attempt_in", next),
				zap.Error(err))
		},
	)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		return &StorageError{Op: op, Err: err}
	}
}

func normalize(o Order) Order {
	o.DeliveryDate = o.DeliveryDate.UTC()
	o.EatingDate = EatingDate(o.DeliveryDate)
	o.OrderDate = o.OrderDate.UTC()
	o.LastUpdated = o.LastUpdated.UTC()
	return o
}
