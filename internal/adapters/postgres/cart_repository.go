package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"saved-cart-service/internal/contextkeys"
	"saved-cart-service/internal/core/domain"
	"saved-cart-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// 23505 - unique_violation
const uniqueViolationCode = "23505"

// Сколько раз повторяем замену, если конкурирующая транзакция успела
// вставить запись между нашим DELETE и INSERT.
const replaceAttempts = 3

// PostgresCartRepository - реализация CartRepositoryPort для PostgreSQL.
//
// Таблица saved_carts несет UNIQUE-ограничение на customer_id, а замена
// выполняется в одной транзакции (DELETE + INSERT). Так инвариант
// "не более одной живой корзины на покупателя" держит само хранилище,
// а не порядок вызовов в коде.
type PostgresCartRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCartRepository - конструктор.
func NewPostgresCartRepository(pool *pgxpool.Pool) (*PostgresCartRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresCartRepository{pool: pool}, nil
}

// Replace атомарно заменяет корзину покупателя.
func (r *PostgresCartRepository) Replace(ctx context.Context, shop, customerID string, productVariantIDs []string) (*domain.SavedCart, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresCartRepository",
		"method":      "Replace",
		"shop":        shop,
		"customer_id": customerID,
	})

	var lastErr error
	for attempt := 1; attempt <= replaceAttempts; attempt++ {
		cart, err := r.replaceOnce(ctx, shop, customerID, productVariantIDs)
		if err == nil {
			repoLogger.Debug("Successfully replaced saved cart.", port.Fields{"cart_id": cart.ID, "attempt": attempt})
			return cart, nil
		}

		// Конкурирующая замена выиграла гонку за UNIQUE(customer_id):
		// ее запись удалим на следующей попытке.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			repoLogger.Warn("Concurrent replace detected, retrying.", port.Fields{"attempt": attempt})
			lastErr = err
			continue
		}

		repoLogger.Error("Failed to replace saved cart", err, nil)
		return nil, fmt.Errorf("failed to replace saved cart: %w", err)
	}

	repoLogger.Error("Replace attempts exhausted", lastErr, port.Fields{"attempts": replaceAttempts})
	return nil, fmt.Errorf("replace attempts exhausted for customer %s: %w", customerID, lastErr)
}

// replaceOnce выполняет одну транзакцию DELETE + INSERT.
func (r *PostgresCartRepository) replaceOnce(ctx context.Context, shop, customerID string, productVariantIDs []string) (*domain.SavedCart, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	deleteQuery := `DELETE FROM saved_carts WHERE customer_id = $1`
	if _, err := tx.Exec(ctx, deleteQuery, customerID); err != nil {
		return nil, fmt.Errorf("failed to delete previous cart: %w", err)
	}

	cart := &domain.SavedCart{
		ID:                uuid.New(),
		Shop:              shop,
		CustomerID:        customerID,
		ProductVariantIDs: productVariantIDs,
	}

	insertQuery := `
		INSERT INTO saved_carts (id, shop, customer_id, product_variant_ids)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	if err := tx.QueryRow(ctx, insertQuery, cart.ID, cart.Shop, cart.CustomerID, cart.ProductVariantIDs).Scan(&cart.CreatedAt); err != nil {
		return nil, err // 23505 разбирает вызывающий
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return cart, nil
}

// FindByCustomer возвращает самую свежую корзину покупателя.
func (r *PostgresCartRepository) FindByCustomer(ctx context.Context, customerID string) (*domain.SavedCart, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresCartRepository",
		"method":      "FindByCustomer",
		"customer_id": customerID,
	})

	query := `
		SELECT id, shop, customer_id, product_variant_ids, created_at
		FROM saved_carts
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var cart domain.SavedCart
	err := r.pool.QueryRow(ctx, query, customerID).Scan(
		&cart.ID, &cart.Shop, &cart.CustomerID, &cart.ProductVariantIDs, &cart.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("No saved cart for customer.", nil)
			return nil, domain.ErrCartNotFound
		}
		repoLogger.Error("Failed to query saved cart", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query saved cart: %w", err)
	}

	return &cart, nil
}

// PurgeByShop удаляет все корзины магазина.
func (r *PostgresCartRepository) PurgeByShop(ctx context.Context, shop string) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresCartRepository",
		"method":    "PurgeByShop",
		"shop":      shop,
	})

	query := `DELETE FROM saved_carts WHERE shop = $1`
	cmdTag, err := r.pool.Exec(ctx, query, shop)
	if err != nil {
		repoLogger.Error("Failed to purge shop carts", err, port.Fields{"query": query})
		return 0, fmt.Errorf("failed to purge shop carts: %w", err)
	}

	repoLogger.Debug("Purged shop carts.", port.Fields{"deleted": cmdTag.RowsAffected()})
	return cmdTag.RowsAffected(), nil
}

// DeleteByCustomer удаляет корзину покупателя.
func (r *PostgresCartRepository) DeleteByCustomer(ctx context.Context, customerID string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresCartRepository",
		"method":      "DeleteByCustomer",
		"customer_id": customerID,
	})

	query := `DELETE FROM saved_carts WHERE customer_id = $1`
	cmdTag, err := r.pool.Exec(ctx, query, customerID)
	if err != nil {
		repoLogger.Error("Failed to delete customer cart", err, port.Fields{"query": query})
		return fmt.Errorf("failed to delete customer cart: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		repoLogger.Warn("Attempted to delete a cart that did not exist.", nil)
	} else {
		repoLogger.Debug("Successfully deleted customer cart.", nil)
	}
	return nil
}
