package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when no product has the requested id.
	ErrNotFound = errors.New("product not found")

	// ErrDuplicateArticle is returned when a write collides with an existing article.
	ErrDuplicateArticle = errors.New("article already exists")
)

// uniqueViolationCode is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolationCode = "23505"

// seedLockKey is the pg_advisory_xact_lock key serializing first-time seeding.
const seedLockKey int64 = 0x1d5eed

// seedBatchSize bounds the rows per INSERT statement so large seeds stay
// under driver parameter limits. All batches share one transaction.
const seedBatchSize = 500

// Repository provides database operations for products.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new product repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the products table and its unique article index.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to migrate products: %w", err)
	}
	return nil
}

// Create inserts a product and fills in its id and creation time.
func (r *Repository) Create(ctx context.Context, p *Product) error {
	rec := toRecord(p)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return translateWriteError("create", err)
	}
	*p = rec.toDomain()
	return nil
}

// FindByID retrieves a product by its id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Product, error) {
	var rec Record
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	p := rec.toDomain()
	return &p, nil
}

// List returns one page of products ordered by id and the total row count.
func (r *Repository) List(ctx context.Context, offset, limit int) ([]Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Record{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var records []Record
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]Product, len(records))
	for i := range records {
		products[i] = records[i].toDomain()
	}
	return products, total, nil
}

// Count returns the number of stored products.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Record{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// Update applies a partial update in one transaction. The row is read with
// FOR UPDATE where the dialect supports it, so a concurrent delete or update
// cannot interleave between the lookup and the write.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (*Product, error) {
	var updated Product

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec Record
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		p := rec.toDomain()
		patch.Apply(&p)
		next := toRecord(&p)

		result := tx.Model(&next).
			Select("article", "name", "price_minor", "quantity").
			Updates(&next)
		if result.Error != nil {
			return translateWriteError("update", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a product by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&Record{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertIfEmpty inserts products only when the table has no rows, and
// reports how many were inserted. The emptiness check and the insert share
// one transaction; on PostgreSQL an advisory lock also serializes concurrent
// first-time callers.
func (r *Repository) InsertIfEmpty(ctx context.Context, products []Product) (int, error) {
	inserted := 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", seedLockKey).Error; err != nil {
				return fmt.Errorf("failed to acquire seed lock: %w", err)
			}
		}

		var count int64
		if err := tx.Model(&Record{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if count > 0 || len(products) == 0 {
			return nil
		}

		records := make([]Record, len(products))
		for i := range products {
			records[i] = toRecord(&products[i])
			records[i].ID = 0
		}
		if err := tx.CreateInBatches(records, seedBatchSize).Error; err != nil {
			return translateWriteError("seed", err)
		}

		inserted = len(records)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// translateWriteError maps uniqueness violations to ErrDuplicateArticle and
// wraps everything else.
func translateWriteError(op string, err error) error {
	if IsUniqueViolation(err) {
		return ErrDuplicateArticle
	}
	return fmt.Errorf("failed to %s product: %w", op, err)
}

// IsUniqueViolation reports whether err is a unique-constraint violation from
// any supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
