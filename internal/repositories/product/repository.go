package product

import (
	"context"
	"database/sql"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/relations"
)

const tableName = "products"

// Repository manages product host rows.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new product repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Upsert creates or fully replaces a product row. A publisher_id pointing at
// a nonexistent publisher fails the structural FK and classifies as a
// referential violation.
func (r *Repository) Upsert(ctx context.Context, id string, payload models.ProductPayload) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	language := payload.Language
	if language == "" {
		language = "en"
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "publisher_id", "title", "language", "release_year", "created_at", "updated_at")
	sb.Values(id, payload.PublisherID, payload.Title, language, payload.ReleaseYear, now, now)

	query, args := sb.Build()
	query += ` ON CONFLICT (id) DO UPDATE SET
		publisher_id = EXCLUDED.publisher_id,
		title = EXCLUDED.title,
		language = EXCLUDED.language,
		release_year = EXCLUDED.release_year,
		updated_at = EXCLUDED.updated_at
	RETURNING id, publisher_id, title, language, release_year, created_at, updated_at`

	var out models.Product
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":           id,
			"publisher_id": payload.PublisherID,
		}).Error("failed to upsert product")
		return nil, relations.ClassifyWrite("upsert product", err)
	}
	return &out, nil
}

// GetByID returns a product or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "publisher_id", "title", "language", "release_year", "created_at", "updated_at")
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var out models.Product
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to get product")
		return nil, relations.ClassifyWrite("get product", err)
	}
	return &out, nil
}

// List returns products ordered by title with pagination.
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]models.Product, int, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count products")
		return nil, 0, relations.ClassifyWrite("count products", err)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "publisher_id", "title", "language", "release_year", "created_at", "updated_at")
	sb.From(tableName)
	sb.OrderBy("title ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.Product
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list products")
		return nil, 0, relations.ClassifyWrite("list products", err)
	}
	return items, totalCount, nil
}

// Delete hard-deletes a product; its join rows cascade and the orphan
// collector removes its references.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to delete product")
		return relations.ClassifyDelete("delete product", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &relations.NotFoundError{Resource: string(models.HostTypeProduct), ID: id}
	}

	r.logger.WithContext(ctx).WithField("id", id).Info("deleted product")
	return nil
}
