package publisher

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

const tableName = "publishers"

// Repository manages publisher host rows.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new publisher repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Upsert creates or fully replaces a publisher row.
func (r *Repository) Upsert(ctx context.Context, id string, payload models.PublisherPayload) (*models.Publisher, error) {
	ctx, span := tracing.StartSpan(ctx, "publisher.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "name", "country", "founded_year", "notes", "created_at", "updated_at")
	sb.Values(id, payload.Name, payload.Country, payload.FoundedYear, payload.Notes, now, now)

	query, args := sb.Build()
	query += ` ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		country = EXCLUDED.country,
		founded_year = EXCLUDED.founded_year,
		notes = EXCLUDED.notes,
		updated_at = EXCLUDED.updated_at
	RETURNING id, name, country, founded_year, notes, created_at, updated_at`

	var out models.Publisher
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to upsert publisher")
		return nil, relations.ClassifyWrite("upsert publisher", err)
	}
	return &out, nil
}

// GetByID returns a publisher or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Publisher, error) {
	ctx, span := tracing.StartSpan(ctx, "publisher.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "country", "founded_year", "notes", "created_at", "updated_at")
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var out models.Publisher
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to get publisher")
		return nil, relations.ClassifyWrite("get publisher", err)
	}
	return &out, nil
}

// List returns publishers ordered by name with pagination.
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]models.Publisher, int, error) {
	ctx, span := tracing.StartSpan(ctx, "publisher.Repository.List")
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
		r.logger.WithContext(ctx).WithError(err).Error("failed to count publishers")
		return nil, 0, relations.ClassifyWrite("count publishers", err)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "country", "founded_year", "notes", "created_at", "updated_at")
	sb.From(tableName)
	sb.OrderBy("name ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.Publisher
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list publishers")
		return nil, 0, relations.ClassifyWrite("list publishers", err)
	}
	return items, totalCount, nil
}

// Delete hard-deletes a publisher. The orphan-collector trigger removes its
// reference rows; a product still pointing at it blocks with a conflict.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "publisher.Repository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to delete publisher")
		return relations.ClassifyDelete("delete publisher", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &relations.NotFoundError{Resource: string(models.HostTypePublisher), ID: id}
	}

	r.logger.WithContext(ctx).WithField("id", id).Info("deleted publisher")
	return nil
}
