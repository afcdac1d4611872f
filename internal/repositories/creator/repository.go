package creator

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

const tableName = "creators"

// Repository manages creator host rows.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new creator repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Upsert creates or fully replaces a creator row.
func (r *Repository) Upsert(ctx context.Context, id string, payload models.CreatorPayload) (*models.Creator, error) {
	ctx, span := tracing.StartSpan(ctx, "creator.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "name", "sort_name", "bio", "born_year", "died_year", "created_at", "updated_at")
	sb.Values(id, payload.Name, payload.SortName, payload.Bio, payload.BornYear, payload.DiedYear, now, now)

	query, args := sb.Build()
	query += ` ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		sort_name = EXCLUDED.sort_name,
		bio = EXCLUDED.bio,
		born_year = EXCLUDED.born_year,
		died_year = EXCLUDED.died_year,
		updated_at = EXCLUDED.updated_at
	RETURNING id, name, sort_name, bio, born_year, died_year, created_at, updated_at`

	var out models.Creator
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to upsert creator")
		return nil, relations.ClassifyWrite("upsert creator", err)
	}
	return &out, nil
}

// GetByID returns a creator or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Creator, error) {
	ctx, span := tracing.StartSpan(ctx, "creator.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "sort_name", "bio", "born_year", "died_year", "created_at", "updated_at")
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var out models.Creator
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to get creator")
		return nil, relations.ClassifyWrite("get creator", err)
	}
	return &out, nil
}

// List returns creators ordered by sort name with pagination.
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]models.Creator, int, error) {
	ctx, span := tracing.StartSpan(ctx, "creator.Repository.List")
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
		r.logger.WithContext(ctx).WithError(err).Error("failed to count creators")
		return nil, 0, relations.ClassifyWrite("count creators", err)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "sort_name", "bio", "born_year", "died_year", "created_at", "updated_at")
	sb.From(tableName)
	sb.OrderBy("sort_name ASC", "name ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.Creator
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list creators")
		return nil, 0, relations.ClassifyWrite("list creators", err)
	}
	return items, totalCount, nil
}

// Delete hard-deletes a creator. Creator assignments on products or games
// RESTRICT the delete, which surfaces as a conflict.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "creator.Repository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to delete creator")
		return relations.ClassifyDelete("delete creator", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &relations.NotFoundError{Resource: string(models.HostTypeCreator), ID: id}
	}

	r.logger.WithContext(ctx).WithField("id", id).Info("deleted creator")
	return nil
}
