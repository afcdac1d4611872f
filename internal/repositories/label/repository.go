package label

import (
	"context"
	"database/sql"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/relations"
)

const tableName = "labels"

// Repository manages the label vocabulary targeted by label assignments.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new label repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Create creates a label. Duplicate names are a validation rejection.
func (r *Repository) Create(ctx context.Context, req models.CreateLabelRequest) (*models.Label, error) {
	ctx, span := tracing.StartSpan(ctx, "label.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	id := uuid.New().String()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "name", "description", "created_at")
	sb.Values(id, req.Name, req.Description, now)

	query, args := sb.Build()
	query += ` RETURNING id, name, description, created_at`

	var out models.Label
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("name", req.Name).Error("failed to create label")
		return nil, relations.ClassifyWrite("create label", err)
	}
	return &out, nil
}

// GetByID returns a label or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Label, error) {
	ctx, span := tracing.StartSpan(ctx, "label.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "description", "created_at")
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var out models.Label
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to get label")
		return nil, relations.ClassifyWrite("get label", err)
	}
	return &out, nil
}

// List returns labels ordered by name with pagination.
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]models.Label, int, error) {
	ctx, span := tracing.StartSpan(ctx, "label.Repository.List")
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
		r.logger.WithContext(ctx).WithError(err).Error("failed to count labels")
		return nil, 0, relations.ClassifyWrite("count labels", err)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "description", "created_at")
	sb.From(tableName)
	sb.OrderBy("name ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.Label
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list labels")
		return nil, 0, relations.ClassifyWrite("list labels", err)
	}
	return items, totalCount, nil
}

// Delete removes a label and, through CASCADE, its assignments.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "label.Repository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to delete label")
		return relations.ClassifyDelete("delete label", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &relations.NotFoundError{Resource: "label", ID: id}
	}

	r.logger.WithContext(ctx).WithField("id", id).Info("deleted label")
	return nil
}
