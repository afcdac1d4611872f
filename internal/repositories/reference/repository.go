package reference

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/relations"
)

const tableName = "host_references"

// Repository manages polymorphic reference rows. Every insert activates the
// database-side existence check on (host_type, host_id).
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new reference repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// DeleteByHost removes all reference rows for one host.
func (r *Repository) DeleteByHost(ctx context.Context, hostType models.HostType, hostID string) error {
	ctx, span := tracing.StartSpan(ctx, "reference.Repository.DeleteByHost")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(sb.Equal("host_type", string(hostType)), sb.Equal("host_id", hostID))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
		}).Error("failed to delete references")
		return relations.ClassifyWrite("delete references", err)
	}
	return nil
}

// InsertBatch inserts the target rows in one statement. The existence
// validator rejects the whole batch when the host does not exist, so no row
// is persisted on failure.
func (r *Repository) InsertBatch(ctx context.Context, hostType models.HostType, hostID string, rows []models.ReferenceInput) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "reference.Repository.InsertBatch")
	defer span.End()

	if len(rows) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "host_type", "host_id", "kind", "label", "url", "citation", "created_at")
	for _, row := range rows {
		sb.Values(uuid.New().String(), string(hostType), hostID, string(row.Kind), row.Label, row.URL, row.Citation, now)
	}

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
			"rows":      len(rows),
		}).Error("failed to insert references")
		return 0, relations.ClassifyWrite("insert references", err)
	}
	return len(rows), nil
}

// ListByHost returns a host's references in insertion order.
func (r *Repository) ListByHost(ctx context.Context, hostType models.HostType, hostID string) ([]models.Reference, error) {
	ctx, span := tracing.StartSpan(ctx, "reference.Repository.ListByHost")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "host_type", "host_id", "kind", "label", "url", "citation", "created_at")
	sb.From(tableName)
	sb.Where(sb.Equal("host_type", string(hostType)), sb.Equal("host_id", hostID))
	sb.OrderBy("created_at ASC", "id ASC")

	query, args := sb.Build()

	var items []models.Reference
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
		}).Error("failed to list references")
		return nil, relations.ClassifyWrite("list references", err)
	}
	return items, nil
}
