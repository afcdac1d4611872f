package creatorassignment

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/relations"
)

// Repository manages creator-role join rows. The table is fixed per host
// type, so creator_id can carry a structural foreign key.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new creator assignment repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func tableFor(hostType models.HostType) (table string, hostCol string, ok bool) {
	switch hostType {
	case models.HostTypeProduct:
		return "product_creators", "product_id", true
	case models.HostTypeGame:
		return "game_creators", "game_id", true
	}
	return "", "", false
}

// DeleteByHost removes all creator assignments for one host.
func (r *Repository) DeleteByHost(ctx context.Context, hostType models.HostType, hostID string) error {
	ctx, span := tracing.StartSpan(ctx, "creatorassignment.Repository.DeleteByHost")
	defer span.End()

	table, hostCol, ok := tableFor(hostType)
	if !ok {
		return relations.NewValidationErrorf("host type %q has no creator assignments", hostType)
	}

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(table)
	sb.Where(sb.Equal(hostCol, hostID))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
		}).Error("failed to delete creator assignments")
		return relations.ClassifyWrite("delete creator assignments", err)
	}
	return nil
}

// InsertBatch inserts the target rows verbatim in one statement. A
// creator_id pointing at a nonexistent creator fails the structural FK and
// nothing is persisted.
func (r *Repository) InsertBatch(ctx context.Context, hostType models.HostType, hostID string, rows []models.CreatorAssignmentInput) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "creatorassignment.Repository.InsertBatch")
	defer span.End()

	table, hostCol, ok := tableFor(hostType)
	if !ok {
		return 0, relations.NewValidationErrorf("host type %q has no creator assignments", hostType)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(table)
	sb.Cols(hostCol, "creator_id", "role", "created_at")
	for _, row := range rows {
		sb.Values(hostID, row.CreatorID, row.Role, now)
	}

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
			"rows":      len(rows),
		}).Error("failed to insert creator assignments")
		return 0, relations.ClassifyWrite("insert creator assignments", err)
	}
	return len(rows), nil
}

// ListByHost returns a host's creator assignments.
func (r *Repository) ListByHost(ctx context.Context, hostType models.HostType, hostID string) ([]models.CreatorAssignment, error) {
	ctx, span := tracing.StartSpan(ctx, "creatorassignment.Repository.ListByHost")
	defer span.End()

	table, hostCol, ok := tableFor(hostType)
	if !ok {
		return nil, relations.NewValidationErrorf("host type %q has no creator assignments", hostType)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(hostCol+" AS host_id", "creator_id", "role", "created_at")
	sb.From(table)
	sb.Where(sb.Equal(hostCol, hostID))
	sb.OrderBy("creator_id ASC", "role ASC")

	query, args := sb.Build()

	var items []models.CreatorAssignment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
		}).Error("failed to list creator assignments")
		return nil, relations.ClassifyWrite("list creator assignments", err)
	}
	return items, nil
}
