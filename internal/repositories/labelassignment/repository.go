package labelassignment

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/relations"
)

// Repository manages label join rows for products and games.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new label assignment repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func tableFor(hostType models.HostType) (table string, hostCol string, ok bool) {
	switch hostType {
	case models.HostTypeProduct:
		return "product_labels", "product_id", true
	case models.HostTypeGame:
		return "game_labels", "game_id", true
	}
	return "", "", false
}

// DeleteByHost removes all label assignments for one host.
func (r *Repository) DeleteByHost(ctx context.Context, hostType models.HostType, hostID string) error {
	ctx, span := tracing.StartSpan(ctx, "labelassignment.Repository.DeleteByHost")
	defer span.End()

	table, hostCol, ok := tableFor(hostType)
	if !ok {
		return relations.NewValidationErrorf("host type %q has no label assignments", hostType)
	}

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(table)
	sb.Where(sb.Equal(hostCol, hostID))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
		}).Error("failed to delete label assignments")
		return relations.ClassifyWrite("delete label assignments", err)
	}
	return nil
}

// InsertBatch inserts the target rows with position set to each row's index,
// so a later read reproduces the caller's declared order.
func (r *Repository) InsertBatch(ctx context.Context, hostType models.HostType, hostID string, rows []models.LabelAssignmentInput) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "labelassignment.Repository.InsertBatch")
	defer span.End()

	table, hostCol, ok := tableFor(hostType)
	if !ok {
		return 0, relations.NewValidationErrorf("host type %q has no label assignments", hostType)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(table)
	sb.Cols(hostCol, "label_id", "position")
	for i, row := range rows {
		sb.Values(hostID, row.LabelID, i)
	}

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
			"rows":      len(rows),
		}).Error("failed to insert label assignments")
		return 0, relations.ClassifyWrite("insert label assignments", err)
	}
	return len(rows), nil
}

// ListByHost returns a host's label assignments in declared order.
func (r *Repository) ListByHost(ctx context.Context, hostType models.HostType, hostID string) ([]models.LabelAssignment, error) {
	ctx, span := tracing.StartSpan(ctx, "labelassignment.Repository.ListByHost")
	defer span.End()

	table, hostCol, ok := tableFor(hostType)
	if !ok {
		return nil, relations.NewValidationErrorf("host type %q has no label assignments", hostType)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(hostCol+" AS host_id", "label_id", "position")
	sb.From(table)
	sb.Where(sb.Equal(hostCol, hostID))
	sb.OrderBy("position ASC", "label_id ASC")

	query, args := sb.Build()

	var items []models.LabelAssignment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"host_type": hostType,
			"host_id":   hostID,
		}).Error("failed to list label assignments")
		return nil, relations.ClassifyWrite("list label assignments", err)
	}
	return items, nil
}
