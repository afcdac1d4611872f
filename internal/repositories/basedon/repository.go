package basedon

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

const tableName = "game_based_on"

// Repository manages based-on provenance links for games.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new based-on repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// DeleteByGame removes all based-on links owned by one game.
func (r *Repository) DeleteByGame(ctx context.Context, gameID string) error {
	ctx, span := tracing.StartSpan(ctx, "basedon.Repository.DeleteByGame")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(sb.Equal("game_id", gameID))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("game_id", gameID).Error("failed to delete based-on links")
		return relations.ClassifyWrite("delete based-on links", err)
	}
	return nil
}

// InsertBatch inserts the target rows in one statement. The structural XOR
// CHECK and the FK on based_on_game_id both reject the whole batch.
func (r *Repository) InsertBatch(ctx context.Context, gameID string, rows []models.BasedOnInput) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "basedon.Repository.InsertBatch")
	defer span.End()

	if len(rows) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "game_id", "based_on_game_id", "based_on_url", "label", "created_at")
	for _, row := range rows {
		sb.Values(uuid.New().String(), gameID, row.BasedOnGameID, row.BasedOnURL, row.Label, now)
	}

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"game_id": gameID,
			"rows":    len(rows),
		}).Error("failed to insert based-on links")
		return 0, relations.ClassifyWrite("insert based-on links", err)
	}
	return len(rows), nil
}

// ListByGame returns a game's based-on links.
func (r *Repository) ListByGame(ctx context.Context, gameID string) ([]models.BasedOnLink, error) {
	ctx, span := tracing.StartSpan(ctx, "basedon.Repository.ListByGame")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "game_id", "based_on_game_id", "based_on_url", "label", "created_at")
	sb.From(tableName)
	sb.Where(sb.Equal("game_id", gameID))
	sb.OrderBy("created_at ASC", "id ASC")

	query, args := sb.Build()

	var items []models.BasedOnLink
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("game_id", gameID).Error("failed to list based-on links")
		return nil, relations.ClassifyWrite("list based-on links", err)
	}
	return items, nil
}
