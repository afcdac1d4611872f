package game

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

const tableName = "games"

// Repository manages game host rows.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new game repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Upsert creates or fully replaces a game row.
func (r *Repository) Upsert(ctx context.Context, id string, payload models.GamePayload) (*models.Game, error) {
	ctx, span := tracing.StartSpan(ctx, "game.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "title", "description", "min_players", "max_players", "play_time_minutes", "release_year", "created_at", "updated_at")
	sb.Values(id, payload.Title, payload.Description, payload.MinPlayers, payload.MaxPlayers, payload.PlayTimeMinutes, payload.ReleaseYear, now, now)

	query, args := sb.Build()
	query += ` ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		min_players = EXCLUDED.min_players,
		max_players = EXCLUDED.max_players,
		play_time_minutes = EXCLUDED.play_time_minutes,
		release_year = EXCLUDED.release_year,
		updated_at = EXCLUDED.updated_at
	RETURNING id, title, description, min_players, max_players, play_time_minutes, release_year, created_at, updated_at`

	var out models.Game
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to upsert game")
		return nil, relations.ClassifyWrite("upsert game", err)
	}
	return &out, nil
}

// GetByID returns a game or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	ctx, span := tracing.StartSpan(ctx, "game.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "title", "description", "min_players", "max_players", "play_time_minutes", "release_year", "created_at", "updated_at")
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	var out models.Game
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to get game")
		return nil, relations.ClassifyWrite("get game", err)
	}
	return &out, nil
}

// List returns games ordered by title with pagination.
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]models.Game, int, error) {
	ctx, span := tracing.StartSpan(ctx, "game.Repository.List")
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
		r.logger.WithContext(ctx).WithError(err).Error("failed to count games")
		return nil, 0, relations.ClassifyWrite("count games", err)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "title", "description", "min_players", "max_players", "play_time_minutes", "release_year", "created_at", "updated_at")
	sb.From(tableName)
	sb.OrderBy("title ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.Game
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list games")
		return nil, 0, relations.ClassifyWrite("list games", err)
	}
	return items, totalCount, nil
}

// Delete hard-deletes a game. Based-on links from other games RESTRICT the
// delete; owned join rows cascade; references are collected by the trigger.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "game.Repository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("failed to delete game")
		return relations.ClassifyDelete("delete game", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &relations.NotFoundError{Resource: string(models.HostTypeGame), ID: id}
	}

	r.logger.WithContext(ctx).WithField("id", id).Info("deleted game")
	return nil
}
