package game

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	basedonrepo "github.com/Ramsey-B/bramble/internal/repositories/basedon"
	creatorassignmentrepo "github.com/Ramsey-B/bramble/internal/repositories/creatorassignment"
	gamerepo "github.com/Ramsey-B/bramble/internal/repositories/game"
	labelassignmentrepo "github.com/Ramsey-B/bramble/internal/repositories/labelassignment"
	referencerepo "github.com/Ramsey-B/bramble/internal/repositories/reference"
	"github.com/Ramsey-B/bramble/pkg/authz"
	"github.com/Ramsey-B/bramble/pkg/graph"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/relations"
)

var validate = validator.New()

// Handler serves game routes.
type Handler struct {
	orchestrator       *relations.Orchestrator
	games              *gamerepo.Repository
	references         *referencerepo.Repository
	creatorAssignments *creatorassignmentrepo.Repository
	labelAssignments   *labelassignmentrepo.Repository
	basedOn            *basedonrepo.Repository
	projector          *graph.Projector
}

// NewHandler creates a game route handler. projector may be nil when the
// graph projection is disabled; the lineage route then returns 503.
func NewHandler(
	orchestrator *relations.Orchestrator,
	games *gamerepo.Repository,
	references *referencerepo.Repository,
	creatorAssignments *creatorassignmentrepo.Repository,
	labelAssignments *labelassignmentrepo.Repository,
	basedOn *basedonrepo.Repository,
	projector *graph.Projector,
) *Handler {
	return &Handler{
		orchestrator:       orchestrator,
		games:              games,
		references:         references,
		creatorAssignments: creatorAssignments,
		labelAssignments:   labelAssignments,
		basedOn:            basedOn,
		projector:          projector,
	}
}

// RegisterRoutes registers game routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Mutate)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/relations/:kind", h.ListRelations)
	g.PUT("/:id/relations/:kind", h.ReplaceRelations)
	g.GET("/:id/lineage", h.Lineage)
}

// List returns a page of games
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "game_handler.List")
	defer span.End()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	items, totalCount, err := h.games.List(ctx, page, pageSize)
	if err != nil {
		return relations.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, models.GameListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Get returns a single game
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "game_handler.Get")
	defer span.End()

	id := c.Param("id")

	game, err := h.games.GetByID(ctx, id)
	if err != nil {
		return relations.ToHTTPError(err)
	}
	if game == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "game not found")
	}

	return c.JSON(http.StatusOK, game)
}

// Create creates a game with a generated id
func (h *Handler) Create(c echo.Context) error {
	return h.mutate(c, "")
}

// Mutate creates or fully replaces a game
func (h *Handler) Mutate(c echo.Context) error {
	return h.mutate(c, c.Param("id"))
}

func (h *Handler) mutate(c echo.Context, id string) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "game_handler.Mutate")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	var req models.MutateGameRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	game, result, err := h.orchestrator.MutateGame(ctx, id, req)
	if err != nil {
		return relations.ToHTTPError(err)
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	return c.JSON(status, models.MutateGameResponse{Game: *game, Result: *result})
}

// Delete removes a game and its dependent rows
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "game_handler.Delete")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	if err := h.orchestrator.DeleteHost(ctx, models.HostTypeGame, c.Param("id")); err != nil {
		return relations.ToHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRelations returns one relation collection for a game
func (h *Handler) ListRelations(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "game_handler.ListRelations")
	defer span.End()

	id := c.Param("id")
	kind, ok := models.ParseRelationKind(c.Param("kind"))
	if !ok {
		return httperror.NewHTTPError(http.StatusBadRequest, "unknown relation kind")
	}

	switch kind {
	case models.RelationKindCreators:
		items, err := h.creatorAssignments.ListByHost(ctx, models.HostTypeGame, id)
		if err != nil {
			return relations.ToHTTPError(err)
		}
		return c.JSON(http.StatusOK, items)
	case models.RelationKindLabels:
		items, err := h.labelAssignments.ListByHost(ctx, models.HostTypeGame, id)
		if err != nil {
			return relations.ToHTTPError(err)
		}
		return c.JSON(http.StatusOK, items)
	case models.RelationKindReferences:
		items, err := h.references.ListByHost(ctx, models.HostTypeGame, id)
		if err != nil {
			return relations.ToHTTPError(err)
		}
		return c.JSON(http.StatusOK, items)
	case models.RelationKindBasedOn:
		items, err := h.basedOn.ListByGame(ctx, id)
		if err != nil {
			return relations.ToHTTPError(err)
		}
		return c.JSON(http.StatusOK, models.BasedOnListResponse{Items: items})
	}
	return httperror.NewHTTPError(http.StatusBadRequest, "unknown relation kind")
}

// ReplaceRelations replaces one relation collection for a game
func (h *Handler) ReplaceRelations(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "game_handler.ReplaceRelations")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	id := c.Param("id")
	kind, ok := models.ParseRelationKind(c.Param("kind"))
	if !ok {
		return httperror.NewHTTPError(http.StatusBadRequest, "unknown relation kind")
	}

	var payloads models.RelationPayloads
	switch kind {
	case models.RelationKindCreators:
		var in []models.CreatorAssignmentInput
		if err := c.Bind(&in); err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		payloads.Creators = &in
	case models.RelationKindLabels:
		var in []models.LabelAssignmentInput
		if err := c.Bind(&in); err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		payloads.Labels = &in
	case models.RelationKindReferences:
		var in []models.ReferenceInput
		if err := c.Bind(&in); err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		payloads.References = &in
	case models.RelationKindBasedOn:
		var in []models.BasedOnInput
		if err := c.Bind(&in); err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		payloads.BasedOn = &in
	}

	result, err := h.orchestrator.ReplaceHostRelations(ctx, models.HostTypeGame, id, kind, payloads)
	if err != nil {
		return relations.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Lineage walks the based-on chain for a game
func (h *Handler) Lineage(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "game_handler.Lineage")
	defer span.End()

	if h.projector == nil {
		return httperror.NewHTTPError(http.StatusServiceUnavailable, "lineage projection is disabled")
	}

	id := c.Param("id")

	game, err := h.games.GetByID(ctx, id)
	if err != nil {
		return relations.ToHTTPError(err)
	}
	if game == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "game not found")
	}

	depth, _ := strconv.Atoi(c.QueryParam("depth"))
	nodes, err := h.projector.Lineage(ctx, id, depth)
	if err != nil {
		return httperror.NewHTTPError(http.StatusServiceUnavailable, "lineage query failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"game_id":   id,
		"ancestors": nodes,
	})
}
