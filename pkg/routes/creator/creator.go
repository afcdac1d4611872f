package creator

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	creatorrepo "github.com/Ramsey-B/bramble/internal/repositories/creator"
	referencerepo "github.com/Ramsey-B/bramble/internal/repositories/reference"
	"github.com/Ramsey-B/bramble/pkg/authz"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/relations"
)

var validate = validator.New()

// Handler serves creator routes. Creators only carry references; their
// assignments to products and games live on the host side.
type Handler struct {
	orchestrator *relations.Orchestrator
	creators     *creatorrepo.Repository
	references   *referencerepo.Repository
}

// NewHandler creates a creator route handler.
func NewHandler(orchestrator *relations.Orchestrator, creators *creatorrepo.Repository, references *referencerepo.Repository) *Handler {
	return &Handler{orchestrator: orchestrator, creators: creators, references: references}
}

// RegisterRoutes registers creator routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Mutate)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/references", h.ListReferences)
	g.PUT("/:id/references", h.ReplaceReferences)
}

// List returns a page of creators
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "creator_handler.List")
	defer span.End()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	items, totalCount, err := h.creators.List(ctx, page, pageSize)
	if err != nil {
		return relations.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, models.CreatorListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Get returns a single creator
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "creator_handler.Get")
	defer span.End()

	creator, err := h.creators.GetByID(ctx, c.Param("id"))
	if err != nil {
		return relations.ToHTTPError(err)
	}
	if creator == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "creator not found")
	}

	return c.JSON(http.StatusOK, creator)
}

// Create creates a creator with a generated id
func (h *Handler) Create(c echo.Context) error {
	return h.mutate(c, "")
}

// Mutate creates or fully replaces a creator
func (h *Handler) Mutate(c echo.Context) error {
	return h.mutate(c, c.Param("id"))
}

func (h *Handler) mutate(c echo.Context, id string) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "creator_handler.Mutate")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	var req models.MutateCreatorRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	creator, result, err := h.orchestrator.MutateCreator(ctx, id, req)
	if err != nil {
		return relations.ToHTTPError(err)
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	return c.JSON(status, models.MutateCreatorResponse{Creator: *creator, Result: *result})
}

// Delete removes a creator. Assignments on products or games block it.
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "creator_handler.Delete")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	if err := h.orchestrator.DeleteHost(ctx, models.HostTypeCreator, c.Param("id")); err != nil {
		return relations.ToHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListReferences returns a creator's references
func (h *Handler) ListReferences(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "creator_handler.ListReferences")
	defer span.End()

	items, err := h.references.ListByHost(ctx, models.HostTypeCreator, c.Param("id"))
	if err != nil {
		return relations.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// ReplaceReferences replaces a creator's references
func (h *Handler) ReplaceReferences(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "creator_handler.ReplaceReferences")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	var in []models.ReferenceInput
	if err := c.Bind(&in); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	payloads := models.RelationPayloads{References: &in}
	result, err := h.orchestrator.ReplaceHostRelations(ctx, models.HostTypeCreator, c.Param("id"), models.RelationKindReferences, payloads)
	if err != nil {
		return relations.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}
