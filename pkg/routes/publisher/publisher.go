package publisher

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	publisherrepo "github.com/Ramsey-B/bramble/internal/repositories/publisher"
	referencerepo "github.com/Ramsey-B/bramble/internal/repositories/reference"
	"github.com/Ramsey-B/bramble/pkg/authz"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/relations"
)

var validate = validator.New()

// Handler serves publisher routes. Publishers only carry references, so the
// relation routes accept that kind alone.
type Handler struct {
	orchestrator *relations.Orchestrator
	publishers   *publisherrepo.Repository
	references   *referencerepo.Repository
}

// NewHandler creates a publisher route handler.
func NewHandler(orchestrator *relations.Orchestrator, publishers *publisherrepo.Repository, references *referencerepo.Repository) *Handler {
	return &Handler{orchestrator: orchestrator, publishers: publishers, references: references}
}

// RegisterRoutes registers publisher routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Mutate)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/references", h.ListReferences)
	g.PUT("/:id/references", h.ReplaceReferences)
}

// List returns a page of publishers
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "publisher_handler.List")
	defer span.End()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	items, totalCount, err := h.publishers.List(ctx, page, pageSize)
	if err != nil {
		return relations.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, models.PublisherListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Get returns a single publisher
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "publisher_handler.Get")
	defer span.End()

	publisher, err := h.publishers.GetByID(ctx, c.Param("id"))
	if err != nil {
		return relations.ToHTTPError(err)
	}
	if publisher == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "publisher not found")
	}

	return c.JSON(http.StatusOK, publisher)
}

// Create creates a publisher with a generated id
func (h *Handler) Create(c echo.Context) error {
	return h.mutate(c, "")
}

// Mutate creates or fully replaces a publisher
func (h *Handler) Mutate(c echo.Context) error {
	return h.mutate(c, c.Param("id"))
}

func (h *Handler) mutate(c echo.Context, id string) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "publisher_handler.Mutate")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	var req models.MutatePublisherRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	publisher, result, err := h.orchestrator.MutatePublisher(ctx, id, req)
	if err != nil {
		return relations.ToHTTPError(err)
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	return c.JSON(status, models.MutatePublisherResponse{Publisher: *publisher, Result: *result})
}

// Delete removes a publisher
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "publisher_handler.Delete")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	if err := h.orchestrator.DeleteHost(ctx, models.HostTypePublisher, c.Param("id")); err != nil {
		return relations.ToHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListReferences returns a publisher's references
func (h *Handler) ListReferences(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "publisher_handler.ListReferences")
	defer span.End()

	items, err := h.references.ListByHost(ctx, models.HostTypePublisher, c.Param("id"))
	if err != nil {
		return relations.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// ReplaceReferences replaces a publisher's references
func (h *Handler) ReplaceReferences(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "publisher_handler.ReplaceReferences")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	var in []models.ReferenceInput
	if err := c.Bind(&in); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	payloads := models.RelationPayloads{References: &in}
	result, err := h.orchestrator.ReplaceHostRelations(ctx, models.HostTypePublisher, c.Param("id"), models.RelationKindReferences, payloads)
	if err != nil {
		return relations.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}
