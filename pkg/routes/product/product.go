package product

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	creatorassignmentrepo "github.com/Ramsey-B/bramble/internal/repositories/creatorassignment"
	labelassignmentrepo "github.com/Ramsey-B/bramble/internal/repositories/labelassignment"
	productrepo "github.com/Ramsey-B/bramble/internal/repositories/product"
	referencerepo "github.com/Ramsey-B/bramble/internal/repositories/reference"
	"github.com/Ramsey-B/bramble/pkg/authz"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/relations"
)

var validate = validator.New()

// Handler serves product routes.
type Handler struct {
	orchestrator       *relations.Orchestrator
	products           *productrepo.Repository
	references         *referencerepo.Repository
	creatorAssignments *creatorassignmentrepo.Repository
	labelAssignments   *labelassignmentrepo.Repository
}

// NewHandler creates a product route handler.
func NewHandler(
	orchestrator *relations.Orchestrator,
	products *productrepo.Repository,
	references *referencerepo.Repository,
	creatorAssignments *creatorassignmentrepo.Repository,
	labelAssignments *labelassignmentrepo.Repository,
) *Handler {
	return &Handler{
		orchestrator:       orchestrator,
		products:           products,
		references:         references,
		creatorAssignments: creatorAssignments,
		labelAssignments:   labelAssignments,
	}
}

// RegisterRoutes registers product routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Mutate)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/relations/:kind", h.ListRelations)
	g.PUT("/:id/relations/:kind", h.ReplaceRelations)
}

// List returns a page of products
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.List")
	defer span.End()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	items, totalCount, err := h.products.List(ctx, page, pageSize)
	if err != nil {
		return relations.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, models.ProductListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Get returns a single product
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Get")
	defer span.End()

	product, err := h.products.GetByID(ctx, c.Param("id"))
	if err != nil {
		return relations.ToHTTPError(err)
	}
	if product == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "product not found")
	}

	return c.JSON(http.StatusOK, product)
}

// Create creates a product with a generated id
func (h *Handler) Create(c echo.Context) error {
	return h.mutate(c, "")
}

// Mutate creates or fully replaces a product
func (h *Handler) Mutate(c echo.Context) error {
	return h.mutate(c, c.Param("id"))
}

func (h *Handler) mutate(c echo.Context, id string) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Mutate")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	var req models.MutateProductRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, result, err := h.orchestrator.MutateProduct(ctx, id, req)
	if err != nil {
		return relations.ToHTTPError(err)
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	return c.JSON(status, models.MutateProductResponse{Product: *product, Result: *result})
}

// Delete removes a product and its dependent rows
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Delete")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	if err := h.orchestrator.DeleteHost(ctx, models.HostTypeProduct, c.Param("id")); err != nil {
		return relations.ToHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRelations returns one relation collection for a product
func (h *Handler) ListRelations(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.ListRelations")
	defer span.End()

	id := c.Param("id")
	kind, ok := models.ParseRelationKind(c.Param("kind"))
	if !ok {
		return httperror.NewHTTPError(http.StatusBadRequest, "unknown relation kind")
	}

	switch kind {
	case models.RelationKindCreators:
		items, err := h.creatorAssignments.ListByHost(ctx, models.HostTypeProduct, id)
		if err != nil {
			return relations.ToHTTPError(err)
		}
		return c.JSON(http.StatusOK, items)
	case models.RelationKindLabels:
		items, err := h.labelAssignments.ListByHost(ctx, models.HostTypeProduct, id)
		if err != nil {
			return relations.ToHTTPError(err)
		}
		return c.JSON(http.StatusOK, items)
	case models.RelationKindReferences:
		items, err := h.references.ListByHost(ctx, models.HostTypeProduct, id)
		if err != nil {
			return relations.ToHTTPError(err)
		}
		return c.JSON(http.StatusOK, items)
	}
	return httperror.NewHTTPError(http.StatusBadRequest, "products do not carry this relation kind")
}

// ReplaceRelations replaces one relation collection for a product
func (h *Handler) ReplaceRelations(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.ReplaceRelations")
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
	default:
		return httperror.NewHTTPError(http.StatusBadRequest, "products do not carry this relation kind")
	}

	result, err := h.orchestrator.ReplaceHostRelations(ctx, models.HostTypeProduct, id, kind, payloads)
	if err != nil {
		return relations.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}
