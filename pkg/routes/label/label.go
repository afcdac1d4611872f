package label

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	labelrepo "github.com/Ramsey-B/bramble/internal/repositories/label"
	"github.com/Ramsey-B/bramble/pkg/authz"
	"github.com/Ramsey-B/bramble/pkg/models"
	"github.com/Ramsey-B/bramble/pkg/relations"
)

var validate = validator.New()

// Handler serves label vocabulary routes.
type Handler struct {
	labels *labelrepo.Repository
}

// NewHandler creates a label route handler.
func NewHandler(labels *labelrepo.Repository) *Handler {
	return &Handler{labels: labels}
}

// RegisterRoutes registers label routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
}

// List returns a page of labels
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "label_handler.List")
	defer span.End()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	items, totalCount, err := h.labels.List(ctx, page, pageSize)
	if err != nil {
		return relations.ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, models.LabelListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Get returns a single label
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "label_handler.Get")
	defer span.End()

	label, err := h.labels.GetByID(ctx, c.Param("id"))
	if err != nil {
		return relations.ToHTTPError(err)
	}
	if label == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "label not found")
	}

	return c.JSON(http.StatusOK, models.LabelResponse{Label: *label})
}

// Create adds a label to the vocabulary
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "label_handler.Create")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	var req models.CreateLabelRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	label, err := h.labels.Create(ctx, req)
	if err != nil {
		return relations.ToHTTPError(err)
	}

	return c.JSON(http.StatusCreated, models.LabelResponse{Label: *label})
}

// Delete removes a label; its assignments cascade away with it
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "label_handler.Delete")
	defer span.End()

	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}

	if err := h.labels.Delete(ctx, c.Param("id")); err != nil {
		return relations.ToHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
