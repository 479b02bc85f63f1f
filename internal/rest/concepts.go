package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"examLens/domain"
	"examLens/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	ConceptService interface {
		Mapping(ctx context.Context) (map[string]string, error)
		Get(ctx context.Context, rubricItem string) (string, bool, error)
		Set(ctx context.Context, rubricItem, concept string) error
		BulkSet(ctx context.Context, mappings map[string]string) error
	}

	ConceptHandler struct {
		validate       *validator.Validate
		conceptService ConceptService
		timeout        time.Duration
	}

	SetConceptRequest struct {
		Concept string `json:"concept" validate:"required"`
	}

	BulkSetConceptRequest struct {
		Mappings map[string]string `json:"mappings" validate:"required"`
	}
)

func NewConceptHandler(conceptService ConceptService) *ConceptHandler {
	return &ConceptHandler{
		validate:       validator.New(),
		conceptService: conceptService,
		timeout:        10 * time.Second,
	}
}

func (h *ConceptHandler) GetAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	mapping, err := h.conceptService.Mapping(ctx)
	if err != nil {
		logger.Error("Failed to load concept mappings", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(mapping))
}

func (h *ConceptHandler) Get(c echo.Context) error {
	item := c.Param("item")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	concept, ok, err := h.conceptService.Get(ctx, item)
	if err != nil {
		logger.Error("Failed to read concept mapping", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "rubric item not mapped"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]string{
		"rubric_item": item,
		"concept":     concept,
	}))
}

func (h *ConceptHandler) Set(c echo.Context) error {
	item := c.Param("item")

	var req SetConceptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.conceptService.Set(ctx, item, req.Concept); err != nil {
		return h.mappingError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("mapping saved"))
}

func (h *ConceptHandler) BulkSet(c echo.Context) error {
	var req BulkSetConceptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.conceptService.BulkSet(ctx, req.Mappings); err != nil {
		return h.mappingError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("mappings saved"))
}

func (h *ConceptHandler) mappingError(c echo.Context, err error) error {
	var mapErr *domain.MappingError
	if errors.As(err, &mapErr) {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: mapErr.Error()})
	}

	logger.Error("Failed to write concept mapping", "error", err)
	return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
}
