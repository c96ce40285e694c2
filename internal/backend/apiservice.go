package backend

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jo-hoe/inventory/internal/core"
	"github.com/labstack/echo/v4"
)

const imageFormField = "image"

// APIService exposes the resource store as JSON under /api.
type APIService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
	binder      *echo.DefaultBinder
}

type resourceIDRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
		config:      config,
		binder:      &echo.DefaultBinder{},
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/resources", s.listResourcesHandler)
	api.GET("/resources/:id", s.getResourceHandler)
	api.POST("/resources", s.createResourceHandler)
	api.PUT("/resources/:id", s.updateResourceHandler)
	api.DELETE("/resources/:id", s.deleteResourceHandler)
}

func (s *APIService) listResourcesHandler(ctx echo.Context) error {
	resources, err := s.coreService.List(ctx.Request().Context())
	if err != nil {
		return s.errorResponse(ctx, "listResourcesHandler", err)
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (s *APIService) getResourceHandler(ctx echo.Context) error {
	id, err := s.bindID(ctx)
	if err != nil {
		return err
	}
	resource, err := s.coreService.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return s.errorResponse(ctx, "getResourceHandler", err)
	}
	return ctx.JSON(http.StatusOK, resource)
}

func (s *APIService) createResourceHandler(ctx echo.Context) error {
	draft, upload, err := s.bindDraft(ctx)
	if err != nil {
		return err
	}
	resource, err := s.coreService.Create(ctx.Request().Context(), draft, upload)
	if err != nil {
		return s.errorResponse(ctx, "createResourceHandler", err)
	}
	return ctx.JSON(http.StatusCreated, resource)
}

func (s *APIService) updateResourceHandler(ctx echo.Context) error {
	id, err := s.bindID(ctx)
	if err != nil {
		return err
	}
	draft, upload, err := s.bindDraft(ctx)
	if err != nil {
		return err
	}
	resource, err := s.coreService.Update(ctx.Request().Context(), id, draft, upload)
	if err != nil {
		return s.errorResponse(ctx, "updateResourceHandler", err)
	}
	return ctx.JSON(http.StatusOK, resource)
}

func (s *APIService) deleteResourceHandler(ctx echo.Context) error {
	id, err := s.bindID(ctx)
	if err != nil {
		return err
	}
	if err := s.coreService.Delete(ctx.Request().Context(), id); err != nil {
		return s.errorResponse(ctx, "deleteResourceHandler", err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *APIService) bindID(ctx echo.Context) (int64, error) {
	var req resourceIDRequest
	if err := s.binder.BindPathParams(ctx, &req); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid resource id")
	}
	if err := ctx.Validate(&req); err != nil {
		return 0, err
	}
	return req.ID, nil
}

// bindDraft reads the draft from a JSON or form body and the optional image from a multipart body.
func (s *APIService) bindDraft(ctx echo.Context) (core.Draft, *core.Upload, error) {
	var draft core.Draft
	if err := s.binder.BindBody(ctx, &draft); err != nil {
		slog.Warn("bindDraft: failed to bind request body", "status", http.StatusBadRequest, "error", err)
		return draft, nil, echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	if !strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return draft, nil, nil
	}
	file, err := ctx.FormFile(imageFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return draft, nil, nil
		}
		return draft, nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read uploaded file")
	}
	upload, err := core.ReadUpload(file, s.config.Upload.MaxBytes())
	if err != nil {
		slog.Error("bindDraft: failed to read uploaded file", "status", http.StatusBadRequest, "error", err)
		return draft, nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read uploaded file")
	}
	return draft, upload, nil
}

// errorResponse maps resource store errors to the JSON error envelope.
func (s *APIService) errorResponse(ctx echo.Context, handler string, err error) error {
	var validationErr *core.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return ctx.JSON(http.StatusUnprocessableEntity, errorResponse{
			Message: validationErr.Summary(),
			Errors:  validationErr.ByField(),
		})
	case core.IsNotFound(err):
		slog.Warn(handler+": resource not found", "status", http.StatusNotFound, "error", err)
		return ctx.JSON(http.StatusNotFound, errorResponse{Message: "Resource not found."})
	default:
		slog.Error(handler+": resource store failure", "status", http.StatusInternalServerError, "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Message: "Server Error"})
	}
}
