package frontend

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jo-hoe/inventory/internal/backend/database"
	"github.com/jo-hoe/inventory/internal/core"
	"github.com/labstack/echo/v4"
)

const (
	MainPageName      = "index.html"
	tableTemplateName = "resource-table"
	listRoute         = "/resources"
	mimePNG           = "image/png"
	imageFormField    = "image"
)

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		config:      config,
	}
}

// formData holds the values and field errors of the create or edit form.
type formData struct {
	Name        string
	Type        string
	Description string
	Errors      map[string][]string
}

func (f formData) Error(field string) string {
	if messages := f.Errors[field]; len(messages) > 0 {
		return messages[0]
	}
	return ""
}

type pageData struct {
	Title       string
	State       ViewState
	Page        Page
	MatchCount  int
	Selected    *database.Resource
	Form        formData
	MaxUploadKB int
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.Renderer = newTemplate(service.config.View.DateFormat)

	e.GET("/", service.rootRedirectHandler)
	e.GET(listRoute, service.indexHandler)
	e.GET("/htmx/resources", service.htmxResourceTableHandler)

	e.POST(listRoute, service.createResourceHandler)
	e.PUT(listRoute+"/:id", service.updateResourceHandler)
	e.DELETE(listRoute+"/:id", service.deleteResourceHandler)
	e.GET(listRoute+"/:id/image", service.resourceImageHandler)

	e.GET("/icon.svg", service.iconHandler)
	e.GET("/icon.png", service.iconPNGHandler)
}

// rootRedirectHandler redirects root path to the resource list
func (service *FrontendService) rootRedirectHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusMovedPermanently, listRoute)
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	state := viewStateFromQuery(ctx)
	data, err := service.buildPage(ctx, state)
	if err != nil {
		slog.Error("indexHandler: failed to list resources",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to list resources")
	}

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, MainPageName, data)
}

func (service *FrontendService) htmxResourceTableHandler(ctx echo.Context) error {
	state := viewStateFromQuery(ctx)
	state.Modal = Modal{Kind: ModalClosed}
	data, err := service.buildPage(ctx, state)
	if err != nil {
		slog.Error("htmxResourceTableHandler: failed to list resources",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to list resources")
	}

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, tableTemplateName, data)
}

func (service *FrontendService) createResourceHandler(ctx echo.Context) error {
	draft := draftFromForm(ctx)
	upload, err := service.readUpload(ctx)
	if err != nil {
		slog.Error("createResourceHandler: failed to read uploaded file",
			"status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Failed to read uploaded file")
	}

	_, err = service.coreService.Create(ctx.Request().Context(), draft, upload)
	if err != nil {
		return service.handleMutationError(ctx, "createResourceHandler", err, Modal{Kind: ModalCreating}, draft)
	}
	return service.redirectToList(ctx)
}

func (service *FrontendService) updateResourceHandler(ctx echo.Context) error {
	id, ok := parseID(ctx)
	if !ok {
		return ctx.String(http.StatusNotFound, "Resource not found")
	}

	draft := draftFromForm(ctx)
	upload, err := service.readUpload(ctx)
	if err != nil {
		slog.Error("updateResourceHandler: failed to read uploaded file",
			"status", http.StatusBadRequest, "resource_id", id, "error", err)
		return ctx.String(http.StatusBadRequest, "Failed to read uploaded file")
	}

	_, err = service.coreService.Update(ctx.Request().Context(), id, draft, upload)
	if err != nil {
		return service.handleMutationError(ctx, "updateResourceHandler", err, Modal{Kind: ModalEditing, ID: id}, draft)
	}
	return service.redirectToList(ctx)
}

func (service *FrontendService) deleteResourceHandler(ctx echo.Context) error {
	id, ok := parseID(ctx)
	if !ok {
		return ctx.String(http.StatusNotFound, "Resource not found")
	}

	if err := service.coreService.Delete(ctx.Request().Context(), id); err != nil {
		if core.IsNotFound(err) {
			slog.Warn("deleteResourceHandler: resource not found",
				"status", http.StatusNotFound, "resource_id", id)
			return ctx.String(http.StatusNotFound, "Resource not found")
		}
		slog.Error("deleteResourceHandler: failed to delete resource",
			"status", http.StatusInternalServerError, "resource_id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to delete resource")
	}
	return service.redirectToList(ctx)
}

func (service *FrontendService) resourceImageHandler(ctx echo.Context) error {
	id, ok := parseID(ctx)
	if !ok {
		return ctx.String(http.StatusNotFound, "Image not available")
	}

	object, err := service.coreService.OpenImage(ctx.Request().Context(), id)
	if err != nil {
		if core.IsNotFound(err) {
			return ctx.String(http.StatusNotFound, "Image not available")
		}
		slog.Error("resourceImageHandler: failed to open image",
			"status", http.StatusInternalServerError, "resource_id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load image")
	}
	defer func() {
		if cerr := object.Body.Close(); cerr != nil {
			slog.Error("resourceImageHandler: failed to close image reader", "resource_id", id, "error", cerr)
		}
	}()

	service.setNoCache(ctx)
	if object.Size > 0 {
		ctx.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(object.Size, 10))
	}
	return ctx.Stream(http.StatusOK, object.ContentType, object.Body)
}

// handleMutationError renders the open form again with field errors, or maps the error to a status.
func (service *FrontendService) handleMutationError(ctx echo.Context, handler string, err error, modal Modal, draft core.Draft) error {
	var validationErr *core.ValidationError
	switch {
	case errors.As(err, &validationErr):
		state := viewStateFromForm(ctx, modal)
		data, listErr := service.buildPage(ctx, state)
		if listErr != nil {
			slog.Error(handler+": failed to list resources",
				"status", http.StatusInternalServerError, "error", listErr)
			return ctx.String(http.StatusInternalServerError, "Failed to list resources")
		}
		data.Form = formData{
			Name:        draft.Name,
			Type:        draft.Type,
			Description: draft.Description,
			Errors:      validationErr.ByField(),
		}
		return ctx.Render(http.StatusUnprocessableEntity, MainPageName, data)
	case core.IsNotFound(err):
		slog.Warn(handler+": resource not found", "status", http.StatusNotFound, "error", err)
		return ctx.String(http.StatusNotFound, "Resource not found")
	default:
		slog.Error(handler+": failed to save resource",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to save resource")
	}
}

// buildPage derives the visible page from the complete resource list.
func (service *FrontendService) buildPage(ctx echo.Context, state ViewState) (*pageData, error) {
	resources, err := service.coreService.List(ctx.Request().Context())
	if err != nil {
		return nil, err
	}

	matches := Filter(resources, state.Query)
	page := Paginate(matches, state.Page)
	state.Page = page.Number

	data := &pageData{
		Title:       service.config.View.Title,
		Page:        page,
		MatchCount:  len(matches),
		MaxUploadKB: service.config.Upload.MaxSizeKB,
	}

	if state.Modal.IsEditing() || state.Modal.IsViewingDetail() {
		selected := findResource(resources, state.Modal.ID)
		if selected == nil {
			state.Modal = Modal{Kind: ModalClosed}
		} else {
			data.Selected = selected
			data.Form = formData{
				Name:        selected.Name,
				Type:        selected.Type,
				Description: selected.DescriptionOrEmpty(),
			}
		}
	}

	data.State = state
	return data, nil
}

func findResource(resources []*database.Resource, id int64) *database.Resource {
	for _, r := range resources {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// redirectToList answers a successful mutation. htmx requests get an HX-Redirect so the whole page reloads.
func (service *FrontendService) redirectToList(ctx echo.Context) error {
	if ctx.Request().Header.Get("HX-Request") == "true" {
		ctx.Response().Header().Set("HX-Redirect", listRoute)
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.Redirect(http.StatusSeeOther, listRoute)
}

// readUpload returns the uploaded image, or nil when no file was submitted.
func (service *FrontendService) readUpload(ctx echo.Context) (*core.Upload, error) {
	file, err := ctx.FormFile(imageFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	return core.ReadUpload(file, service.config.Upload.MaxBytes())
}

func draftFromForm(ctx echo.Context) core.Draft {
	return core.Draft{
		Name:        ctx.FormValue("name"),
		Type:        ctx.FormValue("type"),
		Description: ctx.FormValue("description"),
	}
}

func viewStateFromQuery(ctx echo.Context) ViewState {
	page, err := strconv.Atoi(ctx.QueryParam("page"))
	if err != nil {
		page = 1
	}
	return ViewState{
		Query: ctx.QueryParam("q"),
		Page:  page,
		Modal: ParseModal(ctx.QueryParam("modal"), ctx.QueryParam("id")),
	}
}

// viewStateFromForm restores the search and page the create or edit form was opened from.
func viewStateFromForm(ctx echo.Context, modal Modal) ViewState {
	page, err := strconv.Atoi(ctx.FormValue("page"))
	if err != nil {
		page = 1
	}
	return ViewState{
		Query: ctx.FormValue("q"),
		Page:  page,
		Modal: modal,
	}
}

func parseID(ctx echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		slog.Warn("invalid resource id", "id", ctx.Param("id"), "route", ctx.Path())
		return 0, false
	}
	return id, true
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}

func (service *FrontendService) iconPNGHandler(ctx echo.Context) error {
	data, err := iconAsPNG()
	if err != nil {
		slog.Error("iconPNGHandler: failed to render icon", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, mimePNG, data)
}
