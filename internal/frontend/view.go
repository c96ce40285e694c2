package frontend

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jo-hoe/inventory/internal/backend/database"
)

// PageSize is the number of rows shown per page.
const PageSize = 5

// Filter keeps the resources whose name or description contains query, ignoring case.
// The query is matched as typed; an empty query keeps every resource.
func Filter(resources []*database.Resource, query string) []*database.Resource {
	query = strings.ToLower(query)
	if query == "" {
		return resources
	}

	filtered := make([]*database.Resource, 0, len(resources))
	for _, r := range resources {
		if strings.Contains(strings.ToLower(r.Name), query) ||
			strings.Contains(strings.ToLower(r.DescriptionOrEmpty()), query) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

type Page struct {
	Items   []*database.Resource
	Number  int
	Total   int
	HasPrev bool
	HasNext bool
}

// TotalPages returns the page count for n items; an empty list still has one page.
func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}

// Paginate returns the requested page of resources, clamped to the available pages.
func Paginate(resources []*database.Resource, page int) Page {
	total := TotalPages(len(resources))
	page = min(max(page, 1), total)

	start := (page - 1) * PageSize
	end := min(start+PageSize, len(resources))

	return Page{
		Items:   resources[start:end],
		Number:  page,
		Total:   total,
		HasPrev: page > 1,
		HasNext: page < total,
	}
}

func NextPage(page, total int) int {
	if page < total {
		return page + 1
	}
	return page
}

func PrevPage(page int) int {
	if page > 1 {
		return page - 1
	}
	return page
}

// FormatDate renders t with the given layout in the server's local time zone.
func FormatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(layout)
}

type ModalKind int

const (
	ModalClosed ModalKind = iota
	ModalCreating
	ModalEditing
	ModalViewingDetail
)

// Modal is the open dialog of the list view. ID is only set for ModalEditing and ModalViewingDetail.
type Modal struct {
	Kind ModalKind
	ID   int64
}

func (m Modal) IsCreating() bool { return m.Kind == ModalCreating }

func (m Modal) IsEditing() bool { return m.Kind == ModalEditing }

func (m Modal) IsViewingDetail() bool { return m.Kind == ModalViewingDetail }

// ParseModal derives the modal state from the modal and id query parameters.
// Unknown values and missing or invalid ids yield a closed modal.
func ParseModal(kind, id string) Modal {
	switch kind {
	case "create":
		return Modal{Kind: ModalCreating}
	case "edit", "detail":
		parsed, err := strconv.ParseInt(id, 10, 64)
		if err != nil || parsed <= 0 {
			return Modal{Kind: ModalClosed}
		}
		if kind == "edit" {
			return Modal{Kind: ModalEditing, ID: parsed}
		}
		return Modal{Kind: ModalViewingDetail, ID: parsed}
	default:
		return Modal{Kind: ModalClosed}
	}
}

// ViewState is the list view state carried in the request URL.
type ViewState struct {
	Query string
	Page  int
	Modal Modal
}

// URL renders the list route for the state, omitting default values.
func (v ViewState) URL() string {
	params := make([]string, 0, 4)
	if v.Query != "" {
		params = append(params, "q="+url.QueryEscape(v.Query))
	}
	if v.Page > 1 {
		params = append(params, "page="+strconv.Itoa(v.Page))
	}
	switch v.Modal.Kind {
	case ModalCreating:
		params = append(params, "modal=create")
	case ModalEditing:
		params = append(params, "modal=edit", "id="+strconv.FormatInt(v.Modal.ID, 10))
	case ModalViewingDetail:
		params = append(params, "modal=detail", "id="+strconv.FormatInt(v.Modal.ID, 10))
	}
	if len(params) == 0 {
		return listRoute
	}
	return listRoute + "?" + strings.Join(params, "&")
}

func (v ViewState) PageURL(page int) string {
	v.Page = page
	return v.URL()
}

func (v ViewState) ModalURL(modal Modal) string {
	v.Modal = modal
	return v.URL()
}

func (v ViewState) CreateURL() string { return v.ModalURL(Modal{Kind: ModalCreating}) }

func (v ViewState) EditURL(id int64) string { return v.ModalURL(Modal{Kind: ModalEditing, ID: id}) }

func (v ViewState) DetailURL(id int64) string {
	return v.ModalURL(Modal{Kind: ModalViewingDetail, ID: id})
}

func (v ViewState) CloseURL() string { return v.ModalURL(Modal{Kind: ModalClosed}) }
