package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"passport-admin-go/internal/domain/passport"
	"passport-admin-go/internal/pkg/layout"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var (
	dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.gohtml"))
	detailsTemplate   = template.Must(template.ParseFS(templateFS, "templates/details.gohtml"))
)

type DashboardHandler struct {
	service passport.Service
}

func NewDashboardHandler(service passport.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

type dashboardView struct {
	*passport.Dashboard
	Error string
}

type detailsView struct {
	*passport.Details
	Photo                template.URL
	Signature            template.URL
	SignaturePlaceholder string
}

// Page renders the operator dashboard. If the first load from the record
// store fails, an empty dashboard is rendered with the error banner.
func (h *DashboardHandler) Page(c *gin.Context) {
	view := dashboardView{Dashboard: &passport.Dashboard{}}
	d, err := h.service.Dashboard(c.Request.Context())
	status := http.StatusOK
	if err != nil {
		status = determineErrorStatus(err)
		view.Error = err.Error()
		_ = c.Error(err)
	} else {
		view.Dashboard = d
	}

	renderHTML(c, "dashboard", dashboardTemplate, status, view)
}

// Details renders one record with its cached photo and signature.
func (h *DashboardHandler) Details(c *gin.Context) {
	d, err := h.service.View(c.Request.Context(), c.Param("table"), c.Param("id"))
	if err != nil {
		respondError(c, "details", err)
		return
	}

	renderHTML(c, "details", detailsTemplate, http.StatusOK, detailsView{
		Details:              d,
		Photo:                layout.ImageSource(d.PhotoSrc),
		Signature:            layout.ImageSource(d.SignatureSrc),
		SignaturePlaceholder: layout.SignaturePlaceholder,
	})
}

func renderHTML(c *gin.Context, op string, tmpl *template.Template, status int, data interface{}) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		respondError(c, op, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
