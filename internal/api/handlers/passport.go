package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"passport-admin-go/internal/domain/passport"

	"github.com/gin-gonic/gin"
)

type PassportHandler struct {
	service passport.Service
}

func NewPassportHandler(service passport.Service) *PassportHandler {
	return &PassportHandler{service: service}
}

// Generate streams the assembled passport as an attachment.
func (h *PassportHandler) Generate(c *gin.Context) {
	start := time.Now()
	doc, err := h.service.GeneratePassport(c.Request.Context(), c.Param("table"), c.Param("id"))
	if err != nil {
		respondError(c, "generate", err)
		return
	}

	c.Header("Content-Disposition", attachment(doc.Filename))
	c.Header("X-Page-Count", strconv.Itoa(len(doc.Pages)))
	c.Header("X-Total-Processing-Time", strconv.FormatFloat(time.Since(start).Seconds(), 'f', 3, 64))
	c.Data(http.StatusOK, "application/pdf", doc.PDF)
}

// Documents proxies the record's supporting documents as documents_{id}.
func (h *PassportHandler) Documents(c *gin.Context) {
	dl, err := h.service.DownloadDocuments(c.Request.Context(), c.Param("table"), c.Param("id"))
	if err != nil {
		respondError(c, "documents", err)
		return
	}

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", attachment(dl.Filename))
	c.Data(http.StatusOK, contentType, dl.Data)
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
