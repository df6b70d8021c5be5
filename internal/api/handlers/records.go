package handlers

import (
	"context"
	"net/http"

	"passport-admin-go/internal/api/middleware"
	"passport-admin-go/internal/domain/passport"

	"github.com/gin-gonic/gin"
)

type RecordsHandler struct {
	service passport.Service
}

func NewRecordsHandler(service passport.Service) *RecordsHandler {
	return &RecordsHandler{service: service}
}

// List returns both tables as last loaded.
func (h *RecordsHandler) List(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *RecordsHandler) Refresh(c *gin.Context) {
	d, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, "refresh", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *RecordsHandler) View(c *gin.Context) {
	d, err := h.service.View(c.Request.Context(), c.Param("table"), c.Param("id"))
	if err != nil {
		respondError(c, "view", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *RecordsHandler) Approve(c *gin.Context) {
	rec, err := h.service.Approve(operatorContext(c), c.Param("table"), c.Param("id"))
	if err != nil {
		respondError(c, "approve", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully", "record": rec})
}

func (h *RecordsHandler) Decline(c *gin.Context) {
	rec, err := h.service.Decline(operatorContext(c), c.Param("table"), c.Param("id"))
	if err != nil {
		respondError(c, "decline", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully", "record": rec})
}

// operatorContext attaches the authenticated officer, when there is one, so
// status changes are attributed in the audit log.
func operatorContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return ctx
	}
	operator := claims.Email
	if operator == "" {
		operator = claims.Subject
	}
	return passport.WithOperator(ctx, operator)
}
