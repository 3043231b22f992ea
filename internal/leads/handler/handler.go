package handler

import (
	"net/http"

	"leadflow_backend/internal/leads/replytoken"
	"leadflow_backend/internal/leads/service"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidReplyLink = "invalid or expired reply link"
)

type Handler struct {
	svc    *service.Service
	val    *validator.Validator
	tokens *replytoken.Signer
}

func New(svc *service.Service, val *validator.Validator, tokens *replytoken.Signer) *Handler {
	return &Handler{svc: svc, val: val, tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, intakeLimit gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.POST("", intakeLimit, h.Create)
	rg.POST("/import", intakeLimit, h.Import)
	// Reply link target before /:id so "reply" is not parsed as a lead id.
	rg.GET("/reply/:token", h.ReplyLink)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/messages", h.ListMessages)
	rg.POST("/:id/mark-replied", h.MarkReplied)
	rg.POST("/:id/send-reminder", h.SendReminder)
	rg.POST("/:id/update-status", h.UpdateStatus)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) Import(c *gin.Context) {
	result, err := h.svc.ImportCSV(c.Request.Context(), c.Request.Body)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	leads, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, leads)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) ListMessages(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	entries, err := h.svc.ListMessages(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, entries)
}

func (h *Handler) MarkReplied(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.MarkReplied(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

// ReplyLink is the GET target embedded in outbound emails. The token is
// verified before any lookup; the operation itself is the same idempotent
// mark-replied.
func (h *Handler) ReplyLink(c *gin.Context) {
	id, err := h.tokens.Verify(c.Param("token"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidReplyLink, nil)
		return
	}

	lead, err := h.svc.MarkReplied(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) SendReminder(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.SendReminder(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) KPIs(c *gin.Context) {
	kpis, err := h.svc.KPIs(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, kpis)
}

func (h *Handler) leadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
