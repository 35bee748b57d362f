package api

import (
	"net/http"

	"levelup/internal/model"
	"levelup/internal/service"
	"levelup/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type templateRoutes struct {
	ts service.TemplateServiceI
}

func NewTemplateRoutes(handler *gin.RouterGroup, ts service.TemplateServiceI) {
	r := &templateRoutes{ts: ts}
	h := handler.Group("/templates")
	{
		h.GET("", r.ListTemplates)
		h.POST("", r.CreateTemplate)
		h.POST("/sync", r.SyncTemplates)
		h.GET("/:id", r.GetTemplate)
		h.PUT("/:id", r.UpdateTemplate)
		h.DELETE("/:id", r.DeleteTemplate)
		h.PATCH("/:id/enabled", r.SetEnabled)
	}
}

type TemplateRequest struct {
	Title               string `json:"title"`
	Description         string `json:"description"`
	Type                string `json:"type"`
	Class               string `json:"class"`
	BaseXP              int    `json:"base_xp"`
	BaseGold            int    `json:"base_gold"`
	Enabled             *bool  `json:"enabled"`
	Scaling             bool   `json:"scaling"`
	Level1Requirement   *int   `json:"level1_requirement"`
	Level100Requirement *int   `json:"level100_requirement"`
	RequirementCount    int    `json:"requirement_count"`
}

func (req TemplateRequest) input() service.TemplateInput {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return service.TemplateInput{
		Title:               req.Title,
		Description:         req.Description,
		Type:                model.QuestType(req.Type),
		Class:               req.Class,
		BaseXP:              req.BaseXP,
		BaseGold:            req.BaseGold,
		Enabled:             enabled,
		Scaling:             req.Scaling,
		Level1Requirement:   req.Level1Requirement,
		Level100Requirement: req.Level100Requirement,
		RequirementCount:    req.RequirementCount,
	}
}

type EnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func templateID(c *gin.Context, log *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Debug("failed to parse template id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return uuid.Nil, false
	}
	return id, true
}

// ListTemplates supports the type, class, custom and enabled filters plus a
// fuzzy title query q.
func (r *templateRoutes) ListTemplates(c *gin.Context) {
	log := logger.Logger()

	filter := model.TemplateFilter{
		Type:        model.QuestType(c.Query("type")),
		Class:       c.Query("class"),
		CustomOnly:  c.Query("custom") == "true",
		EnabledOnly: c.Query("enabled") == "true",
	}

	templates, err := r.ts.Search(c.Request.Context(), c.Query("q"), filter)
	if err != nil {
		abortWithError(c, log, "failed to list templates", err)
		return
	}

	c.JSON(http.StatusOK, newTemplateResponses(templates))
}

func (r *templateRoutes) GetTemplate(c *gin.Context) {
	log := logger.Logger()

	id, ok := templateID(c, log)
	if !ok {
		return
	}

	t, err := r.ts.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, log, "failed to get template", err)
		return
	}

	c.JSON(http.StatusOK, newTemplateResponse(t))
}

func (r *templateRoutes) CreateTemplate(c *gin.Context) {
	log := logger.Logger()

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	t, err := r.ts.CreateCustom(c.Request.Context(), req.input())
	if err != nil {
		abortWithError(c, log, "failed to create template", err)
		return
	}

	c.JSON(http.StatusCreated, newTemplateResponse(t))
}

func (r *templateRoutes) UpdateTemplate(c *gin.Context) {
	log := logger.Logger()

	id, ok := templateID(c, log)
	if !ok {
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	t, err := r.ts.UpdateCustom(c.Request.Context(), id, req.input())
	if err != nil {
		abortWithError(c, log, "failed to update template", err)
		return
	}

	c.JSON(http.StatusOK, newTemplateResponse(t))
}

func (r *templateRoutes) DeleteTemplate(c *gin.Context) {
	log := logger.Logger()

	id, ok := templateID(c, log)
	if !ok {
		return
	}

	if err := r.ts.DeleteCustom(c.Request.Context(), id); err != nil {
		abortWithError(c, log, "failed to delete template", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (r *templateRoutes) SetEnabled(c *gin.Context) {
	log := logger.Logger()

	id, ok := templateID(c, log)
	if !ok {
		return
	}

	var req EnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	t, err := r.ts.SetEnabled(c.Request.Context(), id, *req.Enabled)
	if err != nil {
		abortWithError(c, log, "failed to update template", err)
		return
	}

	c.JSON(http.StatusOK, newTemplateResponse(t))
}

func (r *templateRoutes) SyncTemplates(c *gin.Context) {
	log := logger.Logger()

	added, err := r.ts.Sync(c.Request.Context())
	if err != nil {
		abortWithError(c, log, "failed to sync templates", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": added})
}
