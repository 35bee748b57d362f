package api

import (
	"net/http"

	"levelup/internal/model"
	"levelup/internal/service"
	"levelup/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type classRoutes struct {
	cs service.ClassServiceI
	es service.EconomyServiceI
}

func NewClassRoutes(handler *gin.RouterGroup, cs service.ClassServiceI, es service.EconomyServiceI) {
	r := &classRoutes{cs: cs, es: es}
	h := handler.Group("/classes")
	{
		h.GET("", r.ListClasses)
		h.GET("/order", r.GetClassOrder)
		h.PUT("/order", r.UpdateClassOrder)
		h.GET("/:id", r.GetClass)
		h.POST("/:id/unlock", r.UnlockClass)
		h.POST("/:id/slots/:slot", r.UnlockSlot)
	}
}

type ClassOrderRequest struct {
	Order []string `json:"order" binding:"required"`
}

type ClassOrderResponse struct {
	Order          []string `json:"order"`
	WeeklyPosition int      `json:"weekly_position"`
}

func (r *classRoutes) ListClasses(c *gin.Context) {
	log := logger.Logger()

	view := service.ClassView(c.DefaultQuery("view", string(service.ViewHome)))
	if view != service.ViewHome && view != service.ViewQuests {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid view"})
		return
	}

	classes, err := r.cs.SortedClasses(c.Request.Context(), view)
	if err != nil {
		abortWithError(c, log, "failed to list classes", err)
		return
	}

	c.JSON(http.StatusOK, newClassResponses(classes))
}

func (r *classRoutes) GetClass(c *gin.Context) {
	log := logger.Logger()

	class, err := r.cs.GetClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, log, "failed to get class", err)
		return
	}

	c.JSON(http.StatusOK, newClassResponse(class))
}

func (r *classRoutes) GetClassOrder(c *gin.Context) {
	log := logger.Logger()

	order, err := r.cs.ClassOrder(c.Request.Context())
	if err != nil {
		abortWithError(c, log, "failed to get class order", err)
		return
	}
	pos, err := r.cs.WeeklyPosition(c.Request.Context())
	if err != nil {
		abortWithError(c, log, "failed to get class order", err)
		return
	}

	c.JSON(http.StatusOK, ClassOrderResponse{Order: order, WeeklyPosition: pos})
}

func (r *classRoutes) UpdateClassOrder(c *gin.Context) {
	log := logger.Logger()

	var req ClassOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	order, err := r.cs.UpdateClassOrder(c.Request.Context(), req.Order)
	if err != nil {
		abortWithError(c, log, "failed to update class order", err)
		return
	}
	pos, err := r.cs.WeeklyPosition(c.Request.Context())
	if err != nil {
		abortWithError(c, log, "failed to get class order", err)
		return
	}

	c.JSON(http.StatusOK, ClassOrderResponse{Order: order, WeeklyPosition: pos})
}

func (r *classRoutes) UnlockClass(c *gin.Context) {
	log := logger.Logger()

	class, err := r.es.UnlockClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, log, "failed to unlock class", err)
		return
	}

	c.JSON(http.StatusOK, newClassResponse(class))
}

func (r *classRoutes) UnlockSlot(c *gin.Context) {
	log := logger.Logger()

	slot, ok := model.ParseSlot(c.Param("slot"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot"})
		return
	}

	class, err := r.es.UnlockSlot(c.Request.Context(), c.Param("id"), slot)
	if err != nil {
		abortWithError(c, log, "failed to unlock slot", err)
		return
	}

	c.JSON(http.StatusOK, newClassResponse(class))
}
