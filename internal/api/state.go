package api

import (
	"net/http"

	"levelup/internal/model"
	"levelup/internal/service"
	"levelup/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ForegroundNotifier is told when the client comes back to the foreground.
type ForegroundNotifier interface {
	NotifyForeground()
}

type stateRoutes struct {
	cs service.ClassServiceI
	qs service.QuestServiceI
	ws service.WeeklyServiceI
	es service.EconomyServiceI
	ms service.MaintenanceI
	fg ForegroundNotifier
}

type StateServices struct {
	Classes     service.ClassServiceI
	Quests      service.QuestServiceI
	Weekly      service.WeeklyServiceI
	Economy     service.EconomyServiceI
	Maintenance service.MaintenanceI
}

func NewStateRoutes(handler *gin.RouterGroup, s StateServices, fg ForegroundNotifier) {
	r := &stateRoutes{
		cs: s.Classes,
		qs: s.Quests,
		ws: s.Weekly,
		es: s.Economy,
		ms: s.Maintenance,
		fg: fg,
	}
	handler.GET("/state", r.GetState)

	h := handler.Group("/maintenance")
	{
		h.POST("/foreground", r.Foreground)
		h.POST("/reset", r.Reset)
	}
}

type StateResponse struct {
	User       UserResponse         `json:"user"`
	Classes    []ClassResponse      `json:"classes"`
	Quests     []QuestResponse      `json:"quests"`
	Weekly     WeeklyStatusResponse `json:"weekly"`
	RerollCost int                  `json:"reroll_cost"`
}

// GetState returns everything the home screen renders in one call.
func (r *stateRoutes) GetState(c *gin.Context) {
	log := logger.Logger()
	ctx := c.Request.Context()

	if err := r.ms.EnsureInitialized(ctx); err != nil {
		abortWithError(c, log, "failed to initialize", err)
		return
	}

	user, err := r.cs.GetUser(ctx)
	if err != nil {
		abortWithError(c, log, "failed to get state", err)
		return
	}
	classes, err := r.cs.SortedClasses(ctx, service.ViewHome)
	if err != nil {
		abortWithError(c, log, "failed to get state", err)
		return
	}
	quests, err := r.qs.CurrentQuests(ctx, model.QuestTypeDaily)
	if err != nil {
		abortWithError(c, log, "failed to get state", err)
		return
	}
	weekly, err := r.ws.Status(ctx)
	if err != nil {
		abortWithError(c, log, "failed to get state", err)
		return
	}
	pos, err := r.cs.WeeklyPosition(ctx)
	if err != nil {
		abortWithError(c, log, "failed to get state", err)
		return
	}
	cost, err := r.es.NextRerollCost(ctx)
	if err != nil {
		abortWithError(c, log, "failed to get state", err)
		return
	}

	c.JSON(http.StatusOK, StateResponse{
		User:       newUserResponse(user),
		Classes:    newClassResponses(classes),
		Quests:     newQuestResponses(quests),
		Weekly:     newWeeklyStatusResponse(weekly, pos),
		RerollCost: cost,
	})
}

func (r *stateRoutes) Foreground(c *gin.Context) {
	r.fg.NotifyForeground()
	c.JSON(http.StatusAccepted, gin.H{})
}

// Reset wipes all progress and seeds a fresh store.
func (r *stateRoutes) Reset(c *gin.Context) {
	log := logger.Logger()
	ctx := c.Request.Context()

	if err := r.ms.Reset(ctx); err != nil {
		abortWithError(c, log, "failed to reset", err)
		return
	}
	if err := r.ms.EnsureInitialized(ctx); err != nil {
		abortWithError(c, log, "failed to initialize", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
