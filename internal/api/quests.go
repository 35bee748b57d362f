package api

import (
	"context"
	"net/http"
	"strings"

	"levelup/internal/model"
	"levelup/internal/service"
	"levelup/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type questRoutes struct {
	qs service.QuestServiceI
	es service.EconomyServiceI
}

func NewQuestRoutes(handler *gin.RouterGroup, qs service.QuestServiceI, es service.EconomyServiceI) {
	r := &questRoutes{qs: qs, es: es}
	h := handler.Group("/quests")
	{
		h.GET("", r.ListQuests)
		h.GET("/reroll-cost", r.GetRerollCost)
		h.GET("/:id", r.GetQuest)
		h.PUT("/:id/progress", r.UpdateProgress)
		h.POST("/:id/increment", r.Increment)
		h.POST("/:id/decrement", r.Decrement)
		h.POST("/:id/complete", r.Complete)
		h.POST("/:id/reroll", r.Reroll)
	}
}

type ProgressRequest struct {
	Value int `json:"value"`
}

type StepRequest struct {
	Amount int `json:"amount"`
}

type CompletionResponse struct {
	Quest           QuestResponse    `json:"quest"`
	GoldAwarded     int              `json:"gold_awarded"`
	XPAwarded       int              `json:"xp_awarded"`
	LevelUp         *LevelUpResponse `json:"level_up,omitempty"`
	WeeklyGenerated bool             `json:"weekly_generated"`
}

type RerollResponse struct {
	Quest    QuestResponse `json:"quest"`
	Cost     int           `json:"cost"`
	NextCost int           `json:"next_cost"`
}

func questID(c *gin.Context, log *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Debug("failed to parse quest id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest id"})
		return uuid.Nil, false
	}
	return id, true
}

// ListQuests filters by the type, class and comma separated status query
// parameters. Without a status only active quests are listed.
func (r *questRoutes) ListQuests(c *gin.Context) {
	log := logger.Logger()

	filter := model.InstanceFilter{
		Type:  model.QuestType(c.Query("type")),
		Class: c.Query("class"),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest type"})
		return
	}

	switch status := c.Query("status"); status {
	case "":
		filter.Statuses = []model.QuestStatus{model.QuestStatusActive}
	case "all":
	default:
		for _, s := range strings.Split(status, ",") {
			filter.Statuses = append(filter.Statuses, model.QuestStatus(strings.TrimSpace(s)))
		}
	}

	quests, err := r.qs.ListQuests(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, log, "failed to list quests", err)
		return
	}

	c.JSON(http.StatusOK, newQuestResponses(quests))
}

func (r *questRoutes) GetQuest(c *gin.Context) {
	log := logger.Logger()

	id, ok := questID(c, log)
	if !ok {
		return
	}

	quest, err := r.qs.GetQuest(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, log, "failed to get quest", err)
		return
	}

	c.JSON(http.StatusOK, newQuestResponse(quest))
}

func (r *questRoutes) GetRerollCost(c *gin.Context) {
	log := logger.Logger()

	cost, err := r.es.NextRerollCost(c.Request.Context())
	if err != nil {
		abortWithError(c, log, "failed to get reroll cost", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cost": cost})
}

func (r *questRoutes) UpdateProgress(c *gin.Context) {
	log := logger.Logger()

	id, ok := questID(c, log)
	if !ok {
		return
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	quest, err := r.qs.UpdateProgress(c.Request.Context(), id, req.Value)
	if err != nil {
		abortWithError(c, log, "failed to update progress", err)
		return
	}

	c.JSON(http.StatusOK, newQuestResponse(quest))
}

func (r *questRoutes) Increment(c *gin.Context) {
	r.step(c, r.qs.Increment)
}

func (r *questRoutes) Decrement(c *gin.Context) {
	r.step(c, r.qs.Decrement)
}

func (r *questRoutes) step(c *gin.Context, apply func(ctx context.Context, id uuid.UUID, amount int) (*model.QuestInstance, error)) {
	log := logger.Logger()

	id, ok := questID(c, log)
	if !ok {
		return
	}

	// The body is optional; the amount defaults to 1.
	var req StepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Debug("failed to bind request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	quest, err := apply(c.Request.Context(), id, req.Amount)
	if err != nil {
		abortWithError(c, log, "failed to update progress", err)
		return
	}

	c.JSON(http.StatusOK, newQuestResponse(quest))
}

func (r *questRoutes) Complete(c *gin.Context) {
	log := logger.Logger()

	id, ok := questID(c, log)
	if !ok {
		return
	}

	res, err := r.qs.Complete(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, log, "failed to complete quest", err)
		return
	}

	response := CompletionResponse{
		Quest:           newQuestResponse(res.Quest),
		GoldAwarded:     res.GoldAwarded,
		XPAwarded:       res.XPAwarded,
		WeeklyGenerated: res.WeeklyGenerated,
	}
	if res.LevelUp != nil {
		lvl := newLevelUpResponse(*res.LevelUp)
		response.LevelUp = &lvl
	}

	c.JSON(http.StatusOK, response)
}

func (r *questRoutes) Reroll(c *gin.Context) {
	log := logger.Logger()

	id, ok := questID(c, log)
	if !ok {
		return
	}

	res, err := r.qs.Reroll(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, log, "failed to reroll quest", err)
		return
	}

	next, err := r.es.NextRerollCost(c.Request.Context())
	if err != nil {
		abortWithError(c, log, "failed to get reroll cost", err)
		return
	}

	c.JSON(http.StatusOK, RerollResponse{
		Quest:    newQuestResponse(res.Quest),
		Cost:     res.Cost,
		NextCost: next,
	})
}
