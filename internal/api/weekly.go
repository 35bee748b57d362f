package api

import (
	"net/http"

	"levelup/internal/service"
	"levelup/pkg/logger"

	"github.com/gin-gonic/gin"
)

type weeklyRoutes struct {
	ws service.WeeklyServiceI
	cs service.ClassServiceI
}

func NewWeeklyRoutes(handler *gin.RouterGroup, ws service.WeeklyServiceI, cs service.ClassServiceI) {
	r := &weeklyRoutes{ws: ws, cs: cs}
	h := handler.Group("/weekly")
	{
		h.GET("", r.GetStatus)
		h.POST("/collect", r.Collect)
	}
}

type CollectResponse struct {
	GoldAwarded        int               `json:"gold_awarded"`
	XPAwardedPerClass  int               `json:"xp_awarded_per_class"`
	TotalXPDistributed int               `json:"total_xp_distributed"`
	LevelUps           []LevelUpResponse `json:"level_ups"`
}

func (r *weeklyRoutes) GetStatus(c *gin.Context) {
	log := logger.Logger()

	status, err := r.ws.Status(c.Request.Context())
	if err != nil {
		abortWithError(c, log, "failed to get weekly status", err)
		return
	}
	pos, err := r.cs.WeeklyPosition(c.Request.Context())
	if err != nil {
		abortWithError(c, log, "failed to get weekly status", err)
		return
	}

	c.JSON(http.StatusOK, newWeeklyStatusResponse(status, pos))
}

func (r *weeklyRoutes) Collect(c *gin.Context) {
	log := logger.Logger()

	res, err := r.ws.Collect(c.Request.Context())
	if err != nil {
		abortWithError(c, log, "failed to collect weekly reward", err)
		return
	}

	levelUps := make([]LevelUpResponse, len(res.LevelUps))
	for i, l := range res.LevelUps {
		levelUps[i] = newLevelUpResponse(l)
	}

	c.JSON(http.StatusOK, CollectResponse{
		GoldAwarded:        res.GoldAwarded,
		XPAwardedPerClass:  res.XPAwardedPerClass,
		TotalXPDistributed: res.TotalXPDistributed,
		LevelUps:           levelUps,
	})
}
