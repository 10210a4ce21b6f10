package controller

import (
	"github.com/ananyakrishnaeemani/ai-learning/internal/service"
	"github.com/ananyakrishnaeemani/ai-learning/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

func (c *DashboardController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	snap, err := c.DashboardService.GetDashboard(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, snap)
}

func (c *DashboardController) Insights(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	insights, err := c.DashboardService.GetInsights(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, insights)
}
