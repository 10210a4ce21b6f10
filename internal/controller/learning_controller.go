package controller

import (
	"github.com/ananyakrishnaeemani/ai-learning/internal/service"
	"github.com/ananyakrishnaeemani/ai-learning/internal/util"

	"github.com/gin-gonic/gin"
)

// LearningController serves materialized module content and grades
// module quiz submissions.
type LearningController struct {
	ContentService *service.ContentService
	GradingService *service.GradingService
}

func NewLearningController(contentService *service.ContentService, gradingService *service.GradingService) *LearningController {
	return &LearningController{
		ContentService: contentService,
		GradingService: gradingService,
	}
}

// ModuleContent returns the module's slides and quiz, generating them on
// first access.
func (c *LearningController) ModuleContent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	moduleID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	content, err := c.ContentService.EnsureModuleContent(ctx.Request.Context(), userID, moduleID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, content)
}

type quizSubmission struct {
	Answers []service.QuizAnswer `json:"answers" binding:"required"`
}

func (c *LearningController) SubmitQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	moduleID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req quizSubmission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GradingService.GradeModuleQuiz(ctx.Request.Context(), userID, moduleID, req.Answers)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
