package controller

import (
	"github.com/ananyakrishnaeemani/ai-learning/internal/model"
	"github.com/ananyakrishnaeemani/ai-learning/internal/service"
	"github.com/ananyakrishnaeemani/ai-learning/internal/util"

	"github.com/gin-gonic/gin"
)

type MockExamController struct {
	ExamService    *service.MockExamService
	GradingService *service.GradingService
}

func NewMockExamController(examService *service.MockExamService, gradingService *service.GradingService) *MockExamController {
	return &MockExamController{
		ExamService:    examService,
		GradingService: gradingService,
	}
}

func (c *MockExamController) Generate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.ExamInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.Generate(ctx.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Created(ctx, exam)
}

func (c *MockExamController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	exam, err := c.ExamService.GetExam(userID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, exam)
}

type examSubmission struct {
	Answers []model.ExamAnswer `json:"answers" binding:"required"`
}

func (c *MockExamController) Submit(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req examSubmission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GradingService.GradeMockExam(ctx.Request.Context(), userID, ctx.Param("id"), req.Answers)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

func (c *MockExamController) Review(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	review, err := c.GradingService.ReviewAttempt(userID, ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, review)
}

func (c *MockExamController) History(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	history, err := c.GradingService.ExamHistory(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, history)
}
