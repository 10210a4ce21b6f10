package controller

import (
	"github.com/ananyakrishnaeemani/ai-learning/internal/service"
	"github.com/ananyakrishnaeemani/ai-learning/internal/util"

	"github.com/gin-gonic/gin"
)

type TopicController struct {
	ContentService *service.ContentService
}

func NewTopicController(contentService *service.ContentService) *TopicController {
	return &TopicController{ContentService: contentService}
}

func (c *TopicController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req service.TopicInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic, err := c.ContentService.CreateTopic(ctx.Request.Context(), userID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Created(ctx, topic)
}

func (c *TopicController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	topics, err := c.ContentService.ListTopics(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, topics)
}

func (c *TopicController) Detail(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	topicID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.ContentService.GetTopicDetail(userID, topicID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

func (c *TopicController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	topicID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.ContentService.DeleteTopic(userID, topicID); err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": topicID})
}
