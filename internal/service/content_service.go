package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ananyakrishnaeemani/ai-learning/internal/model"
	"github.com/ananyakrishnaeemani/ai-learning/internal/util"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/logger"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentService materializes AI-generated course content on demand:
// a curriculum roadmap once per topic, and slides plus quiz questions
// once per module on first read.
type ContentService struct {
	Topics    TopicStore
	Content   ContentStore
	Progress  ProgressStore
	Generator ContentGenerator
}

func NewContentService(topics TopicStore, content ContentStore, progress ProgressStore, generator ContentGenerator) *ContentService {
	return &ContentService{
		Topics:    topics,
		Content:   content,
		Progress:  progress,
		Generator: generator,
	}
}

type TopicInput struct {
	Title        string `json:"title" binding:"required"`
	Difficulty   string `json:"difficulty" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"required,min=1"`
	Description  string `json:"description"`
}

type QuizQuestionView struct {
	ID       uint     `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type ModuleContent struct {
	ModuleID uint               `json:"module_id"`
	Title    string             `json:"title"`
	Slides   []model.Slide      `json:"slides"`
	Quiz     []QuizQuestionView `json:"quiz"`
}

type ModuleView struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index"`
	IsCompleted bool   `json:"is_completed"`
	Score       int    `json:"score"`
}

type TopicDetail struct {
	model.Topic
	Modules []ModuleView `json:"modules"`
}

// CreateTopic generates a roadmap for the new topic and persists the
// topic, its modules and an initial progress record per module. The
// generator is called exactly once per topic; on failure a generic
// three-module skeleton is used instead.
func (s *ContentService) CreateTopic(ctx context.Context, userID uint, input TopicInput) (*model.Topic, error) {
	payload, err := s.Generator.GenerateRoadmap(ctx, input.Title, input.Difficulty, input.DurationDays, input.Description)
	if err != nil {
		logger.Log.Warn("roadmap generation failed, using fallback skeleton",
			zap.String("topic", input.Title), zap.Error(err))
		monitoring.GenerationCounter.WithLabelValues("roadmap", "fallback").Inc()
		payload = fallbackRoadmap(input.Title)
	} else {
		monitoring.GenerationCounter.WithLabelValues("roadmap", "ok").Inc()
	}

	topic := &model.Topic{
		Title:        input.Title,
		Difficulty:   input.Difficulty,
		DurationDays: input.DurationDays,
		Description:  input.Description,
		UserID:       userID,
	}

	modules := make([]model.Module, 0, len(payload.Modules))
	for i, m := range payload.Modules {
		modules = append(modules, model.Module{
			Title:       m.Title,
			Description: m.Description,
			// Reindex so positions are strictly increasing from 1
			// regardless of what the generator returned.
			OrderIndex: i + 1,
		})
	}

	if err := s.Topics.CreateWithRoadmap(topic, modules); err != nil {
		return nil, err
	}
	return topic, nil
}

// EnsureModuleContent returns the module's slides and quiz, generating
// and persisting them on first access. Once any slide exists the module
// is materialized and generation never repeats.
func (s *ContentService) EnsureModuleContent(ctx context.Context, userID, moduleID uint) (*ModuleContent, error) {
	module, topic, err := s.ownedModule(userID, moduleID)
	if err != nil {
		return nil, err
	}

	slides, err := s.Content.SlidesByModule(moduleID)
	if err != nil {
		return nil, err
	}

	if len(slides) == 0 {
		claimed, err := s.Content.ClaimMaterialization(moduleID)
		if err != nil {
			return nil, err
		}
		if claimed {
			if err := s.materialize(ctx, topic, module); err != nil {
				return nil, err
			}
		}
		// Losers of the claim race fall through and read whatever the
		// winner has persisted so far.
		slides, err = s.Content.SlidesByModule(moduleID)
		if err != nil {
			return nil, err
		}
	}

	questions, err := s.Content.QuestionsByModule(moduleID)
	if err != nil {
		return nil, err
	}

	quiz := make([]QuizQuestionView, 0, len(questions))
	for _, q := range questions {
		quiz = append(quiz, QuizQuestionView{
			ID:       q.ID,
			Question: q.Question,
			Options:  q.OptionList(),
		})
	}

	return &ModuleContent{
		ModuleID: module.ID,
		Title:    module.Title,
		Slides:   slides,
		Quiz:     quiz,
	}, nil
}

// materialize runs one generation for the module and persists the result.
// Generator failure is recovered with fixed placeholder content so the
// module still counts as materialized; there is no automatic retry.
func (s *ContentService) materialize(ctx context.Context, topic *model.Topic, module *model.Module) error {
	payload, err := s.Generator.GenerateModuleContent(ctx, topic.Title, module.Title)
	if err != nil {
		logger.Log.Warn("module content generation failed, persisting placeholder",
			zap.Uint("module_id", module.ID), zap.Error(err))
		monitoring.GenerationCounter.WithLabelValues("module_content", "fallback").Inc()
		payload = fallbackModuleContent()
	} else {
		monitoring.GenerationCounter.WithLabelValues("module_content", "ok").Inc()
	}

	slides := make([]model.Slide, 0, len(payload.Slides))
	for _, sl := range payload.Slides {
		slides = append(slides, model.Slide{
			Content:    sl.Content,
			OrderIndex: sl.OrderIndex,
		})
	}

	questions := make([]model.QuizQuestion, 0, len(payload.Quizzes))
	for _, q := range payload.Quizzes {
		question, ok := buildQuizQuestion(q)
		if !ok {
			logger.Log.Warn("dropping structurally invalid quiz question",
				zap.Uint("module_id", module.ID), zap.String("question", q.Question))
			continue
		}
		questions = append(questions, question)
	}

	return s.Content.SaveContent(module.ID, slides, questions)
}

// buildQuizQuestion validates the generator's structural contract:
// exactly four options, exactly one of which equals the declared correct
// answer verbatim. Anything else is dropped rather than persisted.
func buildQuizQuestion(q QuizPayload) (model.QuizQuestion, bool) {
	if len(q.Options) != 4 {
		return model.QuizQuestion{}, false
	}

	matches := 0
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			matches++
		}
	}
	if matches != 1 {
		return model.QuizQuestion{}, false
	}

	opts, err := json.Marshal(q.Options)
	if err != nil {
		return model.QuizQuestion{}, false
	}

	return model.QuizQuestion{
		Question:      q.Question,
		Options:       opts,
		CorrectAnswer: q.CorrectAnswer,
	}, true
}

func (s *ContentService) ListTopics(userID uint) ([]model.Topic, error) {
	return s.Topics.ListByUser(userID)
}

func (s *ContentService) GetTopicDetail(userID, topicID uint) (*TopicDetail, error) {
	topic, err := s.ownedTopic(userID, topicID)
	if err != nil {
		return nil, err
	}

	modules, err := s.Topics.ModulesByTopic(topicID)
	if err != nil {
		return nil, err
	}

	progressByModule, err := s.Progress.MapByUserAndTopic(userID, topicID)
	if err != nil {
		return nil, err
	}

	views := make([]ModuleView, 0, len(modules))
	for _, m := range modules {
		view := ModuleView{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			OrderIndex:  m.OrderIndex,
		}
		if rec, ok := progressByModule[m.ID]; ok {
			view.IsCompleted = rec.IsCompleted
			if rec.Score != nil {
				view.Score = *rec.Score
			}
		}
		views = append(views, view)
	}

	return &TopicDetail{Topic: *topic, Modules: views}, nil
}

func (s *ContentService) DeleteTopic(userID, topicID uint) error {
	if _, err := s.ownedTopic(userID, topicID); err != nil {
		return err
	}
	return s.Topics.DeleteCascade(topicID)
}

func (s *ContentService) ownedTopic(userID, topicID uint) (*model.Topic, error) {
	topic, err := s.Topics.FindByID(topicID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrTopicNotFound
	}
	if err != nil {
		return nil, err
	}
	if topic.UserID != userID {
		return nil, util.ErrNotOwner
	}
	return topic, nil
}

func (s *ContentService) ownedModule(userID, moduleID uint) (*model.Module, *model.Topic, error) {
	module, err := s.Topics.ModuleByID(moduleID)
	if err == gorm.ErrRecordNotFound {
		return nil, nil, util.ErrModuleNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	topic, err := s.Topics.FindByID(module.TopicID)
	if err != nil {
		return nil, nil, err
	}
	if topic.UserID != userID {
		return nil, nil, util.ErrNotOwner
	}
	return module, topic, nil
}

// fallbackRoadmap is the fixed skeleton used when roadmap generation
// fails: the topic still gets a usable three-module outline.
func fallbackRoadmap(topic string) *RoadmapPayload {
	return &RoadmapPayload{
		Modules: []RoadmapModule{
			{Title: fmt.Sprintf("Introduction to %s", topic), Description: "Basics and Setup", OrderIndex: 1},
			{Title: fmt.Sprintf("Core Concepts of %s", topic), Description: "Deep dive into main ideas", OrderIndex: 2},
			{Title: fmt.Sprintf("Advanced %s", topic), Description: "Complex topics and projects", OrderIndex: 3},
		},
	}
}

// fallbackModuleContent is persisted when content generation fails. The
// module counts as materialized afterwards, so reads stay cheap and
// deterministic instead of hammering a failing provider.
func fallbackModuleContent() *ModuleContentPayload {
	return &ModuleContentPayload{
		Slides: []SlidePayload{
			{Content: "# Error \n Could not generate content.", OrderIndex: 1},
		},
		Quizzes: []QuizPayload{
			{
				Question:      "Error generating quiz?",
				Options:       []string{"Yes", "No", "Maybe", "Unsure"},
				CorrectAnswer: "Yes",
			},
		},
	}
}
