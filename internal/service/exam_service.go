package service

import (
	"context"
	"encoding/json"

	"github.com/ananyakrishnaeemani/ai-learning/internal/model"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/logger"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/monitoring"

	"go.uber.org/zap"
)

const defaultExamQuestionCount = 10

// MockExamService creates standalone assessments, independent of any
// topic the user is studying.
type MockExamService struct {
	Exams     ExamStore
	Generator ContentGenerator
}

func NewMockExamService(exams ExamStore, generator ContentGenerator) *MockExamService {
	return &MockExamService{Exams: exams, Generator: generator}
}

type ExamInput struct {
	Topic      string `json:"topic" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required"`
	Count      int    `json:"count"`
}

// ExamView is an exam as served to a taker: questions with the answer
// key fields stripped.
type ExamView struct {
	ID         string             `json:"id"`
	Topic      string             `json:"topic"`
	Difficulty string             `json:"difficulty"`
	Questions  []ExamQuestionView `json:"questions"`
}

type ExamQuestionView struct {
	Index         int      `json:"index"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	TestCaseInput string   `json:"test_case_input,omitempty"`
}

// Generate creates a new exam for the user. Generation failure degrades
// to a fixed single-question exam rather than an error, mirroring how
// module content falls back to placeholders.
func (s *MockExamService) Generate(ctx context.Context, userID uint, input ExamInput) (*ExamView, error) {
	count := input.Count
	if count <= 0 {
		count = defaultExamQuestionCount
	}

	payload, err := s.Generator.GenerateMockExam(ctx, input.Topic, input.Difficulty, count)
	if err != nil {
		logger.Log.Warn("mock exam generation failed, using fallback exam",
			zap.String("topic", input.Topic), zap.Error(err))
		monitoring.GenerationCounter.WithLabelValues("mock_exam", "fallback").Inc()
		payload = fallbackExam()
	} else {
		monitoring.GenerationCounter.WithLabelValues("mock_exam", "ok").Inc()
	}

	doc, err := json.Marshal(payload.Questions)
	if err != nil {
		return nil, err
	}

	exam := &model.MockExam{
		UserID:     userID,
		TopicName:  input.Topic,
		Difficulty: input.Difficulty,
		Questions:  doc,
	}
	if err := s.Exams.CreateExam(exam); err != nil {
		return nil, err
	}

	return examView(exam, payload.Questions), nil
}

// GetExam returns the user's exam without answer keys, for (re)taking.
func (s *MockExamService) GetExam(userID uint, examID string) (*ExamView, error) {
	exam, err := ownedExamLookup(s.Exams, userID, examID)
	if err != nil {
		return nil, err
	}

	questions, err := model.ParseExamQuestions(exam.Questions)
	if err != nil {
		return nil, err
	}
	return examView(exam, questions), nil
}

func examView(exam *model.MockExam, questions []model.ExamQuestion) *ExamView {
	views := make([]ExamQuestionView, 0, len(questions))
	for i, q := range questions {
		views = append(views, ExamQuestionView{
			Index:         i,
			Type:          string(q.Type),
			Question:      q.Question,
			Options:       q.Options,
			TestCaseInput: q.TestCaseInput,
		})
	}
	return &ExamView{
		ID:         exam.ID,
		Topic:      exam.TopicName,
		Difficulty: exam.Difficulty,
		Questions:  views,
	}
}

// fallbackExam keeps the exam flow alive when the provider is down. One
// mcq whose correct option names the actual failure.
func fallbackExam() *MockExamPayload {
	return &MockExamPayload{
		Questions: []model.ExamQuestion{
			{
				Type:          model.QuestionMCQ,
				Question:      "Failed to generate exam. Which of the following is true?",
				Options:       []string{"AI is down", "Network error", "Both", "None"},
				CorrectAnswer: "AI is down",
			},
		},
	}
}
