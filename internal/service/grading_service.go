package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/ananyakrishnaeemani/ai-learning/internal/model"
	"github.com/ananyakrishnaeemani/ai-learning/internal/util"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Fixed grading policy. Module quizzes pass at 80 percent; mock exams at
// a 0.75 correct ratio, boundary inclusive.
const (
	QuizPassPercent = 80
	ExamPassRatio   = 0.75
)

// codeAnswerMinLength is the free-form grading heuristic: a trimmed code
// answer longer than this counts as correct. A deliberately weak
// placeholder for real evaluation, not a semantic check.
const codeAnswerMinLength = 10

// answerMatcher is the per-question-type comparison strategy. Keeping it
// explicit keeps the grading policy auditable instead of scattering
// string munging across call sites.
type answerMatcher func(submitted, correct string) bool

// matchExact: module quizzes store the correct option verbatim, so the
// submission must equal it exactly. No trimming, case-sensitive.
func matchExact(submitted, correct string) bool {
	return submitted == correct
}

// matchFold: mcq and boolean exam answers tolerate case and surrounding
// whitespace.
func matchFold(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}

// matchCodeLen ignores the stored answer entirely.
func matchCodeLen(submitted, _ string) bool {
	return len(strings.TrimSpace(submitted)) > codeAnswerMinLength
}

func matcherFor(t model.ExamQuestionType) answerMatcher {
	switch t {
	case model.QuestionCode:
		return matchCodeLen
	case model.QuestionMCQ, model.QuestionBoolean:
		return matchFold
	default:
		// Unknown types grade like mcq, matching how exams created by
		// older generator versions omitted the type field.
		return matchFold
	}
}

// GradingService scores quiz and exam submissions against stored answer
// keys and maintains the derived progress state.
type GradingService struct {
	Topics   TopicStore
	Content  ContentStore
	Progress ProgressStore
	Exams    ExamStore
	Cache    *DashboardCache
	Scoring  *ScoringPolicy
}

func NewGradingService(topics TopicStore, content ContentStore, progress ProgressStore, exams ExamStore, cache *DashboardCache, scoring *ScoringPolicy) *GradingService {
	return &GradingService{
		Topics:   topics,
		Content:  content,
		Progress: progress,
		Exams:    exams,
		Cache:    cache,
		Scoring:  scoring,
	}
}

type QuizAnswer struct {
	QuestionID     uint   `json:"question_id"`
	SelectedOption string `json:"selected_option"`
}

type QuizQuestionResult struct {
	QuestionID    uint   `json:"question_id"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
}

type QuizGradeResult struct {
	Passed       bool                 `json:"passed"`
	ScorePercent int                  `json:"score_percent"`
	Results      []QuizQuestionResult `json:"results"`
}

type ExamGradeResult struct {
	AttemptID string `json:"attempt_id"`
	Score     int    `json:"score"`
	Total     int    `json:"total"`
	Passed    bool   `json:"passed"`
	XPEarned  int    `json:"xp_earned"`
}

type ExamQuestionReview struct {
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	Type          string   `json:"type"`
	UserAnswer    *string  `json:"user_answer"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	IsCorrect     bool     `json:"is_correct"`
	Explanation   string   `json:"explanation"`
}

type AttemptReview struct {
	ID         string               `json:"id"`
	ExamID     string               `json:"exam_id"`
	Topic      string               `json:"topic"`
	Difficulty string               `json:"difficulty"`
	Score      int                  `json:"score"`
	Total      int                  `json:"total"`
	Passed     bool                 `json:"passed"`
	Date       time.Time            `json:"date"`
	ReviewData []ExamQuestionReview `json:"review_data"`
}

type ExamHistoryEntry struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Difficulty string    `json:"difficulty"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Passed     bool      `json:"passed"`
	Date       time.Time `json:"date"`
	XP         int       `json:"xp"`
}

// GradeModuleQuiz scores a module quiz submission against the stored
// questions. Answers referencing unknown question ids are silently
// ignored; the denominator is always the module's full question count.
// The caller's progress record is upserted: completion is monotone
// (a failing retake never clears it), the score is last-attempt-wins,
// and the activity timestamp refreshes on every submission.
func (s *GradingService) GradeModuleQuiz(ctx context.Context, userID, moduleID uint, answers []QuizAnswer) (*QuizGradeResult, error) {
	module, err := s.ownedModule(userID, moduleID)
	if err != nil {
		return nil, err
	}

	questions, err := s.Content.QuestionsByModule(moduleID)
	if err != nil {
		return nil, err
	}

	// Last-wins dedupe: a question id repeated in one submission grades
	// once, so correctCount can never exceed the question count.
	selectedByID := make(map[uint]string, len(answers))
	for _, ans := range answers {
		selectedByID[ans.QuestionID] = ans.SelectedOption
	}

	correctCount := 0
	results := make([]QuizQuestionResult, 0, len(selectedByID))
	for _, question := range questions {
		selected, ok := selectedByID[question.ID]
		if !ok {
			continue
		}

		correct := matchExact(selected, question.CorrectAnswer)
		if correct {
			correctCount++
		}
		results = append(results, QuizQuestionResult{
			QuestionID:    question.ID,
			Selected:      selected,
			CorrectAnswer: question.CorrectAnswer,
			Correct:       correct,
		})
	}

	total := len(questions)
	percent := 0
	if total > 0 {
		percent = int(math.Round(100 * float64(correctCount) / float64(total)))
	}
	passed := total > 0 && percent >= QuizPassPercent

	if err := s.applyQuizResult(userID, module, percent, passed); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, userID)

	return &QuizGradeResult{
		Passed:       passed,
		ScorePercent: percent,
		Results:      results,
	}, nil
}

// applyQuizResult upserts the user's progress record for the module.
// Completion is monotone: once true it survives later failing retakes.
// The score is last-attempt-wins and the timestamp refreshes on every
// submission so the dashboard streak sees the activity.
func (s *GradingService) applyQuizResult(userID uint, module *model.Module, percent int, passed bool) error {
	record, err := s.Progress.FindByUserAndModule(userID, module.ID)
	if err == gorm.ErrRecordNotFound {
		record = &model.ProgressRecord{
			UserID:   userID,
			ModuleID: module.ID,
			TopicID:  module.TopicID,
		}
	} else if err != nil {
		return err
	}

	record.Score = &percent
	if passed {
		record.IsCompleted = true
	}
	now := time.Now().UTC()
	record.CompletedAt = &now

	if err := s.Progress.Save(record); err != nil {
		return err
	}

	logger.Log.Info("module quiz graded",
		zap.Uint("user_id", userID),
		zap.Uint("module_id", module.ID),
		zap.Int("score", percent),
		zap.Bool("passed", passed))
	return nil
}

// GradeMockExam scores a positional answer set against the exam's stored
// question document, always persisting a fresh attempt.
func (s *GradingService) GradeMockExam(ctx context.Context, userID uint, examID string, answers []model.ExamAnswer) (*ExamGradeResult, error) {
	exam, err := ownedExamLookup(s.Exams, userID, examID)
	if err != nil {
		return nil, err
	}

	questions, err := model.ParseExamQuestions(exam.Questions)
	if err != nil {
		return nil, err
	}

	// Same last-wins map ReviewAttempt rebuilds later, so the stored
	// score always agrees with the per-position recomputation and can
	// never exceed the question count.
	total := len(questions)
	answerByIndex := make(map[int]string, len(answers))
	for _, ans := range answers {
		if ans.QuestionIndex < 0 || ans.QuestionIndex >= total {
			continue
		}
		answerByIndex[ans.QuestionIndex] = ans.Answer
	}

	score := 0
	for i, q := range questions {
		ans, ok := answerByIndex[i]
		if !ok {
			continue
		}
		if matcherFor(q.Type)(ans, q.CorrectAnswer) {
			score++
		}
	}

	passed := total > 0 && float64(score)/float64(total) >= ExamPassRatio

	answersDoc, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}

	attempt := &model.MockAttempt{
		MockExamID:     exam.ID,
		UserID:         userID,
		Score:          score,
		TotalQuestions: total,
		Passed:         passed,
		Answers:        answersDoc,
	}
	if err := s.Exams.CreateAttempt(attempt); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, userID)

	xp := 0
	if passed {
		xp = score * s.Scoring.ExamXPPerPoint()
	}

	logger.Log.Info("mock exam graded",
		zap.String("exam_id", exam.ID),
		zap.Uint("user_id", userID),
		zap.Int("score", score),
		zap.Int("total", total),
		zap.Bool("passed", passed))

	return &ExamGradeResult{
		AttemptID: attempt.ID,
		Score:     score,
		Total:     total,
		Passed:    passed,
		XPEarned:  xp,
	}, nil
}

// ReviewAttempt reconstructs a per-question review for a stored attempt.
// Correctness is recomputed with the same per-type matchers used at
// submission time, so the review always agrees with the recorded verdict.
func (s *GradingService) ReviewAttempt(userID uint, attemptID string) (*AttemptReview, error) {
	attempt, err := s.Exams.AttemptByID(attemptID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrNotOwner
	}

	exam, err := s.Exams.ExamByID(attempt.MockExamID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}

	questions, err := model.ParseExamQuestions(exam.Questions)
	if err != nil {
		return nil, err
	}
	answers, err := model.ParseExamAnswers(attempt.Answers)
	if err != nil {
		return nil, err
	}

	answerByIndex := make(map[int]string, len(answers))
	for _, a := range answers {
		answerByIndex[a.QuestionIndex] = a.Answer
	}

	review := make([]ExamQuestionReview, 0, len(questions))
	for i, q := range questions {
		row := ExamQuestionReview{
			Question:      q.Question,
			Options:       q.Options,
			Type:          string(q.Type),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if row.Explanation == "" {
			row.Explanation = "No explanation provided."
		}
		if ans, ok := answerByIndex[i]; ok {
			row.UserAnswer = &ans
			row.IsCorrect = matcherFor(q.Type)(ans, q.CorrectAnswer)
		}
		review = append(review, row)
	}

	return &AttemptReview{
		ID:         attempt.ID,
		ExamID:     exam.ID,
		Topic:      exam.TopicName,
		Difficulty: exam.Difficulty,
		Score:      attempt.Score,
		Total:      attempt.TotalQuestions,
		Passed:     attempt.Passed,
		Date:       attempt.CreatedAt,
		ReviewData: review,
	}, nil
}

// ExamHistory lists all of the user's attempts, newest first, annotated
// with exam metadata and earned XP.
func (s *GradingService) ExamHistory(userID uint) ([]ExamHistoryEntry, error) {
	attempts, err := s.Exams.AttemptsByUser(userID)
	if err != nil {
		return nil, err
	}

	history := make([]ExamHistoryEntry, 0, len(attempts))
	for _, att := range attempts {
		topicName := "Unknown"
		difficulty := "N/A"
		if exam, err := s.Exams.ExamByID(att.MockExamID); err == nil {
			topicName = exam.TopicName
			difficulty = exam.Difficulty
		}

		xp := 0
		if att.Passed {
			xp = att.Score * s.Scoring.ExamXPPerPoint()
		}

		history = append(history, ExamHistoryEntry{
			ID:         att.ID,
			Topic:      topicName,
			Difficulty: difficulty,
			Score:      att.Score,
			Total:      att.TotalQuestions,
			Passed:     att.Passed,
			Date:       att.CreatedAt,
			XP:         xp,
		})
	}
	return history, nil
}

func (s *GradingService) ownedModule(userID, moduleID uint) (*model.Module, error) {
	module, err := s.Topics.ModuleByID(moduleID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}

	topic, err := s.Topics.FindByID(module.TopicID)
	if err != nil {
		return nil, err
	}
	if topic.UserID != userID {
		return nil, util.ErrNotOwner
	}
	return module, nil
}

func ownedExamLookup(store ExamStore, userID uint, examID string) (*model.MockExam, error) {
	exam, err := store.ExamByID(examID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}
	if exam.UserID != userID {
		return nil, util.ErrNotOwner
	}
	return exam, nil
}
