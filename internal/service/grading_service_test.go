package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/ananyakrishnaeemani/ai-learning/internal/model"
	"github.com/ananyakrishnaeemani/ai-learning/internal/util"
)

func seedQuiz(t *testing.T, store *memStore, moduleID uint, count int) []model.QuizQuestion {
	t.Helper()

	opts, _ := json.Marshal([]string{"A", "B", "C", "D"})
	questions := make([]model.QuizQuestion, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, model.QuizQuestion{
			Question:      fmt.Sprintf("q%d", i),
			Options:       opts,
			CorrectAnswer: "A",
		})
	}
	if err := store.SaveContent(moduleID, nil, questions); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	saved, _ := store.QuestionsByModule(moduleID)
	return saved
}

func seedExam(t *testing.T, store *memStore, userID uint, questions []model.ExamQuestion) *model.MockExam {
	t.Helper()

	doc, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal questions: %v", err)
	}
	exam := &model.MockExam{UserID: userID, TopicName: "Go", Difficulty: "Medium", Questions: doc}
	if err := store.CreateExam(exam); err != nil {
		t.Fatalf("seed exam: %v", err)
	}
	return exam
}

func newGrading(store *memStore) *GradingService {
	return NewGradingService(store, store, store, store, nil, NewScoringPolicy(10))
}

func TestGradeModuleQuizPassAndRetake(t *testing.T) {
	store := newMemStore()
	svc := newGrading(store)
	_, modules := seedTopic(t, store, 1, 1)
	questions := seedQuiz(t, store, modules[0].ID, 5)

	answers := make([]QuizAnswer, 0, 5)
	for i, q := range questions {
		selected := "A"
		if i == 4 {
			selected = "B"
		}
		answers = append(answers, QuizAnswer{QuestionID: q.ID, SelectedOption: selected})
	}

	result, err := svc.GradeModuleQuiz(context.Background(), 1, modules[0].ID, answers)
	if err != nil {
		t.Fatalf("GradeModuleQuiz: %v", err)
	}
	if result.ScorePercent != 80 || !result.Passed {
		t.Fatalf("4/5: got score=%d passed=%v, want 80/true", result.ScorePercent, result.Passed)
	}

	rec, _ := store.FindByUserAndModule(1, modules[0].ID)
	if !rec.IsCompleted || rec.Score == nil || *rec.Score != 80 {
		t.Fatalf("after pass: completed=%v score=%v", rec.IsCompleted, rec.Score)
	}

	// Failing retake: score drops but completion sticks.
	retake := []QuizAnswer{
		{QuestionID: questions[0].ID, SelectedOption: "A"},
		{QuestionID: questions[1].ID, SelectedOption: "A"},
		{QuestionID: questions[2].ID, SelectedOption: "A"},
		{QuestionID: questions[3].ID, SelectedOption: "B"},
		{QuestionID: questions[4].ID, SelectedOption: "B"},
	}
	result, err = svc.GradeModuleQuiz(context.Background(), 1, modules[0].ID, retake)
	if err != nil {
		t.Fatalf("retake: %v", err)
	}
	if result.ScorePercent != 60 || result.Passed {
		t.Fatalf("3/5: got score=%d passed=%v, want 60/false", result.ScorePercent, result.Passed)
	}

	rec, _ = store.FindByUserAndModule(1, modules[0].ID)
	if !rec.IsCompleted {
		t.Error("completion reverted by failing retake")
	}
	if rec.Score == nil || *rec.Score != 60 {
		t.Errorf("score not last-attempt-wins: %v", rec.Score)
	}
}

func TestGradeModuleQuizEdgeCases(t *testing.T) {
	store := newMemStore()
	svc := newGrading(store)
	_, modules := seedTopic(t, store, 1, 2)
	questions := seedQuiz(t, store, modules[0].ID, 2)

	// Unknown ids are ignored; denominator stays the full question count.
	result, err := svc.GradeModuleQuiz(context.Background(), 1, modules[0].ID, []QuizAnswer{
		{QuestionID: questions[0].ID, SelectedOption: "A"},
		{QuestionID: 9999, SelectedOption: "A"},
	})
	if err != nil {
		t.Fatalf("GradeModuleQuiz: %v", err)
	}
	if result.ScorePercent != 50 || result.Passed {
		t.Errorf("1/2 with unknown id: score=%d passed=%v", result.ScorePercent, result.Passed)
	}
	if len(result.Results) != 1 {
		t.Errorf("unknown id produced a result row: %d rows", len(result.Results))
	}

	// Module with no questions grades to zero, never passes.
	result, err = svc.GradeModuleQuiz(context.Background(), 1, modules[1].ID, nil)
	if err != nil {
		t.Fatalf("empty module: %v", err)
	}
	if result.ScorePercent != 0 || result.Passed {
		t.Errorf("empty module: score=%d passed=%v", result.ScorePercent, result.Passed)
	}
}

func TestGradeModuleQuizDuplicateAnswers(t *testing.T) {
	store := newMemStore()
	svc := newGrading(store)
	_, modules := seedTopic(t, store, 1, 1)
	questions := seedQuiz(t, store, modules[0].ID, 1)

	// Repeating a question id must not inflate the score past 100.
	result, err := svc.GradeModuleQuiz(context.Background(), 1, modules[0].ID, []QuizAnswer{
		{QuestionID: questions[0].ID, SelectedOption: "A"},
		{QuestionID: questions[0].ID, SelectedOption: "A"},
	})
	if err != nil {
		t.Fatalf("GradeModuleQuiz: %v", err)
	}
	if result.ScorePercent < 0 || result.ScorePercent > 100 {
		t.Fatalf("score out of range: %d", result.ScorePercent)
	}
	if result.ScorePercent != 100 {
		t.Errorf("duplicate correct answers: score=%d, want 100", result.ScorePercent)
	}
	if len(result.Results) != 1 {
		t.Errorf("duplicate produced %d result rows, want 1", len(result.Results))
	}

	rec, _ := store.FindByUserAndModule(1, modules[0].ID)
	if rec.Score == nil || *rec.Score != 100 {
		t.Errorf("persisted score: %v", rec.Score)
	}

	// Conflicting duplicates: the last submission for a question wins.
	result, err = svc.GradeModuleQuiz(context.Background(), 1, modules[0].ID, []QuizAnswer{
		{QuestionID: questions[0].ID, SelectedOption: "A"},
		{QuestionID: questions[0].ID, SelectedOption: "B"},
	})
	if err != nil {
		t.Fatalf("conflicting duplicates: %v", err)
	}
	if result.ScorePercent != 0 {
		t.Errorf("last-wins: score=%d, want 0", result.ScorePercent)
	}
}

func TestGradeModuleQuizExactMatch(t *testing.T) {
	store := newMemStore()
	svc := newGrading(store)
	_, modules := seedTopic(t, store, 1, 1)
	questions := seedQuiz(t, store, modules[0].ID, 1)

	// Module quizzes compare verbatim: a case-mismatched option is wrong.
	result, err := svc.GradeModuleQuiz(context.Background(), 1, modules[0].ID, []QuizAnswer{
		{QuestionID: questions[0].ID, SelectedOption: "a"},
	})
	if err != nil {
		t.Fatalf("GradeModuleQuiz: %v", err)
	}
	if result.Results[0].Correct {
		t.Error("case-mismatched quiz answer graded correct")
	}
}

func TestGradeMockExamBoundaryAndTypes(t *testing.T) {
	store := newMemStore()
	svc := newGrading(store)
	exam := seedExam(t, store, 1, []model.ExamQuestion{
		{Type: model.QuestionMCQ, Question: "q0", Options: []string{"A", "B"}, CorrectAnswer: "A"},
		{Type: model.QuestionBoolean, Question: "q1", CorrectAnswer: "True"},
		{Type: model.QuestionCode, Question: "q2", TestCaseInput: "1", TestCaseOutput: "2"},
		{Type: model.QuestionMCQ, Question: "q3", Options: []string{"A", "B"}, CorrectAnswer: "B"},
	})

	result, err := svc.GradeMockExam(context.Background(), 1, exam.ID, []model.ExamAnswer{
		{QuestionIndex: 0, Answer: "a"},      // case-insensitive
		{QuestionIndex: 1, Answer: " true "}, // trimmed + folded
		{QuestionIndex: 2, Answer: "short"},  // under the length heuristic
		{QuestionIndex: 3, Answer: "B"},
	})
	if err != nil {
		t.Fatalf("GradeMockExam: %v", err)
	}
	if result.Score != 3 || result.Total != 4 {
		t.Fatalf("got %d/%d, want 3/4", result.Score, result.Total)
	}
	// 3/4 == 0.75 exactly; the boundary is inclusive.
	if !result.Passed {
		t.Error("3/4 should pass")
	}
	if result.XPEarned != 30 {
		t.Errorf("xp: got %d, want 30", result.XPEarned)
	}
}

func TestGradeMockExamCodeAnswerLength(t *testing.T) {
	store := newMemStore()
	svc := newGrading(store)
	exam := seedExam(t, store, 1, []model.ExamQuestion{
		{Type: model.QuestionCode, Question: "write fib", TestCaseInput: "5", TestCaseOutput: "5"},
	})

	result, err := svc.GradeMockExam(context.Background(), 1, exam.ID, []model.ExamAnswer{
		{QuestionIndex: 0, Answer: "def fib(n): return n"},
	})
	if err != nil {
		t.Fatalf("GradeMockExam: %v", err)
	}
	if result.Score != 1 || !result.Passed {
		t.Errorf("long code answer: score=%d passed=%v", result.Score, result.Passed)
	}

	// Attempts accumulate; the failing one does not overwrite the pass.
	result, err = svc.GradeMockExam(context.Background(), 1, exam.ID, []model.ExamAnswer{
		{QuestionIndex: 0, Answer: "   short   "},
	})
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if result.Score != 0 || result.Passed || result.XPEarned != 0 {
		t.Errorf("short code answer: score=%d passed=%v xp=%d", result.Score, result.Passed, result.XPEarned)
	}

	attempts, _ := store.AttemptsByUser(1)
	if len(attempts) != 2 {
		t.Errorf("got %d attempts, want 2", len(attempts))
	}
}

func TestGradeMockExamIgnoresOutOfRangeIndexes(t *testing.T) {
	store := newMemStore()
	svc := newGrading(store)
	exam := seedExam(t, store, 1, []model.ExamQuestion{
		{Type: model.QuestionBoolean, Question: "q0", CorrectAnswer: "False"},
	})

	result, err := svc.GradeMockExam(context.Background(), 1, exam.ID, []model.ExamAnswer{
		{QuestionIndex: -1, Answer: "False"},
		{QuestionIndex: 5, Answer: "False"},
		{QuestionIndex: 0, Answer: "false"},
	})
	if err != nil {
		t.Fatalf("GradeMockExam: %v", err)
	}
	if result.Score != 1 || result.Total != 1 {
		t.Errorf("got %d/%d, want 1/1", result.Score, result.Total)
	}
}

func TestGradeMockExamDuplicateIndexes(t *testing.T) {
	store := newMemStore()
	svc := newGrading(store)
	exam := seedExam(t, store, 1, []model.ExamQuestion{
		{Type: model.QuestionBoolean, Question: "q0", CorrectAnswer: "True"},
	})

	// Repeating an index must not push score past total.
	result, err := svc.GradeMockExam(context.Background(), 1, exam.ID, []model.ExamAnswer{
		{QuestionIndex: 0, Answer: "True"},
		{QuestionIndex: 0, Answer: "True"},
	})
	if err != nil {
		t.Fatalf("GradeMockExam: %v", err)
	}
	if result.Score > result.Total {
		t.Fatalf("score %d exceeds total %d", result.Score, result.Total)
	}
	if result.Score != 1 {
		t.Errorf("duplicate correct answers: score=%d, want 1", result.Score)
	}

	// Conflicting duplicates grade last-wins, and the stored verdict must
	// agree with the review's per-position recomputation.
	result, err = svc.GradeMockExam(context.Background(), 1, exam.ID, []model.ExamAnswer{
		{QuestionIndex: 0, Answer: "True"},
		{QuestionIndex: 0, Answer: "False"},
	})
	if err != nil {
		t.Fatalf("conflicting duplicates: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("last-wins: score=%d, want 0", result.Score)
	}

	review, err := svc.ReviewAttempt(1, result.AttemptID)
	if err != nil {
		t.Fatalf("ReviewAttempt: %v", err)
	}
	if review.ReviewData[0].IsCorrect {
		t.Error("review disagrees with graded verdict")
	}
	if review.Score != result.Score {
		t.Errorf("review score %d != graded score %d", review.Score, result.Score)
	}
}

func TestReviewAttemptRoundTrip(t *testing.T) {
	store := newMemStore()
	svc := newGrading(store)
	exam := seedExam(t, store, 1, []model.ExamQuestion{
		{Type: model.QuestionMCQ, Question: "q0", Options: []string{"A", "B"}, CorrectAnswer: "A", Explanation: "because A"},
		{Type: model.QuestionBoolean, Question: "q1", CorrectAnswer: "True"},
		{Type: model.QuestionMCQ, Question: "q2", Options: []string{"A", "B"}, CorrectAnswer: "B"},
	})

	graded, err := svc.GradeMockExam(context.Background(), 1, exam.ID, []model.ExamAnswer{
		{QuestionIndex: 0, Answer: "a"},
		{QuestionIndex: 1, Answer: "False"},
	})
	if err != nil {
		t.Fatalf("GradeMockExam: %v", err)
	}

	review, err := svc.ReviewAttempt(1, graded.AttemptID)
	if err != nil {
		t.Fatalf("ReviewAttempt: %v", err)
	}
	if len(review.ReviewData) != 3 {
		t.Fatalf("got %d review rows, want 3", len(review.ReviewData))
	}

	recomputedScore := 0
	for _, row := range review.ReviewData {
		if row.IsCorrect {
			recomputedScore++
		}
	}
	if recomputedScore != review.Score {
		t.Errorf("recomputed correctness %d disagrees with stored score %d", recomputedScore, review.Score)
	}

	if review.ReviewData[0].Explanation != "because A" {
		t.Errorf("explanation lost: %q", review.ReviewData[0].Explanation)
	}
	if review.ReviewData[1].Explanation != "No explanation provided." {
		t.Errorf("missing-explanation default: %q", review.ReviewData[1].Explanation)
	}
	if review.ReviewData[2].UserAnswer != nil {
		t.Errorf("unanswered question has a user answer: %v", *review.ReviewData[2].UserAnswer)
	}
	if review.ReviewData[2].IsCorrect {
		t.Error("unanswered question graded correct")
	}
}

func TestReviewAttemptOwnership(t *testing.T) {
	store := newMemStore()
	svc := newGrading(store)
	exam := seedExam(t, store, 1, []model.ExamQuestion{
		{Type: model.QuestionBoolean, Question: "q0", CorrectAnswer: "True"},
	})
	graded, err := svc.GradeMockExam(context.Background(), 1, exam.ID, nil)
	if err != nil {
		t.Fatalf("GradeMockExam: %v", err)
	}

	if _, err := svc.ReviewAttempt(2, graded.AttemptID); !errors.Is(err, util.ErrNotOwner) {
		t.Errorf("foreign review: got %v, want ErrNotOwner", err)
	}
	if _, err := svc.ReviewAttempt(1, "missing"); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("missing attempt: got %v, want ErrAttemptNotFound", err)
	}
	if _, err := svc.GradeMockExam(context.Background(), 2, exam.ID, nil); !errors.Is(err, util.ErrNotOwner) {
		t.Errorf("foreign grading: got %v, want ErrNotOwner", err)
	}
}

func TestScoringPolicyReload(t *testing.T) {
	store := newMemStore()
	scoring := NewScoringPolicy(10)
	svc := NewGradingService(store, store, store, store, nil, scoring)
	exam := seedExam(t, store, 1, []model.ExamQuestion{
		{Type: model.QuestionBoolean, Question: "q0", CorrectAnswer: "True"},
	})

	result, err := svc.GradeMockExam(context.Background(), 1, exam.ID, []model.ExamAnswer{
		{QuestionIndex: 0, Answer: "True"},
	})
	if err != nil {
		t.Fatalf("GradeMockExam: %v", err)
	}
	if result.XPEarned != 10 {
		t.Fatalf("xp before reload: %d", result.XPEarned)
	}

	// A live multiplier change applies to later gradings and history.
	scoring.SetExamXPPerPoint(25)

	result, err = svc.GradeMockExam(context.Background(), 1, exam.ID, []model.ExamAnswer{
		{QuestionIndex: 0, Answer: "True"},
	})
	if err != nil {
		t.Fatalf("second grading: %v", err)
	}
	if result.XPEarned != 25 {
		t.Errorf("xp after reload: %d, want 25", result.XPEarned)
	}

	history, err := svc.ExamHistory(1)
	if err != nil {
		t.Fatalf("ExamHistory: %v", err)
	}
	for _, entry := range history {
		if entry.XP != 25 {
			t.Errorf("history xp: %d, want 25", entry.XP)
		}
	}
}

func TestExamHistory(t *testing.T) {
	store := newMemStore()
	svc := newGrading(store)
	exam := seedExam(t, store, 1, []model.ExamQuestion{
		{Type: model.QuestionBoolean, Question: "q0", CorrectAnswer: "True"},
	})

	if _, err := svc.GradeMockExam(context.Background(), 1, exam.ID, []model.ExamAnswer{{QuestionIndex: 0, Answer: "True"}}); err != nil {
		t.Fatalf("GradeMockExam: %v", err)
	}
	if _, err := svc.GradeMockExam(context.Background(), 1, exam.ID, nil); err != nil {
		t.Fatalf("GradeMockExam: %v", err)
	}

	history, err := svc.ExamHistory(1)
	if err != nil {
		t.Fatalf("ExamHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d entries, want 2", len(history))
	}
	// Newest first: the failing zero-answer attempt leads.
	if history[0].Passed || history[0].XP != 0 {
		t.Errorf("newest entry: passed=%v xp=%d", history[0].Passed, history[0].XP)
	}
	if !history[1].Passed || history[1].XP != 10 {
		t.Errorf("oldest entry: passed=%v xp=%d", history[1].Passed, history[1].XP)
	}
	if history[0].Topic != "Go" || history[0].Difficulty != "Medium" {
		t.Errorf("exam metadata: %q/%q", history[0].Topic, history[0].Difficulty)
	}
}
