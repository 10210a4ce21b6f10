package service

import (
	"github.com/ananyakrishnaeemani/ai-learning/internal/model"
)

// Store interfaces are declared on the consumer side; the gorm
// repositories satisfy them, and tests substitute in-memory fakes.

// UserStore persists accounts.
type UserStore interface {
	Create(user *model.User) error
	FindByEmail(email string) (*model.User, error)
	FindByID(id uint) (*model.User, error)
	UpdateLastLogin(id uint) error
}

// ContentStore persists materialized module content.
type ContentStore interface {
	SlidesByModule(moduleID uint) ([]model.Slide, error)
	QuestionsByModule(moduleID uint) ([]model.QuizQuestion, error)
	// ClaimMaterialization reports whether the caller won the one-time
	// right to generate content for the module.
	ClaimMaterialization(moduleID uint) (bool, error)
	SaveContent(moduleID uint, slides []model.Slide, questions []model.QuizQuestion) error
}

// TopicStore persists topics and their ordered modules.
type TopicStore interface {
	CreateWithRoadmap(topic *model.Topic, modules []model.Module) error
	FindByID(id uint) (*model.Topic, error)
	ListByUser(userID uint) ([]model.Topic, error)
	ModulesByTopic(topicID uint) ([]model.Module, error)
	ModuleByID(id uint) (*model.Module, error)
	DeleteCascade(topicID uint) error
}

// ProgressStore persists per-user module completion state.
type ProgressStore interface {
	FindByUserAndModule(userID, moduleID uint) (*model.ProgressRecord, error)
	Save(record *model.ProgressRecord) error
	RecordsByUser(userID uint) ([]model.ProgressRecord, error)
	MapByUserAndTopic(userID, topicID uint) (map[uint]model.ProgressRecord, error)
	// RecentScored returns the user's most recently graded records,
	// newest first, capped at limit.
	RecentScored(userID uint, limit int) ([]model.ProgressRecord, error)
}

// ExamStore persists mock exams and their append-only attempts.
type ExamStore interface {
	CreateExam(exam *model.MockExam) error
	ExamByID(id string) (*model.MockExam, error)
	CreateAttempt(attempt *model.MockAttempt) error
	AttemptByID(id string) (*model.MockAttempt, error)
	AttemptsByUser(userID uint) ([]model.MockAttempt, error)
}
