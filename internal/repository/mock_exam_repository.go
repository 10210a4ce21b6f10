package repository

import (
	"github.com/ananyakrishnaeemani/ai-learning/internal/model"

	"gorm.io/gorm"
)

type MockExamRepository struct {
	DB *gorm.DB
}

func NewMockExamRepository(db *gorm.DB) *MockExamRepository {
	return &MockExamRepository{DB: db}
}

func (r *MockExamRepository) CreateExam(exam *model.MockExam) error {
	return r.DB.Create(exam).Error
}

func (r *MockExamRepository) ExamByID(id string) (*model.MockExam, error) {
	var exam model.MockExam
	err := r.DB.Where("id = ?", id).First(&exam).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

// CreateAttempt appends a new attempt; attempts are never updated.
func (r *MockExamRepository) CreateAttempt(attempt *model.MockAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *MockExamRepository) AttemptByID(id string) (*model.MockAttempt, error) {
	var attempt model.MockAttempt
	err := r.DB.Where("id = ?", id).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *MockExamRepository) AttemptsByUser(userID uint) ([]model.MockAttempt, error) {
	var attempts []model.MockAttempt
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&attempts).Error
	return attempts, err
}
