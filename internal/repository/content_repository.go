package repository

import (
	"github.com/ananyakrishnaeemani/ai-learning/internal/model"

	"gorm.io/gorm"
)

// ContentRepository is the persistence side of module materialization:
// slides and quiz questions, plus the atomic materialization claim.
type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) SlidesByModule(moduleID uint) ([]model.Slide, error) {
	var slides []model.Slide
	err := r.DB.Where("module_id = ?", moduleID).Order("order_index ASC").Find(&slides).Error
	return slides, err
}

func (r *ContentRepository) QuestionsByModule(moduleID uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.Where("module_id = ?", moduleID).Order("id ASC").Find(&questions).Error
	return questions, err
}

// ClaimMaterialization flips the module's materialized flag if and only if
// it is still unset. Exactly one concurrent caller wins; the rest read
// whatever the winner persists.
func (r *ContentRepository) ClaimMaterialization(moduleID uint) (bool, error) {
	res := r.DB.Model(&model.Module{}).
		Where("id = ? AND materialized = ?", moduleID, false).
		Update("materialized", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SaveContent persists generated slides and questions in one transaction.
func (r *ContentRepository) SaveContent(moduleID uint, slides []model.Slide, questions []model.QuizQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range slides {
			slides[i].ModuleID = moduleID
			if err := tx.Create(&slides[i]).Error; err != nil {
				return err
			}
		}
		for i := range questions {
			questions[i].ModuleID = moduleID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
