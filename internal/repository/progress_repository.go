package repository

import (
	"github.com/ananyakrishnaeemani/ai-learning/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserAndModule(userID, moduleID uint) (*model.ProgressRecord, error) {
	var record model.ProgressRecord
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ProgressRepository) Save(record *model.ProgressRecord) error {
	return r.DB.Save(record).Error
}

func (r *ProgressRepository) RecordsByUser(userID uint) ([]model.ProgressRecord, error) {
	var records []model.ProgressRecord
	err := r.DB.Where("user_id = ?", userID).Find(&records).Error
	return records, err
}

// RecentScored lists graded records newest first. The initial roadmap
// records carry a zero score but no completion timestamp, so filtering
// on completed_at keeps them out.
func (r *ProgressRepository) RecentScored(userID uint, limit int) ([]model.ProgressRecord, error) {
	var records []model.ProgressRecord
	err := r.DB.Where("user_id = ? AND score IS NOT NULL AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// MapByUserAndTopic keys the user's records for one topic by module id.
func (r *ProgressRepository) MapByUserAndTopic(userID, topicID uint) (map[uint]model.ProgressRecord, error) {
	var records []model.ProgressRecord
	err := r.DB.Where("user_id = ? AND topic_id = ?", userID, topicID).Find(&records).Error
	if err != nil {
		return nil, err
	}

	byModule := make(map[uint]model.ProgressRecord, len(records))
	for _, rec := range records {
		byModule[rec.ModuleID] = rec
	}
	return byModule, nil
}
