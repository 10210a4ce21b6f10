package repository

import (
	"github.com/ananyakrishnaeemani/ai-learning/internal/model"

	"gorm.io/gorm"
)

type TopicRepository struct {
	DB *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{DB: db}
}

// CreateWithRoadmap persists the topic, its modules and one initial
// progress record per module in a single transaction.
func (r *TopicRepository) CreateWithRoadmap(topic *model.Topic, modules []model.Module) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(topic).Error; err != nil {
			return err
		}

		for i := range modules {
			modules[i].TopicID = topic.ID
			if err := tx.Create(&modules[i]).Error; err != nil {
				return err
			}

			zero := 0
			prog := model.ProgressRecord{
				UserID:      topic.UserID,
				TopicID:     topic.ID,
				ModuleID:    modules[i].ID,
				IsCompleted: false,
				Score:       &zero,
			}
			if err := tx.Create(&prog).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TopicRepository) FindByID(id uint) (*model.Topic, error) {
	var topic model.Topic
	err := r.DB.First(&topic, id).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *TopicRepository) ListByUser(userID uint) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&topics).Error
	return topics, err
}

func (r *TopicRepository) ModulesByTopic(topicID uint) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("topic_id = ?", topicID).Order("order_index ASC").Find(&modules).Error
	return modules, err
}

func (r *TopicRepository) ModuleByID(id uint) (*model.Module, error) {
	var module model.Module
	err := r.DB.First(&module, id).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

// DeleteCascade removes the topic and every dependent row in one
// transaction: slides, quiz questions, modules, progress records.
func (r *TopicRepository) DeleteCascade(topicID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var moduleIDs []uint
		if err := tx.Model(&model.Module{}).Where("topic_id = ?", topicID).
			Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}

		if len(moduleIDs) > 0 {
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&model.Slide{}).Error; err != nil {
				return err
			}
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&model.QuizQuestion{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("topic_id = ?", topicID).Delete(&model.ProgressRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("topic_id = ?", topicID).Delete(&model.Module{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Topic{}, topicID).Error
	})
}
