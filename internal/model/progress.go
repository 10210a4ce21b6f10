package model

import (
	"time"
)

// ProgressRecord holds per-user, per-module completion state. One record
// per (user, module) pair, created together with the module at roadmap
// time. IsCompleted never reverts to false once set; Score is
// last-attempt-wins.
type ProgressRecord struct {
	BaseModel
	UserID      uint       `gorm:"not null;uniqueIndex:idx_user_module" json:"userId"`
	TopicID     uint       `gorm:"index;not null" json:"topicId"`
	ModuleID    uint       `gorm:"not null;uniqueIndex:idx_user_module" json:"moduleId"`
	IsCompleted bool       `gorm:"default:false" json:"isCompleted"`
	Score       *int       `json:"score"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}
