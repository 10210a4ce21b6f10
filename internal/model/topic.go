package model

import (
	"encoding/json"
)

type Topic struct {
	BaseModel
	Title        string `gorm:"size:255;not null" json:"title"`
	Difficulty   string `gorm:"size:50;not null" json:"difficulty"`
	DurationDays int    `gorm:"default:0" json:"durationDays"`
	Description  string `gorm:"type:text" json:"description"`
	UserID       uint   `gorm:"index;not null" json:"userId"`
}

func (Topic) TableName() string {
	return "topics"
}

// Module is one ordered unit of a topic. Slides and quiz questions are
// absent until first materialized; Materialized is the atomic claim that
// serializes concurrent first loads.
type Module struct {
	BaseModel
	TopicID      uint   `gorm:"not null;uniqueIndex:idx_topic_order" json:"topicId"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	OrderIndex   int    `gorm:"not null;uniqueIndex:idx_topic_order" json:"orderIndex"`
	Materialized bool   `gorm:"default:false" json:"-"`
}

func (Module) TableName() string {
	return "modules"
}

type Slide struct {
	BaseModel
	ModuleID   uint   `gorm:"index;not null" json:"moduleId"`
	Content    string `gorm:"type:text;not null" json:"content"`
	OrderIndex int    `gorm:"not null" json:"orderIndex"`
}

func (Slide) TableName() string {
	return "slides"
}

type QuizQuestion struct {
	BaseModel
	ModuleID      uint            `gorm:"index;not null" json:"moduleId"`
	Question      string          `gorm:"type:text;not null" json:"question"`
	Options       json.RawMessage `gorm:"type:json" json:"options"`
	CorrectAnswer string          `gorm:"type:text;not null" json:"-"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// OptionList decodes the stored JSON options column.
func (q *QuizQuestion) OptionList() []string {
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}
