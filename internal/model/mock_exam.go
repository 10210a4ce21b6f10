package model

import (
	"encoding/json"
)

// Exam question documents are stored serialized, not as normalized rows;
// consumers parse them back with ParseExamQuestions / ParseExamAnswers.

type ExamQuestionType string

const (
	QuestionMCQ     ExamQuestionType = "mcq"
	QuestionBoolean ExamQuestionType = "boolean"
	QuestionCode    ExamQuestionType = "code"
)

type ExamQuestion struct {
	Type           ExamQuestionType `json:"type"`
	Question       string           `json:"question"`
	Options        []string         `json:"options,omitempty"`
	CorrectAnswer  string           `json:"correct_answer,omitempty"`
	TestCaseInput  string           `json:"test_case_input,omitempty"`
	TestCaseOutput string           `json:"test_case_output,omitempty"`
	Explanation    string           `json:"explanation,omitempty"`
}

type ExamAnswer struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

// MockExam is a standalone assessment, immutable once created.
type MockExam struct {
	UUIDBase
	UserID     uint            `gorm:"index;not null" json:"userId"`
	TopicName  string          `gorm:"size:255;not null" json:"topicName"`
	Difficulty string          `gorm:"size:50;not null" json:"difficulty"`
	Questions  json.RawMessage `gorm:"type:json" json:"-"`
}

func (MockExam) TableName() string {
	return "mock_exams"
}

// MockAttempt is one scored submission against a MockExam. Attempts
// accumulate; none is ever mutated or deleted.
type MockAttempt struct {
	UUIDBase
	MockExamID     string          `gorm:"index;type:varchar(36);not null" json:"mockExamId"`
	UserID         uint            `gorm:"index;not null" json:"userId"`
	Score          int             `gorm:"default:0" json:"score"`
	TotalQuestions int             `gorm:"default:0" json:"totalQuestions"`
	Passed         bool            `gorm:"default:false" json:"passed"`
	Answers        json.RawMessage `gorm:"type:json" json:"-"`
}

func (MockAttempt) TableName() string {
	return "mock_attempts"
}

func ParseExamQuestions(doc json.RawMessage) ([]ExamQuestion, error) {
	var qs []ExamQuestion
	if len(doc) == 0 {
		return qs, nil
	}
	if err := json.Unmarshal(doc, &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func ParseExamAnswers(doc json.RawMessage) ([]ExamAnswer, error) {
	var as []ExamAnswer
	if len(doc) == 0 {
		return as, nil
	}
	if err := json.Unmarshal(doc, &as); err != nil {
		return nil, err
	}
	return as, nil
}
