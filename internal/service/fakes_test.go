package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ananyakrishnaeemani/ai-learning/internal/model"

	"gorm.io/gorm"
)

// memStore is an in-memory implementation of the store interfaces so the
// services can be exercised without a database.
type memStore struct {
	nextID uint

	topics    map[uint]*model.Topic
	modules   map[uint]*model.Module
	slides    map[uint][]model.Slide
	questions map[uint][]model.QuizQuestion
	progress  map[string]*model.ProgressRecord
	exams     map[string]*model.MockExam
	attempts  []*model.MockAttempt
}

func newMemStore() *memStore {
	return &memStore{
		topics:    make(map[uint]*model.Topic),
		modules:   make(map[uint]*model.Module),
		slides:    make(map[uint][]model.Slide),
		questions: make(map[uint][]model.QuizQuestion),
		progress:  make(map[string]*model.ProgressRecord),
		exams:     make(map[string]*model.MockExam),
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func progressKey(userID, moduleID uint) string {
	return fmt.Sprintf("%d/%d", userID, moduleID)
}

// TopicStore

func (s *memStore) CreateWithRoadmap(topic *model.Topic, modules []model.Module) error {
	topic.ID = s.id()
	s.topics[topic.ID] = topic
	for i := range modules {
		m := modules[i]
		m.ID = s.id()
		m.TopicID = topic.ID
		s.modules[m.ID] = &m

		zero := 0
		s.progress[progressKey(topic.UserID, m.ID)] = &model.ProgressRecord{
			BaseModel: model.BaseModel{ID: s.id()},
			UserID:    topic.UserID,
			TopicID:   topic.ID,
			ModuleID:  m.ID,
			Score:     &zero,
		}
	}
	return nil
}

func (s *memStore) FindByID(id uint) (*model.Topic, error) {
	topic, ok := s.topics[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return topic, nil
}

func (s *memStore) ListByUser(userID uint) ([]model.Topic, error) {
	var out []model.Topic
	for _, t := range s.topics {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ModulesByTopic(topicID uint) ([]model.Module, error) {
	var out []model.Module
	for _, m := range s.modules {
		if m.TopicID == topicID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *memStore) ModuleByID(id uint) (*model.Module, error) {
	module, ok := s.modules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return module, nil
}

func (s *memStore) DeleteCascade(topicID uint) error {
	for id, m := range s.modules {
		if m.TopicID != topicID {
			continue
		}
		delete(s.slides, id)
		delete(s.questions, id)
		delete(s.modules, id)
	}
	for key, rec := range s.progress {
		if rec.TopicID == topicID {
			delete(s.progress, key)
		}
	}
	delete(s.topics, topicID)
	return nil
}

// ContentStore

func (s *memStore) SlidesByModule(moduleID uint) ([]model.Slide, error) {
	return s.slides[moduleID], nil
}

func (s *memStore) QuestionsByModule(moduleID uint) ([]model.QuizQuestion, error) {
	return s.questions[moduleID], nil
}

func (s *memStore) ClaimMaterialization(moduleID uint) (bool, error) {
	module, ok := s.modules[moduleID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if module.Materialized {
		return false, nil
	}
	module.Materialized = true
	return true, nil
}

func (s *memStore) SaveContent(moduleID uint, slides []model.Slide, questions []model.QuizQuestion) error {
	for i := range slides {
		slides[i].ID = s.id()
		slides[i].ModuleID = moduleID
	}
	for i := range questions {
		questions[i].ID = s.id()
		questions[i].ModuleID = moduleID
	}
	s.slides[moduleID] = append(s.slides[moduleID], slides...)
	s.questions[moduleID] = append(s.questions[moduleID], questions...)
	return nil
}

// ProgressStore

func (s *memStore) FindByUserAndModule(userID, moduleID uint) (*model.ProgressRecord, error) {
	rec, ok := s.progress[progressKey(userID, moduleID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *rec
	return &copied, nil
}

func (s *memStore) Save(record *model.ProgressRecord) error {
	if record.ID == 0 {
		record.ID = s.id()
	}
	copied := *record
	s.progress[progressKey(record.UserID, record.ModuleID)] = &copied
	return nil
}

func (s *memStore) RecordsByUser(userID uint) ([]model.ProgressRecord, error) {
	var out []model.ProgressRecord
	for _, rec := range s.progress {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) RecentScored(userID uint, limit int) ([]model.ProgressRecord, error) {
	var out []model.ProgressRecord
	for _, rec := range s.progress {
		if rec.UserID == userID && rec.Score != nil && rec.CompletedAt != nil {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(*out[j].CompletedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) MapByUserAndTopic(userID, topicID uint) (map[uint]model.ProgressRecord, error) {
	out := make(map[uint]model.ProgressRecord)
	for _, rec := range s.progress {
		if rec.UserID == userID && rec.TopicID == topicID {
			out[rec.ModuleID] = *rec
		}
	}
	return out, nil
}

// ExamStore

func (s *memStore) CreateExam(exam *model.MockExam) error {
	if exam.ID == "" {
		exam.ID = fmt.Sprintf("exam-%d", s.id())
	}
	exam.CreatedAt = time.Now().UTC()
	s.exams[exam.ID] = exam
	return nil
}

func (s *memStore) ExamByID(id string) (*model.MockExam, error) {
	exam, ok := s.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (s *memStore) CreateAttempt(attempt *model.MockAttempt) error {
	if attempt.ID == "" {
		attempt.ID = fmt.Sprintf("attempt-%d", s.id())
	}
	attempt.CreatedAt = time.Now().UTC()
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *memStore) AttemptByID(id string) (*model.MockAttempt, error) {
	for _, att := range s.attempts {
		if att.ID == id {
			return att, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) AttemptsByUser(userID uint) ([]model.MockAttempt, error) {
	var out []model.MockAttempt
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if s.attempts[i].UserID == userID {
			out = append(out, *s.attempts[i])
		}
	}
	return out, nil
}

// fakeGenerator returns scripted payloads and counts invocations.
type fakeGenerator struct {
	roadmap      *RoadmapPayload
	roadmapErr   error
	content      *ModuleContentPayload
	contentErr   error
	exam         *MockExamPayload
	examErr      error
	insights     *InsightsPayload
	insightsErr  error
	contentCalls int

	lastPerformance []string
}

func (g *fakeGenerator) GenerateRoadmap(ctx context.Context, topic, difficulty string, durationDays int, description string) (*RoadmapPayload, error) {
	if g.roadmapErr != nil {
		return nil, g.roadmapErr
	}
	return g.roadmap, nil
}

func (g *fakeGenerator) GenerateModuleContent(ctx context.Context, topicTitle, moduleTitle string) (*ModuleContentPayload, error) {
	g.contentCalls++
	if g.contentErr != nil {
		return nil, g.contentErr
	}
	return g.content, nil
}

func (g *fakeGenerator) GenerateMockExam(ctx context.Context, topic, difficulty string, count int) (*MockExamPayload, error) {
	if g.examErr != nil {
		return nil, g.examErr
	}
	return g.exam, nil
}

func (g *fakeGenerator) GenerateInsights(ctx context.Context, performance []string) (*InsightsPayload, error) {
	g.lastPerformance = performance
	if g.insightsErr != nil {
		return nil, g.insightsErr
	}
	return g.insights, nil
}
