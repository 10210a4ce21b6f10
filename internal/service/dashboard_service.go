package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ananyakrishnaeemani/ai-learning/internal/model"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/logger"
	"github.com/ananyakrishnaeemani/ai-learning/pkg/monitoring"

	"go.uber.org/zap"
)

const insightsRecordLimit = 10

const (
	dateLayout = "2006-01-02"

	// Gamification constants: flat award per completed module plus a
	// score bonus, and a fixed per-module time estimate.
	xpPerCompletedModule = 10
	hoursPerModule       = 0.33
)

// DashboardService aggregates a user's completion and attempt history
// into the dashboard snapshot. The aggregation itself is a pure function
// over loaded records; the service adds store access and caching.
type DashboardService struct {
	Topics    TopicStore
	Progress  ProgressStore
	Exams     ExamStore
	Cache     *DashboardCache
	Generator ContentGenerator
	Scoring   *ScoringPolicy
}

func NewDashboardService(topics TopicStore, progress ProgressStore, exams ExamStore, cache *DashboardCache, generator ContentGenerator, scoring *ScoringPolicy) *DashboardService {
	return &DashboardService{
		Topics:    topics,
		Progress:  progress,
		Exams:     exams,
		Cache:     cache,
		Generator: generator,
		Scoring:   scoring,
	}
}

type DashboardStats struct {
	TotalTopics      int     `json:"total_topics"`
	ModulesCompleted int     `json:"modules_completed"`
	TotalModules     int     `json:"total_modules"`
	AvgScore         int     `json:"avg_score"`
	Streak           int     `json:"streak"`
	TotalXP          int     `json:"total_xp"`
	TopicsStarted    int     `json:"topics_started"`
	TopicsDone       int     `json:"topics_done"`
	EstimatedHours   float64 `json:"estimated_hours"`
}

type HeatmapEntry struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type TopicProgress struct {
	ID               uint   `json:"id"`
	Title            string `json:"title"`
	TotalModules     int    `json:"total_modules"`
	CompletedModules int    `json:"completed_modules"`
	Percent          int    `json:"percent"`
}

type ChartPoint struct {
	Name     string `json:"name"`
	Progress int    `json:"progress"`
}

type ResumeModule struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	TopicTitle string `json:"topic_title"`
}

type DashboardSnapshot struct {
	Stats        DashboardStats  `json:"stats"`
	Heatmap      []HeatmapEntry  `json:"heatmap"`
	Topics       []TopicProgress `json:"topics"`
	ChartData    []ChartPoint    `json:"chart_data"`
	ResumeModule *ResumeModule   `json:"resume_module"`
}

// GetDashboard serves the snapshot through the short-TTL cache; graded
// submissions invalidate it, so a miss recomputes from fresh records.
func (s *DashboardService) GetDashboard(ctx context.Context, userID uint) (*DashboardSnapshot, error) {
	if snap, ok := s.Cache.Get(ctx, userID); ok {
		return snap, nil
	}

	topics, err := s.Topics.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	modulesByTopic := make(map[uint][]model.Module, len(topics))
	for _, t := range topics {
		modules, err := s.Topics.ModulesByTopic(t.ID)
		if err != nil {
			return nil, err
		}
		modulesByTopic[t.ID] = modules
	}

	records, err := s.Progress.RecordsByUser(userID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.Exams.AttemptsByUser(userID)
	if err != nil {
		return nil, err
	}

	snap := ComputeDashboard(time.Now().UTC(), topics, modulesByTopic, records, attempts, s.Scoring.ExamXPPerPoint())
	s.Cache.Set(ctx, userID, snap)

	logger.Log.Debug("dashboard recomputed",
		zap.Uint("user_id", userID),
		zap.Int("records", len(records)),
		zap.Int("attempts", len(attempts)))
	return snap, nil
}

// InsightsResult is either a nudge to start learning (Message) or the
// coach summary fields.
type InsightsResult struct {
	Message    string `json:"message,omitempty"`
	Strength   string `json:"strength,omitempty"`
	Weakness   string `json:"weakness,omitempty"`
	Motivation string `json:"motivation,omitempty"`
}

// GetInsights summarizes the user's last graded records through the
// generator. Provider failure degrades to a fixed encouragement, never
// an error.
func (s *DashboardService) GetInsights(ctx context.Context, userID uint) (*InsightsResult, error) {
	records, err := s.Progress.RecentScored(userID, insightsRecordLimit)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &InsightsResult{Message: "Start learning to get AI insights!"}, nil
	}

	performance := make([]string, 0, len(records))
	for _, rec := range records {
		title := "Unknown"
		if module, err := s.Topics.ModuleByID(rec.ModuleID); err == nil {
			title = module.Title
		}
		performance = append(performance, fmt.Sprintf("Module: %s, Score: %d%%", title, *rec.Score))
	}

	payload, err := s.Generator.GenerateInsights(ctx, performance)
	if err != nil {
		logger.Log.Warn("insights generation failed, using fallback",
			zap.Uint("user_id", userID), zap.Error(err))
		monitoring.GenerationCounter.WithLabelValues("insights", "fallback").Inc()
		payload = &InsightsPayload{
			Strength:   "Consistency",
			Weakness:   "None detected yet",
			Motivation: "Keep pushing forward!",
		}
	} else {
		monitoring.GenerationCounter.WithLabelValues("insights", "ok").Inc()
	}

	return &InsightsResult{
		Strength:   payload.Strength,
		Weakness:   payload.Weakness,
		Motivation: payload.Motivation,
	}, nil
}

// ComputeDashboard derives the full snapshot from the user's persisted
// records. Pure: no store or clock access beyond the injected now.
func ComputeDashboard(now time.Time, topics []model.Topic, modulesByTopic map[uint][]model.Module, records []model.ProgressRecord, attempts []model.MockAttempt, xpPerPoint int) *DashboardSnapshot {
	stats := DashboardStats{TotalTopics: len(topics)}

	completionDates := make(map[string]int)
	scoreSum, scoreCount := 0, 0
	for _, rec := range records {
		if rec.IsCompleted {
			stats.ModulesCompleted++
			stats.TotalXP += xpPerCompletedModule
			if rec.Score != nil {
				stats.TotalXP += *rec.Score / 10
			}
		}
		// Zero scores count as "no data", not a recorded failure.
		if rec.Score != nil && *rec.Score > 0 {
			scoreSum += *rec.Score
			scoreCount++
		}
		if rec.CompletedAt != nil {
			completionDates[rec.CompletedAt.Format(dateLayout)]++
		}
	}
	if scoreCount > 0 {
		stats.AvgScore = scoreSum / scoreCount
	}

	for _, att := range attempts {
		if att.Passed {
			stats.TotalXP += att.Score * xpPerPoint
		}
	}

	completedByTopic := make(map[uint]int)
	for _, rec := range records {
		if rec.IsCompleted {
			completedByTopic[rec.TopicID]++
		}
	}

	topicViews := make([]TopicProgress, 0, len(topics))
	for _, t := range topics {
		total := len(modulesByTopic[t.ID])
		completed := completedByTopic[t.ID]
		percent := 0
		if total > 0 {
			percent = int(math.Round(100 * float64(completed) / float64(total)))
		}
		if percent > 0 {
			stats.TopicsStarted++
		}
		if percent == 100 {
			stats.TopicsDone++
		}
		stats.TotalModules += total
		topicViews = append(topicViews, TopicProgress{
			ID:               t.ID,
			Title:            t.Title,
			TotalModules:     total,
			CompletedModules: completed,
			Percent:          percent,
		})
	}

	stats.Streak = computeStreak(now, completionDates)
	stats.EstimatedHours = math.Round(float64(stats.ModulesCompleted)*hoursPerModule*10) / 10

	return &DashboardSnapshot{
		Stats:        stats,
		Heatmap:      buildHeatmap(completionDates),
		Topics:       topicViews,
		ChartData:    buildChart(now, completionDates),
		ResumeModule: findResumeTarget(topics, modulesByTopic, records),
	}
}

// computeStreak counts consecutive active days walking backward from
// today, with a one-day grace: an inactive today anchors on yesterday
// instead, and only a gap beyond that zeroes the streak.
func computeStreak(now time.Time, dates map[string]int) int {
	day := now
	if dates[day.Format(dateLayout)] == 0 {
		day = day.AddDate(0, 0, -1)
		if dates[day.Format(dateLayout)] == 0 {
			return 0
		}
	}

	streak := 0
	for dates[day.Format(dateLayout)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func buildHeatmap(dates map[string]int) []HeatmapEntry {
	entries := make([]HeatmapEntry, 0, len(dates))
	for date, count := range dates {
		entries = append(entries, HeatmapEntry{Date: date, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries
}

// buildChart covers the 7 calendar days ending today, oldest first.
func buildChart(now time.Time, dates map[string]int) []ChartPoint {
	points := make([]ChartPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		points = append(points, ChartPoint{
			Name:     day.Weekday().String()[:3],
			Progress: dates[day.Format(dateLayout)],
		})
	}
	return points
}

// findResumeTarget suggests the module right after the most recently
// completed one within the same topic, or nil when that module was the
// topic's last.
func findResumeTarget(topics []model.Topic, modulesByTopic map[uint][]model.Module, records []model.ProgressRecord) *ResumeModule {
	var latest *model.ProgressRecord
	for i := range records {
		rec := &records[i]
		if rec.CompletedAt == nil {
			continue
		}
		if latest == nil || rec.CompletedAt.After(*latest.CompletedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil
	}

	var completedIndex int
	found := false
	for _, m := range modulesByTopic[latest.TopicID] {
		if m.ID == latest.ModuleID {
			completedIndex = m.OrderIndex
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	var next *model.Module
	for i := range modulesByTopic[latest.TopicID] {
		m := &modulesByTopic[latest.TopicID][i]
		if m.OrderIndex <= completedIndex {
			continue
		}
		if next == nil || m.OrderIndex < next.OrderIndex {
			next = m
		}
	}
	if next == nil {
		return nil
	}

	topicTitle := ""
	for _, t := range topics {
		if t.ID == latest.TopicID {
			topicTitle = t.Title
			break
		}
	}

	return &ResumeModule{ID: next.ID, Title: next.Title, TopicTitle: topicTitle}
}
