package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ananyakrishnaeemani/ai-learning/internal/config"
	"github.com/ananyakrishnaeemani/ai-learning/internal/model"
)

// ContentGenerator produces AI-authored course content. Implementations
// may fail; callers own the fallback policy.
type ContentGenerator interface {
	GenerateRoadmap(ctx context.Context, topic, difficulty string, durationDays int, description string) (*RoadmapPayload, error)
	GenerateModuleContent(ctx context.Context, topicTitle, moduleTitle string) (*ModuleContentPayload, error)
	GenerateMockExam(ctx context.Context, topic, difficulty string, count int) (*MockExamPayload, error)
	GenerateInsights(ctx context.Context, performance []string) (*InsightsPayload, error)
}

type RoadmapModule struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index"`
}

type RoadmapPayload struct {
	Modules []RoadmapModule `json:"modules"`
}

type SlidePayload struct {
	Content    string `json:"content"`
	OrderIndex int    `json:"order_index"`
}

type QuizPayload struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type ModuleContentPayload struct {
	Slides  []SlidePayload `json:"slides"`
	Quizzes []QuizPayload  `json:"quizzes"`
}

type MockExamPayload struct {
	Questions []model.ExamQuestion `json:"questions"`
}

type InsightsPayload struct {
	Strength   string `json:"strength"`
	Weakness   string `json:"weakness"`
	Motivation string `json:"motivation"`
}

// AIService talks to an OpenAI-compatible chat completions endpoint in
// JSON mode. The provider config is injected at construction time.
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type aiChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []aiChatMessage `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message aiChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) GenerateRoadmap(ctx context.Context, topic, difficulty string, durationDays int, description string) (*RoadmapPayload, error) {
	prompt := fmt.Sprintf(`Create a learning roadmap for the topic: "%s".
Difficulty: %s.
Duration: %d days.
Description/Focus: %s.

Return a valid JSON object with a key "modules" which is a list of objects.
Each object must have:
- "title": string
- "description": string (brief summary)
- "order_index": integer (1-based)

Ensure the roadmap covers the duration appropriately.
Do not return markdown formatting, just raw JSON.`, topic, difficulty, durationDays, description)

	var payload RoadmapPayload
	if err := s.completeJSON(ctx, prompt, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (s *AIService) GenerateModuleContent(ctx context.Context, topicTitle, moduleTitle string) (*ModuleContentPayload, error) {
	prompt := fmt.Sprintf(`Generate detailed educational content for the module "%s" of the topic "%s".

Return a valid JSON object with two keys: "slides" and "quizzes".

"slides": A list of objects, each with:
- "content": string (Markdown format with headings, bullet points, etc. Make it VERY DETAILED and COMPREHENSIVE.)
- "order_index": integer (1-based)

CRITICAL INSTRUCTIONS FOR CONTENT:
1. Include REAL-WORLD EXAMPLES to explain abstract concepts.
2. Include CODE SNIPPETS (in appropriate languages) for technical topics.
3. Ensure high information density. Each slide should be substantial.
4. Target about 5-7 slides.

"quizzes": A LIST of objects (5 questions) representing the quiz for this module, each with:
- "question": string (Must be based SPECIFICALLY on the content of the slides above.)
- "options": list of strings (4 options)
- "correct_answer": string (must strictly match one of the options)

Do not return markdown formatting for the JSON itself, just raw JSON.`, moduleTitle, topicTitle)

	var payload ModuleContentPayload
	if err := s.completeJSON(ctx, prompt, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (s *AIService) GenerateMockExam(ctx context.Context, topic, difficulty string, count int) (*MockExamPayload, error) {
	prompt := fmt.Sprintf(`Generate a mock exam for the topic "%s".
Difficulty: %s.
Number of questions: %d.

Return a valid JSON object with a key "questions" containing a list of %d question objects.

The questions should be a mix of the following types:
1. "mcq": Multiple Choice (4 options). Keys: "type" ("mcq"), "question", "options" (list of strings), "correct_answer" (string, must match one option).
2. "code": Coding scenario. Keys: "type" ("code"), "question" (problem description), "test_case_input" (string example), "test_case_output" (string expected output).
3. "boolean": True/False. Keys: "type" ("boolean"), "question", "correct_answer" ("True" or "False").

Requirements:
- For "code" type, the question must be solvable with a short function or script.
- Ensure questions correspond to the "%s" level.
- Do not return markdown, only valid JSON.`, topic, difficulty, count, count, difficulty)

	var payload MockExamPayload
	if err := s.completeJSON(ctx, prompt, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (s *AIService) GenerateInsights(ctx context.Context, performance []string) (*InsightsPayload, error) {
	summary, err := json.Marshal(performance)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Analyze this student's recent performance:
%s

1. Identify one main strength.
2. Identify one area for improvement.
3. Give a short 1-sentence motivational quote tailored to them.

Return as JSON: { "strength": "...", "weakness": "...", "motivation": "..." }`, string(summary))

	var payload InsightsPayload
	if err := s.completeJSONAs(ctx, "You are an encouraging learning coach.", prompt, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// completeJSON runs one JSON-mode completion and decodes the reply into out.
func (s *AIService) completeJSON(ctx context.Context, prompt string, out interface{}) error {
	return s.completeJSONAs(ctx, "You are a helpful educational AI assistant. Always return pure JSON.", prompt, out)
}

func (s *AIService) completeJSONAs(ctx context.Context, system, prompt string, out interface{}) error {
	reqBody := chatCompletionRequest{
		Model: s.config.Model,
		Messages: []aiChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return err
	}
	if result.Error != nil {
		return fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return fmt.Errorf("AI returned no choices")
	}

	return json.Unmarshal([]byte(stripJSONFences(result.Choices[0].Message.Content)), out)
}

// stripJSONFences removes a markdown code fence some models wrap around
// JSON-mode output despite instructions.
func stripJSONFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}
