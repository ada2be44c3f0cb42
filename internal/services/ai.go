package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/project-progress-api/internal/analytics"
)

type AIService struct {
	client *openai.Client
}

// GeneratedTask is a task suggestion; it is not stored until a user creates it.
type GeneratedTask struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	DueDate     analytics.Date `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// DraftTasks breaks a free-text work description into project tasks using OpenAI GPT
func (s *AIService) DraftTasks(ctx context.Context, text, milestone string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	scope := "the project"
	if milestone != "" {
		scope = fmt.Sprintf("the %q milestone", milestone)
	}

	today := time.Now().Format(analytics.DateLayout)
	prompt := fmt.Sprintf(`You are a project planning assistant. Break the following description of work for %s into concrete engineering tasks.

Today: %s

Description:
%s

Return a JSON array of tasks in this format:
[
  {
    "name": "short task name",
    "description": "what has to be done",
    "due_date": "due date as YYYY-MM-DD, or null when no deadline is stated"
  }
]

Rules:
- Return an empty array [] when there is nothing to do
- Convert relative deadlines ("tomorrow", "next Friday") into calendar dates
- Return JSON only, without explanations`, scope, today, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseGeneratedTasks(resp.Choices[0].Message.Content)
}

// parseGeneratedTasks tolerates a markdown code fence around the JSON array
func parseGeneratedTasks(content string) ([]GeneratedTask, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed)), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}
