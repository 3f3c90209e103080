package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bootcamp",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI grading and assistant requests",
	}, []string{"model", "kind"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bootcamp",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI requests",
	}, []string{"model", "kind"})
)

// OpenAIConfig defines configuration options for the OpenAI-backed client.
type OpenAIConfig struct {
	APIKey         string
	GraderModel    string
	AssistantModel string
	MaxTokens      int
	Temperature    float32
	Logger         zerolog.Logger
}

// OpenAIClient implements Grader and Assistant against the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a new client using the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.GraderModel == "" {
		cfg.GraderModel = "gpt-4o-mini"
	}

	if cfg.AssistantModel == "" {
		cfg.AssistantModel = cfg.GraderModel
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIClient{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/nivora-labs/bootcamp-api/pkg/ai"),
		logger: logger,
	}, nil
}

// Grade sends the activity submission to the model and parses the structured result.
func (c *OpenAIClient) Grade(parent context.Context, activity ActivityContext, content string) (GradeResult, error) {
	ctx, span := c.tracer.Start(parent, "ai.grade", trace.WithAttributes(
		attribute.String("model", c.cfg.GraderModel),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.GraderModel,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: graderSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGraderPrompt(activity, content),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(c.cfg.GraderModel, "grade").Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.GraderModel, "grade").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradeResult{}, fmt.Errorf("openai grade: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(c.cfg.GraderModel, "grade").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradeResult{}, err
	}

	result, err := parseGradeResponse(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.GraderModel, "grade").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradeResult{}, err
	}

	return result, nil
}

// Reply answers a student question, feeding recent history back to the model.
func (c *OpenAIClient) Reply(parent context.Context, history []ChatTurn, message string) (string, error) {
	ctx, span := c.tracer.Start(parent, "ai.reply", trace.WithAttributes(
		attribute.String("model", c.cfg.AssistantModel),
	))
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: assistantSystemPrompt(),
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.AssistantModel,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages:    messages,
	})
	aiDuration.WithLabelValues(c.cfg.AssistantModel, "reply").Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.AssistantModel, "reply").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai reply: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(c.cfg.AssistantModel, "reply").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func graderSystemPrompt() string {
	return "You are an automated reviewer for bootcamp writing exercises. Respond with a JSON object containing grade (a num" +
		"ber from 0 to 10) and feedback (a short constructive paragraph). Judge how well the submission follows the instructions."
}

func assistantSystemPrompt() string {
	return "You are a friendly teaching assistant for a coding bootcamp. Answer student questions concisely, point them to" +
		" relevant lesson material when possible, and never complete graded work for them."
}

func buildGraderPrompt(activity ActivityContext, content string) string {
	builder := strings.Builder{}
	builder.WriteString("# Activity\n")
	builder.WriteString(activity.Title)
	builder.WriteString("\n\n## Description\n")
	builder.WriteString(activity.Description)
	builder.WriteString("\n\n## Instructions\n")
	builder.WriteString(activity.Instructions)
	if activity.ExpectedFormat != "" {
		builder.WriteString("\n\n## Expected Format\n")
		builder.WriteString(activity.ExpectedFormat)
	}
	builder.WriteString("\n\n## Student Submission\n")
	builder.WriteString(content)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseGradeResponse(content string) (GradeResult, error) {
	var data GradeResult
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return GradeResult{}, fmt.Errorf("parse grade json: %w", err)
	}

	if data.Grade < 0 {
		data.Grade = 0
	}
	if data.Grade > 10 {
		data.Grade = 10
	}

	return data, nil
}
