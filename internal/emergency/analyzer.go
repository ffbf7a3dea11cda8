package emergency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/guji3/ping/internal/models"
	apperrors "github.com/guji3/ping/pkg/errors"
)

const classifySystemPrompt = "You are an AI assistant that analyzes emergency situations. " +
	"Answer strictly in JSON format."

const classifyPromptTemplate = `The following is voice data collected from an emergency rescue device:

%q

Analyze the situation and provide this information as a JSON object:
1. situation: what kind of danger it is (e.g. kidnapping, robbery, missing person, accident)
2. dangerLevel: one of HIGH / MEDIUM / LOW
3. analysis: detailed reasoning about the situation (within 50 characters)
4. recommendAction: what the guardian should do (within 30 characters)

If the voice is empty or unclear, set dangerLevel to LOW and situation to "unclear".`

// AnalyzerConfig configures the OpenAI-backed analyzer.
type AnalyzerConfig struct {
	APIKey        string
	BaseURL       string
	WhisperModel  string
	AnalysisModel string
	Language      string
	Timeout       time.Duration
}

// OpenAIAnalyzer implements Analyzer on top of the Whisper and chat
// completion APIs.
type OpenAIAnalyzer struct {
	client        *openai.Client
	whisperModel  string
	analysisModel string
	language      string
	timeout       time.Duration
	log           *zap.SugaredLogger
}

func NewOpenAIAnalyzer(cfg AnalyzerConfig, log *zap.SugaredLogger) *OpenAIAnalyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.WhisperModel == "" {
		cfg.WhisperModel = openai.Whisper1
	}
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = openai.GPT4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &OpenAIAnalyzer{
		client:        openai.NewClientWithConfig(clientCfg),
		whisperModel:  cfg.WhisperModel,
		analysisModel: cfg.AnalysisModel,
		language:      cfg.Language,
		timeout:       cfg.Timeout,
		log:           log,
	}
}

// Transcribe converts the audio clip to text via Whisper.
func (a *OpenAIAnalyzer) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if filename == "" {
		filename = "audio.mp3"
	}
	req := openai.AudioRequest{
		Model:    a.whisperModel,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
		Language: a.language,
	}
	resp, err := a.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", transcriptionFailed(err)
	}
	a.log.Infow("transcription complete", "chars", len(resp.Text))
	return resp.Text, nil
}

// Classify asks the chat model to describe the situation. Errors are
// returned to the caller, which degrades to a MEDIUM default; this method
// never decides policy itself.
func (a *OpenAIAnalyzer) Classify(ctx context.Context, transcript string) (*AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: a.analysisModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(classifyPromptTemplate, transcript)},
		},
		// low temperature for consistent answers
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, apperrors.Wrap(err, "situation classification failed")
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.New("classification returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed struct {
		Situation       string `json:"situation"`
		DangerLevel     string `json:"dangerLevel"`
		Analysis        string `json:"analysis"`
		RecommendAction string `json:"recommendAction"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, apperrors.Wrap(err, "classification answer is not valid JSON")
	}

	result := &AnalysisResult{
		Transcript:      transcript,
		Situation:       parsed.Situation,
		DangerLevel:     models.ParseDangerLevel(parsed.DangerLevel),
		Analysis:        parsed.Analysis,
		RecommendAction: parsed.RecommendAction,
	}
	a.log.Infow("classification complete",
		"situation", result.Situation, "dangerLevel", result.DangerLevel)
	return result, nil
}
