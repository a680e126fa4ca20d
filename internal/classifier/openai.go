package classifier

import (
	"context"
	"errors"

	"finbook/csv-import/internal/importerror"
	"finbook/csv-import/internal/logging"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClassifier categorizes batches through the OpenAI chat
// completions API.
type OpenAIClassifier struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      logging.Logger
}

func NewOpenAIClassifier(apiKey, model string, temperature float64, maxTokens int, logger logging.Logger) *OpenAIClassifier {
	if logger == nil {
		logger = logging.NewMockLogger()
	}
	return &OpenAIClassifier{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

func (c *OpenAIClassifier) Name() string { return "openai" }

func (c *OpenAIClassifier) Classify(ctx context.Context, batch []Row) ([]Result, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	c.logger.Debug("sending batch to classifier",
		logging.Field{Key: logging.FieldProvider, Value: c.Name()},
		logging.Field{Key: logging.FieldCount, Value: len(batch)})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: UserPrompt(batch)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return nil, &importerror.ClassifierError{Provider: c.Name(), Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &importerror.ClassifierError{Provider: c.Name(), Err: errors.New("completion has no choices")}
	}

	results, err := ParseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &importerror.ClassifierError{Provider: c.Name(), Err: err}
	}
	return results, nil
}
