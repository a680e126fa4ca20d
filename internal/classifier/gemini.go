package classifier

import (
	"context"
	"errors"
	"fmt"

	"finbook/csv-import/internal/importerror"
	"finbook/csv-import/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClassifier categorizes batches through the Gemini API. Gemini
// has no separate system role in this client, so both prompts are sent
// as one text part.
type GeminiClassifier struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger logging.Logger
}

func NewGeminiClassifier(ctx context.Context, apiKey, model string, temperature float64, maxTokens int, logger logging.Logger) (*GeminiClassifier, error) {
	if logger == nil {
		logger = logging.NewMockLogger()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(float32(temperature))
	m.SetMaxOutputTokens(int32(maxTokens))
	return &GeminiClassifier{client: client, model: m, logger: logger}, nil
}

func (c *GeminiClassifier) Name() string { return "gemini" }

// Close releases the underlying API connection.
func (c *GeminiClassifier) Close() error {
	return c.client.Close()
}

func (c *GeminiClassifier) Classify(ctx context.Context, batch []Row) ([]Result, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	c.logger.Debug("sending batch to classifier",
		logging.Field{Key: logging.FieldProvider, Value: c.Name()},
		logging.Field{Key: logging.FieldCount, Value: len(batch)})

	prompt := SystemPrompt() + "\n\n" + UserPrompt(batch)
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, &importerror.ClassifierError{Provider: c.Name(), Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &importerror.ClassifierError{Provider: c.Name(), Err: errors.New("empty response")}
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, &importerror.ClassifierError{
			Provider: c.Name(),
			Err:      fmt.Errorf("unexpected response part %T", resp.Candidates[0].Content.Parts[0]),
		}
	}

	results, err := ParseResponse(string(text))
	if err != nil {
		return nil, &importerror.ClassifierError{Provider: c.Name(), Err: err}
	}
	return results, nil
}
