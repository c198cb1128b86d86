package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"glassops/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

const receiptPrompt = `Analyze this receipt or invoice image and extract the following information.
Return ONLY a JSON object with these fields:
{
  "total_amount": <number - the final total amount paid, without currency symbols>,
  "vendor_name": "<string - the business/vendor name>",
  "date": "<string - date in YYYY-MM-DD format if visible, otherwise null>",
  "suggested_category": "<string - one of: glass, hardware, consumables, subcontractor, gas_fuel, vehicle, tools_equipment, office_admin, food_meals, other>"
}

Category hints:
- "glass" = glass fabrication shops, glass suppliers
- "hardware" = C.R. Laurence, hinges, handles, clamps, channel
- "consumables" = silicone, tape, blades, cleaning supplies
- "subcontractor" = helper or installer labor
- "gas_fuel" = gas stations
- "vehicle" = truck rental, parking, tolls, repairs
- "tools_equipment" = tool purchases
- "office_admin" = software, phone, office supplies
- "food_meals" = restaurants, food
- "other" = anything else

If you cannot determine a value, use null for that field.`

// ReceiptExtraction is what the model pulled off a receipt image. Any
// field can be empty; the caller treats it as a prefill, not a record.
type ReceiptExtraction struct {
	Amount   *float64 `json:"amount"`
	Vendor   *string  `json:"vendor"`
	Date     *string  `json:"date"`
	Category string   `json:"category"`
}

// ChatCompleter is the slice of the OpenAI client the extractor needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type ReceiptService interface {
	// ExtractFromImage reads a receipt image at url and returns field
	// suggestions for an expense entry.
	ExtractFromImage(ctx context.Context, url string) (*ReceiptExtraction, error)
}

type receiptService struct {
	client     ChatCompleter
	httpClient *http.Client
}

func NewReceiptService(client ChatCompleter) ReceiptService {
	return &receiptService{client: client, httpClient: http.DefaultClient}
}

func (s *receiptService) ExtractFromImage(ctx context.Context, url string) (*ReceiptExtraction, error) {
	if url == "" {
		return nil, fmt.Errorf("image url is required")
	}

	data, contentType, err := s.fetchImage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipt image: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: receiptPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:%s;base64,%s", contentType, encoded),
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("receipt analysis request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("receipt analysis returned no choices")
	}

	return parseExtraction(resp.Choices[0].Message.Content)
}

func (s *receiptService) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

func parseExtraction(raw string) (*ReceiptExtraction, error) {
	// Some models wrap JSON in a fenced block despite the response
	// format hint.
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		TotalAmount       *float64 `json:"total_amount"`
		VendorName        *string  `json:"vendor_name"`
		Date              *string  `json:"date"`
		SuggestedCategory *string  `json:"suggested_category"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse receipt analysis: %w", err)
	}

	category := model.CategoryOther
	if parsed.SuggestedCategory != nil && validCategory(*parsed.SuggestedCategory) {
		category = *parsed.SuggestedCategory
	}

	return &ReceiptExtraction{
		Amount:   parsed.TotalAmount,
		Vendor:   parsed.VendorName,
		Date:     parsed.Date,
		Category: category,
	}, nil
}
