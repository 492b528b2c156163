// Package explain turns a friend's feature vector into a human-readable
// duo recommendation via the OpenAI structured-output API.
package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"squad-tracker/api/internal/stats"
	"squad-tracker/api/internal/util"
)

type Client struct {
	APIKey string
	Model  string
	httpc  *http.Client
}

func New(key, model string) *Client {
	return &Client{
		APIKey: key,
		Model:  model,
		httpc:  &http.Client{Timeout: 60 * time.Second},
	}
}

// HeroIdea is one suggested duo pick.
type HeroIdea struct {
	Duo string `json:"duo"`
	Why string `json:"why"`
}

// Explanation is the model's verdict on playing with this friend.
type Explanation struct {
	WinProb    float64    `json:"winProb"`
	Confidence float64    `json:"confidence"`
	Summary    string     `json:"summary"`
	Reasons    []string   `json:"reasons"`
	DoThis     []string   `json:"doThis"`
	AvoidThis  []string   `json:"avoidThis"`
	HeroIdeas  []HeroIdea `json:"heroIdeas"`
	FunCaption string     `json:"funCaption"`
}

const responseSchema = `{
  "type": "object",
  "properties": {
    "winProb": {"type": "number", "minimum": 0.05, "maximum": 0.95},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "summary": {"type": "string"},
    "reasons": {"type": "array", "items": {"type": "string"}, "maxItems": 4},
    "doThis": {"type": "array", "items": {"type": "string"}, "maxItems": 3},
    "avoidThis": {"type": "array", "items": {"type": "string"}, "maxItems": 3},
    "heroIdeas": {
      "type": "array",
      "maxItems": 3,
      "items": {
        "type": "object",
        "properties": {
          "duo": {"type": "string"},
          "why": {"type": "string"}
        }
      }
    },
    "funCaption": {"type": "string"}
  },
  "additionalProperties": false
}`

const systemPrompt = `You are a friendly mobile MOBA coach. Given aggregate duo statistics
as a feature vector, estimate how a game with this friend will go and explain it in a short,
upbeat way. Be concrete, reference the numbers, never invent stats not present in the input.
Keep winProb inside [0.05, 0.95]; certainty does not exist in ranked.`

// Explain asks the model for a verdict on the friend described by fv.
func (c *Client) Explain(ctx context.Context, friendName string, fv stats.FeatureVector) (Explanation, error) {
	if c.APIKey == "" {
		return Explanation{}, fmt.Errorf("OPENAI_API_KEY is empty")
	}

	var schema map[string]any
	if err := json.Unmarshal([]byte(responseSchema), &schema); err != nil {
		return Explanation{}, fmt.Errorf("explain schema: %w", err)
	}
	util.FixJSONSchemaStrict(schema)

	features, _ := json.Marshal(fv)
	user := fmt.Sprintf("Friend: %s\nFeatures: %s", friendName, features)

	body := map[string]any{
		"model": c.Model,
		"messages": []any{
			map[string]any{"role": "system", "content": systemPrompt},
			map[string]any{"role": "user", "content": user},
		},
		"temperature": 0.7,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "duo_explanation",
				"strict": true,
				"schema": schema,
			},
		},
	}
	payload, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Explanation{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return Explanation{}, fmt.Errorf("openai explain %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Explanation{}, err
	}
	if len(raw.Choices) == 0 {
		return Explanation{}, fmt.Errorf("openai explain: empty response")
	}

	out := util.StripCodeFences(raw.Choices[0].Message.Content)
	var e Explanation
	if err := json.Unmarshal([]byte(out), &e); err != nil {
		return Explanation{}, fmt.Errorf("openai explain: bad JSON: %w", err)
	}
	return e, nil
}
