// Package gemini transcribes scoreboard screenshots with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"squad-tracker/api/internal/util"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

const systemPrompt = `You transcribe post-match scoreboard screenshots from mobile games.
Output every visible text element, one scoreboard row per line, top to bottom.
Keep player names, hero names, kill/death/assist numbers, gold and damage values exactly as shown.
Do not interpret, summarize, or reorder anything. Plain text only, no markdown.`

func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	format := strings.TrimPrefix(util.SniffMimeHTTP(image), "image/")
	parts := []genai.Part{
		genai.Text("Transcribe this scoreboard."),
		genai.ImageData(format, image),
	}

	// Transient 5xx happen often enough on large images to warrant retries.
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			continue
		}
		return collectText(resp)
	}
	return "", fmt.Errorf("gemini recognize: %w", lastErr)
}

func collectText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini recognize: empty response")
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func ptrFloat32(v float32) *float32 { return &v }
