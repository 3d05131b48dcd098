package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gamedoc/internal/cache"
)

// ErrEmptyResponse indicates the model returned no choices or blank content.
var ErrEmptyResponse = errors.New("empty model response")

// Caller is the single request/response capability shared by every pipeline
// stage. The stages differ only in prompt and temperature; caching and the
// transient-error retry live here so none of them duplicates that logic.
type Caller struct {
	Client Client
	Model  string
	Cache  *cache.LLMCache
	// SleepFunc, when set, replaces the retry backoff sleep. The argument is
	// milliseconds. Tests inject a no-op to stay deterministic.
	SleepFunc func(ms int)
}

// Complete sends one system+user exchange and returns the assistant text.
// A transport error or blank reply is retried once after a short backoff;
// stage names the calling stage for logs and error context.
func (c *Caller) Complete(ctx context.Context, stage, system, user string, temperature float32) (string, error) {
	if c == nil || c.Client == nil || strings.TrimSpace(c.Model) == "" {
		return "", errors.New("llm caller not configured")
	}
	prompt := system + "\n\n" + user
	if c.Cache != nil {
		if raw, ok, _ := c.Cache.Get(ctx, cache.KeyFrom(c.Model, prompt)); ok {
			var out struct {
				Content string `json:"content"`
			}
			if err := json.Unmarshal(raw, &out); err == nil && strings.TrimSpace(out.Content) != "" {
				log.Debug().Str("stage", stage).Msg("llm cache hit")
				return out.Content, nil
			}
		}
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		N:           1,
	}
	log.Debug().Str("stage", stage).Str("model", c.Model).Int("system_len", len(system)).Int("user_len", len(user)).Msg("llm request")

	out, err := c.once(ctx, req)
	if err != nil || out == "" {
		c.sleep(100)
		out, err = c.once(ctx, req)
	}
	if err != nil {
		return "", fmt.Errorf("%s call (after retry): %w", stage, err)
	}
	if out == "" {
		return "", fmt.Errorf("%s call: %w", stage, ErrEmptyResponse)
	}

	if c.Cache != nil {
		payload, _ := json.Marshal(map[string]string{"content": out})
		_ = c.Cache.Save(ctx, cache.KeyFrom(c.Model, prompt), payload)
	}
	return out, nil
}

func (c *Caller) once(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Caller) sleep(ms int) {
	if c.SleepFunc != nil {
		c.SleepFunc(ms)
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
