package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const maxSpeechAttempts = 5

// Synthesize renders one line of dialogue to mp3 bytes. Rate-limited
// requests back off exponentially (4s up to 60s); other API failures are
// permanent and bubble up to the caller's per-line handling.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 4 * time.Second
	policy.MaxInterval = 60 * time.Second

	operation := func() ([]byte, error) {
		resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model: openai.SpeechModel(c.cfg.SpeechModel),
			Input: text,
			Voice: openai.SpeechVoice(voice),
		})
		if err != nil {
			if isRateLimited(err) {
				if c.logger != nil {
					c.logger.Warn("tts rate limited, backing off", zap.String("voice", voice))
				}
				return nil, err
			}
			return nil, backoff.Permanent(fmt.Errorf("create speech: %w", err))
		}
		defer resp.Close()
		audio, err := io.ReadAll(resp)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("read speech response: %w", err))
		}
		return audio, nil
	}

	return backoff.RetryWithData(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, maxSpeechAttempts-1), ctx))
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests
}
