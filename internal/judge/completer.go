package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"byte-battle/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Completer turns a prompt into model text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type completionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// HTTPCompleter posts prompts to a completion endpoint with retry and a
// consecutive-failure breaker.
type HTTPCompleter struct {
	inner     *http.Client
	url       string
	apiKey    string
	model     string
	retryMax  int
	retryBase time.Duration
	threshold int
	openFor   time.Duration
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error

	mu                  sync.Mutex
	consecutiveFailures int
	openUntil           time.Time
}

func NewHTTPCompleter(cfg config.JudgeConfig) *HTTPCompleter {
	c := &HTTPCompleter{
		inner:     &http.Client{Timeout: cfg.Timeout},
		url:       cfg.URL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		retryMax:  cfg.RetryMax,
		retryBase: cfg.RetryBase,
		threshold: cfg.FailureThreshold,
		openFor:   cfg.CircuitOpen,
		now:       time.Now,
		sleep:     sleepCtx,
	}
	if c.inner.Timeout <= 0 {
		c.inner.Timeout = 30 * time.Second
	}
	if c.retryMax < 0 {
		c.retryMax = 0
	}
	if c.retryBase <= 0 {
		c.retryBase = 500 * time.Millisecond
	}
	if c.threshold <= 0 {
		c.threshold = 3
	}
	if c.openFor <= 0 {
		c.openFor = 30 * time.Second
	}
	return c
}

func (c *HTTPCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.beforeSend(c.now()); err != nil {
		metricCircuitOpenTotal.Add(1)
		return "", err
	}
	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			metricRetryTotal.Add(1)
			delay := c.retryBase * time.Duration(1<<(attempt-1))
			if err := c.sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}
		metricRequestsTotal.Add(1)
		text, retryable, err := c.send(ctx, prompt)
		if err == nil {
			c.afterSuccess()
			return text, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("judge_request_failed")
		if !retryable {
			break
		}
	}
	metricFailuresTotal.Add(1)
	c.afterFailure(c.now())
	return "", lastErr
}

func (c *HTTPCompleter) send(ctx context.Context, prompt string) (string, bool, error) {
	raw, err := json.Marshal(completionRequest{Model: c.model, Prompt: prompt})
	if err != nil {
		return "", false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.inner.Do(req)
	if err != nil {
		return "", ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return "", retryable, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", false, fmt.Errorf("%w: empty completion", ErrMalformedOutput)
	}
	return out.Text, false, nil
}

func (c *HTTPCompleter) beforeSend(now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.openUntil.IsZero() && now.Before(c.openUntil) {
		return ErrCircuitOpen
	}
	return nil
}

func (c *HTTPCompleter) afterFailure(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveFailures++
	if c.consecutiveFailures >= c.threshold {
		c.openUntil = now.Add(c.openFor)
		c.consecutiveFailures = 0
		log.Warn().Time("open_until", c.openUntil).Msg("judge_circuit_opened")
	}
}

func (c *HTTPCompleter) afterSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveFailures = 0
	c.openUntil = time.Time{}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type offlineCompleter struct{}

func (offlineCompleter) Complete(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
