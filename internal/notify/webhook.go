package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"infected-ranked/internal/constants"
	"infected-ranked/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

var ErrRateLimited = errors.New("rank webhook rate limited")

// WebhookNotifier posts rank changes to a Discord-compatible webhook.
type WebhookNotifier struct {
	url         string
	client      *fasthttp.Client
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
	logger      zerolog.Logger
}

type RateLimitInfo struct {
	Bucket    string `json:"bucket"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`

	// seconds until reset
	ResetAfter float64 `json:"reset_after"`

	UpdatedAt time.Time `json:"updated_at"`
}

type webhookPayload struct {
	Username string              `json:"username,omitempty"`
	Content  string              `json:"content"`
	Changes  []domain.RankChange `json:"changes,omitempty"`
}

func NewWebhookNotifier(url string, logger zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.WebhookTimeout,
			WriteTimeout:        constants.WebhookTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		rateLimit: RateLimitInfo{
			Limit:      5,
			Remaining:  5,
			ResetAfter: 2,
			UpdatedAt:  time.Now(),
		},
		logger: logger,
	}
}

func (n *WebhookNotifier) GetRateLimitInfo() RateLimitInfo {
	n.rateLimitMu.RLock()
	defer n.rateLimitMu.RUnlock()
	return n.rateLimit
}

func (n *WebhookNotifier) updateRateLimit(resp *fasthttp.Response) {
	n.rateLimitMu.Lock()
	defer n.rateLimitMu.Unlock()

	if bucket := string(resp.Header.Peek("X-RateLimit-Bucket")); bucket != "" {
		n.rateLimit.Bucket = bucket
	}
	if limit := string(resp.Header.Peek("X-RateLimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			n.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-RateLimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			n.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-RateLimit-Reset-After")); reset != "" {
		if val, err := strconv.ParseFloat(reset, 64); err == nil {
			n.rateLimit.ResetAfter = val
		}
	}
	if resp.StatusCode() == fasthttp.StatusTooManyRequests {
		n.rateLimit.Remaining = 0
	}
	n.rateLimit.UpdatedAt = time.Now()
}

// waitRateLimit blocks until the bucket resets when the last response left no
// requests. It fails fast when the reset falls past the ctx deadline.
func (n *WebhookNotifier) waitRateLimit(ctx context.Context) error {
	info := n.GetRateLimitInfo()
	if info.Remaining > 0 {
		return nil
	}
	resetAt := info.UpdatedAt.Add(time.Duration(info.ResetAfter * float64(time.Second)))
	wait := time.Until(resetAt)
	if wait <= 0 {
		return nil
	}
	if deadline, ok := ctx.Deadline(); ok && deadline.Before(resetAt) {
		n.logger.Warn().Str("bucket", info.Bucket).Dur("wait", wait).Msg("rank webhook bucket exhausted, dropping delivery")
		return fmt.Errorf("%w, retry after %.1fs", ErrRateLimited, wait.Seconds())
	}

	n.logger.Debug().Dur("wait", wait).Msg("waiting for rank webhook bucket reset")
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (n *WebhookNotifier) NotifyRankChanges(ctx context.Context, changes []domain.RankChange) error {
	if len(changes) == 0 {
		return nil
	}

	lines := make([]string, len(changes))
	for i, c := range changes {
		lines[i] = Message(c)
	}
	body, err := json.Marshal(webhookPayload{
		Username: "Infected Ranked",
		Content:  strings.Join(lines, "\n"),
		Changes:  changes,
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	if err := n.waitRateLimit(ctx); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.WebhookTimeout)
	}
	if err := n.client.DoDeadline(req, resp, deadline); err != nil {
		n.logger.Warn().Err(err).Msg("rank webhook request failed")
		return fmt.Errorf("rank webhook: %w", err)
	}

	n.updateRateLimit(resp)

	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusTooManyRequests:
		info := n.GetRateLimitInfo()
		n.logger.Warn().Str("bucket", info.Bucket).Float64("reset_after", info.ResetAfter).Msg("rank webhook rate limited")
		return fmt.Errorf("%w, retry after %.1fs", ErrRateLimited, info.ResetAfter)
	case status < 200 || status >= 300:
		return fmt.Errorf("rank webhook error: %d", status)
	}

	n.logger.Debug().Int("changes", len(changes)).Msg("rank webhook delivered")
	return nil
}
