// Package llm 提供上游文本补全服务客户端
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"ui-forge-api/internal/config"
	apperrors "ui-forge-api/pkg/errors"
	"ui-forge-api/pkg/logger"
	"ui-forge-api/pkg/metrics"
)

var tracer = otel.Tracer("llm")

// Client 补全服务客户端，一次请求一次响应，不使用流式接口
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type completionChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

type completionResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
}

// NewClient 创建补全服务客户端
func NewClient(cfg *config.LLMConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  maxTokens,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Model 返回默认模型标识
func (c *Client) Model() string {
	return c.model
}

// Complete 发送一次补全请求并返回首个 choice 的原始文本。
// 仅对传输错误和 5xx 做有限次重试；4xx 与空输出不重试。
func (c *Client) Complete(ctx context.Context, instruction string) (string, error) {
	ctx, span := tracer.Start(ctx, "llm.Complete")
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.max_tokens", c.maxTokens),
		attribute.Int("llm.instruction_chars", len(instruction)),
	)
	defer span.End()

	start := time.Now()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.LLMRetriesTotal.WithLabelValues(c.model).Inc()
			select {
			case <-ctx.Done():
				metrics.LLMCallTotal.WithLabelValues(c.model, "canceled").Inc()
				return "", ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		text, retryable, err := c.doRequest(ctx, instruction)
		if err == nil {
			metrics.LLMCallTotal.WithLabelValues(c.model, "success").Inc()
			metrics.LLMCallDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())
			span.SetAttributes(attribute.Int("llm.output_chars", len(text)))
			return text, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			metrics.LLMCallTotal.WithLabelValues(c.model, "canceled").Inc()
			span.RecordError(ctx.Err())
			return "", ctx.Err()
		}
		if !retryable {
			break
		}
		logger.Warn(ctx, "llm call failed, retrying", "attempt", attempt+1, "error", err.Error())
	}

	metrics.LLMCallTotal.WithLabelValues(c.model, "error").Inc()
	metrics.LLMCallDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())
	span.RecordError(lastErr)
	return "", lastErr
}

// doRequest 执行单次 HTTP 调用，retryable 指示该失败是否值得重试
func (c *Client) doRequest(ctx context.Context, instruction string) (text string, retryable bool, err error) {
	payload := completionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: instruction},
		},
		MaxTokens: c.maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, apperrors.ErrUpstreamUnavailable.WithError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 提供商错误详情只进日志，不外传
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warn(ctx, "completion provider returned non-success status",
			"status", resp.StatusCode, "body", string(raw))
		return "", resp.StatusCode >= 500, apperrors.ErrUpstreamUnavailable.WithDetail(fmt.Sprintf("provider returned status %d", resp.StatusCode))
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", false, apperrors.ErrUpstreamUnavailable.WithError(err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", false, apperrors.ErrEmptyOutput
	}

	return parsed.Choices[0].Message.Content, false, nil
}
