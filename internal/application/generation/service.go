package generation

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"ui-forge-api/internal/domain/entity"
	"ui-forge-api/internal/domain/repository"
	apperrors "ui-forge-api/pkg/errors"
	"ui-forge-api/pkg/logger"
	"ui-forge-api/pkg/metrics"
)

// Completer 上游补全服务
type Completer interface {
	Complete(ctx context.Context, instruction string) (string, error)
	Model() string
}

// SessionLocker 会话级生成互斥
type SessionLocker interface {
	Acquire(ctx context.Context, sessionID string) (release func(context.Context) error, acquired bool, err error)
}

// PreviewNotifier 新产物落库后通知预览侧
type PreviewNotifier interface {
	OnArtifact(sessionID string, artifact entity.Artifact) (epoch uint64, remounted bool)
}

// StandaloneResult 无会话生成结果
type StandaloneResult struct {
	Artifact entity.Artifact
	RawText  string
}

// SessionResult 会话内生成结果
type SessionResult struct {
	Turn        *entity.Turn
	RenderEpoch uint64
}

// Service 生成流水线：校验 → 会话锁 → 装配上下文 → 组装提示词 →
// 调用上游 → 提取产物 → 事务落库 → 通知预览。
// 全程 fail-the-whole-request：轮次要么带着完整产物落库，要么不落库。
type Service struct {
	contextBuilder *ContextBuilder
	composer       *PromptComposer
	completer      Completer
	turns          repository.TurnRepository
	tx             repository.Transactor
	lock           SessionLocker
	cache          ContextCache
	preview        PreviewNotifier
}

// NewService 创建生成服务，lock/cache/preview 均可为 nil
func NewService(
	contextBuilder *ContextBuilder,
	composer *PromptComposer,
	completer Completer,
	turns repository.TurnRepository,
	tx repository.Transactor,
	lock SessionLocker,
	cache ContextCache,
	preview PreviewNotifier,
) *Service {
	return &Service{
		contextBuilder: contextBuilder,
		composer:       composer,
		completer:      completer,
		turns:          turns,
		tx:             tx,
		lock:           lock,
		cache:          cache,
		preview:        preview,
	}
}

// GenerateStandalone 无会话生成：上下文由调用方自带，不落库。
// 产物允许全空，原始文本一并返回供调用方自查。
func (s *Service) GenerateStandalone(ctx context.Context, contextBlock, prompt string) (*StandaloneResult, error) {
	ctx, span := tracer.Start(ctx, "generation.Standalone")
	defer span.End()

	start := time.Now()

	if strings.TrimSpace(prompt) == "" {
		metrics.GenerationTotal.WithLabelValues("standalone", "invalid").Inc()
		return nil, apperrors.ErrInvalidParam.WithDetail("prompt is required")
	}

	instruction := s.composer.ComposeStandalone(contextBlock, prompt)
	raw, err := s.completer.Complete(ctx, instruction)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("standalone", statusLabel(err)).Inc()
		span.RecordError(err)
		return nil, err
	}

	artifact := Extract(raw)
	if artifact.IsEmpty() {
		metrics.GenerationEmptyArtifacts.Inc()
		logger.Warn(ctx, "extraction produced an all-empty artifact", "mode", "standalone", "raw_chars", len(raw))
	}

	metrics.GenerationTotal.WithLabelValues("standalone", "success").Inc()
	metrics.GenerationDuration.WithLabelValues("standalone").Observe(time.Since(start).Seconds())
	return &StandaloneResult{Artifact: artifact, RawText: raw}, nil
}

// GenerateInSession 会话内生成：归属校验、上下文回看、轮次落库与预览通知
func (s *Service) GenerateInSession(ctx context.Context, sessionID, requesterID, prompt string) (*SessionResult, error) {
	ctx, span := tracer.Start(ctx, "generation.InSession")
	span.SetAttributes(attribute.String("session.id", sessionID))
	defer span.End()

	start := time.Now()

	result, err := s.generateInSession(ctx, sessionID, requesterID, prompt)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("session", statusLabel(err)).Inc()
		span.RecordError(err)
		return nil, err
	}

	metrics.GenerationTotal.WithLabelValues("session", "success").Inc()
	metrics.GenerationDuration.WithLabelValues("session").Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("turn.id", result.Turn.ID))
	return result, nil
}

func (s *Service) generateInSession(ctx context.Context, sessionID, requesterID, prompt string) (*SessionResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("prompt is required")
	}
	if sessionID == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("session id is required")
	}

	// 会话级互斥：两次并发生成不得读到同一份上下文后各自落库
	if s.lock != nil {
		release, acquired, err := s.lock.Acquire(ctx, sessionID)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to acquire session lock")
		}
		if !acquired {
			return nil, apperrors.ErrSessionBusy
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn(ctx, "failed to release session lock", "session_id", sessionID, "error", err.Error())
			}
		}()
	}

	contextBlock, err := s.contextBuilder.Build(ctx, sessionID, requesterID)
	if err != nil {
		return nil, err
	}

	instruction := s.composer.Compose(contextBlock, prompt)
	raw, err := s.completer.Complete(ctx, instruction)
	if err != nil {
		return nil, err
	}

	artifact := Extract(raw)
	if artifact.IsEmpty() {
		metrics.GenerationEmptyArtifacts.Inc()
		logger.Warn(ctx, "extraction produced an all-empty artifact", "mode", "session", "session_id", sessionID, "raw_chars", len(raw))
		return nil, apperrors.ErrEmptyOutput.WithDetail("no artifact markers found in provider output")
	}

	// 调用方已放弃的请求不落库，避免孤儿轮次
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	turn := entity.NewTurn(sessionID, prompt, artifact)
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		latest, err := s.turns.LatestCreatedAt(txCtx, sessionID)
		if err != nil {
			return err
		}
		// 同会话内创建时间严格单调递增
		if latest != nil && !turn.CreatedAt.After(*latest) {
			turn.CreatedAt = latest.Add(time.Microsecond)
		}
		return s.turns.Create(txCtx, turn)
	})
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithError(err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateSession(ctx, sessionID); err != nil {
			logger.Warn(ctx, "failed to invalidate session context cache", "session_id", sessionID, "error", err.Error())
		}
	}

	var epoch uint64
	if s.preview != nil {
		epoch, _ = s.preview.OnArtifact(sessionID, turn.ArtifactOf())
	}

	return &SessionResult{Turn: turn, RenderEpoch: epoch}, nil
}

// statusLabel 将失败归类为指标状态标签
func statusLabel(err error) string {
	switch apperrors.AsAppError(err).Code {
	case apperrors.CodeInvalidParam:
		return "invalid"
	case apperrors.CodeSessionNotFound, apperrors.CodeForbidden:
		return "denied"
	case apperrors.CodeSessionBusy:
		return "busy"
	case apperrors.CodeEmptyOutput:
		return "empty_output"
	case apperrors.CodeUpstreamUnavailable:
		return "upstream_error"
	default:
		return "error"
	}
}
