// Package generation 实现组件生成流水线：上下文装配、提示词组装、
// 上游调用、产物提取与轮次落库
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"ui-forge-api/internal/domain/entity"
	"ui-forge-api/internal/domain/repository"
	apperrors "ui-forge-api/pkg/errors"
	"ui-forge-api/pkg/logger"
)

var tracer = otel.Tracer("generation")

// DefaultContextDepth 默认上下文回看轮次数
const DefaultContextDepth = 2

const contextCacheTTL = 5 * time.Minute

// ContextCache 上下文块的读穿缓存，新轮次落库后由流水线主动失效
type ContextCache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	InvalidateSession(ctx context.Context, sessionID string) error
}

// ContextBuilder 装配会话上下文：校验会话归属，
// 把最近 K 条轮次渲染为有界的文本上下文块
type ContextBuilder struct {
	sessions repository.SessionRepository
	turns    repository.TurnRepository
	cache    ContextCache
	depth    int
}

// NewContextBuilder 创建上下文装配器，cache 可为 nil
func NewContextBuilder(sessions repository.SessionRepository, turns repository.TurnRepository, cache ContextCache, depth int) *ContextBuilder {
	if depth <= 0 {
		depth = DefaultContextDepth
	}
	return &ContextBuilder{
		sessions: sessions,
		turns:    turns,
		cache:    cache,
		depth:    depth,
	}
}

// Depth 返回上下文回看深度
func (b *ContextBuilder) Depth() int {
	return b.depth
}

// Build 校验会话归属并返回渲染好的上下文块。
// 会话不存在返回 ErrSessionNotFound，归属不符返回 ErrForbidden；
// 归属校验先于任何上下文数据的返回。
func (b *ContextBuilder) Build(ctx context.Context, sessionID, requesterID string) (string, error) {
	ctx, span := tracer.Start(ctx, "generation.BuildContext")
	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.Int("context.depth", b.depth),
	)
	defer span.End()

	session, err := b.sessions.GetByID(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return "", apperrors.ErrStorageUnavailable.WithError(err)
	}
	if session == nil {
		return "", apperrors.ErrSessionNotFound
	}
	if !session.IsOwnedBy(requesterID) {
		return "", apperrors.ErrForbidden.WithDetail("session does not belong to the requester")
	}

	if b.cache == nil {
		return b.render(ctx, sessionID)
	}

	raw, err := b.cache.GetOrLoadSafe(ctx, b.cacheKey(sessionID), contextCacheTTL, func() (interface{}, error) {
		block, err := b.render(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return block, nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return "", err
		}
		// 缓存故障降级为直接读库
		logger.Warn(ctx, "context cache unavailable, loading directly", "session_id", sessionID, "error", err.Error())
		return b.render(ctx, sessionID)
	}

	var block string
	if err := json.Unmarshal(raw, &block); err != nil {
		logger.Warn(ctx, "malformed cached context block, loading directly", "session_id", sessionID)
		return b.render(ctx, sessionID)
	}
	return block, nil
}

func (b *ContextBuilder) cacheKey(sessionID string) string {
	return fmt.Sprintf("ctx:session:%s:d%d", sessionID, b.depth)
}

// render 读取最近轮次并渲染为上下文块，轮次按时间升序排列
func (b *ContextBuilder) render(ctx context.Context, sessionID string) (string, error) {
	turns, err := b.turns.ListRecent(ctx, sessionID, b.depth)
	if err != nil {
		return "", apperrors.ErrStorageUnavailable.WithError(err)
	}

	// 仓储按创建时间倒序返回，渲染前翻转为时间升序
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return renderTurns(turns), nil
}

// renderTurns 把轮次序列渲染为三行记录，记录之间以空行分隔
func renderTurns(turns []*entity.Turn) string {
	records := make([]string, 0, len(turns))
	for _, t := range turns {
		records = append(records, fmt.Sprintf("Prompt: %s\nJSX: %s\nCSS: %s", t.Prompt, t.ComponentSource, t.StyleSource))
	}
	return strings.Join(records, "\n\n")
}
