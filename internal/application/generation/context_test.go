package generation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui-forge-api/internal/domain/entity"
	apperrors "ui-forge-api/pkg/errors"
)

func testSession(owner string) *entity.Session {
	return &entity.Session{
		ID:        "sess-1",
		OwnerID:   owner,
		Title:     "test",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func turnAt(sessionID, prompt, jsx, css string, at time.Time) *entity.Turn {
	return &entity.Turn{
		ID:              prompt,
		SessionID:       sessionID,
		Prompt:          prompt,
		ComponentSource: jsx,
		StyleSource:     css,
		CreatedAt:       at,
	}
}

func TestContextBuilder_SessionNotFound(t *testing.T) {
	builder := NewContextBuilder(newFakeSessionRepo(), &fakeTurnRepo{}, nil, 2)

	_, err := builder.Build(context.Background(), "missing", "user-1")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSessionNotFound, apperrors.AsAppError(err).Code)
}

func TestContextBuilder_WrongOwner(t *testing.T) {
	builder := NewContextBuilder(newFakeSessionRepo(testSession("owner-1")), &fakeTurnRepo{}, nil, 2)

	_, err := builder.Build(context.Background(), "sess-1", "intruder")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.AsAppError(err).Code)
}

func TestContextBuilder_EmptySession(t *testing.T) {
	builder := NewContextBuilder(newFakeSessionRepo(testSession("user-1")), &fakeTurnRepo{}, nil, 2)

	block, err := builder.Build(context.Background(), "sess-1", "user-1")

	require.NoError(t, err)
	assert.Empty(t, block)
}

func TestContextBuilder_BoundedAndChronological(t *testing.T) {
	base := time.Now()
	turns := &fakeTurnRepo{turns: []*entity.Turn{
		turnAt("sess-1", "p1", "j1", "c1", base),
		turnAt("sess-1", "p2", "j2", "c2", base.Add(time.Second)),
		turnAt("sess-1", "p3", "j3", "c3", base.Add(2*time.Second)),
	}}
	builder := NewContextBuilder(newFakeSessionRepo(testSession("user-1")), turns, nil, 2)

	block, err := builder.Build(context.Background(), "sess-1", "user-1")

	require.NoError(t, err)
	// 只含最近两条，且仓储倒序返回后重排为时间升序
	assert.Equal(t,
		"Prompt: p2\nJSX: j2\nCSS: c2\n\nPrompt: p3\nJSX: j3\nCSS: c3",
		block,
	)
}

func TestContextBuilder_IgnoresOtherSessions(t *testing.T) {
	base := time.Now()
	turns := &fakeTurnRepo{turns: []*entity.Turn{
		turnAt("sess-1", "mine", "j", "c", base),
		turnAt("sess-2", "other", "j", "c", base.Add(time.Second)),
	}}
	builder := NewContextBuilder(newFakeSessionRepo(testSession("user-1")), turns, nil, 2)

	block, err := builder.Build(context.Background(), "sess-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, "Prompt: mine\nJSX: j\nCSS: c", block)
}

func TestContextBuilder_CacheKeyMatchesInvalidationPrefix(t *testing.T) {
	builder := NewContextBuilder(newFakeSessionRepo(), &fakeTurnRepo{}, nil, 3)

	// 缓存失效按 ctx:session:<id> 前缀做模式删除，键必须落在该前缀下
	assert.True(t, strings.HasPrefix(builder.cacheKey("sess-1"), "ctx:session:sess-1"))
}

func TestContextBuilder_DefaultDepth(t *testing.T) {
	builder := NewContextBuilder(newFakeSessionRepo(), &fakeTurnRepo{}, nil, 0)

	assert.Equal(t, DefaultContextDepth, builder.Depth())
}
