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

const markedResponse = "Here you go.\n" +
	"// App.jsx\n" +
	"export default function Button() { return <button>Go</button>; }\n" +
	"// styles.css\n" +
	"button { color: red; }\n"

func newTestService(sessions *fakeSessionRepo, turns *fakeTurnRepo, completer *fakeCompleter, lock *fakeLock, preview *fakePreview) *Service {
	builder := NewContextBuilder(sessions, turns, nil, 2)
	var locker SessionLocker
	if lock != nil {
		locker = lock
	}
	var notifier PreviewNotifier
	if preview != nil {
		notifier = preview
	}
	return NewService(builder, NewPromptComposer(), completer, turns, fakeTx{}, locker, nil, notifier)
}

func TestGenerateInSession_PersistsTurnAndBumpsEpoch(t *testing.T) {
	sessions := newFakeSessionRepo(testSession("user-1"))
	turns := &fakeTurnRepo{}
	completer := &fakeCompleter{response: markedResponse}
	lock := &fakeLock{}
	preview := &fakePreview{}
	svc := newTestService(sessions, turns, completer, lock, preview)

	result, err := svc.GenerateInSession(context.Background(), "sess-1", "user-1", "make a red button")

	require.NoError(t, err)
	require.Len(t, turns.turns, 1)
	persisted := turns.turns[0]
	assert.Equal(t, "make a red button", persisted.Prompt)
	assert.Equal(t, "export default function Button() { return <button>Go</button>; }", persisted.ComponentSource)
	assert.Equal(t, "button { color: red; }", persisted.StyleSource)
	assert.Equal(t, uint64(1), result.RenderEpoch)
	assert.Len(t, preview.artifacts, 1)
	assert.Equal(t, 1, lock.acquires)
	assert.Equal(t, 1, lock.releases)
}

func TestGenerateInSession_IncludesRecentTurnsInInstruction(t *testing.T) {
	sessions := newFakeSessionRepo(testSession("user-1"))
	turns := &fakeTurnRepo{turns: []*entity.Turn{
		turnAt("sess-1", "earlier prompt", "earlier jsx", "earlier css", time.Now()),
	}}
	completer := &fakeCompleter{response: markedResponse}
	svc := newTestService(sessions, turns, completer, &fakeLock{}, &fakePreview{})

	_, err := svc.GenerateInSession(context.Background(), "sess-1", "user-1", "now make it blue")

	require.NoError(t, err)
	assert.Contains(t, completer.lastInstruction, "Prompt: earlier prompt")
	assert.Contains(t, completer.lastInstruction, "JSX: earlier jsx")
	assert.Contains(t, completer.lastInstruction, `"now make it blue"`)
}

func TestGenerateInSession_EmptyPrompt(t *testing.T) {
	completer := &fakeCompleter{response: markedResponse}
	svc := newTestService(newFakeSessionRepo(testSession("user-1")), &fakeTurnRepo{}, completer, &fakeLock{}, &fakePreview{})

	_, err := svc.GenerateInSession(context.Background(), "sess-1", "user-1", "   ")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
	assert.Zero(t, completer.calls)
}

func TestGenerateInSession_SessionBusy(t *testing.T) {
	completer := &fakeCompleter{response: markedResponse}
	lock := &fakeLock{busy: true}
	svc := newTestService(newFakeSessionRepo(testSession("user-1")), &fakeTurnRepo{}, completer, lock, &fakePreview{})

	_, err := svc.GenerateInSession(context.Background(), "sess-1", "user-1", "a button")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSessionBusy, apperrors.AsAppError(err).Code)
	assert.Zero(t, completer.calls)
}

func TestGenerateInSession_ForbiddenBeforeUpstreamCall(t *testing.T) {
	completer := &fakeCompleter{response: markedResponse}
	svc := newTestService(newFakeSessionRepo(testSession("owner-1")), &fakeTurnRepo{}, completer, &fakeLock{}, &fakePreview{})

	_, err := svc.GenerateInSession(context.Background(), "sess-1", "intruder", "a button")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.AsAppError(err).Code)
	assert.Zero(t, completer.calls)
}

func TestGenerateInSession_EmptyArtifactNotPersisted(t *testing.T) {
	turns := &fakeTurnRepo{}
	preview := &fakePreview{}
	completer := &fakeCompleter{response: "no markers in this text at all"}
	svc := newTestService(newFakeSessionRepo(testSession("user-1")), turns, completer, &fakeLock{}, preview)

	_, err := svc.GenerateInSession(context.Background(), "sess-1", "user-1", "a button")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmptyOutput, apperrors.AsAppError(err).Code)
	assert.Empty(t, turns.turns)
	assert.Empty(t, preview.artifacts)
}

func TestGenerateInSession_UpstreamErrorNotPersisted(t *testing.T) {
	turns := &fakeTurnRepo{}
	completer := &fakeCompleter{err: apperrors.ErrUpstreamUnavailable}
	svc := newTestService(newFakeSessionRepo(testSession("user-1")), turns, completer, &fakeLock{}, &fakePreview{})

	_, err := svc.GenerateInSession(context.Background(), "sess-1", "user-1", "a button")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUpstreamUnavailable, apperrors.AsAppError(err).Code)
	assert.Empty(t, turns.turns)
}

func TestGenerateInSession_MonotonicCreatedAt(t *testing.T) {
	future := time.Now().Add(time.Hour)
	turns := &fakeTurnRepo{turns: []*entity.Turn{
		turnAt("sess-1", "old", "j", "c", future),
	}}
	completer := &fakeCompleter{response: markedResponse}
	svc := newTestService(newFakeSessionRepo(testSession("user-1")), turns, completer, &fakeLock{}, &fakePreview{})

	result, err := svc.GenerateInSession(context.Background(), "sess-1", "user-1", "a button")

	require.NoError(t, err)
	assert.True(t, result.Turn.CreatedAt.After(future))
}

func TestGenerateInSession_ReleasesLockOnFailure(t *testing.T) {
	lock := &fakeLock{}
	completer := &fakeCompleter{err: apperrors.ErrUpstreamUnavailable}
	svc := newTestService(newFakeSessionRepo(testSession("user-1")), &fakeTurnRepo{}, completer, lock, &fakePreview{})

	_, err := svc.GenerateInSession(context.Background(), "sess-1", "user-1", "a button")

	require.Error(t, err)
	assert.Equal(t, 1, lock.releases)
}

func TestGenerateStandalone_ReturnsArtifactAndRawText(t *testing.T) {
	completer := &fakeCompleter{response: markedResponse}
	svc := newTestService(newFakeSessionRepo(), &fakeTurnRepo{}, completer, nil, nil)

	result, err := svc.GenerateStandalone(context.Background(), "previous attempt context", "a nav bar")

	require.NoError(t, err)
	assert.Equal(t, markedResponse, result.RawText)
	assert.True(t, strings.HasPrefix(result.Artifact.ComponentSource, "export default function Button"))
	assert.Equal(t, "button { color: red; }", result.Artifact.StyleSource)
	assert.Contains(t, completer.lastInstruction, "previous attempt context")
}

func TestGenerateStandalone_EmptyArtifactIsNotAnError(t *testing.T) {
	completer := &fakeCompleter{response: "chatter without any markers"}
	svc := newTestService(newFakeSessionRepo(), &fakeTurnRepo{}, completer, nil, nil)

	result, err := svc.GenerateStandalone(context.Background(), "", "a nav bar")

	require.NoError(t, err)
	assert.True(t, result.Artifact.IsEmpty())
	assert.Equal(t, "chatter without any markers", result.RawText)
}

func TestGenerateStandalone_EmptyPrompt(t *testing.T) {
	completer := &fakeCompleter{response: markedResponse}
	svc := newTestService(newFakeSessionRepo(), &fakeTurnRepo{}, completer, nil, nil)

	_, err := svc.GenerateStandalone(context.Background(), "", "")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
	assert.Zero(t, completer.calls)
}
