package preview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui-forge-api/internal/domain/entity"
)

func artifact(jsx, css string) entity.Artifact {
	return entity.Artifact{ComponentSource: jsx, StyleSource: css}
}

func TestReconciler_InitialStateIsPlaceholder(t *testing.T) {
	hub := NewHub(0)

	state := hub.State("sess-1")

	assert.True(t, state.Placeholder)
	assert.Equal(t, uint64(0), state.RenderEpoch)
	assert.Equal(t, PlaceholderArtifact, state.Artifact)
}

func TestReconciler_FirstArtifactBumpsEpoch(t *testing.T) {
	hub := NewHub(0)

	epoch, remounted := hub.OnArtifact("sess-1", artifact("jsx", "css"))

	assert.Equal(t, uint64(1), epoch)
	assert.True(t, remounted)

	state := hub.State("sess-1")
	assert.False(t, state.Placeholder)
	assert.Equal(t, artifact("jsx", "css"), state.Artifact)
}

func TestReconciler_IdenticalArtifactDoesNotRemount(t *testing.T) {
	hub := NewHub(0)
	hub.OnArtifact("sess-1", artifact("jsx", "css"))

	epoch, remounted := hub.OnArtifact("sess-1", artifact("jsx", "css"))

	assert.Equal(t, uint64(1), epoch)
	assert.False(t, remounted)
}

func TestReconciler_ChangedFieldRemounts(t *testing.T) {
	hub := NewHub(0)
	hub.OnArtifact("sess-1", artifact("jsx", "css"))

	epoch, remounted := hub.OnArtifact("sess-1", artifact("jsx", "css v2"))

	assert.Equal(t, uint64(2), epoch)
	assert.True(t, remounted)
}

func TestReconciler_SessionsAreIndependent(t *testing.T) {
	hub := NewHub(0)
	hub.OnArtifact("sess-1", artifact("jsx", "css"))

	epoch, remounted := hub.OnArtifact("sess-2", artifact("jsx", "css"))

	assert.Equal(t, uint64(1), epoch)
	assert.True(t, remounted)
}

func TestSubscribe_ReceivesCurrentStateImmediately(t *testing.T) {
	hub := NewHub(0)
	hub.OnArtifact("sess-1", artifact("jsx", "css"))

	events, cancel := hub.Subscribe("sess-1")
	defer cancel()

	select {
	case ev := <-events:
		assert.Equal(t, "sess-1", ev.SessionID)
		assert.Equal(t, uint64(1), ev.RenderEpoch)
		assert.Equal(t, artifact("jsx", "css"), ev.Artifact)
	case <-time.After(time.Second):
		t.Fatal("expected an initial snapshot event")
	}
}

func TestSubscribe_ReceivesRemountEvents(t *testing.T) {
	hub := NewHub(0)
	events, cancel := hub.Subscribe("sess-1")
	defer cancel()
	<-events // 初始快照

	hub.OnArtifact("sess-1", artifact("jsx", "css"))

	select {
	case ev := <-events:
		assert.Equal(t, uint64(1), ev.RenderEpoch)
		assert.False(t, ev.Placeholder)
	case <-time.After(time.Second):
		t.Fatal("expected a remount event")
	}
}

func TestSubscribe_SlowSubscriberKeepsLatestEvent(t *testing.T) {
	hub := NewHub(0)
	events, cancel := hub.Subscribe("sess-1")
	defer cancel()
	// 不读初始快照，缓冲区已满

	hub.OnArtifact("sess-1", artifact("v1", "c"))
	hub.OnArtifact("sess-1", artifact("v2", "c"))

	select {
	case ev := <-events:
		assert.Equal(t, uint64(2), ev.RenderEpoch)
		assert.Equal(t, "v2", ev.Artifact.ComponentSource)
	case <-time.After(time.Second):
		t.Fatal("expected the latest event to be retained")
	}
}

func TestSubscribe_DebounceCoalescesBursts(t *testing.T) {
	hub := NewHub(20 * time.Millisecond)
	events, cancel := hub.Subscribe("sess-1")
	defer cancel()
	<-events

	// 去抖窗口内的连续推进只触发一次广播，且携带最终态
	hub.OnArtifact("sess-1", artifact("v1", "c"))
	hub.OnArtifact("sess-1", artifact("v2", "c"))
	hub.OnArtifact("sess-1", artifact("v3", "c"))

	select {
	case ev := <-events:
		assert.Equal(t, uint64(3), ev.RenderEpoch)
		assert.Equal(t, "v3", ev.Artifact.ComponentSource)
	case <-time.After(time.Second):
		t.Fatal("expected a coalesced event after the debounce window")
	}

	select {
	case ev := <-events:
		t.Fatalf("expected no further events, got epoch %d", ev.RenderEpoch)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDrop_ResetsSessionState(t *testing.T) {
	hub := NewHub(0)
	hub.OnArtifact("sess-1", artifact("jsx", "css"))

	hub.Drop("sess-1")

	state := hub.State("sess-1")
	assert.True(t, state.Placeholder)
	assert.Equal(t, uint64(0), state.RenderEpoch)
}

func TestCancel_StopsDelivery(t *testing.T) {
	hub := NewHub(0)
	events, cancel := hub.Subscribe("sess-1")
	<-events
	cancel()

	hub.OnArtifact("sess-1", artifact("jsx", "css"))

	select {
	case _, ok := <-events:
		require.False(t, ok, "expected no event after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}
