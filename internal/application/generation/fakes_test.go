package generation

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"ui-forge-api/internal/domain/entity"
	"ui-forge-api/internal/domain/repository"
)

type fakeSessionRepo struct {
	sessions map[string]*entity.Session
}

func newFakeSessionRepo(sessions ...*entity.Session) *fakeSessionRepo {
	m := make(map[string]*entity.Session)
	for _, s := range sessions {
		m[s.ID] = s
	}
	return &fakeSessionRepo{sessions: m}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id string) (*entity.Session, error) {
	return f.sessions[id], nil
}

func (f *fakeSessionRepo) ListByOwner(_ context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Session], error) {
	var items []*entity.Session
	for _, s := range f.sessions {
		if s.OwnerID == ownerID {
			items = append(items, s)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

func (f *fakeSessionRepo) UpdateTitle(_ context.Context, id, title string) error {
	if s, ok := f.sessions[id]; ok {
		s.Title = title
	}
	return nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

type fakeTurnRepo struct {
	turns []*entity.Turn
	err   error
}

func (f *fakeTurnRepo) Create(_ context.Context, turn *entity.Turn) error {
	if f.err != nil {
		return f.err
	}
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	f.turns = append(f.turns, turn)
	return nil
}

// ListRecent 按创建时间倒序返回，模拟真实仓储的排序方向
func (f *fakeTurnRepo) ListRecent(_ context.Context, sessionID string, limit int) ([]*entity.Turn, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*entity.Turn
	for _, t := range f.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTurnRepo) ListBySession(_ context.Context, sessionID string) ([]*entity.Turn, error) {
	var out []*entity.Turn
	for _, t := range f.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTurnRepo) LatestCreatedAt(_ context.Context, sessionID string) (*time.Time, error) {
	var latest *time.Time
	for _, t := range f.turns {
		if t.SessionID != sessionID {
			continue
		}
		if latest == nil || t.CreatedAt.After(*latest) {
			ts := t.CreatedAt
			latest = &ts
		}
	}
	return latest, nil
}

func (f *fakeTurnRepo) DeleteBySession(_ context.Context, sessionID string) error {
	var kept []*entity.Turn
	for _, t := range f.turns {
		if t.SessionID != sessionID {
			kept = append(kept, t)
		}
	}
	f.turns = kept
	return nil
}

type fakeCompleter struct {
	response        string
	err             error
	calls           int
	lastInstruction string
}

func (f *fakeCompleter) Complete(_ context.Context, instruction string) (string, error) {
	f.calls++
	f.lastInstruction = instruction
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeCompleter) Model() string { return "test-model" }

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLock struct {
	busy     bool
	err      error
	acquires int
	releases int
}

func (f *fakeLock) Acquire(_ context.Context, _ string) (func(context.Context) error, bool, error) {
	f.acquires++
	if f.err != nil {
		return nil, false, f.err
	}
	if f.busy {
		return nil, false, nil
	}
	return func(context.Context) error {
		f.releases++
		return nil
	}, true, nil
}

type fakePreview struct {
	epoch     uint64
	artifacts []entity.Artifact
}

func (f *fakePreview) OnArtifact(_ string, artifact entity.Artifact) (uint64, bool) {
	f.artifacts = append(f.artifacts, artifact)
	f.epoch++
	return f.epoch, true
}
