package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

type mockCorpus struct {
	docs, vectors int
}

func (m mockCorpus) Len() int         { return m.docs }
func (m mockCorpus) VectorCount() int { return m.vectors }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(mockCorpus{docs: 10, vectors: 10}, &mockPinger{}, &mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"corpus", "cache", "embedding"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
	if r.Documents != 10 || r.Vectors != 10 {
		t.Errorf("unexpected corpus stats: %d/%d", r.Documents, r.Vectors)
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(mockCorpus{docs: 1}, &mockPinger{err: errors.New("conn refused")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cache"] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks["cache"])
	}
	if _, ok := r.Checks["embedding"]; ok {
		t.Error("embedding check must be absent when not configured")
	}
}

func TestCheck_EmbeddingError(t *testing.T) {
	svc := New(mockCorpus{docs: 1}, nil, &mockEmbeddingChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks["embedding"])
	}
}

func TestCheck_EmptyCorpus(t *testing.T) {
	svc := New(mockCorpus{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["corpus"] != CheckEmpty {
		t.Errorf("expected corpus %q, got %q", CheckEmpty, r.Checks["corpus"])
	}
}

func TestCheck_NothingConfigured(t *testing.T) {
	r := New(nil, nil, nil).Check(context.Background())
	if r.Status != Healthy || len(r.Checks) != 0 {
		t.Errorf("expected healthy with no checks, got %+v", r)
	}
}
