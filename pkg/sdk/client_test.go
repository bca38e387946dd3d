package lexcore

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const testCorpus = `id: 1
baslik: 6098 SAYILI TÜRK BORÇLAR KANUNU
icerik: Kiracı kira bedelini ödemezse kiraya veren tahliye davası açabilir.
kategori: kira
---
id: 2
baslik: 2918 SAYILI KARAYOLLARI TRAFİK KANUNU
icerik: Trafik cezasına tebliğden itibaren 15 gün içinde sulh ceza hakimliğine itiraz edilir.
kategori: trafik_cezasi
---
id: 3
baslik: 6502 SAYILI TÜKETİCİNİN KORUNMASI HAKKINDA KANUN
icerik: Tüketici on dört gün içinde cayma hakkını kullanabilir.
kategori: tuketici_haklari
`

const testRules = `{
  "trafik_cezasi": {
    "itiraz_suresi": {"gun": 15, "uyari_mesaji": "İtiraz süresi {fark_gun} gün önce başladı."}
  },
  "tuketici_haklari": {
    "parasal_sinir": {"2025_limit_ilce": 104000, "uyari_mesaji": "{deger} TL, {limit_ilce} TL sınırını aşıyor; Mahkeme yolu."}
  },
  "kira": "bozuk"
}`

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.Local)

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

// bucketEmbedder hashes lower-cased words into buckets, so cosine tracks
// word overlap.
func bucketEmbedder(calls *atomic.Int32) *mockEmbedder {
	return &mockEmbedder{fn: func(_ context.Context, text string) (EmbeddingResult, error) {
		calls.Add(1)
		vec := make([]float32, 512)
		for _, w := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(strings.Trim(w, ".,")))
			vec[h.Sum32()%512]++
		}
		return EmbeddingResult{Embedding: vec, TotalTokens: len(text)}, nil
	}}
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithCorpusText(testCorpus),
		WithRulesData([]byte(testRules)),
		WithClock(func() time.Time { return fixedNow }),
	}
	c, err := New(context.Background(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_Empty(t *testing.T) {
	c, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	st := c.Stats()
	if st.Documents != 0 || st.RuleCategories != 0 || st.Backend != BackendTermFrequency {
		t.Errorf("empty client stats: %+v", st)
	}
	if got := c.BestMatchSummary(context.Background(), "kiracı tahliye", ""); !strings.Contains(got, "bulunamadı") {
		t.Errorf("empty corpus summary: %q", got)
	}
}

func TestNew_MissingFiles(t *testing.T) {
	c, err := New(context.Background(),
		WithCorpusFile("testdata/does-not-exist.txt"),
		WithRulesFile("testdata/does-not-exist.json"),
	)
	if err != nil {
		t.Fatalf("missing files must not fail: %v", err)
	}
	if c.Stats().Documents != 0 {
		t.Error("expected empty corpus")
	}
}

func TestStats(t *testing.T) {
	st := newTestClient(t).Stats()

	if st.Documents != 3 || st.Vectors != 0 {
		t.Errorf("documents/vectors = %d/%d", st.Documents, st.Vectors)
	}
	if st.ByCategory["kira"] != 1 || st.ByCategory["trafik_cezasi"] != 1 {
		t.Errorf("by category: %v", st.ByCategory)
	}
	if st.RuleCategories != 2 {
		t.Errorf("rule categories = %d, want 2 (kira entry is not a mapping)", st.RuleCategories)
	}
	if st.SkippedRules != 1 {
		t.Errorf("skipped = %d, want 1", st.SkippedRules)
	}
}

func TestSearch_TermFrequency(t *testing.T) {
	c := newTestClient(t)
	resp := c.Search(context.Background(), "kiracı evden çıkmıyor tahliye", "kira")

	if resp.Backend != BackendTermFrequency {
		t.Errorf("backend = %q", resp.Backend)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "1" {
		t.Fatalf("results: %+v", resp.Results)
	}
	if !strings.HasPrefix(resp.Results[0].Title, "6098 SAYILI") {
		t.Errorf("title = %q", resp.Results[0].Title)
	}
}

func TestSearch_ResultExtraIsACopy(t *testing.T) {
	c := newTestClient(t, WithCorpusText(`id: 1
baslik: 6098 SAYILI TÜRK BORÇLAR KANUNU
icerik: Kiracı kira bedelini ödemezse kiraya veren tahliye davası açabilir.
kategori: kira
madde: 315
`))
	ctx := context.Background()

	first := c.Search(ctx, "kiracı tahliye davası", "kira")
	if len(first.Results) != 1 {
		t.Fatalf("results: %+v", first.Results)
	}
	first.Results[0].Extra["madde"] = "999"
	first.Results[0].Extra["yeni"] = "alan"

	second := c.Search(ctx, "kiracı tahliye davası", "kira")
	if got := second.Results[0].Extra["madde"]; got != "315" {
		t.Errorf("second search madde = %q, want 315", got)
	}
	if _, ok := second.Results[0].Extra["yeni"]; ok {
		t.Error("key added by caller leaked into the corpus")
	}
}

func TestSearch_ShortQuery(t *testing.T) {
	resp := newTestClient(t).Search(context.Background(), "ki", "")
	if resp.Backend != "" || len(resp.Results) != 0 {
		t.Errorf("short query: %+v", resp)
	}
}

func TestSearch_Embedding(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, WithEmbedder(bucketEmbedder(&calls)), WithConcurrency(2))

	if got := calls.Load(); got != 3 {
		t.Errorf("load-time embeddings = %d, want 3", got)
	}
	st := c.Stats()
	if st.Vectors != 3 || st.Backend != BackendEmbedding {
		t.Errorf("stats: %+v", st)
	}

	resp := c.Search(context.Background(), "kiracı kira bedelini ödemezse tahliye davası", "")
	if resp.Backend != BackendEmbedding {
		t.Errorf("backend = %q", resp.Backend)
	}
	if len(resp.Results) == 0 || resp.Results[0].ID != "1" {
		t.Fatalf("results: %+v", resp.Results)
	}
}

func TestSearch_EmbeddingFallback(t *testing.T) {
	var calls atomic.Int32
	healthy := bucketEmbedder(&calls)
	var down atomic.Bool
	emb := &mockEmbedder{fn: func(ctx context.Context, text string) (EmbeddingResult, error) {
		if down.Load() {
			return EmbeddingResult{}, errors.New("provider down")
		}
		return healthy.fn(ctx, text)
	}}

	reg := prometheus.NewRegistry()
	c := newTestClient(t, WithEmbedder(emb), WithPrometheus(reg))
	down.Store(true)

	resp := c.Search(context.Background(), "kiracı evden çıkmıyor tahliye", "kira")
	if resp.Backend != BackendTermFrequency {
		t.Fatalf("expected fallback, backend = %q", resp.Backend)
	}
	if len(resp.Results) != 1 {
		t.Errorf("fallback results: %+v", resp.Results)
	}
	if got := testutil.ToFloat64(c.obs.metrics.fallbacks.WithLabelValues("no_query_vector")); got != 1 {
		t.Errorf("fallback counter = %v, want 1", got)
	}
}

func TestBestMatchSummary(t *testing.T) {
	c := newTestClient(t)
	got := c.BestMatchSummary(context.Background(), "kiracı evden çıkmıyor tahliye", "kira")

	want := "KANUN: 6098 SAYILI TÜRK BORÇLAR KANUNU\nİÇERİK: Kiracı kira bedelini ödemezse kiraya veren tahliye davası açabilir."
	if got != want {
		t.Errorf("summary:\n got %q\nwant %q", got, want)
	}
	if got := c.BestMatchSummary(context.Background(), "ab", "kira"); got != "" {
		t.Errorf("short query summary = %q, want empty", got)
	}
}

func TestEvaluate(t *testing.T) {
	c := newTestClient(t)

	ev := c.Evaluate("tuketici_haklari", "Telefonu 150.000 TL'ye satın aldım.", "")
	if len(ev.Warnings) != 1 || ev.Warnings[0].Kind != "parasal_sinir" {
		t.Fatalf("warnings: %+v", ev.Warnings)
	}
	if !strings.Contains(ev.Summary, "104.000 TL") || !strings.Contains(ev.Summary, "Mahkeme") {
		t.Errorf("summary = %q", ev.Summary)
	}

	if ev := c.Evaluate("tuketici_haklari", "Ürün bedeli 50.000 TL.", ""); ev.Summary != "" {
		t.Errorf("below limit: %q", ev.Summary)
	}
}

func TestEvaluate_OCRDate(t *testing.T) {
	c := newTestClient(t)
	date := fixedNow.AddDate(0, 0, -60).Format("02.01.2006")

	ev := c.Evaluate("trafik_cezasi", "İtiraz ediyorum.", "Tebellüğ Tarihi: "+date)
	if !strings.Contains(ev.Summary, "60 gün") {
		t.Errorf("summary = %q", ev.Summary)
	}
}

func TestAnalyze(t *testing.T) {
	c := newTestClient(t)

	a, err := c.Analyze(context.Background(), "tuketici_haklari", "Telefonu 150.000 TL'ye aldım, cayma hakkı", "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Warnings) != 1 {
		t.Errorf("warnings: %+v", a.Warnings)
	}
	if !strings.HasPrefix(a.Reference, "KANUN: 6502") {
		t.Errorf("reference = %q", a.Reference)
	}
	if !strings.HasPrefix(a.Context, "KULLANICI: Telefonu") || !strings.Contains(a.Context, "\nRAG: KANUN: 6502") {
		t.Errorf("context = %q", a.Context)
	}
}

func TestAnalyze_InvalidInput(t *testing.T) {
	c := newTestClient(t)
	for _, tc := range []struct{ name, category, text string }{
		{"empty category", "", "metin"},
		{"unknown category", "uzay", "metin"},
		{"empty text", "kira", "  "},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Analyze(context.Background(), tc.category, tc.text, "")
			if !IsInvalidInput(err) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	cats := newTestClient(t).Categories()
	if len(cats) != 8 {
		t.Fatalf("categories = %d, want 8", len(cats))
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1].ID >= cats[i].ID {
			t.Errorf("not sorted at %d: %s >= %s", i, cats[i-1].ID, cats[i].ID)
		}
	}
}

func TestEmbedderAdapter_Error(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, errors.New("provider down")
		},
	}

	adapter := &embedderAdapter{inner: mock}
	if _, err := adapter.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from adapter")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	WithCorpusFile("a.txt").apply(cfg)
	WithRulesFile("b.json").apply(cfg)
	WithEmbedTimeout(time.Second).apply(cfg)
	WithConcurrency(7).apply(cfg)
	if cfg.corpusPath != "a.txt" || cfg.rulesPath != "b.json" {
		t.Errorf("paths = %q, %q", cfg.corpusPath, cfg.rulesPath)
	}
	if cfg.embedTimeout != time.Second || cfg.concurrency != 7 {
		t.Errorf("embedding = %v, %d", cfg.embedTimeout, cfg.concurrency)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
	obs.warn("test")
	obs.info("test")
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("search", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("analyze", time.Now(), errors.New("fail"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "lexcore_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("lexcore_sdk_operations_total not found")
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newTestClient(t, WithPrometheus(reg))
	second := newTestClient(t, WithPrometheus(reg))

	first.Evaluate("tuketici_haklari", "200.000 TL", "")
	second.Evaluate("tuketici_haklari", "300.000 TL", "")

	got := testutil.ToFloat64(second.obs.metrics.warnings.WithLabelValues("tuketici_haklari", "parasal_sinir"))
	if got != 2 {
		t.Errorf("shared warning counter = %v, want 2", got)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"), "category", "kira")
}
