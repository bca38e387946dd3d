package retrieval

import (
	"context"
	"errors"
	"hash/fnv"
	"sync/atomic"
	"testing"

	"github.com/hukukai/lexcore/internal/domain"
	"github.com/hukukai/lexcore/internal/domain/document"
)

const hashDims = 1024

// hashEmbedder projects token counts into fixed buckets, so its cosine tracks
// term overlap closely and is deterministic.
type hashEmbedder struct {
	calls atomic.Int32
}

func (e *hashEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls.Add(1)
	vec := make([]float32, hashDims)
	for tok, n := range Tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%hashDims] += float32(n)
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: len(text)}, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New("provider down")
}

// blockingEmbedder waits for cancellation.
type blockingEmbedder struct{}

func (blockingEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	<-ctx.Done()
	return domain.EmbeddingResult{}, ctx.Err()
}

func mustDoc(t *testing.T, id, title, content, category string) document.Document {
	t.Helper()
	d, err := document.New(id, title, content, category, nil)
	if err != nil {
		t.Fatalf("document.New(%q): %v", id, err)
	}
	return d
}

func testCorpus(t *testing.T) []document.Document {
	t.Helper()
	return []document.Document{
		mustDoc(t, "trafik-1", "2918 SAYILI KARAYOLLARI TRAFİK KANUNU",
			"Trafik idari para cezasına karşı tebliğden itibaren 15 gün içinde sulh ceza hakimliğine başvurulur.",
			"trafik_cezasi"),
		mustDoc(t, "kira-1", "6098 SAYILI TÜRK BORÇLAR KANUNU - Kiracının Tahliyesi",
			"Kiracı kira bedelini ödemezse kiraya veren ihtar sonrası tahliye davası açabilir. Tahliye kararı icra dairesince uygulanır.",
			"kira"),
		mustDoc(t, "is-1", "4857 SAYILI İŞ KANUNU",
			"İşçi, fesih bildiriminin tebliğinden itibaren bir ay içinde arabulucuya başvurmak zorundadır.",
			"is_hukuku"),
		mustDoc(t, "tuketici-1", "6502 SAYILI TÜKETİCİNİN KORUNMASI HAKKINDA KANUN",
			"Ayıplı mal satın alan tüketici malın değiştirilmesini veya bedel iadesini talep edebilir.",
			"tuketici_haklari"),
	}
}

const evictionQuery = "ev sahibi kira ödemedim diye tahliye davası açtı, tahliye ne zaman olur"
