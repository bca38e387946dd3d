package corpus

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hukukai/lexcore/internal/domain/document"
)

const explicitCorpus = `id: 1
baslik: 6098 SAYILI TÜRK BORÇLAR KANUNU
icerik: Kiracı, kira bedelini ödemezse tahliye davası açılabilir.
kategori: kira
---
id: 2
baslik: 2918 SAYILI KTK
icerik: Trafik cezasına tebliğden itibaren 15 gün içinde itiraz edilir.
kategori: trafik_cezasi
madde: 116
---
id: 3
baslik: İçeriği olmayan kayıt
kategori: kira
---

---
`

const implicitCorpus = `id: 1
baslik: 6098 SAYILI TÜRK BORÇLAR KANUNU
icerik: Kiracı, kira bedelini ödemezse tahliye davası açılabilir.
kategori: kira

id: 2
baslik: 2918 SAYILI KTK
icerik: Trafik cezasına tebliğden itibaren 15 gün içinde itiraz edilir.
kategori: trafik_cezasi
madde: 116
id: 3
baslik: İçeriği olmayan kayıt
kategori: kira
`

func TestParse_ExplicitSeparator(t *testing.T) {
	docs := Parse(explicitCorpus)
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID() != "1" || docs[1].ID() != "2" {
		t.Errorf("unexpected order: %q, %q", docs[0].ID(), docs[1].ID())
	}
	if docs[1].Extra()["madde"] != "116" {
		t.Errorf("expected madde in Extra, got %v", docs[1].Extra())
	}
	if docs[0].Category() != "kira" {
		t.Errorf("Category() = %q", docs[0].Category())
	}
}

func TestParse_ImplicitIDConvention(t *testing.T) {
	docs := Parse(implicitCorpus)
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[1].Title() != "2918 SAYILI KTK" {
		t.Errorf("Title() = %q", docs[1].Title())
	}
}

func TestParse_ConventionsAgree(t *testing.T) {
	a := Parse(explicitCorpus)
	b := Parse(implicitCorpus)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("conventions disagree:\nexplicit: %+v\nimplicit: %+v", a, b)
	}
}

func TestParse_ValueWithColons(t *testing.T) {
	docs := Parse("id: x\nicerik: Saat 10:30'da: duruşma\nkaynak: https://mevzuat.gov.tr\n")
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Content() != "Saat 10:30'da: duruşma" {
		t.Errorf("Content() = %q", docs[0].Content())
	}
	if docs[0].Extra()["kaynak"] != "https://mevzuat.gov.tr" {
		t.Errorf("kaynak = %q", docs[0].Extra()["kaynak"])
	}
}

func TestParse_TrimsKeysAndValues(t *testing.T) {
	docs := Parse("  id :  7  \r\n icerik :   metin   \r\n")
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].ID() != "7" || docs[0].Content() != "metin" {
		t.Errorf("got id=%q content=%q", docs[0].ID(), docs[0].Content())
	}
}

func TestParse_EmptyContentDropped(t *testing.T) {
	docs := Parse("id: 1\nicerik:\n---\nid: 2\nicerik: dolu\n")
	if len(docs) != 1 || docs[0].ID() != "2" {
		t.Fatalf("expected only record 2, got %+v", docs)
	}
}

func TestParse_LinesWithoutColonIgnored(t *testing.T) {
	docs := Parse("id: 1\nserbest satır\nicerik: metin\n")
	if len(docs) != 1 || len(docs[0].Extra()) != 0 {
		t.Fatalf("unexpected parse: %+v", docs)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "   \n\n", "---\n---"} {
		if docs := Parse(raw); len(docs) != 0 {
			t.Errorf("Parse(%q) = %d docs, want 0", raw, len(docs))
		}
	}
}

func TestParse_Idempotent(t *testing.T) {
	first := Parse(explicitCorpus)
	second := Parse(explicitCorpus)
	if !reflect.DeepEqual(first, second) {
		t.Error("reparse must yield the identical sequence")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mevzuat.txt")
	if err := os.WriteFile(path, []byte(explicitCorpus), 0o600); err != nil {
		t.Fatal(err)
	}
	docs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 documents, got %d", len(docs))
	}
}

func TestLoadFile_Missing(t *testing.T) {
	docs, err := LoadFile(filepath.Join(t.TempDir(), "yok.txt"))
	if err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty corpus, got %d", len(docs))
	}
}

func TestStats(t *testing.T) {
	docs := []document.Document{
		document.Reconstruct("1", "", "a", "kira", nil, nil),
		document.Reconstruct("2", "", "b", "kira", nil, nil),
		document.Reconstruct("3", "", "c", "", nil, nil),
	}
	got := Stats(docs)
	if got["kira"] != 2 || got[""] != 1 {
		t.Errorf("Stats() = %v", got)
	}
}
