// Package corpus parses the flat legal-reference resource into documents.
//
// Records are either separated by explicit "---" lines, or, when no "---"
// occurs anywhere in the text, each line starting with "id:" opens a new
// record. Records are "key: value" lines; records without content are dropped.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hukukai/lexcore/internal/domain/document"
)

// Separator delimits records in the explicit convention.
const Separator = "---"

var idLineRegex = regexp.MustCompile(`(?m)^id:`)

// Parse turns raw corpus text into documents in load order.
func Parse(raw string) []document.Document {
	var docs []document.Document
	for _, rec := range splitRecords(raw) {
		fields := parseRecord(rec)
		if len(fields) == 0 {
			continue
		}
		doc, err := document.FromFields(fields)
		if err != nil {
			// no icerik: dropped by policy
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// LoadFile reads and parses a corpus file.
// A missing file yields an empty corpus and no error.
func LoadFile(path string) ([]document.Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Stats counts documents per category. Documents without a category count under "".
func Stats(docs []document.Document) map[string]int {
	out := make(map[string]int)
	for i := range docs {
		out[docs[i].Category()]++
	}
	return out
}

func splitRecords(raw string) []string {
	if !strings.Contains(raw, Separator) {
		raw = idLineRegex.ReplaceAllString(raw, Separator+"id:")
	}
	return strings.Split(raw, Separator)
}

func parseRecord(rec string) map[string]string {
	rec = strings.TrimSpace(rec)
	if rec == "" {
		return nil
	}
	fields := make(map[string]string)
	for _, line := range strings.Split(rec, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return fields
}
