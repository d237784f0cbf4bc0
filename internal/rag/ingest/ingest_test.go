package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
)

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"test.pdf", commonModels.PDF},
		{"DOC.DOCX", commonModels.DOCX},
		{"notes.txt", commonModels.DOCX},
		{"memo.rtf", commonModels.DOCX},
		{"index_doc.gob", commonModels.ERR},
		{"image.png", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestChunkPages_Metadata(t *testing.T) {
	pages := []rawPage{
		{Number: 1, Content: "Page one content."},
		{Number: 2, Content: "Page two content."},
	}

	entries, err := ChunkPages(pages, "manual.pdf")
	if err != nil {
		t.Fatalf("ChunkPages failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries (one per short page), got %d", len(entries))
	}

	first := entries[0]
	if first.Metadata["source"] != "manual.pdf" {
		t.Errorf("source got %q, want manual.pdf", first.Metadata["source"])
	}
	if first.Metadata["page_num"] != "1" || first.Metadata["chunk_order"] != "0" {
		t.Errorf("Positional metadata mismatch: %+v", first.Metadata)
	}
	if first.Id == "" || first.Id == entries[1].Id {
		t.Errorf("Entry ids must be unique and non-empty: %q vs %q", first.Id, entries[1].Id)
	}
}

func TestChunkPages_LongPageSplits(t *testing.T) {
	long := strings.Repeat("retrieval works on passages not pages ", 40)
	entries, err := ChunkPages([]rawPage{{Number: 3, Content: long}}, "big.pdf")
	if err != nil {
		t.Fatalf("ChunkPages failed: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("Expected the long page to split, got %d entries", len(entries))
	}
	for i, e := range entries {
		if e.Metadata["page_num"] != "3" {
			t.Errorf("Entry %d lost its page number: %+v", i, e.Metadata)
		}
	}
}

func TestChunkPages_SkipsWhitespaceOnly(t *testing.T) {
	entries, err := ChunkPages([]rawPage{
		{Number: 1, Content: "   \n\t  "},
		{Number: 2, Content: "real text"},
	}, "sparse.pdf")
	if err != nil {
		t.Fatalf("ChunkPages failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected blank page to be dropped, got %d entries", len(entries))
	}
	if entries[0].Metadata["page_num"] != "2" {
		t.Errorf("Surviving entry has wrong page: %+v", entries[0].Metadata)
	}
}

func TestBatchEntries_ReadsDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.txt":     "alpha document text",
		"b.txt":     "beta document text",
		"skip.png":  "not a document",
		"index.gob": "binary artifact, must be ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := BatchEntries(dir)
	if err != nil {
		t.Fatalf("BatchEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries from the two txt files, got %d", len(entries))
	}
	sources := map[string]bool{}
	for _, e := range entries {
		sources[e.Metadata["source"]] = true
	}
	if !sources["a.txt"] || !sources["b.txt"] {
		t.Errorf("Sources missing: %+v", sources)
	}
}

func TestBatchEntries_MissingDirectory(t *testing.T) {
	if _, err := BatchEntries(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("Expected error for missing batch directory")
	}
}

func TestBatchEntries_EmptyDirectory(t *testing.T) {
	entries, err := BatchEntries(t.TempDir())
	if err != nil {
		t.Fatalf("BatchEntries failed on empty dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}
