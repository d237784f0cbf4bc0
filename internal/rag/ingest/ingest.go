// Package ingest turns the documents of an upload batch into index entries:
// extract per-page text, split into overlapping passages, attach source
// metadata. Embedding and storage belong to the index itself.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/DocChat/internal/adapter/utils"
	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/rag/chunker"
	"github.com/akolanti/DocChat/internal/rag/ragerr"
	"github.com/akolanti/DocChat/internal/rag/vectorindex"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var logger = logger_i.NewLogger("Document Ingestion")

// BatchEntries reads every supported document in batchDir and produces the
// entries for that batch's document index. Index artifacts living in the same
// directory are skipped. An empty batch yields an empty entry list, which is
// a legal (empty but searchable) index.
func BatchEntries(batchDir string) ([]vectorindex.BuildEntry, error) {
	dirEntries, err := os.ReadDir(batchDir)
	if err != nil {
		return nil, ragerr.New(ragerr.KindIngestion, "ingest.BatchEntries", err)
	}

	var all []vectorindex.BuildEntry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		docPath := filepath.Join(batchDir, de.Name())
		docType := getDocType(docPath)
		if docType == commonModels.ERR {
			logger.Debug("Skipping unsupported file", "file", de.Name())
			continue
		}

		pages, err := extractText(docPath, docType)
		if err != nil {
			return nil, ragerr.Newf(ragerr.KindIngestion, "ingest.BatchEntries", "extracting %s: %v", de.Name(), err)
		}
		logger.Debug("Extracted document", "file", de.Name(), "pages", len(pages))

		entries, err := ChunkPages(pages, de.Name())
		if err != nil {
			return nil, ragerr.New(ragerr.KindIngestion, "ingest.BatchEntries", err)
		}
		all = append(all, entries...)
	}
	logger.Debug("Prepared batch entries", "dir", batchDir, "entries", len(all))
	return all, nil
}

// ChunkPages splits each page and maps the chunks to index entries carrying
// the originating file, page number and per-page chunk order.
func ChunkPages(pages []rawPage, docName string) ([]vectorindex.BuildEntry, error) {
	var entries []vectorindex.BuildEntry
	for _, page := range pages {
		chunks, err := chunker.Split(page.Content, config.ChunkSize, config.ChunkOverlap)
		if err != nil {
			return nil, err
		}
		for i, text := range chunks {
			if strings.TrimSpace(text) == "" {
				continue
			}
			entries = append(entries, vectorindex.BuildEntry{
				Id:   utils.GetNewUUID(),
				Text: text,
				Metadata: map[string]string{
					"source":      docName,
					"page_num":    fmt.Sprintf("%d", page.Number),
					"chunk_order": fmt.Sprintf("%d", i),
				},
			})
		}
	}
	return entries, nil
}

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".txt", ".rtf":
		return commonModels.DOCX
	default:
		return commonModels.ERR
	}
}

func extractText(path string, contentType commonModels.DocType) ([]rawPage, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(path)
	case commonModels.DOCX:
		return extractdocxTxtRtf(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}
