package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

func writeTempUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.pdf")
	require.NoError(t, os.WriteFile(path, []byte("raw pdf bytes"), 0o644))
	return path
}

func newIngestService(t *testing.T, docs *fakeDocumentStore, chunks *fakeChunkStore, extract PageExtractor) *StudentService {
	t.Helper()
	svc := newTestStudentService(t, docs, chunks, &fakeLLM{}, &fakePublisher{})
	svc.extract = extract
	return svc
}

func TestIngestTwoPageDocument(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	svc := newIngestService(t, docs, chunks, func(io.Reader) ([]string, error) {
		return []string{"Enrollment opens March 1.", "Tuition is due April 15."}, nil
	})
	path := writeTempUpload(t)

	result := svc.Ingest(context.Background(), IngestInput{
		FilePath:         path,
		StoredFilename:   "abc.pdf",
		OriginalFilename: "handbook.pdf",
		FileSize:         13,
		ChatbotID:        1,
	})

	require.Equal(t, "success", result.Status)
	require.Equal(t, 2, result.Pages)
	require.Equal(t, 2, result.Chunks)

	doc, err := docs.GetByID(result.DocumentID)
	require.NoError(t, err)
	require.Equal(t, model.DocumentStatusReady, doc.Status)
	require.Equal(t, 2, doc.PageCount)
	require.Equal(t, 2, doc.ChunkCount)
	require.NotNil(t, doc.ProcessedAt)

	stored, err := chunks.ListByDocumentIDs([]uint{result.DocumentID})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, 1, stored[0].PageNumber)
	require.Equal(t, 2, stored[1].PageNumber)
	require.Equal(t, "Enrollment opens March 1.", stored[0].TextContent)

	for _, chunk := range stored {
		require.NotContains(t, chunk.TextContent, "--- Page", "markers must not leak into chunk text")
	}

	// The ingested document is immediately retrievable.
	retriever := NewLexicalRetriever(docs, chunks, 5)
	hits, err := retriever.Search("enrollment march", 1, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "handbook.pdf", hits[0].Filename)
	require.Equal(t, 1, hits[0].Chunk.PageNumber)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "temp file must be removed")
}

func TestIngestEmptyExtractionMarksFailed(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	svc := newIngestService(t, docs, chunks, func(io.Reader) ([]string, error) {
		return []string{"", ""}, nil
	})
	path := writeTempUpload(t)

	result := svc.Ingest(context.Background(), IngestInput{
		FilePath:         path,
		StoredFilename:   "abc.pdf",
		OriginalFilename: "scanned.pdf",
		ChatbotID:        1,
	})

	require.Equal(t, "error", result.Status)
	require.NotEmpty(t, result.Error)

	doc, err := docs.GetByID(result.DocumentID)
	require.NoError(t, err)
	require.Equal(t, model.DocumentStatusFailed, doc.Status)
	require.Equal(t, result.Error, doc.ProcessingError)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "temp file must be removed on failure too")
}

func TestIngestExtractorErrorMarksFailed(t *testing.T) {
	docs := newFakeDocumentStore()
	svc := newIngestService(t, docs, &fakeChunkStore{}, func(io.Reader) ([]string, error) {
		return nil, errors.New("corrupt xref table")
	})
	path := writeTempUpload(t)

	result := svc.Ingest(context.Background(), IngestInput{
		FilePath:         path,
		StoredFilename:   "abc.pdf",
		OriginalFilename: "broken.pdf",
		ChatbotID:        1,
	})

	require.Equal(t, "error", result.Status)
	require.Contains(t, result.Error, "corrupt xref table")

	doc, err := docs.GetByID(result.DocumentID)
	require.NoError(t, err)
	require.Equal(t, model.DocumentStatusFailed, doc.Status)
}

func TestIngestFailedDocumentsStayOutOfRetrieval(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	svc := newIngestService(t, docs, chunks, func(io.Reader) ([]string, error) {
		return []string{""}, nil
	})
	path := writeTempUpload(t)

	result := svc.Ingest(context.Background(), IngestInput{
		FilePath: path, StoredFilename: "x.pdf", OriginalFilename: "x.pdf", ChatbotID: 1,
	})
	require.Equal(t, "error", result.Status)

	ready, err := docs.ListReadyByChatbotID(1)
	require.NoError(t, err)
	require.Empty(t, ready)
}

func TestDeleteDocumentCascadesToChunks(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	svc := newTestStudentService(t, docs, chunks, &fakeLLM{}, &fakePublisher{})
	docID := seedReadyDocument(t, docs, chunks, 1, "handbook.pdf", "chunk one", "chunk two")

	require.NoError(t, svc.DeleteDocument(docID))

	doc, err := docs.GetByID(docID)
	require.NoError(t, err)
	require.Nil(t, doc)

	remaining, err := chunks.ListByDocumentIDs([]uint{docID})
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestDeleteDocumentUnknownOrForeignIsNotFound(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	svc := newTestStudentService(t, docs, chunks, &fakeLLM{}, &fakePublisher{})

	require.ErrorIs(t, svc.DeleteDocument(42), ErrDocumentNotFound)

	// A document that belongs to another chatbot is invisible.
	foreignID := seedReadyDocument(t, docs, chunks, 7, "other.pdf", "text")
	require.ErrorIs(t, svc.DeleteDocument(foreignID), ErrDocumentNotFound)
}
