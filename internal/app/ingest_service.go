package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

// Ingest runs the full document pipeline for one saved upload: document
// row in processing, per-page extraction, chunking, bulk chunk persist,
// then ready with final counts. Any failure lands the document in failed
// with the error text stored. The temp file is removed on every path.
// Callers dispatch this off the request path.
func (s *StudentService) Ingest(_ context.Context, input IngestInput) *IngestResult {
	defer func() {
		if err := os.Remove(input.FilePath); err != nil && !os.IsNotExist(err) {
			s.log.WithError(err).WithField("path", input.FilePath).Warn("remove uploaded temp file failed")
		}
	}()

	doc := &model.Document{
		ChatbotID:        input.ChatbotID,
		Filename:         input.StoredFilename,
		OriginalFilename: input.OriginalFilename,
		FilePath:         input.FilePath,
		FileSize:         input.FileSize,
		Status:           model.DocumentStatusProcessing,
	}
	if err := s.docs.Create(doc); err != nil {
		s.log.WithError(err).Error("create document record failed")
		return &IngestResult{Status: "error", Error: "could not record document"}
	}

	fail := func(reason string) *IngestResult {
		if err := s.docs.MarkFailed(doc.ID, reason); err != nil {
			s.log.WithError(err).Error("mark document failed failed")
		}
		return &IngestResult{Status: "error", DocumentID: doc.ID, Error: reason}
	}

	f, err := os.Open(input.FilePath)
	if err != nil {
		return fail(fmt.Sprintf("open uploaded file: %v", err))
	}
	pages, err := s.extract(f)
	_ = f.Close()
	if err != nil {
		return fail(fmt.Sprintf("extract text: %v", err))
	}

	nonEmpty := 0
	for _, p := range pages {
		if p != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return fail("no content extracted from PDF")
	}

	pageChunks := s.chunker.Chunk(MarkPages(pages))
	if len(pageChunks) == 0 {
		return fail("no chunks produced from extracted text")
	}

	chunks := make([]model.DocumentChunk, len(pageChunks))
	for i, pc := range pageChunks {
		chunks[i] = model.DocumentChunk{
			DocumentID:  doc.ID,
			ChunkIndex:  i,
			TextContent: pc.Text,
			PageNumber:  pc.Page,
		}
	}
	// Single batch insert: either every chunk lands or none do.
	if err := s.chunks.CreateBatch(chunks); err != nil {
		return fail(fmt.Sprintf("persist chunks: %v", err))
	}

	if err := s.docs.MarkReady(doc.ID, len(pages), len(chunks), time.Now()); err != nil {
		return fail(fmt.Sprintf("finalize document: %v", err))
	}

	s.log.WithFields(map[string]interface{}{
		"document_id": doc.ID,
		"filename":    input.OriginalFilename,
		"pages":       len(pages),
		"chunks":      len(chunks),
	}).Info("document ingested")

	return &IngestResult{
		Status:     "success",
		DocumentID: doc.ID,
		Pages:      len(pages),
		Chunks:     len(chunks),
		Message:    fmt.Sprintf("Successfully processed %s", input.OriginalFilename),
	}
}

// ListDocuments returns the student knowledge base contents, newest first.
func (s *StudentService) ListDocuments() ([]model.Document, error) {
	return s.docs.ListByChatbotID(s.chatbotID)
}

// DeleteDocument removes a document and cascades to its chunks.
func (s *StudentService) DeleteDocument(id uint) error {
	doc, err := s.docs.GetByID(id)
	if err != nil {
		return err
	}
	if doc == nil || doc.ChatbotID != s.chatbotID {
		return ErrDocumentNotFound
	}
	if err := s.chunks.DeleteByDocumentID(doc.ID); err != nil {
		return err
	}
	return s.docs.Delete(doc.ID)
}
