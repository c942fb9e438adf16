package app

import (
	"sort"
	"strings"
	"time"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

const defaultTopK = 5

// DocumentStore is the retriever's and pipeline's view of document rows.
type DocumentStore interface {
	Create(doc *model.Document) error
	GetByID(id uint) (*model.Document, error)
	ListByChatbotID(chatbotID uint) ([]model.Document, error)
	ListReadyByChatbotID(chatbotID uint) ([]model.Document, error)
	MarkReady(id uint, pageCount, chunkCount int, processedAt time.Time) error
	MarkFailed(id uint, processingError string) error
	Delete(id uint) error
}

// ChunkStore is the persistence surface for chunk rows.
type ChunkStore interface {
	CreateBatch(chunks []model.DocumentChunk) error
	ListByDocumentIDs(documentIDs []uint) ([]model.DocumentChunk, error)
	DeleteByDocumentID(documentID uint) error
}

// RetrievedChunk pairs a chunk with its source document filename and
// lexical score.
type RetrievedChunk struct {
	Chunk    model.DocumentChunk
	Filename string
	Score    int
}

// LexicalRetriever scores ready chunks by counting how many distinct
// question terms appear as substrings of the lower-cased chunk text.
// A full scan per query; fine at the target corpus scale.
type LexicalRetriever struct {
	docs   DocumentStore
	chunks ChunkStore
	topK   int
}

func NewLexicalRetriever(docs DocumentStore, chunks ChunkStore, topK int) *LexicalRetriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &LexicalRetriever{docs: docs, chunks: chunks, topK: topK}
}

// Search returns up to limit chunks ordered by descending score. Ties keep
// store iteration order (stable sort over the (document, ordinal) listing).
// Chunks scoring zero are discarded.
func (r *LexicalRetriever) Search(question string, chatbotID uint, limit int) ([]RetrievedChunk, error) {
	if limit <= 0 {
		limit = r.topK
	}

	terms := distinctTerms(question)
	if len(terms) == 0 {
		return nil, nil
	}

	readyDocs, err := r.docs.ListReadyByChatbotID(chatbotID)
	if err != nil {
		return nil, err
	}
	if len(readyDocs) == 0 {
		return nil, nil
	}

	docIDs := make([]uint, 0, len(readyDocs))
	filenames := make(map[uint]string, len(readyDocs))
	for _, d := range readyDocs {
		docIDs = append(docIDs, d.ID)
		filenames[d.ID] = d.OriginalFilename
	}

	allChunks, err := r.chunks.ListByDocumentIDs(docIDs)
	if err != nil {
		return nil, err
	}

	var scored []RetrievedChunk
	for _, chunk := range allChunks {
		score := scoreChunk(chunk.TextContent, terms)
		if score == 0 {
			continue
		}
		scored = append(scored, RetrievedChunk{
			Chunk:    chunk,
			Filename: filenames[chunk.DocumentID],
			Score:    score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// scoreChunk counts distinct terms that appear as substrings; a term
// counts once no matter how often it occurs.
func scoreChunk(text string, terms []string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score++
		}
	}
	return score
}

func distinctTerms(question string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, token := range tokenize(question) {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		terms = append(terms, token)
	}
	return terms
}
