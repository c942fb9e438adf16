package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

func seedReadyDocument(t *testing.T, docs *fakeDocumentStore, chunks *fakeChunkStore, chatbotID uint, filename string, texts ...string) uint {
	t.Helper()

	doc := &model.Document{
		ChatbotID:        chatbotID,
		Filename:         "stored-" + filename,
		OriginalFilename: filename,
		Status:           model.DocumentStatusReady,
	}
	require.NoError(t, docs.Create(doc))

	rows := make([]model.DocumentChunk, len(texts))
	for i, text := range texts {
		rows[i] = model.DocumentChunk{
			DocumentID:  doc.ID,
			ChunkIndex:  i,
			TextContent: text,
			PageNumber:  i + 1,
		}
	}
	require.NoError(t, chunks.CreateBatch(rows))
	return doc.ID
}

func TestSearchRanksByDistinctTermMatches(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	seedReadyDocument(t, docs, chunks, 1, "handbook.pdf",
		"The final exam schedule is posted two weeks before finals.",
		"The library schedule changes during holidays.",
	)

	r := NewLexicalRetriever(docs, chunks, 5)
	results, err := r.Search("exam schedule", 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Equal(t, 2, results[0].Score)
	require.Contains(t, results[0].Chunk.TextContent, "exam schedule")
	require.Equal(t, 1, results[1].Score)
	require.Equal(t, "handbook.pdf", results[0].Filename)
}

func TestSearchDiscardsZeroScores(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	seedReadyDocument(t, docs, chunks, 1, "handbook.pdf",
		"Scholarship applications open in June.",
		"The cafeteria closes at 8pm.",
	)

	r := NewLexicalRetriever(docs, chunks, 5)
	results, err := r.Search("refund policy", 1, 0)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchRepeatedTermsCountOnce(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	seedReadyDocument(t, docs, chunks, 1, "handbook.pdf",
		"refund refund refund",
		"refund requests need the policy form",
	)

	r := NewLexicalRetriever(docs, chunks, 5)
	results, err := r.Search("refund policy refund", 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Two distinct terms beat one term repeated three times.
	require.Equal(t, 2, results[0].Score)
	require.Contains(t, results[0].Chunk.TextContent, "policy")
}

func TestSearchHonorsLimit(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	seedReadyDocument(t, docs, chunks, 1, "handbook.pdf",
		"enrollment one", "enrollment two", "enrollment three",
		"enrollment four", "enrollment five", "enrollment six",
	)

	r := NewLexicalRetriever(docs, chunks, 5)
	results, err := r.Search("enrollment", 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 5)

	limited, err := r.Search("enrollment", 1, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestSearchSkipsUnreadyDocuments(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}

	doc := &model.Document{ChatbotID: 1, OriginalFilename: "pending.pdf", Status: model.DocumentStatusProcessing}
	require.NoError(t, docs.Create(doc))
	require.NoError(t, chunks.CreateBatch([]model.DocumentChunk{
		{DocumentID: doc.ID, ChunkIndex: 0, TextContent: "enrollment info", PageNumber: 1},
	}))

	r := NewLexicalRetriever(docs, chunks, 5)
	results, err := r.Search("enrollment", 1, 0)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchTieBreakIsStable(t *testing.T) {
	docs := newFakeDocumentStore()
	chunks := &fakeChunkStore{}
	seedReadyDocument(t, docs, chunks, 1, "handbook.pdf",
		"enrollment first", "enrollment second", "enrollment third",
	)

	r := NewLexicalRetriever(docs, chunks, 5)
	results, err := r.Search("enrollment", 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, 0, results[0].Chunk.ChunkIndex)
	require.Equal(t, 1, results[1].Chunk.ChunkIndex)
	require.Equal(t, 2, results[2].Chunk.ChunkIndex)
}
