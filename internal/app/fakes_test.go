package app

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cerajamme/myPUPQC-chatbot/internal/ai"
	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
	"github.com/cerajamme/myPUPQC-chatbot/internal/repository"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeDocumentStore struct {
	docs   map[uint]*model.Document
	nextID uint
	err    error
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: make(map[uint]*model.Document)}
}

func (s *fakeDocumentStore) Create(doc *model.Document) error {
	if s.err != nil {
		return s.err
	}
	s.nextID++
	doc.ID = s.nextID
	copied := *doc
	s.docs[doc.ID] = &copied
	return nil
}

func (s *fakeDocumentStore) GetByID(id uint) (*model.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	doc, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (s *fakeDocumentStore) ListByChatbotID(chatbotID uint) ([]model.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list(chatbotID, false), nil
}

func (s *fakeDocumentStore) ListReadyByChatbotID(chatbotID uint) ([]model.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list(chatbotID, true), nil
}

func (s *fakeDocumentStore) list(chatbotID uint, readyOnly bool) []model.Document {
	var out []model.Document
	for _, doc := range s.docs {
		if doc.ChatbotID != chatbotID {
			continue
		}
		if readyOnly && doc.Status != model.DocumentStatusReady {
			continue
		}
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeDocumentStore) MarkReady(id uint, pageCount, chunkCount int, processedAt time.Time) error {
	doc := s.docs[id]
	doc.Status = model.DocumentStatusReady
	doc.PageCount = pageCount
	doc.ChunkCount = chunkCount
	doc.ProcessedAt = &processedAt
	return nil
}

func (s *fakeDocumentStore) MarkFailed(id uint, processingError string) error {
	doc := s.docs[id]
	doc.Status = model.DocumentStatusFailed
	doc.ProcessingError = processingError
	return nil
}

func (s *fakeDocumentStore) Delete(id uint) error {
	delete(s.docs, id)
	return nil
}

type fakeChunkStore struct {
	chunks []model.DocumentChunk
	nextID uint
	err    error
}

func (s *fakeChunkStore) CreateBatch(chunks []model.DocumentChunk) error {
	if s.err != nil {
		return s.err
	}
	for i := range chunks {
		s.nextID++
		chunks[i].ID = s.nextID
		s.chunks = append(s.chunks, chunks[i])
	}
	return nil
}

func (s *fakeChunkStore) ListByDocumentIDs(documentIDs []uint) ([]model.DocumentChunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	wanted := make(map[uint]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		wanted[id] = struct{}{}
	}
	var out []model.DocumentChunk
	for _, c := range s.chunks {
		if _, ok := wanted[c.DocumentID]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].ChunkIndex < out[j].ChunkIndex
	})
	return out, nil
}

func (s *fakeChunkStore) DeleteByDocumentID(documentID uint) error {
	var kept []model.DocumentChunk
	for _, c := range s.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	s.chunks = kept
	return nil
}

type fakePublisher struct {
	published []model.Conversation
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, conv model.Conversation) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, conv)
	return nil
}

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Complete(_ context.Context, _ ai.ChatConfig, _ []ai.ChatMessage) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeChatStore struct {
	chats  map[uint]*model.DirectChat
	nextID uint
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{chats: make(map[uint]*model.DirectChat)}
}

func (s *fakeChatStore) Create(chat *model.DirectChat) error {
	for _, existing := range s.chats {
		if existing.SessionID == chat.SessionID {
			return repository.ErrDuplicateSession
		}
	}
	s.nextID++
	chat.ID = s.nextID
	copied := *chat
	s.chats[chat.ID] = &copied
	return nil
}

func (s *fakeChatStore) GetBySessionID(sessionID string) (*model.DirectChat, error) {
	for _, chat := range s.chats {
		if chat.SessionID == sessionID {
			copied := *chat
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeChatStore) GetByID(id uint) (*model.DirectChat, error) {
	chat, ok := s.chats[id]
	if !ok {
		return nil, nil
	}
	copied := *chat
	return &copied, nil
}

func (s *fakeChatStore) List(status string) ([]model.DirectChat, error) {
	var out []model.DirectChat
	for _, chat := range s.chats {
		if status != "" && chat.Status != status {
			continue
		}
		out = append(out, *chat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivity.After(out[j].LastActivity) })
	return out, nil
}

func (s *fakeChatStore) UpdateStatus(id uint, status string, activity time.Time) error {
	chat := s.chats[id]
	chat.Status = status
	chat.LastActivity = activity
	return nil
}

func (s *fakeChatStore) TouchActivity(id uint, activity time.Time) error {
	s.chats[id].LastActivity = activity
	return nil
}

type fakeMessageStore struct {
	messages []model.DirectMessage
	nextID   uint
}

func (s *fakeMessageStore) Create(msg *model.DirectMessage) error {
	s.nextID++
	msg.ID = s.nextID
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *fakeMessageStore) ListAfter(chatID uint, afterID uint) ([]model.DirectMessage, error) {
	var out []model.DirectMessage
	for _, m := range s.messages {
		if m.ChatID == chatID && m.ID > afterID {
			out = append(out, m)
		}
	}
	return out, nil
}
