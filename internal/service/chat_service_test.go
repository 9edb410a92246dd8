package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/config"
	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/contract"
)

func testRagConfig() config.RagConfig {
	return config.RagConfig{
		RecentTurnWindow:       10,
		OlderTurnRetrieval:     3,
		ChatHistoryThreshold:   0.75,
		KBChunkThreshold:       0.70,
		MaxKBChunksPerKB:       3,
		AttachmentChunkLimit:   5,
		AttachmentThreshold:    0.70,
		RetrievalBranchTimeout: 2,
	}
}

func newChatFixture(uow *fakeUow, embedder *fakeEmbedder, provider *fakeLLM) IChatService {
	return NewChatService(&fakeFactory{uow: uow}, embedder, provider, testRagConfig(), nopLogger{})
}

func seedSession(uow *fakeUow) *entity.ChatSession {
	session := &entity.ChatSession{
		Id:        uuid.New(),
		Title:     "test chat",
		CreatedAt: time.Now(),
	}
	uow.sessionRepo.sessions = append(uow.sessionRepo.sessions, session)
	return session
}

func TestSendMessageFirstTurn(t *testing.T) {
	uow := newFakeUow()
	session := seedSession(uow)
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.2}}
	provider := &fakeLLM{reply: "Hi! How can I help?"}
	svc := newChatFixture(uow, embedder, provider)

	res, err := svc.SendMessage(context.Background(), session.Id, &dto.SendMessageRequest{Message: "Hello"})
	require.NoError(t, err)

	assert.Equal(t, "Hi! How can I help?", res.Reply)
	assert.False(t, res.Metadata.UsingKb)
	assert.False(t, res.Metadata.UsingHistory)
	assert.False(t, res.Metadata.UsingAttachments)
	assert.Empty(t, res.Metadata.SourcesUsed)

	// Both turns persisted, with embeddings.
	require.Len(t, uow.turnRepo.turns, 2)
	assert.Equal(t, entity.RoleUser, uow.turnRepo.turns[0].Role)
	assert.Equal(t, "Hello", uow.turnRepo.turns[0].Content)
	assert.NotNil(t, uow.turnRepo.turns[0].Embedding)
	assert.Equal(t, entity.RoleAssistant, uow.turnRepo.turns[1].Role)
	assert.Equal(t, "Hi! How can I help?", uow.turnRepo.turns[1].Content)
}

func TestSendMessageSessionNotFound(t *testing.T) {
	uow := newFakeUow()
	svc := newChatFixture(uow, &fakeEmbedder{vec: []float32{0.1}}, &fakeLLM{reply: "x"})

	_, err := svc.SendMessage(context.Background(), uuid.New(), &dto.SendMessageRequest{Message: "Hello"})
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, uow.turnRepo.turns)
}

func TestSendMessageEmbeddingFailureStillPersistsTurn(t *testing.T) {
	uow := newFakeUow()
	session := seedSession(uow)
	embedder := &fakeEmbedder{err: errors.New("embedding service down")}
	provider := &fakeLLM{reply: "reply"}
	svc := newChatFixture(uow, embedder, provider)

	res, err := svc.SendMessage(context.Background(), session.Id, &dto.SendMessageRequest{Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "reply", res.Reply)

	require.Len(t, uow.turnRepo.turns, 2)
	assert.Nil(t, uow.turnRepo.turns[0].Embedding)
	assert.Nil(t, uow.turnRepo.turns[1].Embedding)
}

func TestSendMessageCompletionFailureSubstitutesApology(t *testing.T) {
	uow := newFakeUow()
	session := seedSession(uow)
	provider := &fakeLLM{err: errors.New("model overloaded")}
	svc := newChatFixture(uow, &fakeEmbedder{vec: []float32{0.1}}, provider)

	res, err := svc.SendMessage(context.Background(), session.Id, &dto.SendMessageRequest{Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, apologyReply, res.Reply)

	// The apology is persisted as the assistant turn.
	require.Len(t, uow.turnRepo.turns, 2)
	assert.Equal(t, apologyReply, uow.turnRepo.turns[1].Content)
}

func TestSendMessageWithHistoryAndKB(t *testing.T) {
	uow := newFakeUow()
	session := seedSession(uow)
	kbId := uuid.New()
	uow.sessionRepo.kbIds = []uuid.UUID{kbId}

	uow.turnRepo.turns = append(uow.turnRepo.turns, &entity.ConversationTurn{
		Id:        uuid.New(),
		SessionId: session.Id,
		Role:      entity.RoleUser,
		Content:   "earlier question",
		CreatedAt: time.Now().Add(-time.Hour),
	})
	uow.turnRepo.searchResults = []*contract.ScoredTurn{
		{
			Turn: &entity.ConversationTurn{
				Id: uuid.New(), SessionId: session.Id, Role: entity.RoleAssistant,
				Content: "ancient answer", CreatedAt: time.Now().Add(-48 * time.Hour),
			},
			Similarity: 0.81,
		},
	}
	uow.kbChunkRepo.searchResults = []*contract.ScoredKBChunk{
		{
			Chunk:      &entity.KBChunk{Id: uuid.New(), KbId: kbId, Text: "policy details"},
			KBTitle:    "Handbook",
			Filename:   "policy.pdf",
			Similarity: 0.88,
		},
		{
			Chunk:      &entity.KBChunk{Id: uuid.New(), KbId: kbId, Text: "more policy"},
			KBTitle:    "Handbook",
			Filename:   "policy.pdf",
			Similarity: 0.79,
		},
	}
	uow.attachmentChunkRepo.searchResults = []*contract.ScoredAttachmentChunk{
		{
			Chunk:      &entity.AttachmentChunk{Id: uuid.New(), Text: "attachment body"},
			Filename:   "report.docx",
			Similarity: 0.74,
		},
	}

	provider := &fakeLLM{reply: "grounded answer"}
	svc := newChatFixture(uow, &fakeEmbedder{vec: []float32{0.1}}, provider)

	res, err := svc.SendMessage(context.Background(), session.Id, &dto.SendMessageRequest{Message: "what is the policy?"})
	require.NoError(t, err)

	assert.True(t, res.Metadata.UsingHistory)
	assert.True(t, res.Metadata.UsingKb)
	assert.True(t, res.Metadata.UsingAttachments)
	assert.Equal(t, []string{"conversation history", "knowledge base", "attachments"}, res.Metadata.SourcesUsed)
	assert.Equal(t, 1, res.Metadata.RecentMessagesCount)
	assert.Equal(t, 1, res.Metadata.OlderMessagesCount)
	assert.Equal(t, 2, res.Metadata.KbResultsCount)
	assert.Equal(t, 1, res.Metadata.AttachmentResultsCount)

	// Duplicate KB provenance collapses to one label.
	assert.Equal(t, []string{"Handbook - policy.pdf"}, res.Metadata.KbSources)
	assert.Equal(t, []string{"report.docx"}, res.Metadata.AttachmentSources)

	// The composed system prompt carries all retrieved context.
	assert.Contains(t, provider.lastSystem, "earlier question")
	assert.Contains(t, provider.lastSystem, "ancient answer")
	assert.Contains(t, provider.lastSystem, "policy details")
	assert.Contains(t, provider.lastSystem, "attachment body")
	assert.Equal(t, "what is the policy?", provider.lastUser)
}

func TestSendMessageBranchFailureDegradesToEmpty(t *testing.T) {
	uow := newFakeUow()
	session := seedSession(uow)
	uow.sessionRepo.kbIds = []uuid.UUID{uuid.New()}
	uow.kbChunkRepo.searchErr = errors.New("kb query failed")
	uow.turnRepo.searchResults = []*contract.ScoredTurn{
		{
			Turn: &entity.ConversationTurn{
				Id: uuid.New(), SessionId: session.Id, Role: entity.RoleUser,
				Content: "still retrievable", CreatedAt: time.Now().Add(-time.Hour),
			},
			Similarity: 0.9,
		},
	}

	svc := newChatFixture(uow, &fakeEmbedder{vec: []float32{0.1}}, &fakeLLM{reply: "answer"})

	res, err := svc.SendMessage(context.Background(), session.Id, &dto.SendMessageRequest{Message: "question"})
	require.NoError(t, err)

	assert.False(t, res.Metadata.UsingKb)
	assert.Zero(t, res.Metadata.KbResultsCount)
	assert.True(t, res.Metadata.UsingHistory)
	assert.Equal(t, 1, res.Metadata.OlderMessagesCount)
}

func TestSendMessageCustomSystemPrompt(t *testing.T) {
	uow := newFakeUow()
	session := seedSession(uow)
	prompt := "You answer only in haiku."
	session.SystemPrompt = &prompt

	provider := &fakeLLM{reply: "ok"}
	svc := newChatFixture(uow, &fakeEmbedder{vec: []float32{0.1}}, provider)

	_, err := svc.SendMessage(context.Background(), session.Id, &dto.SendMessageRequest{Message: "Hello"})
	require.NoError(t, err)

	assert.Contains(t, provider.lastSystem, "You answer only in haiku.")
}

func TestCreateShowDeleteSession(t *testing.T) {
	uow := newFakeUow()
	svc := newChatFixture(uow, &fakeEmbedder{vec: []float32{0.1}}, &fakeLLM{reply: "x"})
	ctx := context.Background()

	prompt := "be brief"
	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Title: "my chat", SystemPrompt: &prompt})
	require.NoError(t, err)

	shown, err := svc.ShowSession(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "my chat", shown.Title)
	require.NotNil(t, shown.SystemPrompt)
	assert.Equal(t, "be brief", *shown.SystemPrompt)

	require.NoError(t, svc.DeleteSession(ctx, created.Id))

	_, err = svc.ShowSession(ctx, created.Id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteSessionCascadesToScopedRows(t *testing.T) {
	uow := newFakeUow()
	session := seedSession(uow)
	other := uuid.New()

	attachment := &entity.Attachment{Id: uuid.New(), SessionId: session.Id, Filename: "notes.txt"}
	uow.attachmentRepo.attachments = append(uow.attachmentRepo.attachments,
		attachment,
		&entity.Attachment{Id: uuid.New(), SessionId: other, Filename: "keep.txt"},
	)
	uow.attachmentChunkRepo.chunks = append(uow.attachmentChunkRepo.chunks,
		&entity.AttachmentChunk{Id: uuid.New(), AttachmentId: attachment.Id, SessionId: session.Id, Text: "c1"},
		&entity.AttachmentChunk{Id: uuid.New(), AttachmentId: uuid.New(), SessionId: other, Text: "c2"},
	)
	uow.turnRepo.turns = append(uow.turnRepo.turns,
		&entity.ConversationTurn{Id: uuid.New(), SessionId: session.Id, Role: entity.RoleUser, Content: "hi"},
		&entity.ConversationTurn{Id: uuid.New(), SessionId: other, Role: entity.RoleUser, Content: "elsewhere"},
	)
	uow.sessionKBRepo.links = append(uow.sessionKBRepo.links,
		&entity.SessionKB{Id: uuid.New(), SessionId: session.Id, KbId: uuid.New()},
		&entity.SessionKB{Id: uuid.New(), SessionId: other, KbId: uuid.New()},
	)

	svc := newChatFixture(uow, &fakeEmbedder{vec: []float32{0.1}}, &fakeLLM{reply: "x"})
	require.NoError(t, svc.DeleteSession(context.Background(), session.Id))

	assert.Empty(t, uow.sessionRepo.sessions)
	assert.Equal(t, 1, uow.commits)
	assert.Zero(t, uow.rollbacks)

	// Only rows belonging to the deleted session go with it.
	require.Len(t, uow.turnRepo.turns, 1)
	assert.Equal(t, other, uow.turnRepo.turns[0].SessionId)
	require.Len(t, uow.attachmentRepo.attachments, 1)
	assert.Equal(t, other, uow.attachmentRepo.attachments[0].SessionId)
	require.Len(t, uow.attachmentChunkRepo.chunks, 1)
	assert.Equal(t, other, uow.attachmentChunkRepo.chunks[0].SessionId)
	require.Len(t, uow.sessionKBRepo.links, 1)
	assert.Equal(t, other, uow.sessionKBRepo.links[0].SessionId)
}

func TestHistoryReturnsChronologicalTurns(t *testing.T) {
	uow := newFakeUow()
	session := seedSession(uow)
	uow.turnRepo.turns = []*entity.ConversationTurn{
		{Id: uuid.New(), SessionId: session.Id, Role: entity.RoleUser, Content: "q1"},
		{Id: uuid.New(), SessionId: session.Id, Role: entity.RoleAssistant, Content: "a1"},
		{Id: uuid.New(), SessionId: uuid.New(), Role: entity.RoleUser, Content: "other session"},
	}
	svc := newChatFixture(uow, &fakeEmbedder{vec: []float32{0.1}}, &fakeLLM{reply: "x"})

	res, err := svc.History(context.Background(), session.Id)
	require.NoError(t, err)
	require.Len(t, res.Turns, 2)
	assert.Equal(t, "q1", res.Turns[0].Content)
	assert.Equal(t, "a1", res.Turns[1].Content)
}
