package service

import (
	"context"
	"time"

	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/config"
	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/specification"
	"rag-chat-be/internal/repository/unitofwork"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/llm"
	"rag-chat-be/pkg/rag/contextbuilder"
	"rag-chat-be/pkg/rag/retrieval"

	"github.com/google/uuid"
)

const apologyReply = "I apologize, but I encountered an error generating a response."

type IChatService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	ShowSession(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error)
	ListSessions(ctx context.Context, userId *uuid.UUID) ([]*dto.ShowSessionResponse, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	History(ctx context.Context, sessionId uuid.UUID) (*dto.SessionHistoryResponse, error)

	// SendMessage runs the full hybrid retrieval pipeline for one user
	// message and returns the assistant reply with provenance metadata.
	SendMessage(ctx context.Context, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	orchestrator      *retrieval.Orchestrator
	composer          *contextbuilder.Composer
	ragCfg            config.RagConfig
	log               logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	ragCfg config.RagConfig,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		orchestrator:      retrieval.NewOrchestrator(time.Duration(ragCfg.RetrievalBranchTimeout)*time.Second, log),
		composer:          contextbuilder.NewComposer(),
		ragCfg:            ragCfg,
		log:               log,
	}
}

func (s *chatService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := entity.ChatSession{
		Id:           uuid.New(),
		UserId:       req.UserId,
		Title:        req.Title,
		SystemPrompt: req.SystemPrompt,
		CreatedAt:    time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *chatService) ShowSession(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFoundf("chat session %s not found", id)
	}

	return sessionToResponse(session), nil
}

func (s *chatService) ListSessions(ctx context.Context, userId *uuid.UUID) ([]*dto.ShowSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.OrderBy{Clause: "created_at DESC"}}
	if userId != nil {
		specs = append(specs, specification.OwnedBy{UserID: *userId})
	}

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ShowSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, sessionToResponse(session))
	}
	return res, nil
}

// DeleteSession removes the session and everything scoped to it: turns,
// KB links, attachments and their chunks, in one transaction.
func (s *chatService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if session == nil {
		return apperror.NotFoundf("chat session %s not found", id)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.AttachmentChunkRepository().DeleteBySessionId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.AttachmentRepository().DeleteBySessionId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.ConversationTurnRepository().DeleteBySessionId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.SessionKBRepository().DeleteBySessionId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

func (s *chatService) History(ctx context.Context, sessionId uuid.UUID) (*dto.SessionHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFoundf("chat session %s not found", sessionId)
	}

	turns, err := uow.ConversationTurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Clause: "created_at ASC"},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.SessionHistoryResponse{
		SessionId: sessionId,
		Turns:     make([]dto.TurnResponse, 0, len(turns)),
	}
	for _, turn := range turns {
		res.Turns = append(res.Turns, dto.TurnResponse{
			Id:        turn.Id,
			Role:      turn.Role,
			Content:   turn.Content,
			CreatedAt: turn.CreatedAt,
		})
	}
	return res, nil
}

func (s *chatService) SendMessage(ctx context.Context, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFoundf("chat session %s not found", sessionId)
	}

	// Embed the user message. A failed embedding never blocks turn
	// persistence; the turn is just stored without a vector.
	userEmbedding := s.embedTolerant(req.Message, "RETRIEVAL_QUERY")

	userTurn := entity.ConversationTurn{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      entity.RoleUser,
		Content:   req.Message,
		Embedding: userEmbedding,
		CreatedAt: time.Now(),
	}
	if err := uow.ConversationTurnRepository().Create(ctx, &userTurn); err != nil {
		return nil, err
	}

	systemPrompt, err := uow.ChatSessionRepository().SystemPrompt(ctx, sessionId)
	if err != nil {
		s.log.Warn("Chat", "failed to load session system prompt", map[string]interface{}{"error": err.Error()})
		systemPrompt = nil
	}

	kbIds, err := uow.ChatSessionRepository().AttachedKBIDs(ctx, sessionId)
	if err != nil {
		s.log.Warn("Chat", "failed to load attached knowledge bases", map[string]interface{}{"error": err.Error()})
		kbIds = nil
	}

	results := s.orchestrator.Gather(ctx, s.buildBranches(uow, sessionId, userTurn.Id, userEmbedding, kbIds))

	composed := s.composer.Compose(contextbuilder.Input{
		RecentTurns:      results.Recent,
		OlderTurns:       results.Older,
		KBChunks:         results.KB,
		AttachmentChunks: results.Attachments,
		SystemPrompt:     systemPrompt,
	})

	reply, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: composed},
		{Role: "user", Content: req.Message},
	})
	if err != nil {
		s.log.Error("Chat", "completion provider failed, substituting apology", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		reply = apologyReply
	}

	assistantTurn := entity.ConversationTurn{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      entity.RoleAssistant,
		Content:   reply,
		Embedding: s.embedTolerant(reply, "RETRIEVAL_DOCUMENT"),
		CreatedAt: time.Now(),
	}
	if err := uow.ConversationTurnRepository().Create(ctx, &assistantTurn); err != nil {
		return nil, err
	}

	return &dto.SendMessageResponse{
		Reply:    reply,
		Metadata: buildMetadata(results),
	}, nil
}

// buildBranches wires the four retrieval operations. The similarity branches
// are skipped when the query embedding is unavailable. The turn being
// answered is excluded from the recent window so it never surfaces as its
// own history.
func (s *chatService) buildBranches(uow unitofwork.UnitOfWork, sessionId, currentTurnId uuid.UUID, userEmbedding []float32, kbIds []uuid.UUID) retrieval.Branches {
	branches := retrieval.Branches{
		Recent: func(ctx context.Context) ([]contextbuilder.Turn, error) {
			turns, err := uow.ConversationTurnRepository().RecentTurns(ctx, sessionId, s.ragCfg.RecentTurnWindow)
			if err != nil {
				return nil, err
			}
			out := make([]contextbuilder.Turn, 0, len(turns))
			for _, t := range turns {
				if t.Id == currentTurnId {
					continue
				}
				out = append(out, contextbuilder.Turn{Role: t.Role, Text: t.Content, CreatedAt: t.CreatedAt})
			}
			return out, nil
		},
	}

	if userEmbedding == nil {
		return branches
	}

	historyThreshold := s.ragCfg.ChatHistoryThreshold
	kbThreshold := s.ragCfg.KBChunkThreshold
	attachmentThreshold := s.ragCfg.AttachmentThreshold

	branches.Older = func(ctx context.Context) ([]contextbuilder.ScoredTurn, error) {
		scored, err := uow.ConversationTurnRepository().SearchSimilarExcludingRecent(
			ctx, userEmbedding, sessionId, s.ragCfg.RecentTurnWindow, s.ragCfg.OlderTurnRetrieval, &historyThreshold)
		if err != nil {
			return nil, err
		}
		out := make([]contextbuilder.ScoredTurn, 0, len(scored))
		for _, st := range scored {
			out = append(out, contextbuilder.ScoredTurn{
				Turn:       contextbuilder.Turn{Role: st.Turn.Role, Text: st.Turn.Content, CreatedAt: st.Turn.CreatedAt},
				Similarity: st.Similarity,
			})
		}
		return out, nil
	}

	branches.KB = func(ctx context.Context) ([]contextbuilder.KBChunk, error) {
		scored, err := uow.KBChunkRepository().SearchAcrossKBs(
			ctx, userEmbedding, kbIds, s.ragCfg.MaxKBChunksPerKB, &kbThreshold)
		if err != nil {
			return nil, err
		}
		out := make([]contextbuilder.KBChunk, 0, len(scored))
		for _, sc := range scored {
			out = append(out, contextbuilder.KBChunk{
				KBTitle:    sc.KBTitle,
				Filename:   sc.Filename,
				Text:       sc.Chunk.Text,
				Similarity: sc.Similarity,
			})
		}
		return out, nil
	}

	branches.Attachments = func(ctx context.Context) ([]contextbuilder.AttachmentChunk, error) {
		scored, err := uow.AttachmentChunkRepository().SearchBySession(
			ctx, userEmbedding, sessionId, s.ragCfg.AttachmentChunkLimit, &attachmentThreshold)
		if err != nil {
			return nil, err
		}
		out := make([]contextbuilder.AttachmentChunk, 0, len(scored))
		for _, sc := range scored {
			out = append(out, contextbuilder.AttachmentChunk{
				Filename:   sc.Filename,
				Text:       sc.Chunk.Text,
				Similarity: sc.Similarity,
			})
		}
		return out, nil
	}

	return branches
}

func (s *chatService) embedTolerant(text, taskType string) []float32 {
	res, err := s.embeddingProvider.Generate(text, taskType)
	if err != nil {
		s.log.Warn("Chat", "embedding failed, storing turn without vector", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return res.Embedding.Values
}

func buildMetadata(results retrieval.Results) dto.ResponseMetadata {
	meta := dto.ResponseMetadata{
		SourcesUsed:            []string{},
		KbSources:              []string{},
		AttachmentSources:      []string{},
		RecentMessagesCount:    len(results.Recent),
		OlderMessagesCount:     len(results.Older),
		KbResultsCount:         len(results.KB),
		AttachmentResultsCount: len(results.Attachments),
		UsingKb:                len(results.KB) > 0,
		UsingHistory:           len(results.Recent) > 0 || len(results.Older) > 0,
		UsingAttachments:       len(results.Attachments) > 0,
	}

	if meta.UsingHistory {
		meta.SourcesUsed = append(meta.SourcesUsed, "conversation history")
	}
	if meta.UsingKb {
		meta.SourcesUsed = append(meta.SourcesUsed, "knowledge base")
	}
	if meta.UsingAttachments {
		meta.SourcesUsed = append(meta.SourcesUsed, "attachments")
	}

	seenKb := make(map[string]bool)
	for _, chunk := range results.KB {
		label := chunk.KBTitle + " - " + chunk.Filename
		if !seenKb[label] {
			seenKb[label] = true
			meta.KbSources = append(meta.KbSources, label)
		}
	}

	seenAttachment := make(map[string]bool)
	for _, chunk := range results.Attachments {
		if !seenAttachment[chunk.Filename] {
			seenAttachment[chunk.Filename] = true
			meta.AttachmentSources = append(meta.AttachmentSources, chunk.Filename)
		}
	}

	return meta
}

func sessionToResponse(session *entity.ChatSession) *dto.ShowSessionResponse {
	return &dto.ShowSessionResponse{
		Id:           session.Id,
		UserId:       session.UserId,
		Title:        session.Title,
		SystemPrompt: session.SystemPrompt,
		CreatedAt:    session.CreatedAt,
	}
}
