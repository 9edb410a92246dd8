package service

import (
	"context"
	"errors"
	"time"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/internal/repository/specification"
	"rag-chat-be/internal/repository/unitofwork"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/llm"

	"github.com/google/uuid"
)

// ----- logging / provider fakes -----

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeEmbedder struct {
	vec      []float32
	err      error
	batchErr error
	calls    int
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vec},
	}, nil
}

func (f *fakeEmbedder) GenerateBatch(texts []string, taskType string) ([][]float32, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

type fakeLLM struct {
	reply      string
	err        error
	lastSystem string
	lastUser   string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	for _, m := range history {
		switch m.Role {
		case "system":
			f.lastSystem = m.Content
		case "user":
			f.lastUser = m.Content
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// ----- in-memory repositories -----

type fakeUserRepo struct {
	users []*entity.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.users {
		if matchUser(u, specs) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if matchUser(u, specs) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	kept := r.users[:0]
	for _, u := range r.users {
		if u.Id != id {
			kept = append(kept, u)
		}
	}
	r.users = kept
	return nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchUser(u *entity.User, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if u.Id != sp.ID {
				return false
			}
		case specification.ByUsername:
			if u.Username != sp.Username {
				return false
			}
		}
	}
	return true
}

type fakeSessionRepo struct {
	sessions []*entity.ChatSession
	kbIds    []uuid.UUID
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.sessions = append(r.sessions, session)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	for _, s := range r.sessions {
		if matchSession(s, specs) {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	var out []*entity.ChatSession
	for _, s := range r.sessions {
		if matchSession(s, specs) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	kept := r.sessions[:0]
	for _, s := range r.sessions {
		if s.Id != id {
			kept = append(kept, s)
		}
	}
	r.sessions = kept
	return nil
}

func (r *fakeSessionRepo) SystemPrompt(ctx context.Context, sessionId uuid.UUID) (*string, error) {
	for _, s := range r.sessions {
		if s.Id == sessionId {
			return s.SystemPrompt, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) AttachedKBIDs(ctx context.Context, sessionId uuid.UUID) ([]uuid.UUID, error) {
	return r.kbIds, nil
}

func matchSession(s *entity.ChatSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if s.Id != sp.ID {
				return false
			}
		case specification.OwnedBy:
			if s.UserId == nil || *s.UserId != sp.UserID {
				return false
			}
		}
	}
	return true
}

type fakeTurnRepo struct {
	turns         []*entity.ConversationTurn
	recentErr     error
	searchResults []*contract.ScoredTurn
	searchErr     error
}

func (r *fakeTurnRepo) Create(ctx context.Context, turn *entity.ConversationTurn) error {
	r.turns = append(r.turns, turn)
	return nil
}

func (r *fakeTurnRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error) {
	var out []*entity.ConversationTurn
	for _, t := range r.turns {
		if matchTurn(t, specs) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTurnRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeTurnRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	kept := r.turns[:0]
	for _, t := range r.turns {
		if t.SessionId != sessionId {
			kept = append(kept, t)
		}
	}
	r.turns = kept
	return nil
}

func (r *fakeTurnRepo) RecentTurns(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ConversationTurn, error) {
	if r.recentErr != nil {
		return nil, r.recentErr
	}
	var session []*entity.ConversationTurn
	for _, t := range r.turns {
		if t.SessionId == sessionId {
			session = append(session, t)
		}
	}
	if len(session) > limit {
		session = session[len(session)-limit:]
	}
	return session, nil
}

func (r *fakeTurnRepo) SearchSimilarExcludingRecent(ctx context.Context, emb []float32, sessionId uuid.UUID, excludeRecent, limit int, threshold *float64) ([]*contract.ScoredTurn, error) {
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	return r.searchResults, nil
}

func matchTurn(t *entity.ConversationTurn, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.BySessionID:
			if t.SessionId != sp.SessionID {
				return false
			}
		case specification.ByRole:
			if t.Role != sp.Role {
				return false
			}
		}
	}
	return true
}

type fakeKBRepo struct {
	kbs []*entity.KnowledgeBase
}

func (r *fakeKBRepo) Create(ctx context.Context, kb *entity.KnowledgeBase) error {
	r.kbs = append(r.kbs, kb)
	return nil
}

func (r *fakeKBRepo) Update(ctx context.Context, kb *entity.KnowledgeBase) error {
	for i, existing := range r.kbs {
		if existing.Id == kb.Id {
			r.kbs[i] = kb
		}
	}
	return nil
}

func (r *fakeKBRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeBase, error) {
	for _, kb := range r.kbs {
		if matchKB(kb, specs) {
			return kb, nil
		}
	}
	return nil, nil
}

func (r *fakeKBRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeBase, error) {
	var out []*entity.KnowledgeBase
	for _, kb := range r.kbs {
		if matchKB(kb, specs) {
			out = append(out, kb)
		}
	}
	return out, nil
}

func (r *fakeKBRepo) Delete(ctx context.Context, id uuid.UUID) error {
	kept := r.kbs[:0]
	for _, kb := range r.kbs {
		if kb.Id != id {
			kept = append(kept, kb)
		}
	}
	r.kbs = kept
	return nil
}

func matchKB(kb *entity.KnowledgeBase, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if kb.Id != sp.ID {
				return false
			}
		case specification.OwnedBy:
			if kb.UserId != sp.UserID {
				return false
			}
		}
	}
	return true
}

type fakeKBDocRepo struct {
	docs []*entity.KBDocument
}

func (r *fakeKBDocRepo) Create(ctx context.Context, doc *entity.KBDocument) error {
	r.docs = append(r.docs, doc)
	return nil
}

func (r *fakeKBDocRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KBDocument, error) {
	for _, d := range r.docs {
		if matchDoc(d, specs) {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeKBDocRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KBDocument, error) {
	var out []*entity.KBDocument
	for _, d := range r.docs {
		if matchDoc(d, specs) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeKBDocRepo) Delete(ctx context.Context, id uuid.UUID) error {
	kept := r.docs[:0]
	for _, d := range r.docs {
		if d.Id != id {
			kept = append(kept, d)
		}
	}
	r.docs = kept
	return nil
}

func (r *fakeKBDocRepo) DeleteByKBId(ctx context.Context, kbId uuid.UUID) error {
	kept := r.docs[:0]
	for _, d := range r.docs {
		if d.KbId != kbId {
			kept = append(kept, d)
		}
	}
	r.docs = kept
	return nil
}

func (r *fakeKBDocRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	for _, d := range r.docs {
		if d.Id == id {
			d.Status = status
		}
	}
	return nil
}

func matchDoc(d *entity.KBDocument, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if d.Id != sp.ID {
				return false
			}
		case specification.ByKBID:
			if d.KbId != sp.KBID {
				return false
			}
		case specification.ByFilename:
			if d.Filename != sp.Filename {
				return false
			}
		case specification.ByStatus:
			if d.Status != sp.Status {
				return false
			}
		}
	}
	return true
}

type fakeKBChunkRepo struct {
	chunks        []*entity.KBChunk
	bulkErr       error
	searchResults []*contract.ScoredKBChunk
	searchErr     error
}

func (r *fakeKBChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.KBChunk) error {
	if r.bulkErr != nil {
		return r.bulkErr
	}
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *fakeKBChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KBChunk, error) {
	return r.chunks, nil
}

func (r *fakeKBChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.chunks)), nil
}

func (r *fakeKBChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	kept := r.chunks[:0]
	for _, c := range r.chunks {
		if c.DocumentId != documentId {
			kept = append(kept, c)
		}
	}
	r.chunks = kept
	return nil
}

func (r *fakeKBChunkRepo) DeleteByKBId(ctx context.Context, kbId uuid.UUID) error {
	kept := r.chunks[:0]
	for _, c := range r.chunks {
		if c.KbId != kbId {
			kept = append(kept, c)
		}
	}
	r.chunks = kept
	return nil
}

func (r *fakeKBChunkRepo) SearchAcrossKBs(ctx context.Context, emb []float32, kbIds []uuid.UUID, limitPerKB int, threshold *float64) ([]*contract.ScoredKBChunk, error) {
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	if len(kbIds) == 0 {
		return nil, nil
	}
	return r.searchResults, nil
}

type fakeSessionKBRepo struct {
	links []*entity.SessionKB
}

func (r *fakeSessionKBRepo) Create(ctx context.Context, link *entity.SessionKB) error {
	r.links = append(r.links, link)
	return nil
}

func (r *fakeSessionKBRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionKB, error) {
	for _, l := range r.links {
		if matchLink(l, specs) {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionKBRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionKB, error) {
	var out []*entity.SessionKB
	for _, l := range r.links {
		if matchLink(l, specs) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeSessionKBRepo) DeleteLink(ctx context.Context, sessionId, kbId uuid.UUID) error {
	kept := r.links[:0]
	for _, l := range r.links {
		if !(l.SessionId == sessionId && l.KbId == kbId) {
			kept = append(kept, l)
		}
	}
	r.links = kept
	return nil
}

func (r *fakeSessionKBRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	kept := r.links[:0]
	for _, l := range r.links {
		if l.SessionId != sessionId {
			kept = append(kept, l)
		}
	}
	r.links = kept
	return nil
}

func (r *fakeSessionKBRepo) DeleteByKBId(ctx context.Context, kbId uuid.UUID) error {
	kept := r.links[:0]
	for _, l := range r.links {
		if l.KbId != kbId {
			kept = append(kept, l)
		}
	}
	r.links = kept
	return nil
}

func matchLink(l *entity.SessionKB, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.BySessionID:
			if l.SessionId != sp.SessionID {
				return false
			}
		case specification.ByKBID:
			if l.KbId != sp.KBID {
				return false
			}
		}
	}
	return true
}

type fakeAttachmentRepo struct {
	attachments []*entity.Attachment
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *entity.Attachment) error {
	r.attachments = append(r.attachments, attachment)
	return nil
}

func (r *fakeAttachmentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Attachment, error) {
	for _, a := range r.attachments {
		if matchAttachment(a, specs) {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAttachmentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Attachment, error) {
	var out []*entity.Attachment
	for _, a := range r.attachments {
		if matchAttachment(a, specs) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttachmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	kept := r.attachments[:0]
	for _, a := range r.attachments {
		if a.Id != id {
			kept = append(kept, a)
		}
	}
	r.attachments = kept
	return nil
}

func (r *fakeAttachmentRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	kept := r.attachments[:0]
	for _, a := range r.attachments {
		if a.SessionId != sessionId {
			kept = append(kept, a)
		}
	}
	r.attachments = kept
	return nil
}

func (r *fakeAttachmentRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	for _, a := range r.attachments {
		if a.Id == id {
			a.Status = entity.IngestStatusFailed
		}
	}
	return nil
}

func (r *fakeAttachmentRepo) MarkCompleted(ctx context.Context, id uuid.UUID, totalChunks int, processedAt time.Time) error {
	for _, a := range r.attachments {
		if a.Id == id {
			a.Status = entity.IngestStatusCompleted
			a.TotalChunks = totalChunks
			a.ProcessedAt = &processedAt
		}
	}
	return nil
}

func matchAttachment(a *entity.Attachment, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if a.Id != sp.ID {
				return false
			}
		case specification.BySessionID:
			if a.SessionId != sp.SessionID {
				return false
			}
		case specification.ByFilename:
			if a.Filename != sp.Filename {
				return false
			}
		case specification.ByStatus:
			if a.Status != sp.Status {
				return false
			}
		}
	}
	return true
}

type fakeAttachmentChunkRepo struct {
	chunks        []*entity.AttachmentChunk
	bulkErr       error
	searchResults []*contract.ScoredAttachmentChunk
	searchErr     error
}

func (r *fakeAttachmentChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.AttachmentChunk) error {
	if r.bulkErr != nil {
		return r.bulkErr
	}
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *fakeAttachmentChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AttachmentChunk, error) {
	return r.chunks, nil
}

func (r *fakeAttachmentChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.chunks)), nil
}

func (r *fakeAttachmentChunkRepo) DeleteByAttachmentId(ctx context.Context, attachmentId uuid.UUID) error {
	kept := r.chunks[:0]
	for _, c := range r.chunks {
		if c.AttachmentId != attachmentId {
			kept = append(kept, c)
		}
	}
	r.chunks = kept
	return nil
}

func (r *fakeAttachmentChunkRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	kept := r.chunks[:0]
	for _, c := range r.chunks {
		if c.SessionId != sessionId {
			kept = append(kept, c)
		}
	}
	r.chunks = kept
	return nil
}

func (r *fakeAttachmentChunkRepo) SearchBySession(ctx context.Context, emb []float32, sessionId uuid.UUID, limit int, threshold *float64) ([]*contract.ScoredAttachmentChunk, error) {
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	return r.searchResults, nil
}

// ----- unit of work -----

type fakeUow struct {
	userRepo            *fakeUserRepo
	sessionRepo         *fakeSessionRepo
	turnRepo            *fakeTurnRepo
	kbRepo              *fakeKBRepo
	kbDocRepo           *fakeKBDocRepo
	kbChunkRepo         *fakeKBChunkRepo
	sessionKBRepo       *fakeSessionKBRepo
	attachmentRepo      *fakeAttachmentRepo
	attachmentChunkRepo *fakeAttachmentChunkRepo

	begins    int
	commits   int
	rollbacks int
	beginErr  error
	commitErr error
	inTx      bool
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		userRepo:            &fakeUserRepo{},
		sessionRepo:         &fakeSessionRepo{},
		turnRepo:            &fakeTurnRepo{},
		kbRepo:              &fakeKBRepo{},
		kbDocRepo:           &fakeKBDocRepo{},
		kbChunkRepo:         &fakeKBChunkRepo{},
		sessionKBRepo:       &fakeSessionKBRepo{},
		attachmentRepo:      &fakeAttachmentRepo{},
		attachmentChunkRepo: &fakeAttachmentChunkRepo{},
	}
}

func (u *fakeUow) Begin(ctx context.Context) error {
	if u.beginErr != nil {
		return u.beginErr
	}
	if u.inTx {
		return errors.New("transaction already started")
	}
	u.inTx = true
	u.begins++
	return nil
}

func (u *fakeUow) Commit() error {
	if !u.inTx {
		return errors.New("no transaction to commit")
	}
	u.inTx = false
	if u.commitErr != nil {
		return u.commitErr
	}
	u.commits++
	return nil
}

func (u *fakeUow) Rollback() error {
	if !u.inTx {
		return errors.New("no transaction to rollback")
	}
	u.inTx = false
	u.rollbacks++
	return nil
}

func (u *fakeUow) UserRepository() contract.UserRepository                 { return u.userRepo }
func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository  { return u.sessionRepo }
func (u *fakeUow) ConversationTurnRepository() contract.ConversationTurnRepository {
	return u.turnRepo
}
func (u *fakeUow) KnowledgeBaseRepository() contract.KnowledgeBaseRepository { return u.kbRepo }
func (u *fakeUow) KBDocumentRepository() contract.KBDocumentRepository       { return u.kbDocRepo }
func (u *fakeUow) KBChunkRepository() contract.KBChunkRepository             { return u.kbChunkRepo }
func (u *fakeUow) SessionKBRepository() contract.SessionKBRepository         { return u.sessionKBRepo }
func (u *fakeUow) AttachmentRepository() contract.AttachmentRepository       { return u.attachmentRepo }
func (u *fakeUow) AttachmentChunkRepository() contract.AttachmentChunkRepository {
	return u.attachmentChunkRepo
}

type fakeFactory struct {
	uow *fakeUow
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }
