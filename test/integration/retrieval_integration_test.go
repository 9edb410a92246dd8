package integration

import (
	"context"
	"log"
	"math"
	"os"
	"testing"
	"time"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/unitofwork"
	"rag-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embeddingAt builds a 768-dim vector at the given angle in the plane of the
// first two components, so cosine similarity against embeddingAt(0) is
// exactly cos(angle).
func embeddingAt(angle float64) []float32 {
	v := make([]float32, 768)
	v[0] = float32(math.Cos(angle))
	v[1] = float32(math.Sin(angle))
	return v
}

func TestRetrievalQueries(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	t.Run("older turn search excludes the recent window", func(t *testing.T) {
		session := &entity.ChatSession{Id: uuid.New(), Title: "retrieval integration"}
		require.NoError(t, uow.ChatSessionRepository().Create(ctx, session))
		defer func() {
			_ = uow.ConversationTurnRepository().DeleteBySessionId(ctx, session.Id)
			_ = uow.ChatSessionRepository().Delete(ctx, session.Id)
		}()

		query := embeddingAt(0)
		base := time.Now().Add(-time.Hour)

		// Three older turns at slight angles, then three newer turns that
		// match the query exactly. If the exclusion failed, the newer turns
		// would dominate the result with similarity 1.0.
		olderIds := make(map[uuid.UUID]bool)
		for i, angle := range []float64{0.1, 0.2, 0.3} {
			turn := &entity.ConversationTurn{
				Id:        uuid.New(),
				SessionId: session.Id,
				Role:      entity.RoleUser,
				Content:   "older turn",
				Embedding: embeddingAt(angle),
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}
			require.NoError(t, uow.ConversationTurnRepository().Create(ctx, turn))
			olderIds[turn.Id] = true
		}
		recentIds := make(map[uuid.UUID]bool)
		for i := 0; i < 3; i++ {
			turn := &entity.ConversationTurn{
				Id:        uuid.New(),
				SessionId: session.Id,
				Role:      entity.RoleUser,
				Content:   "recent turn",
				Embedding: embeddingAt(0),
				CreatedAt: base.Add(time.Duration(30+i) * time.Minute),
			}
			require.NoError(t, uow.ConversationTurnRepository().Create(ctx, turn))
			recentIds[turn.Id] = true
		}

		scored, err := uow.ConversationTurnRepository().SearchSimilarExcludingRecent(
			ctx, query, session.Id, 3, 3, nil)
		require.NoError(t, err)
		require.Len(t, scored, 3)

		recent, err := uow.ConversationTurnRepository().RecentTurns(ctx, session.Id, 3)
		require.NoError(t, err)
		require.Len(t, recent, 3)

		// The two result sets are disjoint: every scored turn comes from
		// the older set, never from the recent window.
		for _, st := range scored {
			assert.True(t, olderIds[st.Turn.Id], "scored turn must be an older turn")
			assert.False(t, recentIds[st.Turn.Id], "scored turn must not be in the recent window")
		}
		for _, rt := range recent {
			assert.True(t, recentIds[rt.Id])
		}

		// Best match first, and below the perfect similarity the excluded
		// recent turns would have had.
		assert.InDelta(t, math.Cos(0.1), scored[0].Similarity, 1e-4)
		assert.Greater(t, scored[0].Similarity, scored[1].Similarity)
	})

	t.Run("kb search caps chunks per kb", func(t *testing.T) {
		user := &entity.User{Id: uuid.New(), Username: "retrieval-it-" + uuid.NewString()}
		require.NoError(t, uow.UserRepository().Create(ctx, user))

		kbA := &entity.KnowledgeBase{Id: uuid.New(), UserId: user.Id, Title: "Large KB"}
		kbB := &entity.KnowledgeBase{Id: uuid.New(), UserId: user.Id, Title: "Small KB"}
		require.NoError(t, uow.KnowledgeBaseRepository().Create(ctx, kbA))
		require.NoError(t, uow.KnowledgeBaseRepository().Create(ctx, kbB))
		defer func() {
			for _, kbId := range []uuid.UUID{kbA.Id, kbB.Id} {
				_ = uow.KBChunkRepository().DeleteByKBId(ctx, kbId)
				_ = uow.KBDocumentRepository().DeleteByKBId(ctx, kbId)
				_ = uow.KnowledgeBaseRepository().Delete(ctx, kbId)
			}
			_ = uow.UserRepository().Delete(ctx, user.Id)
		}()

		docA := &entity.KBDocument{
			Id: uuid.New(), KbId: kbA.Id, UploadedBy: user.Id,
			Filename: "large.pdf", Status: entity.IngestStatusCompleted,
		}
		docB := &entity.KBDocument{
			Id: uuid.New(), KbId: kbB.Id, UploadedBy: user.Id,
			Filename: "small.pdf", Status: entity.IngestStatusCompleted,
		}
		require.NoError(t, uow.KBDocumentRepository().Create(ctx, docA))
		require.NoError(t, uow.KBDocumentRepository().Create(ctx, docB))

		// Five close matches in KB A, a single one in KB B.
		var chunksA []*entity.KBChunk
		for i := 0; i < 5; i++ {
			chunksA = append(chunksA, &entity.KBChunk{
				Id: uuid.New(), KbId: kbA.Id, DocumentId: docA.Id,
				ChunkIndex: i, Text: "large kb chunk",
				Embedding: embeddingAt(0.05 * float64(i+1)), Indexed: true,
			})
		}
		require.NoError(t, uow.KBChunkRepository().CreateBulk(ctx, chunksA))
		require.NoError(t, uow.KBChunkRepository().CreateBulk(ctx, []*entity.KBChunk{{
			Id: uuid.New(), KbId: kbB.Id, DocumentId: docB.Id,
			ChunkIndex: 0, Text: "small kb chunk",
			Embedding: embeddingAt(0.3), Indexed: true,
		}}))

		scored, err := uow.KBChunkRepository().SearchAcrossKBs(
			ctx, embeddingAt(0), []uuid.UUID{kbA.Id, kbB.Id}, 3, nil)
		require.NoError(t, err)
		require.Len(t, scored, 4)

		// The large KB is capped at 3 so it cannot crowd out the small one.
		perKB := make(map[uuid.UUID]int)
		for _, sc := range scored {
			perKB[sc.Chunk.KbId]++
		}
		assert.Equal(t, 3, perKB[kbA.Id])
		assert.Equal(t, 1, perKB[kbB.Id])

		for _, sc := range scored {
			switch sc.Chunk.KbId {
			case kbA.Id:
				assert.Equal(t, "Large KB", sc.KBTitle)
				assert.Equal(t, "large.pdf", sc.Filename)
			case kbB.Id:
				assert.Equal(t, "Small KB", sc.KBTitle)
				assert.Equal(t, "small.pdf", sc.Filename)
			}
		}
	})
}
