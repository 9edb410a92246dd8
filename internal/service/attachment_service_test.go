package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/entity"
)

func TestAttachmentListAndShow(t *testing.T) {
	uow := newFakeUow()
	session := seedSession(uow)
	attachment := &entity.Attachment{
		Id:         uuid.New(),
		SessionId:  session.Id,
		Filename:   "report.pdf",
		Status:     entity.IngestStatusCompleted,
		UploadedAt: time.Now(),
	}
	uow.attachmentRepo.attachments = append(uow.attachmentRepo.attachments, attachment)

	svc := NewAttachmentService(&fakeFactory{uow: uow})
	ctx := context.Background()

	list, err := svc.List(ctx, session.Id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "report.pdf", list[0].Filename)

	shown, err := svc.Show(ctx, session.Id, attachment.Id)
	require.NoError(t, err)
	assert.Equal(t, attachment.Id, shown.Id)

	// Scoped to the owning session.
	_, err = svc.Show(ctx, uuid.New(), attachment.Id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAttachmentDelete(t *testing.T) {
	uow := newFakeUow()
	session := seedSession(uow)
	attachment := &entity.Attachment{
		Id:        uuid.New(),
		SessionId: session.Id,
		Filename:  "report.pdf",
	}
	uow.attachmentRepo.attachments = append(uow.attachmentRepo.attachments, attachment)

	uow.attachmentChunkRepo.chunks = append(uow.attachmentChunkRepo.chunks,
		&entity.AttachmentChunk{Id: uuid.New(), AttachmentId: attachment.Id, SessionId: session.Id, Text: "chunk a"},
		&entity.AttachmentChunk{Id: uuid.New(), AttachmentId: attachment.Id, SessionId: session.Id, Text: "chunk b"},
	)

	svc := NewAttachmentService(&fakeFactory{uow: uow})
	require.NoError(t, svc.Delete(context.Background(), session.Id, attachment.Id))
	assert.Empty(t, uow.attachmentRepo.attachments)
	assert.Empty(t, uow.attachmentChunkRepo.chunks, "chunks must die with their attachment")
	assert.Equal(t, 1, uow.commits)
	assert.Zero(t, uow.rollbacks)

	err := svc.Delete(context.Background(), session.Id, attachment.Id)
	assert.True(t, apperror.IsNotFound(err))
}
