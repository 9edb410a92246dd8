package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByKBID struct {
	KBID uuid.UUID
}

func (s ByKBID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kb_id = ?", s.KBID)
}

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByAttachmentID struct {
	AttachmentID uuid.UUID
}

func (s ByAttachmentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("attachment_id = ?", s.AttachmentID)
}

type ByFilename struct {
	Filename string
}

func (s ByFilename) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("filename = ?", s.Filename)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
