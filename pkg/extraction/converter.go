package extraction

import "context"

// StructuredDocument is the normalized output of a document conversion.
type StructuredDocument struct {
	markdown  string
	plainText string
}

func NewStructuredDocument(markdown, plainText string) *StructuredDocument {
	return &StructuredDocument{
		markdown:  markdown,
		plainText: plainText,
	}
}

func (d *StructuredDocument) Markdown() string {
	return d.markdown
}

func (d *StructuredDocument) PlainText() string {
	return d.plainText
}

// Converter turns a rich-format file (PDF, DOCX, HTML, images...) into a
// structured document. Conversion errors are terminal for the document:
// callers do not retry.
type Converter interface {
	Convert(ctx context.Context, filePath string) (*StructuredDocument, error)
}
