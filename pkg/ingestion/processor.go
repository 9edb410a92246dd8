package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"rag-chat-be/pkg/extraction"
)

// Chunk is one bounded span of extracted text plus its provenance.
type Chunk struct {
	Text     string
	Metadata ChunkMetadata
}

type ChunkMetadata struct {
	Filename string
	Section  string
	Page     int // approximate
	Type     string
}

func (m ChunkMetadata) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"filename": m.Filename,
		"section":  m.Section,
		"page":     m.Page,
		"type":     m.Type,
	}
}

const (
	minChunkChars        = 50  // windows trimmed below this are dropped
	minSectionChunkChars = 100 // section buffers below this are not flushed
	lastResortChunkChars = 2000
)

// Processor turns an uploaded file into ordered chunks. Plain text and
// markdown are windowed directly; rich formats go through the external
// conversion service with structure-aware segmentation.
type Processor struct {
	converter    extraction.Converter
	chunkSize    int
	chunkOverlap int
}

func NewProcessor(converter extraction.Converter, chunkSize, chunkOverlap int) *Processor {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 100
	}
	return &Processor{
		converter:    converter,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

func (p *Processor) Process(ctx context.Context, filePath, originalFilename string) ([]Chunk, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ext == ".txt" || ext == ".md" {
		return p.processPlainText(filePath, originalFilename)
	}

	doc, err := p.converter.Convert(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("document conversion: %w", err)
	}

	chunks := p.parseMarkdownToChunks(doc.Markdown(), originalFilename)

	// Structured segmentation that produced fewer than 2 chunks usually
	// means the markdown had no usable structure; fall back to paragraphs.
	if len(chunks) < 2 {
		chunks = p.fallbackTextExtraction(doc.PlainText(), originalFilename)
	}

	return chunks, nil
}

func (p *Processor) processPlainText(filePath, originalFilename string) ([]Chunk, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	text := string(raw)
	if len(strings.TrimSpace(text)) < minChunkChars {
		return nil, nil
	}

	return p.splitTextToChunks(text, originalFilename), nil
}

// splitTextToChunks produces overlapping fixed-size windows over the
// whitespace-normalized text. Step is always >= 1 so it terminates for any
// input length.
func (p *Processor) splitTextToChunks(text, filename string) []Chunk {
	cleaned := strings.Join(strings.Fields(text), " ")
	runes := []rune(cleaned)

	step := p.chunkSize - p.chunkOverlap
	if step < 1 {
		step = 1
	}

	var chunks []Chunk
	index := 0
	pageNumber := 1

	for start := 0; start < len(runes); start += step {
		end := start + p.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunkText := strings.TrimSpace(string(runes[start:end]))
		if len(chunkText) < minChunkChars {
			continue
		}
		chunks = append(chunks, Chunk{
			Text: chunkText,
			Metadata: ChunkMetadata{
				Filename: filename,
				Section:  "PLAIN_TEXT",
				Page:     pageNumber,
				Type:     "plain_text",
			},
		})
		index++
		if index%3 == 0 {
			pageNumber++
		}
	}

	return chunks
}

// parseMarkdownToChunks segments converted markdown by headers and short
// ALL-CAPS lines, accumulating body text until a boundary or the target
// chunk size flushes it.
func (p *Processor) parseMarkdownToChunks(markdown, filename string) []Chunk {
	var chunks []Chunk

	currentSection := "GENERAL"
	var buffer strings.Builder
	pageNumber := 1

	// A boundary flush that has too little text keeps the buffer, so short
	// pre-header lines carry into the next section instead of being lost.
	flush := func() {
		text := strings.TrimSpace(buffer.String())
		if len(text) <= minSectionChunkChars {
			return
		}
		chunks = append(chunks, Chunk{
			Text: text,
			Metadata: ChunkMetadata{
				Filename: filename,
				Section:  currentSection,
				Page:     pageNumber,
				Type:     "section_content",
			},
		})
		buffer.Reset()
	}

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Markdown headers start a new section.
		if strings.HasPrefix(line, "#") {
			flush()
			currentSection = strings.TrimSpace(strings.TrimLeft(line, "#"))
			continue
		}

		// Short ALL-CAPS lines act as section boundaries too.
		if isAllCaps(line) && len(line) < 100 && len(strings.Fields(line)) <= 5 {
			flush()
			currentSection = line
			continue
		}

		buffer.WriteString(line)
		buffer.WriteString(" ")

		if buffer.Len() >= p.chunkSize {
			flush()
			pageNumber++ // approximate page tracking
		}
	}

	// Trailing buffer
	flush()

	return chunks
}

// fallbackTextExtraction splits the plain-text export on blank-line
// paragraph boundaries when markdown segmentation found no structure.
func (p *Processor) fallbackTextExtraction(fullText, filename string) []Chunk {
	var chunks []Chunk

	currentSection := "GENERAL"
	paragraphs := strings.Split(fullText, "\n\n")
	emitted := 0

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) < minSectionChunkChars {
			// Short ALL-CAPS paragraphs are section markers, not content.
			if isAllCaps(para) {
				currentSection = para
			}
			continue
		}

		chunks = append(chunks, Chunk{
			Text: para,
			Metadata: ChunkMetadata{
				Filename: filename,
				Section:  currentSection,
				Page:     (emitted / 3) + 1, // rough estimate
				Type:     "paragraph",
			},
		})
		emitted++
	}

	if len(chunks) > 0 {
		return chunks
	}

	// Last resort: emit the head of the document as a single chunk.
	text := strings.TrimSpace(fullText)
	if len(text) > 200 {
		runes := []rune(text)
		if len(runes) > lastResortChunkChars {
			runes = runes[:lastResortChunkChars]
		}
		chunks = append(chunks, Chunk{
			Text: string(runes),
			Metadata: ChunkMetadata{
				Filename: filename,
				Section:  "FULL_DOCUMENT",
				Page:     1,
				Type:     "full_text",
			},
		})
	}

	return chunks
}

// isAllCaps reports whether s contains at least one letter and no lowercase
// letters.
func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// EstimateTokens approximates a token count as a word count. Downstream
// consumers must treat this as an estimate, never an exact tokenizer count.
func EstimateTokens(text string) int {
	return len(strings.Fields(text))
}
