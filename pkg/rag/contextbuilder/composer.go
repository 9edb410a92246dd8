package contextbuilder

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultSystemPrompt = "You are a helpful AI assistant."

	closingInstruction = "Instructions:\n" +
		"Based on the above context, answer the user's current question " +
		"naturally and conversationally. Use the information provided but " +
		"respond as if you naturally know this. Do not mention that you're " +
		"using conversation history or knowledge bases."
)

var sectionDivider = strings.Repeat("━", 60)

// Turn is one conversation message as presented to the model.
type Turn struct {
	Role      string
	Text      string
	CreatedAt time.Time
}

// ScoredTurn is an older turn retrieved by similarity.
type ScoredTurn struct {
	Turn
	Similarity float64
}

// KBChunk is a knowledge-base excerpt with its provenance.
type KBChunk struct {
	KBTitle    string
	Filename   string
	Text       string
	Similarity float64
}

// AttachmentChunk is an excerpt from a file uploaded into the session.
type AttachmentChunk struct {
	Filename   string
	Text       string
	Similarity float64
}

// Input carries everything the composer folds into one context block.
type Input struct {
	RecentTurns      []Turn
	OlderTurns       []ScoredTurn
	KBChunks         []KBChunk
	AttachmentChunks []AttachmentChunk
	SystemPrompt     *string
}

// Composer renders retrieval results into a single structured prompt. The
// section order is fixed so identical inputs always produce identical
// prompts.
type Composer struct {
	now func() time.Time
}

func NewComposer() *Composer {
	return &Composer{now: time.Now}
}

// Compose builds the context text. Sections with no items are omitted
// entirely; the base prompt and closing instruction are always present.
func (c *Composer) Compose(in Input) string {
	var parts []string

	basePrompt := defaultSystemPrompt
	if in.SystemPrompt != nil && strings.TrimSpace(*in.SystemPrompt) != "" {
		basePrompt = *in.SystemPrompt
	}
	parts = append(parts, basePrompt, "")

	if len(in.RecentTurns) > 0 {
		parts = append(parts,
			sectionDivider,
			fmt.Sprintf("RECENT CONVERSATION (Last %d messages)", len(in.RecentTurns)),
			sectionDivider,
			"",
		)
		for _, turn := range in.RecentTurns {
			parts = append(parts,
				fmt.Sprintf("%s (%s):", capitalize(turn.Role), c.relativeTime(turn.CreatedAt)),
				turn.Text,
				"",
			)
		}
	}

	if len(in.OlderTurns) > 0 {
		parts = append(parts,
			sectionDivider,
			"RELEVANT PAST CONVERSATION (From earlier messages)",
			sectionDivider,
			"",
		)
		for _, turn := range in.OlderTurns {
			parts = append(parts,
				fmt.Sprintf("%s (%s - Similarity: %.2f):", capitalize(turn.Role), c.relativeTime(turn.CreatedAt), turn.Similarity),
				turn.Text,
				"",
			)
		}
	}

	if len(in.AttachmentChunks) > 0 {
		parts = append(parts,
			sectionDivider,
			"ATTACHED FILES CONTEXT",
			sectionDivider,
			"",
		)
		for _, chunk := range in.AttachmentChunks {
			parts = append(parts,
				fmt.Sprintf("📎 From: %q", chunk.Filename),
				fmt.Sprintf("   Similarity: %.2f", chunk.Similarity),
				"",
				chunk.Text,
				"",
			)
		}
	}

	if len(in.KBChunks) > 0 {
		parts = append(parts,
			sectionDivider,
			"KNOWLEDGE BASE CONTEXT",
			sectionDivider,
			"",
		)
		for _, chunk := range in.KBChunks {
			parts = append(parts,
				fmt.Sprintf("📚 From: %q (KB: %s)", chunk.Filename, chunk.KBTitle),
				fmt.Sprintf("   Similarity: %.2f", chunk.Similarity),
				"",
				chunk.Text,
				"",
			)
		}
	}

	parts = append(parts, sectionDivider, "", closingInstruction)

	return strings.Join(parts, "\n")
}

// relativeTime renders a timestamp the way a person would describe it in
// conversation, falling back to a calendar date past 30 days.
func (c *Composer) relativeTime(createdAt time.Time) string {
	if createdAt.IsZero() {
		return "recently"
	}

	diff := c.now().Sub(createdAt)
	if diff < 0 {
		return "just now"
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		return fmt.Sprintf("%d %s ago", mins, plural("minute", mins))
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		return fmt.Sprintf("%d %s ago", hours, plural("hour", hours))
	default:
		days := int(diff.Hours() / 24)
		switch {
		case days == 1:
			return "1 day ago"
		case days < 7:
			return fmt.Sprintf("%d days ago", days)
		case days < 30:
			weeks := days / 7
			return fmt.Sprintf("%d %s ago", weeks, plural("week", weeks))
		default:
			return createdAt.Format("Jan 02, 2006")
		}
	}
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
