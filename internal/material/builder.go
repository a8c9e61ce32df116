package material

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/csheth/edugenius/internal/catalog"
)

// Package bundles the deduplicated chunks plus per-mode context strings.
type Package struct {
	Source   string
	Sections map[catalog.ModeID]string
	Chunks   []Chunk
}

// ForMode returns the context for mode, or "" when nothing was loaded.
func (p *Package) ForMode(mode catalog.ModeID) string {
	if p == nil {
		return ""
	}
	return p.Sections[mode]
}

// Empty reports whether the package carries no usable text.
func (p *Package) Empty() bool {
	return p == nil || len(p.Chunks) == 0
}

// Chunk is one unique paragraph of the material.
type Chunk struct {
	ID    string
	Text  string
	Start int
	End   int
}

// Builder trims material into deduplicated per-mode context within budgets.
type Builder struct {
	budgets map[catalog.ModeID]int
}

var (
	paragraphSplit   = regexp.MustCompile(`\n[ \t]*\n`)
	whitespaceSanity = regexp.MustCompile(`\s+`)
)

var defaultBudgets = map[catalog.ModeID]int{
	catalog.ModeSolver:   8_000,
	catalog.ModeNotes:    24_000,
	catalog.ModePYQ:      12_000,
	catalog.ModeMaterial: 40_000,
}

// Keyword sets that pull chunks forward for a mode. Modes without one keep
// document order.
var modeKeywords = map[catalog.ModeID][]string{
	catalog.ModeSolver: {"example", "solution", "solve", "formula", "theorem", "proof", "step", "="},
	catalog.ModePYQ:    {"question", "marks", "exam", "paper", "previous year", "pyq", "section"},
}

// DefaultBudget returns the rune budget used for mode.
func DefaultBudget(mode catalog.ModeID) int {
	return defaultBudgets[mode]
}

// NewBuilder returns a Builder with the given budgets. Missing or
// non-positive entries fall back to DefaultBudget.
func NewBuilder(budgets map[catalog.ModeID]int) *Builder {
	result := map[catalog.ModeID]int{}
	for _, mode := range catalog.Modes() {
		if budgets != nil && budgets[mode.ID] > 0 {
			result[mode.ID] = budgets[mode.ID]
			continue
		}
		result[mode.ID] = DefaultBudget(mode.ID)
	}
	return &Builder{budgets: result}
}

// Build drops boilerplate and repeated paragraphs and clips one context
// string per mode.
func (b *Builder) Build(doc Document) *Package {
	content := sanitizeDocument(doc.Text)
	seen := map[string]bool{}
	var chunks []Chunk
	cursor := 0
	for _, paragraph := range paragraphSplit.Split(content, -1) {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" || isBoilerplate(trimmed) {
			continue
		}
		hash := hashChunk(canonicalParagraph(trimmed))
		if seen[hash] {
			continue
		}
		seen[hash] = true
		length := runeLen(trimmed)
		chunks = append(chunks, Chunk{ID: hash, Text: trimmed, Start: cursor, End: cursor + length})
		cursor += length
	}

	sections := map[catalog.ModeID]string{}
	for mode, budget := range b.budgets {
		sections[mode] = clipChunks(rankChunks(chunks, modeKeywords[mode]), budget)
	}
	return &Package{Source: doc.Source, Sections: sections, Chunks: chunks}
}

func sanitizeDocument(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, content)
}

func canonicalParagraph(text string) string {
	return strings.ToLower(whitespaceSanity.ReplaceAllString(strings.TrimSpace(text), " "))
}

func isBoilerplate(paragraph string) bool {
	lower := strings.ToLower(strings.TrimSpace(paragraph))
	switch {
	case lower == "":
		return true
	case lower == "contents", lower == "table of contents", lower == "index":
		return true
	case strings.HasPrefix(lower, "copyright"), strings.HasPrefix(lower, "all rights reserved"):
		return true
	case strings.HasPrefix(lower, "isbn"):
		return true
	case strings.HasPrefix(lower, "page ") && len(lower) <= 12:
		return true
	}
	letters, digits := 0, 0
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	if letters+digits == 0 {
		return true
	}
	// bare page numbers
	return letters == 0 && runeLen(lower) <= 8
}

func hashChunk(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

func clipChunks(chunks []Chunk, budget int) string {
	if budget <= 0 {
		return ""
	}
	var builder strings.Builder
	remaining := budget
	for _, chunk := range chunks {
		if remaining <= 0 {
			break
		}
		if builder.Len() > 0 {
			if remaining <= 2 {
				break
			}
			builder.WriteString("\n\n")
			remaining -= 2
		}
		runes := []rune(chunk.Text)
		if len(runes) > remaining {
			builder.WriteString(string(runes[:remaining]))
			break
		}
		builder.WriteString(chunk.Text)
		remaining -= len(runes)
	}
	return builder.String()
}

func runeLen(text string) int {
	return len([]rune(text))
}

func rankChunks(chunks []Chunk, keywords []string) []Chunk {
	if len(keywords) == 0 || len(chunks) == 0 {
		return chunks
	}
	type scoredChunk struct {
		chunk Chunk
		score int
		index int
	}
	scored := make([]scoredChunk, 0, len(chunks))
	for idx, chunk := range chunks {
		scored = append(scored, scoredChunk{chunk: chunk, score: scoreChunk(chunk.Text, keywords), index: idx})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score == scored[j].score {
			return scored[i].index < scored[j].index
		}
		return scored[i].score > scored[j].score
	})
	ranked := make([]Chunk, 0, len(scored))
	for _, entry := range scored {
		ranked = append(ranked, entry.chunk)
	}
	return ranked
}

func scoreChunk(text string, keywords []string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			score++
		}
	}
	return score
}
