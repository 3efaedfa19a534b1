// Package splitter provides a recursive character text splitter.
package splitter

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators are tried in order, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Processor splits document records into bounded, overlapping chunks.
// Image and table records pass through unchanged.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the splitter.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator list. The empty separator is
// always tried last so any text can be split.
func WithSeparators(seps []string) Option {
	return func(p *Processor) {
		if len(seps) == 0 {
			return
		}
		p.separators = append([]string(nil), seps...)
		if p.separators[len(p.separators)-1] != "" {
			p.separators = append(p.separators, "")
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "splitter"
}

// Process splits every splittable record, preserving order. Chunks inherit
// the parent's metadata.
func (p *Processor) Process(ctx context.Context, records []domain.Record) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !rec.Type().Splittable() {
			out = append(out, rec)
			continue
		}
		for _, text := range p.SplitText(rec.Content()) {
			out = append(out, rec.WithContent(text))
		}
	}
	return out, nil
}

// SplitText splits text into chunks of at most chunkSize characters.
// Text that already fits comes back as a single trimmed chunk.
func (p *Processor) SplitText(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if runeLen(trimmed) <= p.chunkSize {
		return []string{trimmed}
	}
	return p.split(text, p.separators)
}

func (p *Processor) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var next []string
	for i, s := range separators {
		if s == "" {
			sep = s
			break
		}
		if strings.Contains(text, s) {
			sep = s
			next = separators[i+1:]
			break
		}
	}

	var chunks, fits []string
	for _, piece := range splitOn(text, sep) {
		if runeLen(piece) <= p.chunkSize {
			fits = append(fits, piece)
			continue
		}
		if len(fits) > 0 {
			chunks = append(chunks, p.merge(fits, sep)...)
			fits = nil
		}
		if len(next) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, p.split(piece, next)...)
		}
	}
	if len(fits) > 0 {
		chunks = append(chunks, p.merge(fits, sep)...)
	}
	return chunks
}

// merge packs pieces greedily into windows of at most chunkSize characters,
// carrying up to overlap characters of trailing pieces into the next window.
func (p *Processor) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var (
		chunks  []string
		current []string
		total   int
	)

	joinCost := func() int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n+joinCost() > p.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > p.overlap || (total > 0 && total+n+joinCost() > p.chunkSize) {
				total -= runeLen(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		total += n + joinCost()
		current = append(current, piece)
	}

	if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitOn splits text on sep, dropping empty pieces. The empty separator
// splits into single characters.
func splitOn(text, sep string) []string {
	var parts []string
	if sep == "" {
		parts = strings.Split(text, "")
	} else {
		parts = strings.Split(text, sep)
	}
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
