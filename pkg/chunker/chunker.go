// Package chunker splits raw document text into overlapping passages.
// Splitting is rune-based and deterministic: re-concatenating the chunks
// after stripping each non-first chunk's overlap prefix reconstructs the
// input exactly.
package chunker

import (
	"strings"

	"github.com/raglab/deeprag/internal/models"
	"github.com/raglab/deeprag/pkg/apperr"
)

const (
	StrategyFixed     = "fixed"
	StrategyRecursive = "recursive"
)

type Options struct {
	Strategy string
	Size     int
	Overlap  int
}

// Chunk splits text into an ordered sequence of chunks. Each chunk after
// the first repeats the trailing Overlap runes of the previous chunk.
// Text that is empty or no longer than Size yields exactly one chunk
// equal to the input.
func Chunk(text string, opts Options) ([]models.Chunk, error) {
	if opts.Size < 1 {
		return nil, apperr.Configurationf("chunk size must be positive, got %d", opts.Size)
	}
	if opts.Overlap < 0 || opts.Overlap >= opts.Size {
		return nil, apperr.Configurationf("chunk overlap must be non-negative and less than size, got overlap=%d size=%d", opts.Overlap, opts.Size)
	}

	runes := []rune(text)
	if len(runes) <= opts.Size {
		return []models.Chunk{{Text: text, Index: 0}}, nil
	}

	var texts []string
	switch opts.Strategy {
	case StrategyFixed, "":
		texts = fixedSplit(runes, opts.Size, opts.Overlap)
	case StrategyRecursive:
		texts = recursiveSplit(text, opts.Size, opts.Overlap)
	default:
		return nil, apperr.Configurationf("unknown chunking strategy: %s", opts.Strategy)
	}

	chunks := make([]models.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = models.Chunk{Text: t, Index: i}
	}
	return chunks, nil
}

// fixedSplit cuts rune windows of length size, each window starting
// size-overlap runes after the previous one.
func fixedSplit(runes []rune, size, overlap int) []string {
	step := size - overlap
	var out []string
	for start := 0; ; start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// recursiveSplit breaks the text at paragraph, then sentence, then word,
// then rune boundaries until every piece fits, merges adjacent pieces
// back up to the target length, and finally adds the overlap prefixes.
// The merge target leaves room for the overlap so no chunk exceeds size.
func recursiveSplit(text string, size, overlap int) []string {
	target := size - overlap
	pieces := splitToFit(text, target, separators)
	merged := mergePieces(pieces, target)

	if overlap == 0 || len(merged) < 2 {
		return merged
	}
	// The prefix comes from the previous emitted chunk, so stripping
	// min(overlap, len(previous chunk)) runes always recovers the
	// underlying pieces.
	out := make([]string, len(merged))
	out[0] = merged[0]
	for i := 1; i < len(merged); i++ {
		prev := []rune(out[i-1])
		tail := prev
		if len(prev) > overlap {
			tail = prev[len(prev)-overlap:]
		}
		out[i] = string(tail) + merged[i]
	}
	return out
}

var separators = []string{"\n\n", "\n", ". ", " "}

// splitToFit returns pieces of at most max runes whose concatenation is
// exactly s. Separators stay attached to the piece they terminate.
func splitToFit(s string, max int, seps []string) []string {
	if len([]rune(s)) <= max {
		return []string{s}
	}
	if len(seps) == 0 {
		// No structure left; cut at rune boundaries.
		runes := []rune(s)
		var out []string
		for start := 0; start < len(runes); start += max {
			end := start + max
			if end > len(runes) {
				end = len(runes)
			}
			out = append(out, string(runes[start:end]))
		}
		return out
	}

	parts := strings.SplitAfter(s, seps[0])
	if len(parts) == 1 {
		return splitToFit(s, max, seps[1:])
	}
	var out []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, splitToFit(part, max, seps[1:])...)
	}
	return out
}

// mergePieces greedily joins adjacent pieces while the result stays
// within max runes.
func mergePieces(pieces []string, max int) []string {
	var out []string
	var current strings.Builder
	currentLen := 0

	for _, piece := range pieces {
		n := len([]rune(piece))
		if currentLen > 0 && currentLen+n > max {
			out = append(out, current.String())
			current.Reset()
			currentLen = 0
		}
		current.WriteString(piece)
		currentLen += n
	}
	if currentLen > 0 {
		out = append(out, current.String())
	}
	return out
}
