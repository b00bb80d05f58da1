package completion

import (
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Stream is a finite, eagerly computed sequence of completion chunks. The
// underlying CLI produces the whole answer at once, so every chunk exists
// before the first one is read; this is synthesized streaming, not
// incremental generation. A Stream is not restartable: once exhausted it
// yields nothing, and a second iteration over the same call requires a new
// CompleteStream call.
type Stream struct {
	chunks []Chunk
	next   int
}

// newStream synthesizes the chunk sequence for an answer: a role-announcing
// chunk, one content chunk per whitespace-delimited word (original spacing
// preserved), and a terminal chunk carrying the stop reason.
func newStream(model, content string) *Stream {
	id := "chatcmpl-" + uuid.NewString()
	created := time.Now().Unix()

	chunk := func(delta ChunkDelta, finish *string) Chunk {
		return Chunk{
			ID:      id,
			Object:  objectChunk,
			Created: created,
			Model:   model,
			Choices: []ChunkChoice{{Delta: delta, FinishReason: finish}},
		}
	}

	chunks := []Chunk{chunk(ChunkDelta{Role: RoleAssistant}, nil)}
	for _, word := range splitPreservingSpace(content) {
		chunks = append(chunks, chunk(ChunkDelta{Content: word}, nil))
	}
	stop := FinishStop
	chunks = append(chunks, chunk(ChunkDelta{}, &stop))

	return &Stream{chunks: chunks}
}

// Next returns the next chunk, or false once the sequence is exhausted.
func (s *Stream) Next() (Chunk, bool) {
	if s.next >= len(s.chunks) {
		return Chunk{}, false
	}
	c := s.chunks[s.next]
	s.next++
	return c, true
}

// Len returns the total number of chunks in the sequence, independent of
// how many have been consumed.
func (s *Stream) Len() int {
	return len(s.chunks)
}

// splitPreservingSpace splits s into word-sized pieces whose concatenation
// is exactly s: each piece is one whitespace-delimited word plus the
// whitespace that follows it, with any leading whitespace attached to the
// first piece.
func splitPreservingSpace(s string) []string {
	if s == "" {
		return nil
	}

	var pieces []string
	start := 0
	seenWord := false
	prevSpace := false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if !space && prevSpace && seenWord {
			pieces = append(pieces, s[start:i])
			start = i
		}
		if !space {
			seenWord = true
		}
		prevSpace = space
	}
	return append(pieces, s[start:])
}
