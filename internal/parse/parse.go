// Package parse interprets raw Gemini CLI stdout. Structured JSON output is
// preferred; anything else falls back to trimmed plain text. Empty output is
// always an error, never an empty answer.
package parse

import (
	"encoding/json"
	"strings"

	gemerrors "github.com/schoolboyqueue/gemwrap/internal/errors"
)

// Kind tags the source of a parsed answer.
type Kind string

const (
	// KindStructured means the answer came from well-formed JSON.
	KindStructured Kind = "structured"
	// KindPlainText means the raw output was used verbatim (trimmed).
	KindPlainText Kind = "plain-text"
)

// Answer is the extracted natural-language content plus any usage metadata
// the CLI reported. Immutable once produced.
type Answer struct {
	Content string
	Kind    Kind
	// Usage is nil when the CLI reported no token counts.
	Usage *ReportedUsage
}

// ReportedUsage holds token counts as reported by the CLI itself. When
// present these are exact and take precedence over estimation.
type ReportedUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// candidatesDoc mirrors the CLI's structured output shape: a list of
// candidates, each holding a content object with ordered text parts.
type candidatesDoc struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// contentDoc is the simpler shape the CLI sometimes emits.
type contentDoc struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// Parse extracts the answer from raw stdout. Structured parsing is attempted
// first; an unrecognized or malformed document falls back to plain text.
func Parse(stdout string) (*Answer, error) {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return nil, gemerrors.NewParseError("empty output")
	}

	if answer, ok := parseStructured(trimmed); ok {
		return answer, nil
	}

	return &Answer{Content: trimmed, Kind: KindPlainText}, nil
}

// parseStructured tries the known JSON shapes. It reports false when the
// document is not JSON or carries no recognizable answer content.
func parseStructured(s string) (*Answer, bool) {
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}

	var doc candidatesDoc
	if err := json.Unmarshal([]byte(s), &doc); err == nil && len(doc.Candidates) > 0 {
		var sb strings.Builder
		for _, part := range doc.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
		if sb.Len() > 0 {
			answer := &Answer{Content: sb.String(), Kind: KindStructured}
			if doc.UsageMetadata != nil {
				answer.Usage = &ReportedUsage{
					PromptTokens:     doc.UsageMetadata.PromptTokenCount,
					CompletionTokens: doc.UsageMetadata.CandidatesTokenCount,
					TotalTokens:      doc.UsageMetadata.TotalTokenCount,
				}
				if answer.Usage.TotalTokens == 0 {
					answer.Usage.TotalTokens = answer.Usage.PromptTokens + answer.Usage.CompletionTokens
				}
			}
			return answer, true
		}
	}

	var simple contentDoc
	if err := json.Unmarshal([]byte(s), &simple); err == nil && simple.Content != "" {
		return &Answer{Content: simple.Content, Kind: KindStructured}, true
	}

	return nil, false
}
