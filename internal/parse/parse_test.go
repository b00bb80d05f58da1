package parse

import (
	"testing"

	gemerrors "github.com/schoolboyqueue/gemwrap/internal/errors"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		stdout      string
		wantContent string
		wantKind    Kind
		wantErr     bool
	}{
		"fragments concatenate in order": {
			stdout:      `{"candidates":[{"content":{"parts":[{"text":"A"},{"text":"B"}]}}]}`,
			wantContent: "AB",
			wantKind:    KindStructured,
		},
		"single fragment": {
			stdout:      `{"candidates":[{"content":{"parts":[{"text":"4"}]}}]}`,
			wantContent: "4",
			wantKind:    KindStructured,
		},
		"simple content shape": {
			stdout:      `{"content":"hello","role":"assistant"}`,
			wantContent: "hello",
			wantKind:    KindStructured,
		},
		"plain text": {
			stdout:      "Hello",
			wantContent: "Hello",
			wantKind:    KindPlainText,
		},
		"plain text is trimmed": {
			stdout:      "  Hello world \n",
			wantContent: "Hello world",
			wantKind:    KindPlainText,
		},
		"malformed json falls back to plain text": {
			stdout:      `{"candidates": [`,
			wantContent: `{"candidates": [`,
			wantKind:    KindPlainText,
		},
		"unrecognized json shape falls back to plain text": {
			stdout:      `{"something": "else"}`,
			wantContent: `{"something": "else"}`,
			wantKind:    KindPlainText,
		},
		"empty output is an error": {
			stdout:  "",
			wantErr: true,
		},
		"whitespace-only output is an error": {
			stdout:  "   \n\t  ",
			wantErr: true,
		},
		"json with empty parts falls back to plain text": {
			stdout:      `{"candidates":[{"content":{"parts":[]}}]}`,
			wantContent: `{"candidates":[{"content":{"parts":[]}}]}`,
			wantKind:    KindPlainText,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.stdout)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want ParseError", tt.stdout)
				}
				if !gemerrors.IsParse(err) {
					t.Errorf("Parse(%q) error = %T, want *ParseError", tt.stdout, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.stdout, err)
			}
			if got.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", got.Content, tt.wantContent)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestParse_ExtractsReportedUsage(t *testing.T) {
	t.Parallel()
	stdout := `{"candidates":[{"content":{"parts":[{"text":"hi"}]}}],` +
		`"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5,"totalTokenCount":15}}`

	got, err := Parse(stdout)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Usage == nil {
		t.Fatal("Usage = nil, want reported counts")
	}
	if got.Usage.PromptTokens != 10 || got.Usage.CompletionTokens != 5 || got.Usage.TotalTokens != 15 {
		t.Errorf("Usage = %+v, want 10/5/15", got.Usage)
	}
}

func TestParse_ComputesMissingTotal(t *testing.T) {
	t.Parallel()
	stdout := `{"candidates":[{"content":{"parts":[{"text":"hi"}]}}],` +
		`"usageMetadata":{"promptTokenCount":7,"candidatesTokenCount":3}}`

	got, err := Parse(stdout)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Usage.TotalTokens != 10 {
		t.Errorf("TotalTokens = %d, want 10", got.Usage.TotalTokens)
	}
}
