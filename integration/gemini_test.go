// Package integration exercises the full query path against the
// mock gemini CLI in mocks/scripts, with no network access.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolboyqueue/gemwrap/internal/completion"
	gemerrors "github.com/schoolboyqueue/gemwrap/internal/errors"
	"github.com/schoolboyqueue/gemwrap/internal/locator"
	"github.com/schoolboyqueue/gemwrap/internal/retry"
	"github.com/schoolboyqueue/gemwrap/internal/transport"
)

func mockGeminiPath(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell mock is not portable to windows")
	}
	path, err := filepath.Abs(filepath.Join("..", "mocks", "scripts", "mock-gemini.sh"))
	require.NoError(t, err)
	return path
}

func newClient(t *testing.T, policy retry.Policy) *completion.Client {
	t.Helper()
	runner := transport.NewRunner(locator.New(mockGeminiPath(t)), nil, 30*time.Second)
	return completion.NewClient(runner, completion.Settings{Policy: policy})
}

func quickPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond, MaxTotalWait: time.Second}
}

func TestQueryAgainstMockCLI(t *testing.T) {
	t.Setenv("MOCK_RESPONSE", `{"candidates":[{"content":{"parts":[{"text":"4"}]}}]}`)

	client := newClient(t, quickPolicy())
	opts := transport.DefaultOptions()
	opts.Model = "gemini-1.5-flash"

	result, err := client.Complete(context.Background(), "2+2?", opts)
	require.NoError(t, err)
	require.Len(t, result.Choices, 1)
	assert.Equal(t, "4", result.Choices[0].Message.Content)
	assert.Equal(t, "stop", result.Choices[0].FinishReason)
}

func TestStreamingAgainstMockCLI(t *testing.T) {
	t.Setenv("MOCK_RESPONSE", "the quick brown fox")

	client := newClient(t, quickPolicy())
	stream, err := client.CompleteStream(context.Background(), "describe a fox", transport.DefaultOptions())
	require.NoError(t, err)

	var sb strings.Builder
	for {
		chunk, ok := stream.Next()
		if !ok {
			break
		}
		sb.WriteString(chunk.Choices[0].Delta.Content)
	}
	assert.Equal(t, "the quick brown fox", sb.String())
}

func TestRetryExhaustionAgainstMockCLI(t *testing.T) {
	t.Setenv("MOCK_EXIT_CODE", "1")
	t.Setenv("MOCK_STDERR", "429 rate limit exceeded")

	client := newClient(t, quickPolicy())
	_, err := client.Complete(context.Background(), "prompt", transport.DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 attempts")
	assert.True(t, gemerrors.IsRetryable(err))
}

func TestFatalErrorAgainstMockCLI(t *testing.T) {
	t.Setenv("MOCK_EXIT_CODE", "1")
	t.Setenv("MOCK_STDERR", "Invalid API key")

	client := newClient(t, quickPolicy())
	_, err := client.Complete(context.Background(), "prompt", transport.DefaultOptions())
	require.Error(t, err)

	var upstream *gemerrors.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.LessOrEqual(t, upstream.Attempts, 1)
}

func TestTimeoutAgainstMockCLI(t *testing.T) {
	t.Setenv("MOCK_DELAY", "10")

	runner := transport.NewRunner(locator.New(mockGeminiPath(t)), nil, 30*time.Second)
	client := completion.NewClient(runner, completion.Settings{
		Policy: retry.Policy{MaxAttempts: 1, BaseDelay: 10 * time.Millisecond, MaxTotalWait: time.Second, NoRetry: true},
	})

	opts := transport.DefaultOptions()
	opts.Timeout = time.Second

	start := time.Now()
	_, err := client.Complete(context.Background(), "prompt", opts)
	require.Error(t, err)
	assert.True(t, gemerrors.IsTimeout(err), "got %v", err)
	assert.Less(t, time.Since(start), 15*time.Second)
}

func TestCallLogRecordsArgv(t *testing.T) {
	callLog := filepath.Join(t.TempDir(), "calls.log")
	t.Setenv("MOCK_CALL_LOG", callLog)
	t.Setenv("MOCK_RESPONSE", "ok")

	client := newClient(t, quickPolicy())
	opts := transport.DefaultOptions()
	opts.Model = "gemini-1.5-pro"

	_, err := client.Complete(context.Background(), "hello world", opts)
	require.NoError(t, err)

	data, err := os.ReadFile(callLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "--model gemini-1.5-pro")
	assert.Contains(t, string(data), "hello world")
}
