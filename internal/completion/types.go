package completion

// OpenAI-compatible chat completion value types. Only the fields the
// adapter actually produces are modeled; tool calls, logprobs, and the rest
// of the OpenAI surface have no meaning for a CLI-backed model.

// ChatCompletion is the externally visible result of one completion call.
type ChatCompletion struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice wraps the answer content with a completion reason.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Message is a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage records prompt/completion/total token counts. Counts are exact when
// the CLI reported them and estimated otherwise; Estimated says which.
type Usage struct {
	PromptTokens     int  `json:"prompt_tokens"`
	CompletionTokens int  `json:"completion_tokens"`
	TotalTokens      int  `json:"total_tokens"`
	Estimated        bool `json:"-"`
}

// Chunk is one unit of a synthesized streaming response.
type Chunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice carries the incremental delta for a chunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

// ChunkDelta is the incremental content of a chunk.
type ChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

const (
	objectCompletion = "chat.completion"
	objectChunk      = "chat.completion.chunk"

	// RoleAssistant is the role announced by the first streaming chunk.
	RoleAssistant = "assistant"

	// FinishStop is the completion reason for a normally finished answer.
	FinishStop = "stop"
)
