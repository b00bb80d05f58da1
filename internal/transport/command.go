package transport

import "strconv"

// BuildArgs maps Options to the exact argument vector the Gemini CLI
// expects. The mapping is pure: the same prompt and options always produce
// the same vector, and no flag appears when its option is absent. Arguments
// are always passed as a vector, never through a shell, so no quoting or
// injection handling is needed.
//
// Invocation shape:
//
//	gemini [--model <name>] [--auto-approve] [--yes] [--temperature <f>]
//	       [--system <text>] [--max-output <n>] <prompt>
func BuildArgs(prompt string, opts Options) []string {
	var args []string

	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	if opts.AutoApprove {
		args = append(args, "--auto-approve")
	}
	if opts.YesMode {
		args = append(args, "--yes")
	}
	if opts.Temperature != nil {
		args = append(args, "--temperature", strconv.FormatFloat(*opts.Temperature, 'g', -1, 64))
	}
	if opts.SystemPrompt != "" {
		args = append(args, "--system", opts.SystemPrompt)
	}
	if opts.MaxOutputTokens > 0 {
		args = append(args, "--max-output", strconv.Itoa(opts.MaxOutputTokens))
	}

	// The prompt is always the last positional token.
	return append(args, prompt)
}
