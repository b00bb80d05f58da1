// Package progress provides terminal progress indicators for long-running
// CLI invocations, degrading to plain prints when stdout is not a TTY.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// TerminalCapabilities encapsulates detected terminal features
type TerminalCapabilities struct {
	// IsTTY indicates whether stderr is a terminal (vs pipe/redirect)
	IsTTY bool
	// SupportsColor indicates whether terminal supports ANSI color codes
	SupportsColor bool
	// SupportsUnicode indicates whether terminal supports Unicode characters
	SupportsUnicode bool
	// Width is the terminal width in columns (0 if unknown/pipe)
	Width int
}

// Symbols defines the character set for visual indicators
type Symbols struct {
	Checkmark string
	Failure   string
	// SpinnerSet is the index into spinner.CharSets
	SpinnerSet int
}

// Indicator shows a spinner while a query is in flight
type Indicator struct {
	capabilities TerminalCapabilities
	spinner      *spinner.Spinner
	symbols      Symbols
}

// NewIndicator creates an indicator with the given terminal capabilities
func NewIndicator(caps TerminalCapabilities) *Indicator {
	return &Indicator{
		capabilities: caps,
		symbols:      SelectSymbols(caps),
	}
}

// Start begins displaying the waiting indicator with the given message
func (p *Indicator) Start(msg string) {
	if p.capabilities.IsTTY {
		p.spinner = spinner.New(
			spinner.CharSets[p.symbols.SpinnerSet],
			100*time.Millisecond,
		)
		p.spinner.Writer = os.Stderr // keep stdout clean for the answer
		p.spinner.Suffix = " " + msg
		p.spinner.Start()
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
}

// Done stops the spinner and displays a completion message
func (p *Indicator) Done(msg string) {
	p.Stop()
	fmt.Fprintf(os.Stderr, "%s %s\n", p.symbols.Checkmark, msg)
}

// Fail stops the spinner and displays a failure message
func (p *Indicator) Fail(msg string) {
	p.Stop()
	fmt.Fprintf(os.Stderr, "%s %s\n", p.symbols.Failure, msg)
}

// Stop halts the spinner without printing a status line
func (p *Indicator) Stop() {
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}
