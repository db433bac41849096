package outwriter

import (
	"os"

	"github.com/huangsam/quotagraph/internal/contract"
	"golang.org/x/term"
)

// GetMaxBarWidth calculates how many cells a text bar may span
// based on terminal width and the fixed table columns.
func GetMaxBarWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.TermWidth > 0 {
		termWidth = cfg.TermWidth
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Period + two peaks + resets with borders/padding
	baseWidth := 60

	available := termWidth - baseWidth
	if available < 10 {
		return 10
	}
	if available > 50 {
		return 50
	}
	return available
}
