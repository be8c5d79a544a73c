// Package cli provides CLI output utilities for Produktbot.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/skarvik/produktbot/internal/models"
)

// OutputFormat is the format for response output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", s)
}

// WriteResponse writes an engine response to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteResponse(w io.Writer, resp *models.Response, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	default:
		writeResponseText(w, resp)
		return nil
	}
}

func writeResponseText(w io.Writer, resp *models.Response) {
	fmt.Fprintln(w, resp.Text)
	if resp.Clarification != nil && len(resp.Clarification.Options) > 0 {
		fmt.Fprintln(w)
		for _, opt := range resp.Clarification.Options {
			fmt.Fprintf(w, "  %s  %s\n", opt.ID, opt.Label)
		}
	}
	if resp.Status != models.StatusSuccess {
		fmt.Fprintf(w, "\n[%s]\n", resp.Status)
	}
}
