// Package report renders the outcome of a single chat completion run.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/jxucoder/dsping/internal/deepseek"
)

// Outcome labels, also stored in the run history.
const (
	OutcomeSuccess        = "success"
	OutcomeAPIError       = "api_error"
	OutcomeParseError     = "parse_error"
	OutcomeTransportError = "transport_error"
	OutcomeConfigError    = "config_error"
)

const (
	okMark   = "✅"
	failMark = "❌"
)

// Write prints exactly one report for the given result.
func Write(w io.Writer, content string, err error) error {
	var (
		apiErr       *deepseek.APIError
		parseErr     *deepseek.ParseError
		transportErr *deepseek.TransportError
	)
	switch {
	case err == nil:
		_, werr := fmt.Fprintf(w, "%s Response: %s\n", okMark, content)
		return werr
	case errors.As(err, &apiErr):
		_, werr := fmt.Fprintf(w, "%s API returned an error:\n%s\n", failMark, apiErr.Pretty())
		return werr
	case errors.As(err, &parseErr):
		_, werr := fmt.Fprintf(w, "%s Could not parse response: %s\n", failMark, parseErr.Raw)
		return werr
	case errors.As(err, &transportErr):
		_, werr := fmt.Fprintf(w, "%s Request failed: %v\n", failMark, transportErr.Err)
		return werr
	case errors.Is(err, deepseek.ErrMissingCredential):
		_, werr := fmt.Fprintf(w, "%s No API key found. Please set DEEPSEEK_API_KEY environment variable.\n", failMark)
		return werr
	default:
		_, werr := fmt.Fprintf(w, "%s %v\n", failMark, err)
		return werr
	}
}

// Outcome maps a result to its history label.
func Outcome(err error) string {
	var (
		apiErr       *deepseek.APIError
		parseErr     *deepseek.ParseError
		transportErr *deepseek.TransportError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &apiErr):
		return OutcomeAPIError
	case errors.As(err, &parseErr):
		return OutcomeParseError
	case errors.As(err, &transportErr):
		return OutcomeTransportError
	default:
		return OutcomeConfigError
	}
}
