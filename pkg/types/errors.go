package types

import (
	"fmt"
)

// Stage names the pipeline step an error originated from
type Stage string

const (
	StageQuote   Stage = "quote"
	StageBuild   Stage = "build"
	StageSubmit  Stage = "submit"
	StageConfirm Stage = "confirm"
)

// HTTPDetail captures the offending request/response pair for diagnostics
type HTTPDetail struct {
	Method       string `json:"method"`
	URL          string `json:"url"`
	RequestBody  string `json:"requestBody,omitempty"`
	StatusCode   int    `json:"statusCode,omitempty"`
	ResponseBody string `json:"responseBody,omitempty"`
}

// QuoteError is a terminal failure of the quote stage: malformed response,
// non-positive outAmount, empty route plan or an explicit aggregator error.
type QuoteError struct {
	Reason string
	HTTP   *HTTPDetail
	Err    error
}

func (e *QuoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quote: %s: %v", e.Reason, e.Err)
	}
	return "quote: " + e.Reason
}

func (e *QuoteError) Unwrap() error { return e.Err }

// BuildError is returned when the build endpoint answered non-2xx or
// without a transaction blob. The raw body is kept in HTTP.ResponseBody.
type BuildError struct {
	Reason string
	HTTP   *HTTPDetail
	Err    error
}

func (e *BuildError) Error() string {
	msg := "build: " + e.Reason
	if e.HTTP != nil && e.HTTP.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.HTTP.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *BuildError) Unwrap() error { return e.Err }

// SubmitError is a failed hand-off of the transaction blob. Never retried.
type SubmitError struct {
	Reason string
	HTTP   *HTTPDetail
	Err    error
}

func (e *SubmitError) Error() string {
	msg := "submit: " + e.Reason
	if e.HTTP != nil && e.HTTP.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.HTTP.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SubmitError) Unwrap() error { return e.Err }

// VerificationTimeout means the poll budget ran out without a terminal chain status
type VerificationTimeout struct {
	TransactionID string
	Attempts      int
}

func (e *VerificationTimeout) Error() string {
	return fmt.Sprintf("confirm: transaction %s not confirmed after %d attempts", e.TransactionID, e.Attempts)
}

// OnChainFailure means the chain executed the transaction and reported an error
type OnChainFailure struct {
	TransactionID string
	Detail        string
}

func (e *OnChainFailure) Error() string {
	return fmt.Sprintf("confirm: transaction %s failed on-chain: %s", e.TransactionID, e.Detail)
}
