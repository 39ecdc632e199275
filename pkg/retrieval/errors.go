package retrieval

import "fmt"

// RerankParseError means the scoring model returned output that is not the
// strict JSON contract. Fabricating scores would silently poison the
// shortlist, so this fails the phase instead.
type RerankParseError struct {
	Vendor string
	Raw    string
	Err    error
}

func (e *RerankParseError) Error() string {
	return fmt.Sprintf("rerank response from %s is not valid score JSON: %v", e.Vendor, e.Err)
}

func (e *RerankParseError) Unwrap() error {
	return e.Err
}

func (e *RerankParseError) HTTPStatus() int {
	return 502
}
