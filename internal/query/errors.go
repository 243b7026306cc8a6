package query

import "fmt"

// ParseError is returned for any syntactic or semantic problem in a
// query string (§4.1 "Parse errors"). It carries the byte offset at
// which the problem was detected and a short message.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("query: %s (at offset %d)", e.Message, e.Offset)
}

func parseErrorf(offset int, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}
