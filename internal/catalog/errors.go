package catalog

import "fmt"

// ParseError is returned by ImportJSON when the input is not a JSON array
// of records.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("import media records: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
