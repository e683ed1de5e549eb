package repositories

import "fmt"

// ErrRecordDecode occurs when a stored row cannot be converted back to a domain object
type ErrRecordDecode struct {
	Table string
	ID    string
	Err   error
}

func (e ErrRecordDecode) Error() string {
	return fmt.Sprintf("decode %s record %q: %v", e.Table, e.ID, e.Err)
}

func (e ErrRecordDecode) Unwrap() error {
	return e.Err
}
