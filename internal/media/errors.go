package media

// BrowseError is returned when an identifier cannot be browsed.
type BrowseError struct {
	Message string
	Err     error
}

func (e *BrowseError) Error() string { return e.Message }
func (e *BrowseError) Unwrap() error { return e.Err }

// UnresolvableError is returned when an identifier cannot be turned into a
// playable URL.
type UnresolvableError struct {
	Message string
	Err     error
}

func (e *UnresolvableError) Error() string { return e.Message }
func (e *UnresolvableError) Unwrap() error { return e.Err }
