package pipeline

import "errors"

// ErrNotFound indicates a referenced item does not exist. The call mutated
// nothing; retrying with the same identifier will not succeed.
var ErrNotFound = errors.New("item not found")
