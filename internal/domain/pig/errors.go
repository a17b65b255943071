package pig

import "errors"

var (
	ErrPigNotFound        = errors.New("pig not found")
	ErrInvalidBatchSize   = errors.New("batch quantity must be between 1 and 100")
	ErrIdentifierConflict = errors.New("pig identifier already in use")
)
