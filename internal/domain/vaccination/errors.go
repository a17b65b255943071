package vaccination

import "errors"

var (
	ErrVaccinationNotFound = errors.New("vaccination not found")
	ErrScheduleNotFound    = errors.New("vaccination schedule not found")
	ErrPigNotFound         = errors.New("referenced pig not found")
)
