package expense

import "errors"

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrPigNotFound     = errors.New("referenced pig not found")
)
