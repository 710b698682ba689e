package domain

import "errors"

var (
	errTaskNotFound   error = errors.New("task not found")
	errInvalidTaskId  error = errors.New("invalid task id")
	errInvalidBackend error = errors.New("unknown store backend")
)

func ErrTaskNotFound() error {
	return errTaskNotFound
}

func ErrInvalidTaskId() error {
	return errInvalidTaskId
}

func ErrInvalidBackend() error {
	return errInvalidBackend
}
