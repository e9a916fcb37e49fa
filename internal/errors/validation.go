package errors

import "net/http"

var ErrValidation = &Exception{
	Message:    "invalid task",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidForm = &Exception{
	Message:    "invalid form payload",
	StatusCode: http.StatusBadRequest,
}
