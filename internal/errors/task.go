package errors

import "net/http"

var (
	ErrTaskNotFound = &Exception{
		Message:    "task not found",
		StatusCode: http.StatusNotFound,
	}

	ErrTaskIDRequired = &Exception{
		Message:    "task id is required",
		StatusCode: http.StatusBadRequest,
	}

	ErrEmptySearch = &Exception{
		Message:    "search query must contain a word",
		StatusCode: http.StatusBadRequest,
	}
)
