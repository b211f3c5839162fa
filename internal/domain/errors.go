package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing credentials",
		StatusCode: 401,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Access denied",
		StatusCode: 403,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrDetectionNotFound = &AppError{
		Code:       "DETECTION_NOT_FOUND",
		Message:    "Detection not found",
		StatusCode: 404,
	}

	ErrReviewNotFound = &AppError{
		Code:       "REVIEW_NOT_FOUND",
		Message:    "Review not found",
		StatusCode: 404,
	}

	ErrReviewAlreadyExists = &AppError{
		Code:       "REVIEW_ALREADY_EXISTS",
		Message:    "Detection already has a review",
		StatusCode: 409,
	}

	ErrReviewOwnership = &AppError{
		Code:       "REVIEW_OWNERSHIP",
		Message:    "Can only update your own reviews",
		StatusCode: 403,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}
)
