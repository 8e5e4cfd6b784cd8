package catalog

import "errors"

var (
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation error")
	ErrInvalidDate        = errors.New("invalid date")
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseDateNotFound = errors.New("course date not found")
	ErrPartnerNotFound    = errors.New("partner not found")
	ErrMaterialNotFound   = errors.New("material not found")
	ErrTeacherNotFound    = errors.New("teacher not found")
)
