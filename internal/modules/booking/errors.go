package booking

import (
	"errors"

	"coursedesk/internal/modules/ledger"
)

var (
	ErrValidation              = errors.New("validation error")
	ErrBookingNotFound         = ledger.ErrBookingNotFound
	ErrStudentNotFound         = errors.New("student not found")
	ErrCourseNotFound          = errors.New("course not found")
	ErrCourseDateNotFound      = errors.New("course date not found")
	ErrPartnerNotFound         = errors.New("partner not found")
	ErrInvalidStatus           = errors.New("invalid booking status")
	ErrInvalidStatusTransition = ledger.ErrInvalidTransition
	ErrDuplicateCode           = errors.New("could not allocate a unique booking code")
)
