package leave

import "errors"

var (
	ErrInvalidRange         = errors.New("end date precedes start date")
	ErrSpanTooLong          = errors.New("leave request spans more than 366 days")
	ErrOverlapConflict      = errors.New("leave request overlaps an existing request")
	ErrInvalidState         = errors.New("leave request is no longer pending")
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrSelfApproval         = errors.New("you cannot decide your own leave request")
	ErrForbidden            = errors.New("you are not allowed to decide this leave request")
)
