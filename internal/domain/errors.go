package domain

import "errors"

var (
	ErrInvalidID             = errors.New("invalid id")
	ErrInvalidName           = errors.New("invalid name")
	ErrInvalidTitle          = errors.New("invalid title")
	ErrInvalidPriority       = errors.New("invalid priority")
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidDateRange      = errors.New("invalid date range")
	ErrInvalidClockTime      = errors.New("invalid time of day")
	ErrInvalidDepartment     = errors.New("invalid department")
	ErrInvalidRole           = errors.New("invalid role")
	ErrInvalidCategory       = errors.New("invalid contact category")
	ErrInvalidEstimate       = errors.New("invalid estimated hours")
	ErrInvalidProjectStatus  = errors.New("invalid project status")
	ErrInvalidTransitionMode = errors.New("invalid transition mode")
	ErrUnknownStatus         = errors.New("status not in department workflow")
	ErrIllegalTransition     = errors.New("illegal status transition")
	ErrTaskNotOnBoard        = errors.New("task not on board")
)
