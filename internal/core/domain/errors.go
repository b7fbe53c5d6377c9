package domain

import "errors"

var (
	ErrStudentNotFound   = errors.New("student not found")
	ErrAlreadyVoted      = errors.New("student has already voted")
	ErrInvalidOption     = errors.New("invalid option")
	ErrInvalidVote       = errors.New("invalid vote")
	ErrRosterLoad        = errors.New("roster could not be loaded")
	ErrMirrorUnavailable = errors.New("vote mirror unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
)
