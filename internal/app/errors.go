package app

import "errors"

var (
	ErrSeniorNotFound       = errors.New("senior not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrAlertNotFound        = errors.New("medication alert not found")
	ErrSosNotFound          = errors.New("sos event not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrFamilyNotFound       = errors.New("family member not found")
	ErrInviteCodeInvalid    = errors.New("invite code not found")

	ErrConversationEnded = errors.New("conversation already ended")
	ErrSosResolved       = errors.New("sos event already resolved")
	ErrAlreadyLinked     = errors.New("family member already linked")
	ErrEmailTaken        = errors.New("email already registered")

	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotLinked          = errors.New("not linked to senior")
)
