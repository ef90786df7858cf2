package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidRole             = errors.New("invalid role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrPrincipalMissing        = errors.New("authenticated principal missing")
)
