package types

import "errors"

// exported errors
var (
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrGroupNotFound     = errors.New("group not found")
	ErrRoleNotFound      = errors.New("role not found")
	ErrInvalidIP         = errors.New("invalid IP address")
	ErrInvalidCIDR       = errors.New("invalid CIDR")
	ErrEngineClosed      = errors.New("engine closed")
)
