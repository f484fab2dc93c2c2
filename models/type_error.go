package models

// Type errors attached to error responses so the console can pick a
// message without parsing text.
const (
	TypeAlreadyExist   = "ALREADY_EXIST"
	TypeInvalid        = "INVALID"
	TypeNotFound       = "NOT_FOUND"
	TypeUnauthorized   = "UNAUTHORIZED"
	TypeForbidden      = "FORBIDDEN"
	TypeInternalServer = "INTERNAL_SERVER"
)
