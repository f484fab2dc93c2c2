package store

import "retail-admin/models"

var typeErrorMessages = map[string]string{
	models.TypeAlreadyExist:   "The record already exists",
	models.TypeInvalid:        "The submitted data is invalid",
	models.TypeNotFound:       "The record no longer exists",
	models.TypeUnauthorized:   "Your session has expired, please log in again",
	models.TypeForbidden:      "You are not allowed to perform this action",
	models.TypeInternalServer: "The server failed to process the request",
}

// ErrorMessage picks the toast text for a failed operation: the known
// typeError message, or the generic failure for the operation.
func ErrorMessage(typeError string, op Op, editing bool) string {
	if msg, ok := typeErrorMessages[typeError]; ok {
		return msg
	}
	switch op {
	case OpCreateEdit:
		if editing {
			return "Update failed"
		}
		return "Create failed"
	case OpDelete:
		return "Delete failed"
	case OpDeleteMany:
		return "Delete selected failed"
	case OpList:
		return "Could not load the list"
	case OpRegister:
		return "Registration failed"
	case OpUpdateMe:
		return "Profile update failed"
	case OpChangePassword:
		return "Password change failed"
	}
	return "Request failed"
}

// SuccessMessage picks the toast text for a finished operation.
func SuccessMessage(op Op, editing bool) string {
	switch op {
	case OpCreateEdit:
		if editing {
			return "Updated successfully"
		}
		return "Created successfully"
	case OpDelete:
		return "Deleted successfully"
	case OpDeleteMany:
		return "Deleted selected successfully"
	case OpRegister:
		return "Registered successfully"
	case OpUpdateMe:
		return "Profile updated successfully"
	case OpChangePassword:
		return "Password changed successfully"
	}
	return "Done"
}
