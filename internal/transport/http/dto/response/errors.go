package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrInvalidCredentials = ErrorResponse{
		Status:  "error",
		Error:   "invalid_credentials",
		Details: "Incorrect email or password",
	}

	ErrInvalidRegisterRequest = ErrorResponse{
		Status:  "error",
		Error:   "invalid_register_request",
		Details: "Invalid registration data",
	}

	ErrUserAlreadyExists = ErrorResponse{
		Status:  "error",
		Error:   "user_already_exists",
		Details: "User with this email already exists",
	}

	ErrUnauthenticated = ErrorResponse{
		Status:  "error",
		Error:   "unauthenticated",
		Details: "Could not validate credentials",
	}

	ErrInternal = ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Details: "Internal server error",
	}
)

// WithDetails copies a preset with other details; presets are shared and must not be mutated.
func (e ErrorResponse) WithDetails(details string) ErrorResponse {
	e.Details = details
	return e
}
