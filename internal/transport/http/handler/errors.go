package handler

const (
	errInternalServer     = "Internal server error"
	errEmailTaken         = "Email already registered"
	errUsernameTaken      = "Username already taken"
	errInvalidCredentials = "Invalid email or password"
	errUnauthorized       = "Unauthorized"
	errTokenInvalid       = "Token is invalid or expired"
	errChatNotFound       = "Chat not found"
	errImageTooLarge      = "Image exceeds the maximum upload size"
)
