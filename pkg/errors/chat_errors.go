package errors

var (
	// Domain errors — used in core services and mapped to statuses by the API
	ErrUserNotFound         = NotFound("user not found")
	ErrConversationNotFound = NotFound("conversation not found")
	ErrTitleRequired        = InvalidArg("conversation title cannot be empty")
	ErrContentRequired      = InvalidArg("message content cannot be empty")
	ErrInvalidRole          = InvalidArg(`message role must be "user" or "assistant"`)
	ErrNegativeTokens       = InvalidArg("tokens used cannot be negative")
	ErrInvalidDateRange     = InvalidArg("date bounds must be RFC 3339 timestamps or YYYY-MM-DD dates")
)
