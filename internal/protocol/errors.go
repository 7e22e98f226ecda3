package protocol

// Error codes carried by ACTION_RESULT events and ERROR frames.
const (
	// Transport.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrUnauthorized    = "E_UNAUTHORIZED"
	ErrWorldBusy       = "E_WORLD_BUSY"

	// Validation: bad input, names out of bounds, not enough money or items.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrNoResource = "E_NO_RESOURCE"

	// Authority: the player may not do this.
	ErrNoPermission = "E_NO_PERMISSION"
	ErrBlocked      = "E_BLOCKED"

	// Stale references: the target went offline or was removed.
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrStale         = "E_STALE"

	ErrConflict  = "E_CONFLICT"
	ErrRateLimit = "E_RATE_LIMIT"
	ErrCooldown  = "E_COOLDOWN"
	ErrInternal  = "E_INTERNAL"
)

// retryable codes clear on their own; the same request can succeed later.
var knownCodes = map[string]bool{
	ErrProtoBadRequest: false,
	ErrUnauthorized:    false,
	ErrWorldBusy:       true,
	ErrBadRequest:      false,
	ErrNoResource:      false,
	ErrNoPermission:    false,
	ErrBlocked:         false,
	ErrInvalidTarget:   false,
	ErrStale:           false,
	ErrConflict:        false,
	ErrRateLimit:       true,
	ErrCooldown:        true,
	ErrInternal:        false,
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

func Retryable(code string) bool { return knownCodes[code] }

// NewError builds an ERROR frame.
func NewError(code, message string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		Code:            code,
		Message:         message,
		Retryable:       Retryable(code),
	}
}
