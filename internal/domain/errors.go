package domain

import "errors"

// Rendering-layer errors. These indicate a caller bug: they are logged
// loudly and reported to operators, but the end user only ever sees a
// fallback reply.
var (
	ErrMissingVariable     = errors.New("missing template variable")
	ErrInvalidVariableType = errors.New("invalid template variable type")
)

// Capability-layer errors. Expected operational conditions; every one of
// them resolves to a fallback reply, never to a raw error in a message.
var (
	ErrMalformedOutput       = errors.New("malformed generative output")
	ErrGenerationUnavailable = errors.New("generative capability unavailable")
	ErrIncompleteComplaint   = errors.New("complaint omits a required fact")
)

// IsCapabilityError reports whether err belongs to the capability layer,
// i.e. is recoverable by falling back.
func IsCapabilityError(err error) bool {
	return errors.Is(err, ErrMalformedOutput) ||
		errors.Is(err, ErrGenerationUnavailable) ||
		errors.Is(err, ErrIncompleteComplaint)
}

// IsRenderingError reports whether err came from the rendering layer.
func IsRenderingError(err error) bool {
	return errors.Is(err, ErrMissingVariable) || errors.Is(err, ErrInvalidVariableType)
}
