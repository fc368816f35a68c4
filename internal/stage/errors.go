// Package stage implements the pipeline-stage lifecycle and configuration
// transport around the DRC engine (§4.7, §6, §7).
package stage

import "errors"

// Error is a stage-level error carrying the negative numeric code the
// host-facing contract in §7 expects ("user-triggered errors return
// negative codes").
type Error struct {
	msg  string
	code int
}

func (e *Error) Error() string { return e.msg }

// Code returns the negative error code associated with this failure.
func (e *Error) Code() int { return e.code }

func newError(code int, msg string) *Error { return &Error{msg: msg, code: code} }

// Sentinel stage errors, grouped by the error kinds in §7.
var (
	// ErrConfigTooLarge: oversized configuration blob (§7 "Configuration
	// invalid").
	ErrConfigTooLarge = newError(-1, "stage: configuration blob exceeds MaxConfigBytes")
	// ErrConfigBusy: a second msg_index==0 upload arrived while one was
	// already in progress (§6.2, §8 boundary 13).
	ErrConfigBusy = newError(-2, "stage: busy with previous configuration upload")
	// ErrConfigMalformed: chunk offsets/sizes don't add up.
	ErrConfigMalformed = newError(-3, "stage: malformed configuration chunk")
	// ErrNoConfig: get_data requested with no live configuration.
	ErrNoConfig = newError(-4, "stage: no configuration to read back")

	// ErrFormatMismatch: source and sink formats/channels differ (§7
	// "Format mismatch").
	ErrFormatMismatch = newError(-10, "stage: source and sink formats must match")
	ErrTooManyChannels = newError(-11, "stage: channel count exceeds MaxChannels")
	ErrSinkTooSmall    = newError(-12, "stage: sink buffer is smaller than periods*sink_period_bytes")

	// ErrNoProcessFunc: no driver bound for the requested sample format
	// (§7 "No processing function for format").
	ErrNoProcessFunc = newError(-20, "stage: no processing function for sample format")

	// ErrInvalidTransition: a trigger was issued from a state that does
	// not accept it (§4.7).
	ErrInvalidTransition = newError(-30, "stage: invalid lifecycle transition")

	// ErrFreed: an operation was attempted on a freed stage.
	ErrFreed = newError(-31, "stage: instance already freed")
)

// IsBusy reports whether err is (or wraps) ErrConfigBusy.
func IsBusy(err error) bool { return errors.Is(err, error(ErrConfigBusy)) }
