package converters

const (
	// FormatMillis renders temporal values as epoch milliseconds. It is also the default.
	FormatMillis = "milliseconds"
	// FormatSeconds renders temporal values as whole epoch seconds, rounded toward negative infinity.
	FormatSeconds = "seconds"
)

const (
	ErrMsgParamEmpty    = "Parameter cannot be empty."
	ErrMsgBadTimeFormat = "Time text does not match the configured pattern"
	ErrMsgBadEpochValue = "Epoch value must be an integer"
	ErrMsgBadDuration   = "Bad duration, expected Go duration text or integer nanoseconds"
	ErrMsgUnknownZone   = "Unknown time zone"
)
