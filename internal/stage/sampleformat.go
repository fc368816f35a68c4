package stage

// SampleFormat identifies one of the wire formats the stage advertises
// specialized fragment copies for (§6.3).
type SampleFormat int

const (
	// FormatS16LE is 16-bit signed little-endian PCM.
	FormatS16LE SampleFormat = iota
	// FormatS24In32LE is 24-bit signed audio in a 32-bit little-endian
	// container.
	FormatS24In32LE
	// FormatS32LE is 32-bit signed little-endian PCM.
	FormatS32LE
)

func (f SampleFormat) String() string {
	switch f {
	case FormatS16LE:
		return "S16_LE"
	case FormatS24In32LE:
		return "S24_4LE"
	case FormatS32LE:
		return "S32_LE"
	default:
		return "unknown"
	}
}
