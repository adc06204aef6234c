package converters

import (
	"strings"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/spf13/cast"
)

// IsEpochFormat reports whether format selects a numeric epoch representation.
func IsEpochFormat(format string) bool {
	return format == "" || format == FormatMillis || format == FormatSeconds
}

// FloorDiv divides rounding toward negative infinity, so -1ms is second -1 and not 0.
func FloorDiv(x, y int64) int64 {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}

// TimeToEpoch renders t as epoch milliseconds, or epoch seconds for FormatSeconds.
func TimeToEpoch(t time.Time, format string) int64 {
	ms := t.UnixMilli()
	if format == FormatSeconds {
		return FloorDiv(ms, 1000)
	}
	return ms
}

// EpochToTime is the inverse of TimeToEpoch. The result is in UTC.
func EpochToTime(src any, format string) (time.Time, error) {
	const op errors.Op = "converters.EpochToTime"
	n, err := CheckInt64(op, src)
	if err != nil {
		return time.Time{}, errors.New(op).Err(err)
	}
	if format == FormatSeconds {
		return time.Unix(n, 0).UTC(), nil
	}
	return time.UnixMilli(n).UTC(), nil
}

// FormatTime renders t through pattern. See Layout for accepted patterns.
func FormatTime(t time.Time, pattern string) string {
	return t.Format(Layout(pattern))
}

// ParseTime parses text with pattern, interpreting zone-less text in loc (UTC when nil).
func ParseTime(src any, pattern string, loc *time.Location) (time.Time, error) {
	const op errors.Op = "converters.ParseTime"
	srcVal, err := CheckString(op, src)
	if err != nil {
		return time.Time{}, errors.New(op).Err(err)
	}
	if loc == nil {
		loc = time.UTC
	}
	retVal, err := time.ParseInLocation(Layout(pattern), srcVal, loc)
	if err != nil {
		return time.Time{}, errors.New(op).Err(err).Msg(ErrMsgBadTimeFormat)
	}
	return retVal, nil
}

// ParseDuration accepts Go duration text ("1h30m") or an integer count of nanoseconds.
func ParseDuration(src any) (time.Duration, error) {
	const op errors.Op = "converters.ParseDuration"
	if s, ok := src.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, errors.New(op).Err(err).Msg(ErrMsgBadDuration)
		}
		return d, nil
	}
	n, err := CheckInt64(op, src)
	if err != nil {
		return 0, errors.New(op).Err(err).Msg(ErrMsgBadDuration)
	}
	return time.Duration(n), nil
}

// LoadZone resolves a zone name such as "Europe/Paris" or "UTC".
func LoadZone(src any) (*time.Location, error) {
	const op errors.Op = "converters.LoadZone"
	name, err := cast.ToStringE(src)
	if err != nil || name == "" {
		return nil, errors.New(op).Errorf("Given parameter not a zone name, got %T", src)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(ErrMsgUnknownZone)
	}
	return loc, nil
}

// Layout turns a date pattern into a Go time layout. Patterns written with Java-style
// letters (yyyy-MM-dd HH:mm:ss) are translated; anything else is taken as a Go layout.
func Layout(pattern string) string {
	if !isLetterPattern(pattern) {
		return pattern
	}
	var sb strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		c := runes[i]
		if c == '\'' {
			j := i + 1
			for j < len(runes) {
				if runes[j] == '\'' {
					// '' is a literal quote, inside or outside quoted text
					if j == i+1 || (j+1 < len(runes) && runes[j+1] == '\'') {
						sb.WriteRune('\'')
						if j == i+1 {
							break
						}
						j += 2
						continue
					}
					break
				}
				sb.WriteRune(runes[j])
				j++
			}
			i = j + 1
			continue
		}
		j := i
		for j < len(runes) && runes[j] == c {
			j++
		}
		if tok, ok := letterToken(c, j-i); ok {
			sb.WriteString(tok)
		} else {
			sb.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return sb.String()
}

func isLetterPattern(p string) bool {
	for _, marker := range []string{"yy", "dd", "HH", "mm", "ss"} {
		if strings.Contains(p, marker) {
			return true
		}
	}
	return false
}

func letterToken(c rune, n int) (string, bool) {
	switch c {
	case 'y':
		if n == 2 {
			return "06", true
		}
		return "2006", true
	case 'M':
		switch {
		case n >= 4:
			return "January", true
		case n == 3:
			return "Jan", true
		case n == 2:
			return "01", true
		default:
			return "1", true
		}
	case 'd':
		if n >= 2 {
			return "02", true
		}
		return "2", true
	case 'H':
		return "15", true
	case 'h':
		if n >= 2 {
			return "03", true
		}
		return "3", true
	case 'm':
		if n >= 2 {
			return "04", true
		}
		return "4", true
	case 's':
		if n >= 2 {
			return "05", true
		}
		return "5", true
	case 'S':
		return strings.Repeat("0", n), true
	case 'a':
		return "PM", true
	case 'E':
		if n >= 4 {
			return "Monday", true
		}
		return "Mon", true
	case 'X':
		if n >= 3 {
			return "Z07:00", true
		}
		return "Z0700", true
	case 'Z':
		return "-0700", true
	case 'z':
		return "MST", true
	}
	return "", false
}
