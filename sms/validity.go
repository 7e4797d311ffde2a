package sms

import (
	"fmt"
	"time"
)

// ValidityPeriodFormat enum according to [TL] 9.2.3.3
type ValidityPeriodFormat byte

// All validity period formats according to [TL] 9.2.3.3
const (
	NoValidityPeriod       ValidityPeriodFormat = 0x00
	EnhancedValidityPeriod ValidityPeriodFormat = 0x01
	RelativeValidityPeriod ValidityPeriodFormat = 0x02
	AbsoluteValidityPeriod ValidityPeriodFormat = 0x03
)

// Length returns the number of octets of a TP-VP in this format.
func (f ValidityPeriodFormat) Length() int {
	switch f {
	case RelativeValidityPeriod:
		return 1
	case EnhancedValidityPeriod, AbsoluteValidityPeriod:
		return TimestampLength
	default:
		return 0
	}
}

// ValidityPeriod according to [TL] 9.2.3.12
type ValidityPeriod struct {
	Format   ValidityPeriodFormat
	Relative time.Duration
	Absolute Timestamp
}

// RelativeValidity returns a relative validity period of the given duration.
func RelativeValidity(d time.Duration) ValidityPeriod {
	return ValidityPeriod{Format: RelativeValidityPeriod, Relative: d}
}

// AbsoluteValidity returns an absolute validity period that ends at the given timestamp.
func AbsoluteValidity(t Timestamp) ValidityPeriod {
	return ValidityPeriod{Format: AbsoluteValidityPeriod, Absolute: t}
}

// ParseValidityPeriod reads a validity period of the given format from the beginning of the given bytes.
// It returns the validity period and the number of octets it occupies.
func ParseValidityPeriod(format ValidityPeriodFormat, bytes []byte) (ValidityPeriod, int, error) {
	length := format.Length()
	if len(bytes) < length {
		return ValidityPeriod{}, 0, decodeErrorf(ErrTruncatedPDU, len(bytes), "validity period too short: %d", len(bytes))
	}

	switch format {
	case NoValidityPeriod:
		return ValidityPeriod{}, 0, nil
	case RelativeValidityPeriod:
		return RelativeValidity(DecodeRelativeValidity(bytes[0])), length, nil
	case AbsoluteValidityPeriod:
		timestamp, err := ParseTimestamp(bytes)
		if err != nil {
			return ValidityPeriod{}, 0, err
		}
		return AbsoluteValidity(timestamp), length, nil
	default:
		return ValidityPeriod{}, 0, decodeErrorf(ErrUnsupportedValidityFormat, 0, "format %d", format)
	}
}

// Encode appends the TP-VP to the given bytes.
func (p ValidityPeriod) Encode(bytes []byte) ([]byte, error) {
	switch p.Format {
	case NoValidityPeriod:
		return bytes, nil
	case RelativeValidityPeriod:
		return append(bytes, EncodeRelativeValidity(p.Relative)), nil
	case AbsoluteValidityPeriod:
		return p.Absolute.Encode(bytes)
	default:
		return bytes, fmt.Errorf("%w: format %d", ErrUnsupportedValidityFormat, p.Format)
	}
}

// DecodeRelativeValidity from the TP-VP octet according to [TL] table 9.2.3.12.1
func DecodeRelativeValidity(b byte) time.Duration {
	value := time.Duration(b)
	switch {
	case b <= 143:
		return (value + 1) * 5 * time.Minute
	case b <= 167:
		return 12*time.Hour + (value-143)*30*time.Minute
	case b <= 196:
		return (value - 166) * 24 * time.Hour
	default:
		return (value - 192) * 7 * 24 * time.Hour
	}
}

// EncodeRelativeValidity into the TP-VP octet according to [TL] table 9.2.3.12.1.
// Durations that cannot be represented exactly are rounded up to the next representable value.
func EncodeRelativeValidity(d time.Duration) byte {
	const (
		day  = 24 * time.Hour
		week = 7 * day
	)
	var result time.Duration
	incIfRemainder := func(unit time.Duration, base time.Duration) {
		remainder := d - base - result*unit
		if remainder > 0 {
			result++
		}
	}

	switch {
	case d <= 5*time.Minute:
		return 0
	case d <= 12*time.Hour:
		result = d / (5 * time.Minute)
		incIfRemainder(5*time.Minute, 0)
		return byte(result - 1)
	case d <= day:
		result = (d - 12*time.Hour) / (30 * time.Minute)
		incIfRemainder(30*time.Minute, 12*time.Hour)
		return byte(result + 143)
	case d <= 30*day:
		result = d / day
		incIfRemainder(day, 0)
		return byte(result + 166)
	case d <= 63*week:
		result = d / week
		incIfRemainder(week, 0)
		return byte(result + 192)
	default:
		return 255
	}
}
