package sms

import (
	"fmt"
	"time"
)

// TimestampLength is the number of octets of an encoded TP-SCTS, TP-DT or absolute TP-VP.
const TimestampLength = 7

// MaxZone is the largest time zone offset in quarter hours that can be encoded.
const MaxZone = 79

// Timestamp according to [TL] 9.2.3.11. All fields hold the two decimal digits of the wire format,
// Zone is the offset from UTC in quarter hours.
type Timestamp struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	Zone   int
}

// NewTimestamp converts the given time into a timestamp, keeping the time's location as zone.
func NewTimestamp(t time.Time) Timestamp {
	_, offset := t.Zone()
	zone := offset / (15 * 60)
	if zone > MaxZone {
		zone = MaxZone
	} else if zone < -MaxZone {
		zone = -MaxZone
	}
	return Timestamp{
		Year:   t.Year() % 100,
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		Zone:   zone,
	}
}

// Time converts the timestamp into a time.Time with a fixed zone. Two-digit years below 70 belong to the 21st century.
func (t Timestamp) Time() time.Time {
	year := 1900 + t.Year
	if t.Year < 70 {
		year = 2000 + t.Year
	}
	location := time.FixedZone("", t.Zone*15*60)
	return time.Date(year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, 0, location)
}

func (t Timestamp) String() string {
	sign := '+'
	zone := t.Zone
	if zone < 0 {
		sign = '-'
		zone = -zone
	}
	return fmt.Sprintf("%02d/%02d/%02d,%02d:%02d:%02d%c%02d", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, sign, zone)
}

// ParseTimestamp reads a timestamp from the first seven octets of the given bytes.
func ParseTimestamp(bytes []byte) (Timestamp, error) {
	if len(bytes) < TimestampLength {
		return Timestamp{}, decodeErrorf(ErrTruncatedPDU, len(bytes), "timestamp too short: %d", len(bytes))
	}

	var fields [6]int
	for i := range fields {
		value, ok := parseSwappedBCD(bytes[i])
		if !ok {
			return Timestamp{}, decodeErrorf(ErrInvalidTimestamp, i, "invalid BCD octet 0x%02x", bytes[i])
		}
		fields[i] = value
	}

	zoneOctet := bytes[6]
	zone, ok := parseSwappedBCD(zoneOctet & 0xF7)
	if !ok {
		return Timestamp{}, decodeErrorf(ErrInvalidTimestamp, 6, "invalid time zone 0x%02x", zoneOctet)
	}
	if zoneOctet&0x08 != 0 {
		zone = -zone
	}

	return Timestamp{
		Year:   fields[0],
		Month:  fields[1],
		Day:    fields[2],
		Hour:   fields[3],
		Minute: fields[4],
		Second: fields[5],
		Zone:   zone,
	}, nil
}

// Encode appends the seven octets of the timestamp to the given bytes.
func (t Timestamp) Encode(bytes []byte) ([]byte, error) {
	fields := [6]int{t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second}
	for _, value := range fields {
		if value < 0 || value > 99 {
			return bytes, fmt.Errorf("%w: field out of range: %d", ErrInvalidTimestamp, value)
		}
	}
	if t.Zone < -MaxZone || t.Zone > MaxZone {
		return bytes, fmt.Errorf("%w: time zone out of range: %d", ErrInvalidTimestamp, t.Zone)
	}

	for _, value := range fields {
		bytes = append(bytes, swappedBCD(value))
	}
	zone := t.Zone
	var sign byte
	if zone < 0 {
		zone = -zone
		sign = 0x08
	}
	return append(bytes, swappedBCD(zone)|sign), nil
}

func parseSwappedBCD(b byte) (int, bool) {
	low := b & 0x0F
	high := b >> 4
	if low > 9 || high > 9 {
		return 0, false
	}
	return int(low)*10 + int(high), true
}

func swappedBCD(value int) byte {
	return byte(value%10)<<4 | byte(value/10)
}
