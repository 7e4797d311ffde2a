package sms

import "fmt"

// DataCodingScheme according to [ALP] 4
type DataCodingScheme byte

// MessageClass enum according to [ALP] 4
type MessageClass byte

// All message classes.
const (
	Class0 MessageClass = iota
	Class1
	Class2
	Class3
	NoClass MessageClass = 0xFF
)

const (
	dcsCompressedFlag   byte = 0x20
	dcsClassPresentFlag byte = 0x10
)

// NewDataCodingScheme returns the general data coding scheme for the given alphabet and message class.
// Use NoClass to omit the message class.
func NewDataCodingScheme(alphabet Alphabet, class MessageClass) DataCodingScheme {
	result := byte(alphabet&0x03) << 2
	if class != NoClass {
		result |= dcsClassPresentFlag | byte(class&0x03)
	}
	return DataCodingScheme(result)
}

// Alphabet returns the alphabet indicated by this data coding scheme.
// Compressed, reserved, and undefined values are reported as ErrUnsupportedDCS.
func (d DataCodingScheme) Alphabet() (Alphabet, error) {
	value := byte(d)
	switch {
	case value&0xC0 == 0x00 || value&0xC0 == 0x40:
		if value&dcsCompressedFlag != 0 {
			return 0, fmt.Errorf("%w: compressed user data 0x%02x", ErrUnsupportedDCS, value)
		}
		switch (value >> 2) & 0x03 {
		case 0:
			return GSM7Bit, nil
		case 1:
			return Data8Bit, nil
		case 2:
			return UCS2, nil
		default:
			return 0, fmt.Errorf("%w: reserved alphabet 0x%02x", ErrUnsupportedDCS, value)
		}
	case value&0xF0 == 0xC0 || value&0xF0 == 0xD0:
		return GSM7Bit, nil
	case value&0xF0 == 0xE0:
		return UCS2, nil
	case value&0xF0 == 0xF0:
		if value&0x04 != 0 {
			return Data8Bit, nil
		}
		return GSM7Bit, nil
	default:
		return 0, fmt.Errorf("%w: reserved coding group 0x%02x", ErrUnsupportedDCS, value)
	}
}

// Class returns the message class, if this data coding scheme indicates one.
func (d DataCodingScheme) Class() (MessageClass, bool) {
	value := byte(d)
	switch {
	case value&0xC0 == 0x00 || value&0xC0 == 0x40:
		if value&dcsClassPresentFlag == 0 {
			return NoClass, false
		}
		return MessageClass(value & 0x03), true
	case value&0xF0 == 0xF0:
		return MessageClass(value & 0x03), true
	default:
		return NoClass, false
	}
}

// Compressed indicates if the user data is compressed.
func (d DataCodingScheme) Compressed() bool {
	value := byte(d)
	return value&0x80 == 0 && value&dcsCompressedFlag != 0
}

// MessageWaiting indicates if this data coding scheme belongs to one of the message waiting indication groups.
func (d DataCodingScheme) MessageWaiting() bool {
	group := byte(d) & 0xF0
	return group == 0xC0 || group == 0xD0 || group == 0xE0
}

func (d DataCodingScheme) String() string {
	alphabet, err := d.Alphabet()
	if err != nil {
		return fmt.Sprintf("DCS 0x%02x (unsupported)", byte(d))
	}
	class, ok := d.Class()
	if !ok {
		return fmt.Sprintf("DCS 0x%02x (%v)", byte(d), alphabet)
	}
	return fmt.Sprintf("DCS 0x%02x (%v, class %d)", byte(d), alphabet, class)
}
