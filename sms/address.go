package sms

import (
	"fmt"
	"strings"

	"github.com/ftl/smsc-pdu/gsm"
)

/* Address related types and functions according to [TL] 9.1.2.5 */

// TypeOfNumber enum according to [TL] 9.1.2.5
type TypeOfNumber byte

// All defined types of number.
const (
	UnknownNumber TypeOfNumber = iota
	InternationalNumber
	NationalNumber
	NetworkSpecificNumber
	SubscriberNumber
	AlphanumericAddress
	AbbreviatedNumber
	reservedTypeOfNumber
)

// NumberingPlan enum according to [TL] 9.1.2.5
type NumberingPlan byte

// All defined numbering plans.
const (
	UnknownPlan           NumberingPlan = 0x00
	ISDNPlan              NumberingPlan = 0x01
	DataPlan              NumberingPlan = 0x03
	TelexPlan             NumberingPlan = 0x04
	ServiceCentrePlan     NumberingPlan = 0x05
	ServiceCentrePlan2    NumberingPlan = 0x06
	NationalPlan          NumberingPlan = 0x08
	PrivatePlan           NumberingPlan = 0x09
	ERMESPlan             NumberingPlan = 0x0A
	ReservedExtensionPlan NumberingPlan = 0x0F
)

func (p NumberingPlan) valid() bool {
	switch p {
	case UnknownPlan, ISDNPlan, DataPlan, TelexPlan, ServiceCentrePlan, ServiceCentrePlan2, NationalPlan, PrivatePlan, ERMESPlan, ReservedExtensionPlan:
		return true
	default:
		return false
	}
}

const (
	// MaxAddressDigits is the maximum number of semi-octets in a numeric address.
	MaxAddressDigits = 20
	// MaxAlphanumericSeptets is the maximum number of septets in an alphanumeric address.
	MaxAlphanumericSeptets = 11

	typeOfAddressExtension byte = 0x80
	fillNibble             byte = 0x0F
)

// bcdSymbols maps semi-octet values to the symbols used in address digits, see [TL] 9.1.2.3.
const bcdSymbols = "0123456789*#abc"

// Address represents a TP-OA, TP-DA, TP-RA or RP-SC address. For alphanumeric addresses, Digits contains the text.
type Address struct {
	TON    TypeOfNumber
	NPI    NumberingPlan
	Digits string
}

// ParseAddressString reads an address in its common notation. A leading + indicates an international number,
// text that is not made of semi-octet symbols becomes an alphanumeric address.
func ParseAddressString(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") {
		result := Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: strings.TrimPrefix(s, "+")}
		return result, result.validate()
	}
	numeric := Address{TON: UnknownNumber, NPI: ISDNPlan, Digits: s}
	if numeric.validate() == nil {
		return numeric, nil
	}
	alphanumeric := Address{TON: AlphanumericAddress, NPI: UnknownPlan, Digits: s}
	if err := alphanumeric.validate(); err != nil {
		return Address{}, err
	}
	return alphanumeric, nil
}

func (a Address) String() string {
	if a.TON == InternationalNumber {
		return "+" + a.Digits
	}
	return a.Digits
}

// IsZero indicates if this is the empty address.
func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) typeOfAddress() byte {
	return typeOfAddressExtension | byte(a.TON&0x07)<<4 | byte(a.NPI&0x0F)
}

func (a Address) validate() error {
	if a.TON == reservedTypeOfNumber {
		return fmt.Errorf("%w: reserved type of number", ErrInvalidAddress)
	}
	if !a.NPI.valid() {
		return fmt.Errorf("%w: undefined numbering plan %d", ErrInvalidAddress, a.NPI)
	}
	if a.TON == AlphanumericAddress {
		septets, err := SeptetLength(a.Digits)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		if septets > MaxAlphanumericSeptets {
			return fmt.Errorf("%w: alphanumeric address too long: %d", ErrInvalidAddress, septets)
		}
		return nil
	}
	if len(a.Digits) > MaxAddressDigits {
		return fmt.Errorf("%w: too many digits: %d", ErrInvalidAddress, len(a.Digits))
	}
	for _, c := range a.Digits {
		if bcdValue(c) < 0 {
			return fmt.Errorf("%w: invalid digit %q", ErrInvalidAddress, c)
		}
	}
	return nil
}

func bcdValue(c rune) int {
	if c >= 'A' && c <= 'C' {
		c += 'a' - 'A'
	}
	return strings.IndexRune(bcdSymbols, c)
}

// Length returns the number of octets of the encoded address.
func (a Address) Length() int {
	return 2 + a.digitOctets()
}

func (a Address) digitOctets() int {
	if a.TON == AlphanumericAddress {
		septets, _ := SeptetLength(a.Digits)
		return (septets*7 + 7) / 8
	}
	return gsm.SemiOctetLength(len(a.Digits))
}

// Encode appends the address field to the given bytes. The length octet counts the semi-octets of the digits.
func (a Address) Encode(bytes []byte) ([]byte, error) {
	if err := a.validate(); err != nil {
		return bytes, err
	}

	if a.TON == AlphanumericAddress {
		septets, _ := EncodeSeptets(a.Digits)
		bits := len(septets) * 7
		bytes = append(bytes, byte((bits+3)/4), a.typeOfAddress())
		return append(bytes, PackSeptets(septets, 0)...), nil
	}

	bytes = append(bytes, byte(len(a.Digits)), a.typeOfAddress())
	return appendBCDDigits(bytes, a.Digits), nil
}

// EncodeServiceCenter appends the address in the form used as SMSC prefix in front of a TPDU,
// where the length octet counts the octets of the type of address and the digits. The zero
// address is encoded as a single 0x00 octet.
func (a Address) EncodeServiceCenter(bytes []byte) ([]byte, error) {
	if a.IsZero() {
		return append(bytes, 0x00), nil
	}
	if a.TON == AlphanumericAddress {
		return bytes, fmt.Errorf("%w: alphanumeric service centre address", ErrInvalidAddress)
	}
	if err := a.validate(); err != nil {
		return bytes, err
	}
	bytes = append(bytes, byte(1+a.digitOctets()), a.typeOfAddress())
	return appendBCDDigits(bytes, a.Digits), nil
}

func appendBCDDigits(bytes []byte, digits string) []byte {
	var current byte
	for i, c := range digits {
		value := byte(bcdValue(c))
		if i%2 == 0 {
			current = value
		} else {
			bytes = append(bytes, current|value<<4)
		}
	}
	if len(digits)%2 == 1 {
		bytes = append(bytes, current|fillNibble<<4)
	}
	return bytes
}

// ParseAddress reads an address field from the beginning of the given bytes.
// It returns the address and the number of octets it occupies.
func ParseAddress(bytes []byte) (Address, int, error) {
	if len(bytes) < 2 {
		return Address{}, 0, decodeErrorf(ErrInvalidAddress, len(bytes), "address too short: %d", len(bytes))
	}
	semiOctets := int(bytes[0])
	ton, npi, err := parseTypeOfAddress(bytes[1])
	if err != nil {
		return Address{}, 0, err
	}
	if ton != AlphanumericAddress && semiOctets > MaxAddressDigits {
		return Address{}, 0, decodeErrorf(ErrInvalidAddress, 0, "too many digits: %d", semiOctets)
	}
	length := 2 + gsm.SemiOctetLength(semiOctets)
	if len(bytes) < length {
		return Address{}, 0, decodeErrorf(ErrInvalidAddress, len(bytes), "%d digits do not fit into %d octets", semiOctets, len(bytes)-2)
	}

	if ton == AlphanumericAddress {
		septets, err := UnpackSeptets(bytes[2:length], 0, semiOctets*4/7)
		if err != nil {
			return Address{}, 0, shiftOffset(err, 2)
		}
		text, err := DecodeSeptets(septets)
		if err != nil {
			return Address{}, 0, decodeErrorf(ErrInvalidAddress, 2, "alphanumeric address: %v", err)
		}
		return Address{TON: ton, NPI: npi, Digits: text}, length, nil
	}

	digits, err := parseBCDDigits(bytes[2:length], semiOctets)
	if err != nil {
		return Address{}, 0, shiftOffset(err, 2)
	}
	return Address{TON: ton, NPI: npi, Digits: digits}, length, nil
}

// ParseServiceCenterAddress reads the SMSC prefix in front of a TPDU, where the length octet counts
// the octets of the type of address and the digits. A length of zero yields the zero address.
func ParseServiceCenterAddress(bytes []byte) (Address, int, error) {
	if len(bytes) < 1 {
		return Address{}, 0, decodeErrorf(ErrTruncatedPDU, 0, "missing service centre address")
	}
	length := 1 + int(bytes[0])
	if length == 1 {
		return Address{}, 1, nil
	}
	if len(bytes) < length {
		return Address{}, 0, decodeErrorf(ErrInvalidAddress, len(bytes), "service centre address too short: %d", len(bytes))
	}
	ton, npi, err := parseTypeOfAddress(bytes[1])
	if err != nil {
		return Address{}, 0, err
	}
	digitOctets := length - 2
	semiOctets := digitOctets * 2
	if digitOctets > 0 && bytes[length-1]>>4 == fillNibble {
		semiOctets--
	}
	if semiOctets > MaxAddressDigits {
		return Address{}, 0, decodeErrorf(ErrInvalidAddress, 0, "too many digits: %d", semiOctets)
	}
	digits, err := parseBCDDigits(bytes[2:length], semiOctets)
	if err != nil {
		return Address{}, 0, shiftOffset(err, 2)
	}
	return Address{TON: ton, NPI: npi, Digits: digits}, length, nil
}

func parseTypeOfAddress(value byte) (TypeOfNumber, NumberingPlan, error) {
	if value&typeOfAddressExtension == 0 {
		return 0, 0, decodeErrorf(ErrInvalidAddress, 1, "extension bit not set in type of address 0x%02x", value)
	}
	ton := TypeOfNumber((value >> 4) & 0x07)
	if ton == reservedTypeOfNumber {
		return 0, 0, decodeErrorf(ErrInvalidAddress, 1, "reserved type of number in 0x%02x", value)
	}
	npi := NumberingPlan(value & 0x0F)
	if !npi.valid() {
		return 0, 0, decodeErrorf(ErrInvalidAddress, 1, "undefined numbering plan in 0x%02x", value)
	}
	return ton, npi, nil
}

func parseBCDDigits(bytes []byte, count int) (string, error) {
	var result strings.Builder
	result.Grow(count)
	for i := 0; i < count; i++ {
		value := bytes[i/2]
		if i%2 == 1 {
			value >>= 4
		}
		value &= 0x0F
		if value == fillNibble {
			return "", decodeErrorf(ErrInvalidAddress, i/2, "fill nibble at digit %d", i)
		}
		result.WriteByte(bcdSymbols[value])
	}
	return result.String(), nil
}
