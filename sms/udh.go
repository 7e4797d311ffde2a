package sms

import (
	"encoding/binary"
	"fmt"
)

/* User data header according to [TL] 9.2.3.24 */

// InformationElementID enum according to [TL] 9.2.3.24
type InformationElementID byte

// The information elements that are interpreted by this package. All other elements are kept as they are.
const (
	Concatenation8BitIEI    InformationElementID = 0x00
	ApplicationPort8BitIEI  InformationElementID = 0x04
	ApplicationPort16BitIEI InformationElementID = 0x05
	Concatenation16BitIEI   InformationElementID = 0x08
)

var informationElementLengths = map[InformationElementID]int{
	Concatenation8BitIEI:    3,
	ApplicationPort8BitIEI:  2,
	ApplicationPort16BitIEI: 4,
	Concatenation16BitIEI:   4,
}

// InformationElement is one element of the user data header.
type InformationElement struct {
	ID   InformationElementID
	Data []byte
}

func (e InformationElement) wellFormed() bool {
	expected, ok := informationElementLengths[e.ID]
	return !ok || len(e.Data) == expected
}

// UserDataHeader is the ordered list of information elements at the beginning of the user data.
// A nil header is absent, an empty header is present without any information element.
type UserDataHeader []InformationElement

// ParseUserDataHeader reads the user data header including its length octet from the beginning of the given bytes.
// It returns the header and the number of octets it occupies.
func ParseUserDataHeader(bytes []byte) (UserDataHeader, int, error) {
	if len(bytes) < 1 {
		return nil, 0, decodeErrorf(ErrMalformedHeader, 0, "missing header length")
	}
	end := 1 + int(bytes[0])
	if len(bytes) < end {
		return nil, 0, decodeErrorf(ErrMalformedHeader, 0, "header length %d exceeds user data of %d octets", bytes[0], len(bytes)-1)
	}

	var result UserDataHeader
	for pos := 1; pos < end; {
		if pos+2 > end {
			return nil, 0, decodeErrorf(ErrMalformedHeader, pos, "incomplete information element")
		}
		id := InformationElementID(bytes[pos])
		length := int(bytes[pos+1])
		if pos+2+length > end {
			return nil, 0, decodeErrorf(ErrMalformedHeader, pos+1, "information element 0x%02x overruns the header", id)
		}
		if expected, ok := informationElementLengths[id]; ok && length != expected {
			return nil, 0, decodeErrorf(ErrMalformedHeader, pos+1, "information element 0x%02x has length %d, expected %d", id, length, expected)
		}
		data := make([]byte, length)
		copy(data, bytes[pos+2:pos+2+length])
		result = append(result, InformationElement{ID: id, Data: data})
		pos += 2 + length
	}
	return result, end, nil
}

// Length returns the number of octets of the encoded header including its length octet.
func (h UserDataHeader) Length() int {
	result := 1
	for _, element := range h {
		result += 2 + len(element.Data)
	}
	return result
}

// Encode appends the header including its length octet to the given bytes.
func (h UserDataHeader) Encode(bytes []byte) ([]byte, error) {
	length := h.Length() - 1
	if length > 0xFF {
		return bytes, fmt.Errorf("%w: header too long: %d", ErrMalformedHeader, length)
	}
	for _, element := range h {
		if !element.wellFormed() {
			return bytes, fmt.Errorf("%w: information element 0x%02x has invalid length %d", ErrMalformedHeader, element.ID, len(element.Data))
		}
		if len(element.Data) > 0xFF {
			return bytes, fmt.Errorf("%w: information element 0x%02x too long", ErrMalformedHeader, element.ID)
		}
	}

	bytes = append(bytes, byte(length))
	for _, element := range h {
		bytes = append(bytes, byte(element.ID), byte(len(element.Data)))
		bytes = append(bytes, element.Data...)
	}
	return bytes, nil
}

// Element returns the first information element with the given ID.
func (h UserDataHeader) Element(id InformationElementID) (InformationElement, bool) {
	for _, element := range h {
		if element.ID == id {
			return element, true
		}
	}
	return InformationElement{}, false
}

// With returns a copy of the header where the given element replaces all elements with the same ID.
// If there is no such element, the given element is appended.
func (h UserDataHeader) With(element InformationElement) UserDataHeader {
	result := make(UserDataHeader, 0, len(h)+1)
	replaced := false
	for _, e := range h {
		if e.ID != element.ID {
			result = append(result, e)
		} else if !replaced {
			result = append(result, element)
			replaced = true
		}
	}
	if !replaced {
		result = append(result, element)
	}
	return result
}

// Concatenation information according to [TL] 9.2.3.24.1 and 9.2.3.24.8
type Concatenation struct {
	Reference uint16
	Total     byte
	Sequence  byte
	Wide      bool
}

// Concatenation returns the concatenation information of the header. Elements with a sequence number
// of zero or beyond the total number of parts are ignored, as required by [TL] 9.2.3.24.1.
func (h UserDataHeader) Concatenation() (Concatenation, bool) {
	for _, element := range h {
		if !element.wellFormed() {
			continue
		}
		var result Concatenation
		switch element.ID {
		case Concatenation8BitIEI:
			result = Concatenation{
				Reference: uint16(element.Data[0]),
				Total:     element.Data[1],
				Sequence:  element.Data[2],
			}
		case Concatenation16BitIEI:
			result = Concatenation{
				Reference: binary.BigEndian.Uint16(element.Data[0:2]),
				Total:     element.Data[2],
				Sequence:  element.Data[3],
				Wide:      true,
			}
		default:
			continue
		}
		if result.Total == 0 || result.Sequence == 0 || result.Sequence > result.Total {
			continue
		}
		return result, true
	}
	return Concatenation{}, false
}

// Element returns the information element that carries this concatenation information.
// A reference above 255 is always carried by the 16-bit element.
func (c Concatenation) Element() InformationElement {
	if c.Wide || c.Reference > 0xFF {
		data := binary.BigEndian.AppendUint16(make([]byte, 0, 4), c.Reference)
		return InformationElement{ID: Concatenation16BitIEI, Data: append(data, c.Total, c.Sequence)}
	}
	return InformationElement{ID: Concatenation8BitIEI, Data: []byte{byte(c.Reference), c.Total, c.Sequence}}
}

// Ports holds the application port addressing according to [TL] 9.2.3.24.3 and 9.2.3.24.4
type Ports struct {
	Destination uint16
	Source      uint16
	Wide        bool
}

// Ports returns the application port addressing of the header.
func (h UserDataHeader) Ports() (Ports, bool) {
	for _, element := range h {
		if !element.wellFormed() {
			continue
		}
		switch element.ID {
		case ApplicationPort8BitIEI:
			return Ports{Destination: uint16(element.Data[0]), Source: uint16(element.Data[1])}, true
		case ApplicationPort16BitIEI:
			return Ports{
				Destination: binary.BigEndian.Uint16(element.Data[0:2]),
				Source:      binary.BigEndian.Uint16(element.Data[2:4]),
				Wide:        true,
			}, true
		}
	}
	return Ports{}, false
}

// Element returns the information element that carries this port addressing.
// Ports above 255 are always carried by the 16-bit element.
func (p Ports) Element() InformationElement {
	if p.Wide || p.Destination > 0xFF || p.Source > 0xFF {
		data := binary.BigEndian.AppendUint16(make([]byte, 0, 4), p.Destination)
		return InformationElement{ID: ApplicationPort16BitIEI, Data: binary.BigEndian.AppendUint16(data, p.Source)}
	}
	return InformationElement{ID: ApplicationPort8BitIEI, Data: []byte{byte(p.Destination), byte(p.Source)}}
}
