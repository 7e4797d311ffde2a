package sms

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Alphabet enum according to [ALP] 4
type Alphabet byte

// All alphabets that are defined by the data coding scheme.
const (
	GSM7Bit Alphabet = iota
	Data8Bit
	UCS2
)

func (a Alphabet) String() string {
	switch a {
	case GSM7Bit:
		return "GSM 7-bit"
	case Data8Bit:
		return "8-bit data"
	case UCS2:
		return "UCS2"
	default:
		return fmt.Sprintf("alphabet %d", byte(a))
	}
}

var ucs2Codec encoding.Encoding = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// EncodeUCS2 encodes the given text as big endian 16-bit code units.
// Characters outside of the basic multilingual plane are represented as surrogate pairs.
func EncodeUCS2(text string) ([]byte, error) {
	result, err := ucs2Codec.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, decodeErrorf(ErrUnsupportedCharacter, 0, "%v", err)
	}
	return result, nil
}

// DecodeUCS2 decodes big endian 16-bit code units into text.
func DecodeUCS2(bytes []byte) (string, error) {
	if len(bytes)%2 != 0 {
		return "", decodeErrorf(ErrMalformedAlphabetData, len(bytes)-1, "odd UCS2 length %d", len(bytes))
	}
	result, err := ucs2Codec.NewDecoder().Bytes(bytes)
	if err != nil {
		return "", decodeErrorf(ErrMalformedAlphabetData, 0, "%v", err)
	}
	return string(result), nil
}

// Passthrough8Bit returns a copy of the given 8-bit user data.
func Passthrough8Bit(bytes []byte) []byte {
	result := make([]byte, len(bytes))
	copy(result, bytes)
	return result
}

// Latin1Text renders 8-bit user data as ISO8859-1 text. This is only meant for logging and display,
// 8-bit user data has no defined character set.
func Latin1Text(bytes []byte) string {
	result, err := charmap.ISO8859_1.NewDecoder().Bytes(bytes)
	if err != nil {
		return fmt.Sprintf("% x", bytes)
	}
	return string(result)
}

// UCS2Length returns the number of octets the given text occupies when encoded as UCS2.
func UCS2Length(text string) int {
	result := 0
	for _, r := range text {
		if r > 0xFFFF {
			result += 4
		} else {
			result += 2
		}
	}
	return result
}

// IsGSM7 indicates if the given text can be represented in the GSM 7-bit default alphabet.
func IsGSM7(text string) bool {
	for _, r := range text {
		if _, ok := SeptetCost(r); !ok {
			return false
		}
	}
	return true
}
