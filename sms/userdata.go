package sms

import "fmt"

const (
	// MaxUserDataOctets is the maximum length of TP-UD in octets.
	MaxUserDataOctets = 140
	// MaxUserDataSeptets is the maximum length of TP-UD in septets.
	MaxUserDataSeptets = 160
)

// UserData is the decoded TP-UD. Text holds the payload for the GSM 7-bit and UCS2 alphabets,
// Binary holds the payload for 8-bit data.
type UserData struct {
	Header UserDataHeader
	Text   string
	Binary []byte
}

// IsEmpty indicates if the user data has neither header nor payload.
func (u UserData) IsEmpty() bool {
	return u.Header == nil && u.Text == "" && len(u.Binary) == 0
}

func (u UserData) headerIndicator() byte {
	if u.Header != nil {
		return udhiFlag
	}
	return 0
}

// headerSeptets returns the number of septets occupied by a header of the given octet length and the
// number of fill bits that align the following text to a septet boundary, see [TL] 9.2.3.24.
func headerSeptets(headerOctets int) (septets int, fillBits int) {
	if headerOctets == 0 {
		return 0, 0
	}
	bits := headerOctets * 8
	septets = (bits + 6) / 7
	return septets, septets*7 - bits
}

// parseUserData reads TP-UDL and TP-UD from the beginning of the given bytes. It returns the user data and the number of octets it occupies.
func parseUserData(bytes []byte, alphabet Alphabet, udhi bool) (UserData, int, error) {
	if len(bytes) < 1 {
		return UserData{}, 0, decodeErrorf(ErrTruncatedPDU, 0, "missing user data length")
	}
	udl := int(bytes[0])
	octets := udl
	if alphabet == GSM7Bit {
		octets = (udl*7 + 7) / 8
	}
	if len(bytes) < 1+octets {
		return UserData{}, 0, decodeErrorf(ErrTruncatedPDU, len(bytes), "user data length %d exceeds the remaining %d octets", udl, len(bytes)-1)
	}
	ud := bytes[1 : 1+octets]

	var result UserData
	headerOctets := 0
	if udhi {
		header, length, err := ParseUserDataHeader(ud)
		if err != nil {
			return UserData{}, 0, shiftOffset(err, 1)
		}
		result.Header = header
		if result.Header == nil {
			result.Header = UserDataHeader{}
		}
		headerOctets = length
	}
	payload := ud[headerOctets:]

	switch alphabet {
	case GSM7Bit:
		septets, fillBits := headerSeptets(headerOctets)
		if septets > udl {
			return UserData{}, 0, decodeErrorf(ErrMalformedHeader, 1, "header of %d septets exceeds user data length %d", septets, udl)
		}
		unpacked, err := UnpackSeptets(payload, fillBits, udl-septets)
		if err != nil {
			return UserData{}, 0, shiftOffset(err, 1+headerOctets)
		}
		text, err := DecodeSeptets(unpacked)
		if err != nil {
			return UserData{}, 0, decodeErrorf(ErrMalformedAlphabetData, 1+headerOctets, "%v", err)
		}
		result.Text = text
	case UCS2:
		text, err := DecodeUCS2(payload)
		if err != nil {
			return UserData{}, 0, shiftOffset(err, 1+headerOctets)
		}
		result.Text = text
	default:
		result.Binary = Passthrough8Bit(payload)
	}
	return result, 1 + octets, nil
}

// encode appends TP-UDL and TP-UD to the given bytes.
func (u UserData) encode(bytes []byte, alphabet Alphabet) ([]byte, error) {
	var header []byte
	if u.Header != nil {
		var err error
		header, err = u.Header.Encode(nil)
		if err != nil {
			return nil, err
		}
	}

	var udl int
	var payload []byte
	switch alphabet {
	case GSM7Bit:
		if u.Binary != nil {
			return nil, fmt.Errorf("%w: binary payload with GSM 7-bit alphabet", ErrUnsupportedCharacter)
		}
		septets, err := EncodeSeptets(u.Text)
		if err != nil {
			return nil, err
		}
		headerSeptets, fillBits := headerSeptets(len(header))
		udl = headerSeptets + len(septets)
		if udl > MaxUserDataSeptets {
			return nil, fmt.Errorf("%w: %d septets", ErrUserDataTooLong, udl)
		}
		payload = PackSeptets(septets, fillBits)
	case UCS2:
		if u.Binary != nil {
			return nil, fmt.Errorf("%w: binary payload with UCS2 alphabet", ErrUnsupportedCharacter)
		}
		encoded, err := EncodeUCS2(u.Text)
		if err != nil {
			return nil, err
		}
		payload = encoded
		udl = len(header) + len(payload)
	default:
		if u.Text != "" {
			return nil, fmt.Errorf("%w: text payload with 8-bit data", ErrUnsupportedCharacter)
		}
		payload = u.Binary
		udl = len(header) + len(payload)
	}
	if len(header)+len(payload) > MaxUserDataOctets {
		return nil, fmt.Errorf("%w: %d octets", ErrUserDataTooLong, len(header)+len(payload))
	}

	bytes = append(bytes, byte(udl))
	bytes = append(bytes, header...)
	return append(bytes, payload...), nil
}
