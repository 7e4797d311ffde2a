package sms

/* GSM 7-bit default alphabet according to [ALP] 6.2.1 */

const (
	escapeSeptet   byte = 0x1B
	carriageReturn byte = 0x0D
)

// defaultAlphabet maps the septet values of the GSM 7-bit default alphabet to characters, see [ALP] table 6.2.1.
// The escape septet 0x1B has no character of its own.
var defaultAlphabet = [128]rune{
	'@', '£', '$', '¥', 'è', 'é', 'ù', 'ì', 'ò', 'Ç', '\n', 'Ø', 'ø', '\r', 'Å', 'å',
	'Δ', '_', 'Φ', 'Γ', 'Λ', 'Ω', 'Π', 'Ψ', 'Σ', 'Θ', 'Ξ', 0, 'Æ', 'æ', 'ß', 'É',
	' ', '!', '"', '#', '¤', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', ':', ';', '<', '=', '>', '?',
	'¡', 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O',
	'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z', 'Ä', 'Ö', 'Ñ', 'Ü', '§',
	'¿', 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o',
	'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z', 'ä', 'ö', 'ñ', 'ü', 'à',
}

// extensionTable maps the septets following an escape to characters, see [ALP] table 6.2.1.1.
var extensionTable = map[byte]rune{
	0x0A: '\f',
	0x14: '^',
	0x28: '{',
	0x29: '}',
	0x2F: '\\',
	0x3C: '[',
	0x3D: '~',
	0x3E: ']',
	0x40: '|',
	0x65: '€',
}

var (
	defaultCodes   = make(map[rune]byte, len(defaultAlphabet))
	extensionCodes = make(map[rune]byte, len(extensionTable))
)

func init() {
	for code, r := range defaultAlphabet {
		if byte(code) == escapeSeptet {
			continue
		}
		defaultCodes[r] = byte(code)
	}
	for code, r := range extensionTable {
		extensionCodes[r] = code
	}
}

// SeptetCost returns the number of septets needed to represent the given character in the
// GSM 7-bit default alphabet. It returns false if the character cannot be represented.
func SeptetCost(r rune) (int, bool) {
	if _, ok := defaultCodes[r]; ok {
		return 1, true
	}
	if _, ok := extensionCodes[r]; ok {
		return 2, true
	}
	return 0, false
}

// SeptetLength returns the number of septets the given text occupies in the GSM 7-bit default alphabet.
func SeptetLength(text string) (int, error) {
	result := 0
	i := 0
	for _, r := range text {
		cost, ok := SeptetCost(r)
		if !ok {
			return 0, decodeErrorf(ErrUnsupportedCharacter, i, "character %q", r)
		}
		result += cost
		i++
	}
	return result, nil
}

// EncodeSeptets maps the given text to unpacked septet values. Characters of the extension table
// are represented by the escape septet followed by their extension code.
func EncodeSeptets(text string) ([]byte, error) {
	result := make([]byte, 0, len(text))
	i := 0
	for _, r := range text {
		if code, ok := defaultCodes[r]; ok {
			result = append(result, code)
		} else if code, ok := extensionCodes[r]; ok {
			result = append(result, escapeSeptet, code)
		} else {
			return nil, decodeErrorf(ErrUnsupportedCharacter, i, "character %q", r)
		}
		i++
	}
	return result, nil
}

// DecodeSeptets maps unpacked septet values to text.
func DecodeSeptets(septets []byte) (string, error) {
	result := make([]rune, 0, len(septets))
	for i := 0; i < len(septets); i++ {
		septet := septets[i] & 0x7F
		if septet != escapeSeptet {
			result = append(result, defaultAlphabet[septet])
			continue
		}
		if i+1 >= len(septets) {
			return "", decodeErrorf(ErrMalformedAlphabetData, i, "escape at the end of the text")
		}
		i++
		r, ok := extensionTable[septets[i]&0x7F]
		if !ok {
			return "", decodeErrorf(ErrMalformedAlphabetData, i, "invalid extension code 0x%02x", septets[i])
		}
		result = append(result, r)
	}
	return string(result), nil
}

// PackSeptets packs the given septets low bit first into octets, beginning after the given number of fill bits.
// If the packed septets leave exactly seven spare bits in the last octet, these are filled with a
// carriage return, so the padding cannot be mistaken for '@' (see [ALP] 6.1.2.3.1).
func PackSeptets(septets []byte, fillBits int) []byte {
	if len(septets) == 0 {
		return []byte{}
	}
	bits := fillBits + len(septets)*7
	result := make([]byte, (bits+7)/8)
	for i, septet := range septets {
		putSeptet(result, fillBits+i*7, septet)
	}
	if bits%8 == 1 {
		putSeptet(result, bits, carriageReturn)
	}
	return result
}

func putSeptet(bytes []byte, bitPos int, septet byte) {
	septet &= 0x7F
	i := bitPos / 8
	shift := bitPos % 8
	bytes[i] |= septet << shift
	if shift > 1 {
		bytes[i+1] |= septet >> (8 - shift)
	}
}

// UnpackSeptets extracts count septets from the given octets, skipping the given number of fill bits.
func UnpackSeptets(bytes []byte, fillBits int, count int) ([]byte, error) {
	if count < 0 || fillBits+count*7 > len(bytes)*8 {
		return nil, decodeErrorf(ErrMalformedAlphabetData, 0, "%d septets do not fit into %d octets", count, len(bytes))
	}
	result := make([]byte, count)
	for i := range result {
		result[i] = getSeptet(bytes, fillBits+i*7)
	}
	return result, nil
}

func getSeptet(bytes []byte, bitPos int) byte {
	i := bitPos / 8
	shift := bitPos % 8
	result := bytes[i] >> shift
	if shift > 1 {
		result |= bytes[i+1] << (8 - shift)
	}
	return result & 0x7F
}

// Pack7Bit encodes the given text in the GSM 7-bit default alphabet and packs it into octets.
// It returns the packed octets and the number of septets, which is the user data length of the text.
func Pack7Bit(text string) ([]byte, int, error) {
	septets, err := EncodeSeptets(text)
	if err != nil {
		return nil, 0, err
	}
	return PackSeptets(septets, 0), len(septets), nil
}

// Unpack7Bit decodes the given number of packed septets into text.
func Unpack7Bit(bytes []byte, septetCount int) (string, error) {
	septets, err := UnpackSeptets(bytes, 0, septetCount)
	if err != nil {
		return "", err
	}
	return DecodeSeptets(septets)
}
