package sms

import "fmt"

/* Segmentation of outgoing user data into concatenated short messages according to [TL] 9.2.3.24.1 */

// MaxParts is the maximum number of parts of a concatenated short message.
const MaxParts = 255

const concatenationElementOctets = 5

// Capacity returns the number of septets (GSM 7-bit) or octets (8-bit data, UCS2) that are available
// for the payload of one TPDU with a user data header of the given length in octets.
func Capacity(alphabet Alphabet, headerOctets int) int {
	if alphabet == GSM7Bit {
		septets, _ := headerSeptets(headerOctets)
		return MaxUserDataSeptets - septets
	}
	return MaxUserDataOctets - headerOctets
}

// SelectAlphabet returns the GSM 7-bit default alphabet if it can represent the given text, UCS2 otherwise.
func SelectAlphabet(text string) Alphabet {
	if IsGSM7(text) {
		return GSM7Bit
	}
	return UCS2
}

func headerOctets(header UserDataHeader) int {
	if header == nil {
		return 0
	}
	return header.Length()
}

func concatenatedHeaderOctets(header UserDataHeader) int {
	return headerOctets(header) + concatenationElementOctets + boolToInt(header == nil)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func characterCost(alphabet Alphabet, r rune) (int, error) {
	switch alphabet {
	case GSM7Bit:
		cost, ok := SeptetCost(r)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnsupportedCharacter, r)
		}
		return cost, nil
	case UCS2:
		if r > 0xFFFF {
			return 4, nil
		}
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: text cannot be sent as %v", ErrUnsupportedDCS, alphabet)
	}
}

// SplitText splits the given text into the payloads of one or more short messages. If the text does not fit
// into a single short message with the given user data header, it is split into parts that leave room for a
// concatenation element. Escape sequences and surrogate pairs are never split.
func SplitText(text string, alphabet Alphabet, header UserDataHeader) ([]string, error) {
	runes := []rune(text)
	costs := make([]int, len(runes))
	total := 0
	for i, r := range runes {
		cost, err := characterCost(alphabet, r)
		if err != nil {
			return nil, err
		}
		costs[i] = cost
		total += cost
	}
	if total <= Capacity(alphabet, headerOctets(header)) {
		return []string{text}, nil
	}

	capacity := Capacity(alphabet, concatenatedHeaderOctets(header))
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: no room left for text", ErrUserDataTooLong)
	}
	result := make([]string, 0, total/capacity+1)
	start := 0
	used := 0
	for i, cost := range costs {
		if used+cost > capacity {
			result = append(result, string(runes[start:i]))
			start = i
			used = 0
		}
		used += cost
	}
	result = append(result, string(runes[start:]))

	if len(result) > MaxParts {
		return nil, fmt.Errorf("%w: %d parts", ErrUserDataTooLong, len(result))
	}
	return result, nil
}

// SplitBinary splits the given 8-bit data into the payloads of one or more short messages, like SplitText.
func SplitBinary(data []byte, header UserDataHeader) ([][]byte, error) {
	if len(data) <= Capacity(Data8Bit, headerOctets(header)) {
		return [][]byte{data}, nil
	}

	capacity := Capacity(Data8Bit, concatenatedHeaderOctets(header))
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: no room left for data", ErrUserDataTooLong)
	}
	count := (len(data) + capacity - 1) / capacity
	if count > MaxParts {
		return nil, fmt.Errorf("%w: %d parts", ErrUserDataTooLong, count)
	}
	result := make([][]byte, 0, count)
	for start := 0; start < len(data); start += capacity {
		end := min(start+capacity, len(data))
		result = append(result, data[start:end])
	}
	return result, nil
}

// ConcatenatedHeader returns a copy of the given header with the concatenation element for the given part.
// Single part messages keep the header as it is.
func ConcatenatedHeader(header UserDataHeader, reference byte, total int, sequence int) UserDataHeader {
	if total <= 1 {
		return header
	}
	concatenation := Concatenation{Reference: uint16(reference), Total: byte(total), Sequence: byte(sequence)}
	return header.With(concatenation.Element())
}
