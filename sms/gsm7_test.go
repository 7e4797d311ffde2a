package sms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/smsc-pdu/gsm"
)

func TestPack7Bit(t *testing.T) {
	tt := []struct {
		desc            string
		value           string
		expectedBytes   string
		expectedSeptets int
	}{
		{
			desc:            "empty",
			value:           "",
			expectedBytes:   "",
			expectedSeptets: 0,
		},
		{
			desc:            "hellohello",
			value:           "hellohello",
			expectedBytes:   "E8329BFD4697D9EC37",
			expectedSeptets: 10,
		},
		{
			desc:            "carriage return filler",
			value:           "Hello!!",
			expectedBytes:   "C8329BFD0E851A",
			expectedSeptets: 7,
		},
		{
			desc:            "filler after seven at signs",
			value:           "@@@@@@@",
			expectedBytes:   "0000000000001A",
			expectedSeptets: 7,
		},
		{
			desc:            "no filler for eight septets",
			value:           "@@@@@@@@",
			expectedBytes:   "00000000000000",
			expectedSeptets: 8,
		},
		{
			desc:            "extension character",
			value:           "€",
			expectedBytes:   "9B32",
			expectedSeptets: 2,
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actualBytes, actualSeptets, err := Pack7Bit(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedBytes, gsm.BinaryToHex(actualBytes))
			assert.Equal(t, tc.expectedSeptets, actualSeptets)
		})
	}
}

func TestPack7Bit_UnsupportedCharacter(t *testing.T) {
	_, _, err := Pack7Bit("ab中")

	assert.True(t, errors.Is(err, ErrUnsupportedCharacter))
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, 2, decodeErr.Offset)
}

func TestUnpack7Bit(t *testing.T) {
	tt := []struct {
		desc     string
		bytes    string
		septets  int
		expected string
		invalid  bool
	}{
		{
			desc:     "hellohello",
			bytes:    "E8329BFD4697D9EC37",
			septets:  10,
			expected: "hellohello",
		},
		{
			desc:     "filler is not part of the text",
			bytes:    "C8329BFD0E851A",
			septets:  7,
			expected: "Hello!!",
		},
		{
			desc:     "extension character",
			bytes:    "9B32",
			septets:  2,
			expected: "€",
		},
		{
			desc:    "septet count exceeds data",
			bytes:   "E832",
			septets: 3,
			invalid: true,
		},
		{
			desc:    "escape at the end",
			bytes:   "1B",
			septets: 1,
			invalid: true,
		},
		{
			desc:    "invalid extension code",
			bytes:   "9B00",
			septets: 2,
			invalid: true,
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			bytes, err := gsm.HexToBinary(tc.bytes)
			require.NoError(t, err)

			actual, err := Unpack7Bit(bytes, tc.septets)
			if tc.invalid {
				assert.True(t, errors.Is(err, ErrMalformedAlphabetData), "%v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestPack7Bit_RoundTrip(t *testing.T) {
	var all []rune
	for code, r := range defaultAlphabet {
		if byte(code) != escapeSeptet {
			all = append(all, r)
		}
	}
	for _, r := range extensionTable {
		all = append(all, r)
	}
	text := string(all)

	for fillBits := 0; fillBits < 7; fillBits++ {
		septets, err := EncodeSeptets(text)
		require.NoError(t, err)
		packed := PackSeptets(septets, fillBits)
		unpacked, err := UnpackSeptets(packed, fillBits, len(septets))
		require.NoError(t, err)
		actual, err := DecodeSeptets(unpacked)
		require.NoError(t, err)
		assert.Equal(t, text, actual, "fill bits %d", fillBits)
	}
}

func TestPackSeptets_FillBits(t *testing.T) {
	assert.Equal(t, []byte{0x82}, PackSeptets([]byte{0x41}, 1))
	assert.Equal(t, []byte{}, PackSeptets(nil, 3))

	septets, err := UnpackSeptets([]byte{0x82}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x41}, septets)
}

func TestSeptetLength(t *testing.T) {
	actual, err := SeptetLength("a{b}")
	require.NoError(t, err)
	assert.Equal(t, 6, actual)

	_, err = SeptetLength("aй")
	assert.True(t, errors.Is(err, ErrUnsupportedCharacter))
}

func TestUCS2(t *testing.T) {
	tt := []struct {
		desc     string
		value    string
		expected string
	}{
		{desc: "ascii", value: "Hi", expected: "00480069"},
		{desc: "cyrillic", value: "дa", expected: "04340061"},
		{desc: "surrogate pair", value: "😀", expected: "D83DDE00"},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			encoded, err := EncodeUCS2(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, gsm.BinaryToHex(encoded))
			assert.Equal(t, len(encoded), UCS2Length(tc.value))

			decoded, err := DecodeUCS2(encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.value, decoded)
		})
	}
}

func TestDecodeUCS2_OddLength(t *testing.T) {
	_, err := DecodeUCS2([]byte{0x00, 0x48, 0x00})
	assert.True(t, errors.Is(err, ErrMalformedAlphabetData))
}

func TestPassthrough8Bit(t *testing.T) {
	value := []byte{0x00, 0xFF, 0x7F}
	actual := Passthrough8Bit(value)
	assert.Equal(t, value, actual)

	actual[0] = 0x01
	assert.Equal(t, byte(0x00), value[0])
	assert.Equal(t, "ÿ", Latin1Text([]byte{0xFF}))
}

func TestIsGSM7(t *testing.T) {
	assert.True(t, IsGSM7("Hello [world] €"))
	assert.False(t, IsGSM7("Hello ☺"))
}
