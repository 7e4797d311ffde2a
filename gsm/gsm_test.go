package gsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHexBinaryRoundtrip(t *testing.T) {
	hex := "040BC87238880900F10000993092516195800AE8329BFD4697D9EC37"

	pdu, err := HexToBinary(hex)
	assert.NoError(t, err)

	actual := BinaryToHex(pdu)
	assert.Equal(t, hex, actual)
}

func TestHexToBinary_Whitespace(t *testing.T) {
	pdu, err := HexToBinary("04 0b\tC8\n72")

	assert.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x0B, 0xC8, 0x72}, pdu)
}

func TestSemiOctetLength(t *testing.T) {
	assert.Equal(t, 0, SemiOctetLength(0))
	assert.Equal(t, 1, SemiOctetLength(1))
	assert.Equal(t, 1, SemiOctetLength(2))
	assert.Equal(t, 6, SemiOctetLength(11))
}
