package gsm

import (
	"context"
	"encoding/hex"
	"regexp"
	"strings"
)

// Requester sends an AT request to the modem and returns the response lines.
type Requester interface {
	Request(context.Context, string) ([]string, error)
}

// RequesterFunc wraps a function into a Requester.
type RequesterFunc func(context.Context, string) ([]string, error)

func (f RequesterFunc) Request(ctx context.Context, request string) ([]string, error) {
	return f(ctx, request)
}

var hexSanitizer = regexp.MustCompile(`\s+`)

// HexToBinary converts the hex representation of a PDU used on the AT interface into a slice of bytes.
func HexToBinary(s string) ([]byte, error) {
	sanitized := hexSanitizer.ReplaceAllString(s, "")
	return hex.DecodeString(sanitized)
}

// BinaryToHex converts a PDU into the upper case hex representation used on the AT interface.
func BinaryToHex(pdu []byte) string {
	return strings.ToUpper(hex.EncodeToString(pdu))
}

// SemiOctetLength returns the number of octets needed to hold the given number of semi-octets.
func SemiOctetLength(semiOctets int) int {
	return (semiOctets + 1) / 2
}
