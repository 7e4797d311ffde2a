package sms

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Part is one received short message that is a candidate for reassembly.
type Part struct {
	Origin           Address
	Recipient        Address
	DataCodingScheme DataCodingScheme
	Timestamp        Timestamp
	UserData         UserData
}

// NewPart creates a part from a received SMS-DELIVER or SMS-SUBMIT. For an SMS-SUBMIT, which carries
// no originating address, the given origin is used. For an SMS-DELIVER, the given origin is the recipient.
func NewPart(tpdu TPDU, origin Address) (Part, error) {
	switch m := tpdu.(type) {
	case *Deliver:
		return Part{
			Origin:           m.OriginatingAddress,
			Recipient:        origin,
			DataCodingScheme: m.DataCodingScheme,
			Timestamp:        m.ServiceCentreTimestamp,
			UserData:         m.UserData,
		}, nil
	case *Submit:
		return Part{
			Origin:           origin,
			Recipient:        m.DestinationAddress,
			DataCodingScheme: m.DataCodingScheme,
			UserData:         m.UserData,
		}, nil
	default:
		return Part{}, fmt.Errorf("%v carries no message", tpdu.Type())
	}
}

// Concatenation returns the concatenation information of this part.
func (p Part) Concatenation() (Concatenation, bool) {
	return p.UserData.Header.Concatenation()
}

func (p Part) samePayload(other Part) bool {
	return p.UserData.Text == other.UserData.Text && string(p.UserData.Binary) == string(other.UserData.Binary)
}

// AssembledMessage is a complete logical message, made of one or more parts.
type AssembledMessage struct {
	ID               string
	Sender           Address
	Recipient        Address
	DataCodingScheme DataCodingScheme
	Timestamp        Timestamp
	Text             string
	Binary           []byte
	Ports            *Ports
	Parts            int
}

func (m AssembledMessage) String() string {
	body := m.Text
	if m.Binary != nil {
		body = Latin1Text(m.Binary)
	}
	return fmt.Sprintf("Message %s from %s to %s at %s in %d part(s):\n%s", m.ID, m.Sender, m.Recipient, m.Timestamp, m.Parts, body)
}

// samePayloadKind indicates if the given parts either all carry 8-bit data or all carry text.
func samePayloadKind(parts []Part) bool {
	binary := parts[0].UserData.Binary != nil
	for _, part := range parts[1:] {
		if (part.UserData.Binary != nil) != binary {
			return false
		}
	}
	return true
}

// assemble concatenates the payloads of the given parts, which must be in sequence order.
func assemble(parts []Part) AssembledMessage {
	first := parts[0]
	result := AssembledMessage{
		ID:               uuid.NewString(),
		Sender:           first.Origin,
		Recipient:        first.Recipient,
		DataCodingScheme: first.DataCodingScheme,
		Timestamp:        first.Timestamp,
		Parts:            len(parts),
	}
	if ports, ok := first.UserData.Header.Ports(); ok {
		result.Ports = &ports
	}

	if first.UserData.Binary != nil {
		result.Binary = make([]byte, 0, len(parts)*len(first.UserData.Binary))
		for _, part := range parts {
			result.Binary = append(result.Binary, part.UserData.Binary...)
		}
		return result
	}

	var text strings.Builder
	for _, part := range parts {
		text.WriteString(part.UserData.Text)
	}
	result.Text = text.String()
	return result
}
