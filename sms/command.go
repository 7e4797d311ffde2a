package sms

import "fmt"

// MaxCommandDataOctets is the maximum length of TP-CD.
const MaxCommandDataOctets = 156

// CommandType enum according to [TL] 9.2.3.19
type CommandType byte

// All defined command types.
const (
	EnquiryCommand                   CommandType = 0x00
	CancelStatusReportRequestCommand CommandType = 0x01
	DeleteSubmittedMessageCommand    CommandType = 0x02
	EnableStatusReportRequestCommand CommandType = 0x03
)

// Command represents an SMS-COMMAND according to [TL] 9.2.2.4
type Command struct {
	StatusReportRequest bool
	MessageReference    byte
	ProtocolIdentifier  byte
	CommandType         CommandType
	MessageNumber       byte
	DestinationAddress  Address
	CommandData         []byte
}

// Type of the TPDU.
func (m *Command) Type() MessageType {
	return SMSCommand
}

func parseCommand(r *reader) (*Command, error) {
	firstOctet, err := r.readByte("first octet")
	if err != nil {
		return nil, err
	}
	result := &Command{
		StatusReportRequest: firstOctet&srFlag != 0,
	}

	result.MessageReference, err = r.readByte("TP-MR")
	if err != nil {
		return nil, err
	}
	result.ProtocolIdentifier, err = r.readByte("TP-PID")
	if err != nil {
		return nil, err
	}
	commandType, err := r.readByte("TP-CT")
	if err != nil {
		return nil, err
	}
	result.CommandType = CommandType(commandType)
	result.MessageNumber, err = r.readByte("TP-MN")
	if err != nil {
		return nil, err
	}
	result.DestinationAddress, err = r.readAddress("TP-DA")
	if err != nil {
		return nil, err
	}
	length, err := r.readByte("TP-CDL")
	if err != nil {
		return nil, err
	}
	result.CommandData, err = r.readBytes(int(length), "TP-CD")
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Command) encode() ([]byte, error) {
	if len(m.CommandData) > MaxCommandDataOctets {
		return nil, fmt.Errorf("%w: command data of %d octets", ErrUserDataTooLong, len(m.CommandData))
	}

	firstOctet := SMSCommand.MTI() | flag(m.StatusReportRequest, srFlag)

	result := []byte{firstOctet, m.MessageReference, m.ProtocolIdentifier, byte(m.CommandType), m.MessageNumber}
	result, err := m.DestinationAddress.Encode(result)
	if err != nil {
		return nil, err
	}
	result = append(result, byte(len(m.CommandData)))
	return append(result, m.CommandData...), nil
}
