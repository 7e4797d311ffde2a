package sms

import "fmt"

// Direction of a TPDU, which is needed to tell the variants apart that share the same TP-MTI value.
type Direction byte

// The two directions of the short message transfer.
const (
	// MobileTerminated TPDUs are sent from the SC to the MS: SMS-DELIVER, SMS-SUBMIT-REPORT, SMS-STATUS-REPORT.
	MobileTerminated Direction = iota
	// MobileOriginated TPDUs are sent from the MS to the SC: SMS-DELIVER-REPORT, SMS-SUBMIT, SMS-COMMAND.
	MobileOriginated
)

func (d Direction) String() string {
	switch d {
	case MobileTerminated:
		return "MT"
	case MobileOriginated:
		return "MO"
	default:
		return fmt.Sprintf("direction %d", byte(d))
	}
}

// ParseDirection reads the direction from its short name ("MT" or "MO").
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "MT", "mt":
		return MobileTerminated, nil
	case "MO", "mo":
		return MobileOriginated, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// MessageType enum according to [TL] 9.2.3.1
type MessageType byte

// All TPDU variants according to [TL] 9.2.2
const (
	SMSDeliver MessageType = iota
	SMSDeliverReport
	SMSSubmit
	SMSSubmitReport
	SMSStatusReport
	SMSCommand
)

func (t MessageType) String() string {
	switch t {
	case SMSDeliver:
		return "SMS-DELIVER"
	case SMSDeliverReport:
		return "SMS-DELIVER-REPORT"
	case SMSSubmit:
		return "SMS-SUBMIT"
	case SMSSubmitReport:
		return "SMS-SUBMIT-REPORT"
	case SMSStatusReport:
		return "SMS-STATUS-REPORT"
	case SMSCommand:
		return "SMS-COMMAND"
	default:
		return fmt.Sprintf("message type %d", byte(t))
	}
}

// MTI returns the value of TP-MTI for this message type.
func (t MessageType) MTI() byte {
	switch t {
	case SMSDeliver, SMSDeliverReport:
		return 0x00
	case SMSSubmit, SMSSubmitReport:
		return 0x01
	default:
		return 0x02
	}
}

// Direction returns the direction in which TPDUs of this message type are sent.
func (t MessageType) Direction() Direction {
	switch t {
	case SMSDeliverReport, SMSSubmit, SMSCommand:
		return MobileOriginated
	default:
		return MobileTerminated
	}
}

// first octet flags according to [TL] 9.2.3
const (
	mtiMask       byte = 0x03
	mmsFlag       byte = 0x04
	rdFlag        byte = 0x04
	lpFlag        byte = 0x08
	vpfShift           = 3
	vpfMask       byte = 0x18
	srFlag        byte = 0x20
	udhiFlag      byte = 0x40
	replyPathFlag byte = 0x80
)

func flag(value bool, mask byte) byte {
	if value {
		return mask
	}
	return 0
}

// ParameterIndicator according to [TL] 9.2.3.27
type ParameterIndicator byte

// The optional parameters indicated by TP-PI.
const (
	PIDPresent ParameterIndicator = 0x01
	DCSPresent ParameterIndicator = 0x02
	UDLPresent ParameterIndicator = 0x04

	parameterIndicatorExtension ParameterIndicator = 0x80
)

// Has indicates if the given parameter is present.
func (p ParameterIndicator) Has(parameter ParameterIndicator) bool {
	return p&parameter == parameter
}

// TPDU is one of the variants *Deliver, *DeliverReport, *Submit, *SubmitReport, *StatusReport, or *Command.
type TPDU interface {
	Type() MessageType
	encode() ([]byte, error)
}

// Decode the given octets into the TPDU variant selected by TP-MTI and the given direction.
// Octets after the end of the TPDU are ignored.
func Decode(bytes []byte, direction Direction) (TPDU, error) {
	if len(bytes) < 1 {
		return nil, decodeErrorf(ErrTruncatedPDU, 0, "empty TPDU")
	}
	mti := bytes[0] & mtiMask
	if mti == 0x03 {
		return nil, decodeErrorf(ErrUnknownTPDUType, 0, "reserved TP-MTI in first octet 0x%02x", bytes[0])
	}

	r := &reader{bytes: bytes}
	switch {
	case direction == MobileTerminated && mti == 0x00:
		return parseDeliver(r)
	case direction == MobileTerminated && mti == 0x01:
		return parseSubmitReport(r)
	case direction == MobileTerminated && mti == 0x02:
		return parseStatusReport(r)
	case direction == MobileOriginated && mti == 0x00:
		return parseDeliverReport(r)
	case direction == MobileOriginated && mti == 0x01:
		return parseSubmit(r)
	case direction == MobileOriginated && mti == 0x02:
		return parseCommand(r)
	default:
		return nil, decodeErrorf(ErrUnknownTPDUType, 0, "TP-MTI %d in %v", mti, direction)
	}
}

// Encode the given TPDU. TP-UDHI and TP-UDL are computed from the user data. On error, no octets are returned.
func Encode(tpdu TPDU) ([]byte, error) {
	result, err := tpdu.encode()
	if err != nil {
		return nil, fmt.Errorf("cannot encode %v: %w", tpdu.Type(), err)
	}
	return result, nil
}

// DecodeWithServiceCenter decodes a TPDU that is prefixed with the service centre address, as
// it is used on the interface between a mobile equipment and its terminal (see [TL] 9.1.2.5 and 3GPP TS 27.005).
func DecodeWithServiceCenter(bytes []byte, direction Direction) (Address, TPDU, error) {
	serviceCenter, length, err := ParseServiceCenterAddress(bytes)
	if err != nil {
		return Address{}, nil, err
	}
	tpdu, err := Decode(bytes[length:], direction)
	if err != nil {
		return Address{}, nil, shiftOffset(err, length)
	}
	return serviceCenter, tpdu, nil
}

// EncodeWithServiceCenter encodes the given TPDU prefixed with the service centre address.
// It returns the octets and the length of the TPDU without the prefix.
func EncodeWithServiceCenter(serviceCenter Address, tpdu TPDU) ([]byte, int, error) {
	result, err := serviceCenter.EncodeServiceCenter(nil)
	if err != nil {
		return nil, 0, err
	}
	encoded, err := Encode(tpdu)
	if err != nil {
		return nil, 0, err
	}
	return append(result, encoded...), len(encoded), nil
}

// UserDataOf returns the data coding scheme and the user data of the given TPDU.
// It returns false if the TPDU does not carry user data.
func UserDataOf(tpdu TPDU) (DataCodingScheme, UserData, bool) {
	switch m := tpdu.(type) {
	case *Deliver:
		return m.DataCodingScheme, m.UserData, true
	case *Submit:
		return m.DataCodingScheme, m.UserData, true
	case *StatusReport:
		return m.DataCodingScheme, m.UserData, m.Parameters.Has(UDLPresent)
	case *DeliverReport:
		return m.DataCodingScheme, m.UserData, m.Parameters.Has(UDLPresent)
	case *SubmitReport:
		return m.DataCodingScheme, m.UserData, m.Parameters.Has(UDLPresent)
	default:
		return 0, UserData{}, false
	}
}
