package sms

import "fmt"

// FailureCause according to [TL] 9.2.3.22. Defined values are 0x80 and above, zero means no failure.
type FailureCause byte

// Some of the defined failure causes.
const (
	NoFailure                     FailureCause = 0x00
	TelematicInterworkingFailure  FailureCause = 0x80
	ShortMessageType0NotSupported FailureCause = 0x81
	CannotReplaceShortMessage     FailureCause = 0x82
	UnspecifiedPIDError           FailureCause = 0x8F
	DataCodingSchemeNotSupported  FailureCause = 0x90
	SCBusy                        FailureCause = 0xC0
	MemoryCapacityExceeded        FailureCause = 0xD3
	UnspecifiedErrorCause         FailureCause = 0xFF
)

func (c FailureCause) appendTo(bytes []byte) ([]byte, error) {
	switch {
	case c == NoFailure:
		return bytes, nil
	case c&0x80 == 0:
		return bytes, fmt.Errorf("%w: 0x%02X", ErrInvalidFailureCause, byte(c))
	default:
		return append(bytes, byte(c)), nil
	}
}

// readFailureCause reads TP-FCS if the next octet has the high bit set, which the first TP-PI octet never has.
func (r *reader) readFailureCause() FailureCause {
	if r.remaining() < 1 || r.bytes[r.pos]&0x80 == 0 {
		return NoFailure
	}
	result := FailureCause(r.bytes[r.pos])
	r.pos++
	return result
}

// DeliverReport represents an SMS-DELIVER-REPORT according to [TL] 9.2.2.1a
type DeliverReport struct {
	FailureCause       FailureCause
	Parameters         ParameterIndicator
	ProtocolIdentifier byte
	DataCodingScheme   DataCodingScheme
	UserData           UserData
}

// Type of the TPDU.
func (m *DeliverReport) Type() MessageType {
	return SMSDeliverReport
}

func parseDeliverReport(r *reader) (*DeliverReport, error) {
	firstOctet, err := r.readByte("first octet")
	if err != nil {
		return nil, err
	}
	result := &DeliverReport{}
	result.FailureCause = r.readFailureCause()

	indicator, err := r.readParameterIndicator()
	if err != nil {
		return nil, err
	}
	parameters, err := r.readIndicatedParameters(indicator, firstOctet&udhiFlag != 0)
	if err != nil {
		return nil, err
	}
	result.Parameters = parameters.indicator
	result.ProtocolIdentifier = parameters.pid
	result.DataCodingScheme = parameters.dcs
	result.UserData = parameters.userData
	return result, nil
}

func (m *DeliverReport) encode() ([]byte, error) {
	parameters := optionalParameters{
		indicator: m.Parameters,
		pid:       m.ProtocolIdentifier,
		dcs:       m.DataCodingScheme,
		userData:  m.UserData,
	}

	result, err := m.FailureCause.appendTo([]byte{SMSDeliverReport.MTI() | m.UserData.headerIndicator()})
	if err != nil {
		return nil, err
	}
	result = append(result, byte(parameters.effectiveIndicator()))
	return parameters.encode(result)
}

// SubmitReport represents an SMS-SUBMIT-REPORT according to [TL] 9.2.2.2a
type SubmitReport struct {
	FailureCause           FailureCause
	Parameters             ParameterIndicator
	ServiceCentreTimestamp Timestamp
	ProtocolIdentifier     byte
	DataCodingScheme       DataCodingScheme
	UserData               UserData
}

// Type of the TPDU.
func (m *SubmitReport) Type() MessageType {
	return SMSSubmitReport
}

func parseSubmitReport(r *reader) (*SubmitReport, error) {
	firstOctet, err := r.readByte("first octet")
	if err != nil {
		return nil, err
	}
	result := &SubmitReport{}
	result.FailureCause = r.readFailureCause()

	indicator, err := r.readParameterIndicator()
	if err != nil {
		return nil, err
	}
	result.ServiceCentreTimestamp, err = r.readTimestamp("TP-SCTS")
	if err != nil {
		return nil, err
	}
	parameters, err := r.readIndicatedParameters(indicator, firstOctet&udhiFlag != 0)
	if err != nil {
		return nil, err
	}
	result.Parameters = parameters.indicator
	result.ProtocolIdentifier = parameters.pid
	result.DataCodingScheme = parameters.dcs
	result.UserData = parameters.userData
	return result, nil
}

func (m *SubmitReport) encode() ([]byte, error) {
	parameters := optionalParameters{
		indicator: m.Parameters,
		pid:       m.ProtocolIdentifier,
		dcs:       m.DataCodingScheme,
		userData:  m.UserData,
	}

	result, err := m.FailureCause.appendTo([]byte{SMSSubmitReport.MTI() | m.UserData.headerIndicator()})
	if err != nil {
		return nil, err
	}
	result = append(result, byte(parameters.effectiveIndicator()))
	result, err = m.ServiceCentreTimestamp.Encode(result)
	if err != nil {
		return nil, err
	}
	return parameters.encode(result)
}
