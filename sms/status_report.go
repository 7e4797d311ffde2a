package sms

import "fmt"

// Status according to [TL] 9.2.3.15
type Status byte

// Some of the defined status values, see [TL] 9.2.3.15
const (
	StatusReceived                  Status = 0x00
	StatusForwardedUnconfirmed      Status = 0x01
	StatusReplaced                  Status = 0x02
	StatusCongestion                Status = 0x20
	StatusSMEBusy                   Status = 0x21
	StatusRemoteProcedureError      Status = 0x40
	StatusIncompatibleDestination   Status = 0x41
	StatusValidityPeriodExpired     Status = 0x46
	StatusDeletedByOriginatingSME   Status = 0x47
	StatusDeletedBySCAdministration Status = 0x48
	StatusMessageDoesNotExist       Status = 0x49
)

// StatusCategory according to [TL] 9.2.3.15
type StatusCategory byte

// All status categories.
const (
	TransactionCompleted StatusCategory = iota
	TemporaryErrorStillTrying
	PermanentError
	TemporaryErrorNotTrying
)

// Category returns the category of the status.
func (s Status) Category() StatusCategory {
	return StatusCategory((s >> 5) & 0x03)
}

func (s Status) String() string {
	switch s.Category() {
	case TransactionCompleted:
		return fmt.Sprintf("completed (0x%02x)", byte(s))
	case TemporaryErrorStillTrying:
		return fmt.Sprintf("temporary error, still trying (0x%02x)", byte(s))
	case PermanentError:
		return fmt.Sprintf("permanent error (0x%02x)", byte(s))
	default:
		return fmt.Sprintf("temporary error, not trying (0x%02x)", byte(s))
	}
}

// StatusReport represents an SMS-STATUS-REPORT according to [TL] 9.2.2.3
type StatusReport struct {
	MoreMessagesToSend     bool
	LoopPrevention         bool
	StatusReportQualifier  bool
	MessageReference       byte
	RecipientAddress       Address
	ServiceCentreTimestamp Timestamp
	DischargeTime          Timestamp
	Status                 Status
	Parameters             ParameterIndicator
	ProtocolIdentifier     byte
	DataCodingScheme       DataCodingScheme
	UserData               UserData
}

// Type of the TPDU.
func (m *StatusReport) Type() MessageType {
	return SMSStatusReport
}

func parseStatusReport(r *reader) (*StatusReport, error) {
	firstOctet, err := r.readByte("first octet")
	if err != nil {
		return nil, err
	}
	result := &StatusReport{
		MoreMessagesToSend:    firstOctet&mmsFlag == 0,
		LoopPrevention:        firstOctet&lpFlag != 0,
		StatusReportQualifier: firstOctet&srFlag != 0,
	}

	result.MessageReference, err = r.readByte("TP-MR")
	if err != nil {
		return nil, err
	}
	result.RecipientAddress, err = r.readAddress("TP-RA")
	if err != nil {
		return nil, err
	}
	result.ServiceCentreTimestamp, err = r.readTimestamp("TP-SCTS")
	if err != nil {
		return nil, err
	}
	result.DischargeTime, err = r.readTimestamp("TP-DT")
	if err != nil {
		return nil, err
	}
	status, err := r.readByte("TP-ST")
	if err != nil {
		return nil, err
	}
	result.Status = Status(status)

	if r.remaining() == 0 {
		return result, nil
	}
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

func (m *StatusReport) encode() ([]byte, error) {
	parameters := optionalParameters{
		indicator: m.Parameters,
		pid:       m.ProtocolIdentifier,
		dcs:       m.DataCodingScheme,
		userData:  m.UserData,
	}

	firstOctet := SMSStatusReport.MTI() |
		flag(!m.MoreMessagesToSend, mmsFlag) |
		flag(m.LoopPrevention, lpFlag) |
		flag(m.StatusReportQualifier, srFlag) |
		m.UserData.headerIndicator()

	result := []byte{firstOctet, m.MessageReference}
	result, err := m.RecipientAddress.Encode(result)
	if err != nil {
		return nil, err
	}
	result, err = m.ServiceCentreTimestamp.Encode(result)
	if err != nil {
		return nil, err
	}
	result, err = m.DischargeTime.Encode(result)
	if err != nil {
		return nil, err
	}
	result = append(result, byte(m.Status))
	indicator := parameters.effectiveIndicator()
	if indicator == 0 {
		return result, nil
	}
	result = append(result, byte(indicator))
	return parameters.encode(result)
}
