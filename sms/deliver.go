package sms

// Deliver represents an SMS-DELIVER according to [TL] 9.2.2.1
type Deliver struct {
	MoreMessagesToSend     bool
	LoopPrevention         bool
	StatusReportIndication bool
	ReplyPath              bool
	OriginatingAddress     Address
	ProtocolIdentifier     byte
	DataCodingScheme       DataCodingScheme
	ServiceCentreTimestamp Timestamp
	UserData               UserData
}

// Type of the TPDU.
func (m *Deliver) Type() MessageType {
	return SMSDeliver
}

func parseDeliver(r *reader) (*Deliver, error) {
	firstOctet, err := r.readByte("first octet")
	if err != nil {
		return nil, err
	}
	result := &Deliver{
		MoreMessagesToSend:     firstOctet&mmsFlag == 0,
		LoopPrevention:         firstOctet&lpFlag != 0,
		StatusReportIndication: firstOctet&srFlag != 0,
		ReplyPath:              firstOctet&replyPathFlag != 0,
	}

	result.OriginatingAddress, err = r.readAddress("TP-OA")
	if err != nil {
		return nil, err
	}
	result.ProtocolIdentifier, err = r.readByte("TP-PID")
	if err != nil {
		return nil, err
	}
	var alphabet Alphabet
	result.DataCodingScheme, alphabet, err = r.readDCS()
	if err != nil {
		return nil, err
	}
	result.ServiceCentreTimestamp, err = r.readTimestamp("TP-SCTS")
	if err != nil {
		return nil, err
	}
	result.UserData, err = r.readUserData(alphabet, firstOctet&udhiFlag != 0)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Deliver) encode() ([]byte, error) {
	alphabet, err := m.DataCodingScheme.Alphabet()
	if err != nil {
		return nil, err
	}

	firstOctet := SMSDeliver.MTI() |
		flag(!m.MoreMessagesToSend, mmsFlag) |
		flag(m.LoopPrevention, lpFlag) |
		flag(m.StatusReportIndication, srFlag) |
		m.UserData.headerIndicator() |
		flag(m.ReplyPath, replyPathFlag)

	result := []byte{firstOctet}
	result, err = m.OriginatingAddress.Encode(result)
	if err != nil {
		return nil, err
	}
	result = append(result, m.ProtocolIdentifier, byte(m.DataCodingScheme))
	result, err = m.ServiceCentreTimestamp.Encode(result)
	if err != nil {
		return nil, err
	}
	return m.UserData.encode(result, alphabet)
}
