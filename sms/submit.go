package sms

// Submit represents an SMS-SUBMIT according to [TL] 9.2.2.2
type Submit struct {
	RejectDuplicates    bool
	StatusReportRequest bool
	ReplyPath           bool
	MessageReference    byte
	DestinationAddress  Address
	ProtocolIdentifier  byte
	DataCodingScheme    DataCodingScheme
	ValidityPeriod      ValidityPeriod
	UserData            UserData
}

// Type of the TPDU.
func (m *Submit) Type() MessageType {
	return SMSSubmit
}

func parseSubmit(r *reader) (*Submit, error) {
	firstOctet, err := r.readByte("first octet")
	if err != nil {
		return nil, err
	}
	result := &Submit{
		RejectDuplicates:    firstOctet&rdFlag != 0,
		StatusReportRequest: firstOctet&srFlag != 0,
		ReplyPath:           firstOctet&replyPathFlag != 0,
	}
	validityFormat := ValidityPeriodFormat((firstOctet & vpfMask) >> vpfShift)

	result.MessageReference, err = r.readByte("TP-MR")
	if err != nil {
		return nil, err
	}
	result.DestinationAddress, err = r.readAddress("TP-DA")
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
	result.ValidityPeriod, err = r.readValidityPeriod(validityFormat)
	if err != nil {
		return nil, err
	}
	result.UserData, err = r.readUserData(alphabet, firstOctet&udhiFlag != 0)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Submit) encode() ([]byte, error) {
	alphabet, err := m.DataCodingScheme.Alphabet()
	if err != nil {
		return nil, err
	}

	firstOctet := SMSSubmit.MTI() |
		flag(m.RejectDuplicates, rdFlag) |
		byte(m.ValidityPeriod.Format)<<vpfShift&vpfMask |
		flag(m.StatusReportRequest, srFlag) |
		m.UserData.headerIndicator() |
		flag(m.ReplyPath, replyPathFlag)

	result := []byte{firstOctet, m.MessageReference}
	result, err = m.DestinationAddress.Encode(result)
	if err != nil {
		return nil, err
	}
	result = append(result, m.ProtocolIdentifier, byte(m.DataCodingScheme))
	result, err = m.ValidityPeriod.Encode(result)
	if err != nil {
		return nil, err
	}
	return m.UserData.encode(result, alphabet)
}
