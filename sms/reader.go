package sms

// reader walks through the octets of a TPDU and reports errors with the offset inside the TPDU.
type reader struct {
	bytes []byte
	pos   int
}

func (r *reader) remaining() int {
	return len(r.bytes) - r.pos
}

func (r *reader) readByte(field string) (byte, error) {
	if r.remaining() < 1 {
		return 0, decodeErrorf(ErrTruncatedPDU, r.pos, "missing %s", field)
	}
	result := r.bytes[r.pos]
	r.pos++
	return result, nil
}

func (r *reader) readBytes(count int, field string) ([]byte, error) {
	if r.remaining() < count {
		return nil, decodeErrorf(ErrTruncatedPDU, r.pos, "%s needs %d octets, only %d left", field, count, r.remaining())
	}
	result := make([]byte, count)
	copy(result, r.bytes[r.pos:r.pos+count])
	r.pos += count
	return result, nil
}

func (r *reader) readAddress(field string) (Address, error) {
	if r.remaining() < 2 {
		return Address{}, decodeErrorf(ErrTruncatedPDU, r.pos, "missing %s", field)
	}
	result, length, err := ParseAddress(r.bytes[r.pos:])
	if err != nil {
		return Address{}, shiftOffset(err, r.pos)
	}
	r.pos += length
	return result, nil
}

func (r *reader) readTimestamp(field string) (Timestamp, error) {
	if r.remaining() < TimestampLength {
		return Timestamp{}, decodeErrorf(ErrTruncatedPDU, r.pos, "missing %s", field)
	}
	result, err := ParseTimestamp(r.bytes[r.pos:])
	if err != nil {
		return Timestamp{}, shiftOffset(err, r.pos)
	}
	r.pos += TimestampLength
	return result, nil
}

func (r *reader) readValidityPeriod(format ValidityPeriodFormat) (ValidityPeriod, error) {
	result, length, err := ParseValidityPeriod(format, r.bytes[r.pos:])
	if err != nil {
		return ValidityPeriod{}, shiftOffset(err, r.pos)
	}
	r.pos += length
	return result, nil
}

func (r *reader) readDCS() (DataCodingScheme, Alphabet, error) {
	offset := r.pos
	value, err := r.readByte("TP-DCS")
	if err != nil {
		return 0, 0, err
	}
	dcs := DataCodingScheme(value)
	alphabet, err := dcs.Alphabet()
	if err != nil {
		return 0, 0, &DecodeError{Err: ErrUnsupportedDCS, Offset: offset, Detail: err.Error()}
	}
	return dcs, alphabet, nil
}

func (r *reader) readUserData(alphabet Alphabet, udhi bool) (UserData, error) {
	result, length, err := parseUserData(r.bytes[r.pos:], alphabet, udhi)
	if err != nil {
		return UserData{}, shiftOffset(err, r.pos)
	}
	r.pos += length
	return result, nil
}
