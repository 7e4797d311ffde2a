package sms

// optionalParameters are the parameters of the report TPDUs that are indicated by TP-PI.
type optionalParameters struct {
	indicator ParameterIndicator
	pid       byte
	dcs       DataCodingScheme
	userData  UserData
}

func (r *reader) readParameterIndicator() (ParameterIndicator, error) {
	value, err := r.readByte("TP-PI")
	if err != nil {
		return 0, err
	}
	for extension := value; ParameterIndicator(extension)&parameterIndicatorExtension != 0; {
		extension, err = r.readByte("TP-PI extension")
		if err != nil {
			return 0, err
		}
	}
	return ParameterIndicator(value) & (PIDPresent | DCSPresent | UDLPresent), nil
}

func (r *reader) readIndicatedParameters(indicator ParameterIndicator, udhi bool) (optionalParameters, error) {
	result := optionalParameters{indicator: indicator}
	var err error
	if indicator.Has(PIDPresent) {
		result.pid, err = r.readByte("TP-PID")
		if err != nil {
			return result, err
		}
	}
	alphabet := GSM7Bit
	if indicator.Has(DCSPresent) {
		result.dcs, alphabet, err = r.readDCS()
		if err != nil {
			return result, err
		}
	}
	if indicator.Has(UDLPresent) {
		result.userData, err = r.readUserData(alphabet, udhi)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// effectiveIndicator returns TP-PI as it is encoded: TP-UDL is indicated whenever there is user data.
func (p optionalParameters) effectiveIndicator() ParameterIndicator {
	result := p.indicator & (PIDPresent | DCSPresent | UDLPresent)
	if !p.userData.IsEmpty() {
		result |= UDLPresent
	}
	return result
}

// encode appends the indicated parameters, without TP-PI itself. A missing TP-DCS means the GSM 7-bit default alphabet.
func (p optionalParameters) encode(bytes []byte) ([]byte, error) {
	indicator := p.effectiveIndicator()
	if indicator.Has(PIDPresent) {
		bytes = append(bytes, p.pid)
	}
	dcs := DataCodingScheme(0)
	if indicator.Has(DCSPresent) {
		dcs = p.dcs
		bytes = append(bytes, byte(dcs))
	}
	if !indicator.Has(UDLPresent) {
		return bytes, nil
	}
	alphabet, err := dcs.Alphabet()
	if err != nil {
		return nil, err
	}
	return p.userData.encode(bytes, alphabet)
}
