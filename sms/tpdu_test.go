package sms

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/smsc-pdu/gsm"
)

var testTimestamp = Timestamp{Year: 99, Month: 3, Day: 29, Hour: 15, Minute: 16, Second: 59, Zone: 8}

func TestDecodeEncode(t *testing.T) {
	tt := []struct {
		desc      string
		direction Direction
		pdu       string
		expected  TPDU
	}{
		{
			desc:      "deliver",
			direction: MobileTerminated,
			pdu:       "040BC87238880900F10000993092516195800AE8329BFD4697D9EC37",
			expected: &Deliver{
				OriginatingAddress:     Address{TON: SubscriberNumber, NPI: NationalPlan, Digits: "27838890001"},
				ServiceCentreTimestamp: testTimestamp,
				UserData:               UserData{Text: "hellohello"},
			},
		},
		{
			desc:      "deliver with concatenation header",
			direction: MobileTerminated,
			pdu:       "44039121F3000099309251619580" + "09050003CC0201D069",
			expected: &Deliver{
				OriginatingAddress:     Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "123"},
				ServiceCentreTimestamp: testTimestamp,
				UserData: UserData{
					Header: UserDataHeader{{ID: Concatenation8BitIEI, Data: []byte{0xCC, 0x02, 0x01}}},
					Text:   "hi",
				},
			},
		},
		{
			desc:      "deliver with empty header",
			direction: MobileTerminated,
			pdu:       "44039121F3000099309251619580" + "03004010",
			expected: &Deliver{
				OriginatingAddress:     Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "123"},
				ServiceCentreTimestamp: testTimestamp,
				UserData:               UserData{Header: UserDataHeader{}, Text: "A"},
			},
		},
		{
			desc:      "deliver UCS2 with more messages to send and reply path",
			direction: MobileTerminated,
			pdu:       "80039121F3000899309251619580" + "0400480069",
			expected: &Deliver{
				MoreMessagesToSend:     true,
				ReplyPath:              true,
				OriginatingAddress:     Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "123"},
				DataCodingScheme:       0x08,
				ServiceCentreTimestamp: testTimestamp,
				UserData:               UserData{Text: "Hi"},
			},
		},
		{
			desc:      "deliver 8-bit with ports",
			direction: MobileTerminated,
			pdu:       "64039121F3000499309251619580" + "090605040B8423F00102",
			expected: &Deliver{
				StatusReportIndication: true,
				OriginatingAddress:     Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "123"},
				DataCodingScheme:       0x04,
				ServiceCentreTimestamp: testTimestamp,
				UserData: UserData{
					Header: UserDataHeader{{ID: ApplicationPort16BitIEI, Data: []byte{0x0B, 0x84, 0x23, 0xF0}}},
					Binary: []byte{0x01, 0x02},
				},
			},
		},
		{
			desc:      "submit with relative validity",
			direction: MobileOriginated,
			pdu:       "11000B916407281553F80000AA0AE8329BFD4697D9EC37",
			expected: &Submit{
				DestinationAddress: Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "46708251358"},
				ValidityPeriod:     RelativeValidity(4 * 24 * time.Hour),
				UserData:           UserData{Text: "hellohello"},
			},
		},
		{
			desc:      "submit with absolute validity and status report request",
			direction: MobileOriginated,
			pdu:       "3D2A039121F3000899309251619580" + "0400480069",
			expected: &Submit{
				RejectDuplicates:    true,
				StatusReportRequest: true,
				MessageReference:    0x2A,
				DestinationAddress:  Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "123"},
				DataCodingScheme:    0x08,
				ValidityPeriod:      AbsoluteValidity(testTimestamp),
				UserData:            UserData{Text: "Hi"},
			},
		},
		{
			desc:      "status report",
			direction: MobileTerminated,
			pdu:       "062A039121F3" + "99309251619580" + "99309251619580" + "00",
			expected: &StatusReport{
				MessageReference:       0x2A,
				RecipientAddress:       Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "123"},
				ServiceCentreTimestamp: testTimestamp,
				DischargeTime:          testTimestamp,
				Status:                 StatusReceived,
			},
		},
		{
			desc:      "status report with optional parameters",
			direction: MobileTerminated,
			pdu:       "262A039121F3" + "99309251619580" + "99309251619580" + "46" + "06" + "00" + "02E834",
			expected: &StatusReport{
				StatusReportQualifier:  true,
				MessageReference:       0x2A,
				RecipientAddress:       Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "123"},
				ServiceCentreTimestamp: testTimestamp,
				DischargeTime:          testTimestamp,
				Status:                 StatusValidityPeriodExpired,
				Parameters:             DCSPresent | UDLPresent,
				UserData:               UserData{Text: "hi"},
			},
		},
		{
			desc:      "command",
			direction: MobileOriginated,
			pdu:       "220500012A039121F3020102",
			expected: &Command{
				StatusReportRequest: true,
				MessageReference:    0x05,
				CommandType:         CancelStatusReportRequestCommand,
				MessageNumber:       0x2A,
				DestinationAddress:  Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "123"},
				CommandData:         []byte{0x01, 0x02},
			},
		},
		{
			desc:      "deliver report acknowledgement",
			direction: MobileOriginated,
			pdu:       "0000",
			expected:  &DeliverReport{},
		},
		{
			desc:      "deliver report error",
			direction: MobileOriginated,
			pdu:       "00D3017F",
			expected: &DeliverReport{
				FailureCause:       MemoryCapacityExceeded,
				Parameters:         PIDPresent,
				ProtocolIdentifier: 0x7F,
			},
		},
		{
			desc:      "submit report acknowledgement",
			direction: MobileTerminated,
			pdu:       "0100" + "99309251619580",
			expected: &SubmitReport{
				ServiceCentreTimestamp: testTimestamp,
			},
		},
		{
			desc:      "submit report error with user data",
			direction: MobileTerminated,
			pdu:       "01C006" + "99309251619580" + "08" + "0400480069",
			expected: &SubmitReport{
				FailureCause:           SCBusy,
				Parameters:             DCSPresent | UDLPresent,
				ServiceCentreTimestamp: testTimestamp,
				DataCodingScheme:       0x08,
				UserData:               UserData{Text: "Hi"},
			},
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			bytes, err := gsm.HexToBinary(tc.pdu)
			require.NoError(t, err)

			actual, err := Decode(bytes, tc.direction)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
			assert.Equal(t, tc.expected.Type().Direction(), tc.direction)

			encoded, err := Encode(tc.expected)
			require.NoError(t, err)
			assert.Equal(t, tc.pdu, gsm.BinaryToHex(encoded))
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	tt := []struct {
		desc           string
		direction      Direction
		pdu            string
		expectedKind   error
		expectedOffset int
	}{
		{desc: "empty", pdu: "", expectedKind: ErrTruncatedPDU, expectedOffset: 0},
		{desc: "reserved message type", pdu: "03", expectedKind: ErrUnknownTPDUType, expectedOffset: 0},
		{desc: "reserved message type mobile originated", direction: MobileOriginated, pdu: "07", expectedKind: ErrUnknownTPDUType, expectedOffset: 0},
		{desc: "missing originating address", pdu: "04", expectedKind: ErrTruncatedPDU, expectedOffset: 1},
		{desc: "invalid originating address", pdu: "04037121F3", expectedKind: ErrInvalidAddress, expectedOffset: 2},
		{desc: "truncated timestamp", pdu: "04039121F30000993092", expectedKind: ErrTruncatedPDU, expectedOffset: 7},
		{desc: "invalid timestamp", pdu: "04039121F30000" + "99A09251619580" + "00", expectedKind: ErrInvalidTimestamp, expectedOffset: 8},
		{desc: "unsupported data coding scheme", pdu: "04039121F3000C" + "99309251619580" + "00", expectedKind: ErrUnsupportedDCS, expectedOffset: 6},
		{desc: "user data exceeds PDU", pdu: "04039121F30000" + "99309251619580" + "0AE832", expectedKind: ErrTruncatedPDU, expectedOffset: 17},
		{desc: "malformed header", pdu: "44039121F30000" + "99309251619580" + "09050002CC0201D069", expectedKind: ErrMalformedHeader, expectedOffset: 17},
		{desc: "header longer than user data length", pdu: "44039121F30000" + "99309251619580" + "06050003CC0201", expectedKind: ErrMalformedHeader, expectedOffset: 15},
		{desc: "odd UCS2 length", pdu: "04039121F30008" + "99309251619580" + "03004800", expectedKind: ErrMalformedAlphabetData, expectedOffset: 17},
		{desc: "truncated submit report", pdu: "0100993092", expectedKind: ErrTruncatedPDU, expectedOffset: 2},
		{desc: "truncated command data", direction: MobileOriginated, pdu: "020500012A039121F30501", expectedKind: ErrTruncatedPDU, expectedOffset: 10},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			bytes, err := gsm.HexToBinary(tc.pdu)
			require.NoError(t, err)

			_, err = Decode(bytes, tc.direction)

			assert.True(t, errors.Is(err, tc.expectedKind), "%v", err)
			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, tc.expectedOffset, decodeErr.Offset)
		})
	}
}

func TestDecode_TrailingOctetsAreIgnored(t *testing.T) {
	bytes, err := gsm.HexToBinary("0000FFFF")
	require.NoError(t, err)

	actual, err := Decode(bytes, MobileOriginated)

	require.NoError(t, err)
	assert.Equal(t, &DeliverReport{}, actual)
}

func TestDecodeWithServiceCenter(t *testing.T) {
	bytes, err := gsm.HexToBinary("07917283010010F5040BC87238880900F10000993092516195800AE8329BFD4697D9EC37")
	require.NoError(t, err)

	serviceCenter, actual, err := DecodeWithServiceCenter(bytes, MobileTerminated)
	require.NoError(t, err)

	assert.Equal(t, Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "27381000015"}, serviceCenter)
	require.IsType(t, &Deliver{}, actual)
	deliver := actual.(*Deliver)
	assert.Equal(t, "27838890001", deliver.OriginatingAddress.Digits)
	assert.Equal(t, "hellohello", deliver.UserData.Text)
	assert.False(t, deliver.MoreMessagesToSend)

	encoded, tpduLength, err := EncodeWithServiceCenter(serviceCenter, actual)
	require.NoError(t, err)
	assert.Equal(t, bytes, encoded)
	assert.Equal(t, len(bytes)-8, tpduLength)
}

func TestDecodeWithServiceCenter_OffsetIncludesPrefix(t *testing.T) {
	bytes, err := gsm.HexToBinary("00" + "04039121F3000C" + "99309251619580" + "00")
	require.NoError(t, err)

	_, _, err = DecodeWithServiceCenter(bytes, MobileTerminated)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, ErrUnsupportedDCS, decodeErr.Err)
	assert.Equal(t, 7, decodeErr.Offset)
}

func TestEncode_NoPartialOutput(t *testing.T) {
	tt := []struct {
		desc         string
		value        TPDU
		expectedKind error
	}{
		{
			desc:         "invalid address",
			value:        &Deliver{OriginatingAddress: Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "123456789012345678901"}},
			expectedKind: ErrInvalidAddress,
		},
		{
			desc:         "unsupported character",
			value:        &Submit{UserData: UserData{Text: "中文"}},
			expectedKind: ErrUnsupportedCharacter,
		},
		{
			desc:         "text too long",
			value:        &Submit{UserData: UserData{Text: strings.Repeat("a", 161)}},
			expectedKind: ErrUserDataTooLong,
		},
		{
			desc:         "UCS2 too long",
			value:        &Submit{DataCodingScheme: 0x08, UserData: UserData{Text: strings.Repeat("д", 71)}},
			expectedKind: ErrUserDataTooLong,
		},
		{
			desc:         "enhanced validity period",
			value:        &Submit{ValidityPeriod: ValidityPeriod{Format: EnhancedValidityPeriod}},
			expectedKind: ErrUnsupportedValidityFormat,
		},
		{
			desc:         "unsupported data coding scheme",
			value:        &Deliver{DataCodingScheme: 0x20},
			expectedKind: ErrUnsupportedDCS,
		},
		{
			desc:         "failure cause of deliver report below 0x80",
			value:        &DeliverReport{FailureCause: 0x10},
			expectedKind: ErrInvalidFailureCause,
		},
		{
			desc:         "failure cause of submit report below 0x80",
			value:        &SubmitReport{FailureCause: 0x7F},
			expectedKind: ErrInvalidFailureCause,
		},
		{
			desc:         "command data too long",
			value:        &Command{CommandData: make([]byte, 157)},
			expectedKind: ErrUserDataTooLong,
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := Encode(tc.value)
			assert.True(t, errors.Is(err, tc.expectedKind), "%v", err)
			assert.Nil(t, actual)
		})
	}
}

func TestEncode_UserDataLength(t *testing.T) {
	header := UserDataHeader{Concatenation{Reference: 1, Total: 2, Sequence: 1}.Element()}
	value := &Deliver{
		OriginatingAddress: Address{TON: InternationalNumber, NPI: ISDNPlan, Digits: "123"},
		UserData:           UserData{Header: header, Text: strings.Repeat("a", 153)},
	}

	encoded, err := Encode(value)
	require.NoError(t, err)

	udlOffset := 1 + 4 + 2 + TimestampLength
	assert.Equal(t, byte(160), encoded[udlOffset])
	assert.Equal(t, MaxUserDataOctets, len(encoded)-udlOffset-1)

	decoded, err := Decode(encoded, MobileTerminated)
	require.NoError(t, err)
	assert.Equal(t, value, decoded)
}

func TestMessageType(t *testing.T) {
	assert.Equal(t, byte(0x00), SMSDeliver.MTI())
	assert.Equal(t, byte(0x00), SMSDeliverReport.MTI())
	assert.Equal(t, byte(0x01), SMSSubmit.MTI())
	assert.Equal(t, byte(0x01), SMSSubmitReport.MTI())
	assert.Equal(t, byte(0x02), SMSStatusReport.MTI())
	assert.Equal(t, byte(0x02), SMSCommand.MTI())
	assert.Equal(t, "SMS-STATUS-REPORT", SMSStatusReport.String())
}
