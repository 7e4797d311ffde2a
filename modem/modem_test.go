package modem

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/smsc-pdu/sms"
)

var testServiceCenter = sms.Address{TON: sms.InternationalNumber, NPI: sms.ISDNPlan, Digits: "27381000015"}

func testSubmit() *sms.Submit {
	return &sms.Submit{
		DestinationAddress: sms.Address{TON: sms.InternationalNumber, NPI: sms.ISDNPlan, Digits: "46708251358"},
		ValidityPeriod:     sms.ValidityPeriod{Format: sms.RelativeValidityPeriod, Relative: 4 * 24 * time.Hour},
		UserData:           sms.UserData{Text: "hellohello"},
	}
}

type recordingRequester struct {
	requests  []string
	responses map[string][]string
	errors    map[string]error
}

func (r *recordingRequester) Request(_ context.Context, request string) ([]string, error) {
	r.requests = append(r.requests, request)
	for prefix, err := range r.errors {
		if strings.HasPrefix(request, prefix) {
			return nil, err
		}
	}
	for prefix, response := range r.responses {
		if strings.HasPrefix(request, prefix) {
			return response, nil
		}
	}
	return nil, nil
}

func TestSendMessageRequest(t *testing.T) {
	tt := []struct {
		desc          string
		serviceCenter sms.Address
		expected      string
	}{
		{
			desc:     "default service centre",
			expected: "AT+CMGS=23\r\n0011000B916407281553F80000AA0AE8329BFD4697D9EC37\x1a",
		},
		{
			desc:          "explicit service centre",
			serviceCenter: testServiceCenter,
			expected:      "AT+CMGS=23\r\n07917283010010F511000B916407281553F80000AA0AE8329BFD4697D9EC37\x1a",
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := SendMessageRequest(tc.serviceCenter, testSubmit())

			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestSendMessageRequest_Invalid(t *testing.T) {
	submit := testSubmit()
	submit.DestinationAddress.Digits = strings.Repeat("1", 21)

	_, err := SendMessageRequest(sms.Address{}, submit)

	assert.ErrorIs(t, err, sms.ErrInvalidAddress)
}

func TestParseSendMessageResponse(t *testing.T) {
	tt := []struct {
		desc      string
		responses []string
		expected  byte
		invalid   bool
	}{
		{desc: "plain", responses: []string{"+CMGS: 12"}, expected: 12},
		{desc: "after prompt", responses: []string{"> ", "+CMGS: 200"}, expected: 200},
		{desc: "prompt on the same line", responses: []string{"> +CMGS: 7"}, expected: 7},
		{desc: "with SC timestamp", responses: []string{`+CMGS: 3,"24/05/01,12:00:00+08"`}, expected: 3},
		{desc: "out of range", responses: []string{"+CMGS: 256"}, invalid: true},
		{desc: "missing", responses: []string{"> "}, invalid: true},
		{desc: "empty", invalid: true},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := ParseSendMessageResponse(tc.responses)
			if tc.invalid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestParseIndication(t *testing.T) {
	tt := []struct {
		desc           string
		lines          []string
		expectedType   sms.MessageType
		expectedLength int
		invalid        bool
	}{
		{
			desc:           "new message",
			lines:          []string{"+CMT: ,28", "07917283010010F5040BC87238880900F10000993092516195800AE8329BFD4697D9EC37"},
			expectedType:   sms.SMSDeliver,
			expectedLength: 28,
		},
		{
			desc:           "new message with alpha",
			lines:          []string{`+CMT: "Alice",28`, "07917283010010F5040BC87238880900F10000993092516195800AE8329BFD4697D9EC37"},
			expectedType:   sms.SMSDeliver,
			expectedLength: 28,
		},
		{
			desc:           "status report",
			lines:          []string{"+CDS: 21", "07917283010010F5062A039121F3993092516195809930925161958000"},
			expectedType:   sms.SMSStatusReport,
			expectedLength: 21,
		},
		{desc: "missing PDU", lines: []string{"+CMT: ,28"}, invalid: true},
		{desc: "invalid header", lines: []string{"+CMT: x", "00"}, invalid: true},
		{desc: "invalid hex", lines: []string{"+CMT: ,1", "0G"}, invalid: true},
		{desc: "unknown TPDU type", lines: []string{"+CMT: ,1", "0003"}, invalid: true},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := ParseIndication(tc.lines)
			if tc.invalid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedType, actual.TPDU.Type())
			assert.Equal(t, tc.expectedLength, actual.Length)
			assert.Equal(t, testServiceCenter, actual.ServiceCenter)
		})
	}
}

func TestModem_Initialize(t *testing.T) {
	t.Run("reads service centre", func(t *testing.T) {
		requester := &recordingRequester{responses: map[string][]string{
			"AT+CSCA?": {`+CSCA: "+27381000015",145`},
		}}
		modem := New(requester, sms.Address{})

		err := modem.Initialize(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"AT+CMGF=0", "AT+CNMI=2,2,0,1,0", "AT+CSCA?"}, requester.requests)
		assert.Equal(t, testServiceCenter, modem.ServiceCenter())
	})

	t.Run("configured service centre", func(t *testing.T) {
		requester := &recordingRequester{}
		modem := New(requester, testServiceCenter)

		err := modem.Initialize(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"AT+CMGF=0", "AT+CNMI=2,2,0,1,0"}, requester.requests)
	})

	t.Run("service centre unavailable", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		requester := &recordingRequester{errors: map[string]error{"AT+CSCA?": fmt.Errorf("+CMS ERROR: 500")}}
		modem := New(requester, sms.Address{}).WithLogger(logger)

		err := modem.Initialize(context.Background())

		require.NoError(t, err)
		assert.True(t, modem.ServiceCenter().IsZero())
		require.NotNil(t, hook.LastEntry())
		assert.Contains(t, hook.LastEntry().Message, "service centre")
	})

	t.Run("PDU mode not supported", func(t *testing.T) {
		requester := &recordingRequester{errors: map[string]error{"AT+CMGF": fmt.Errorf("+CMS ERROR: 303")}}
		modem := New(requester, testServiceCenter)

		err := modem.Initialize(context.Background())

		assert.ErrorContains(t, err, "AT+CMGF=0 failed")
	})
}

func TestModem_Send(t *testing.T) {
	requester := &recordingRequester{responses: map[string][]string{"AT+CMGS=": {"> ", "+CMGS: 42"}}}
	modem := New(requester, sms.Address{})

	reference, err := modem.Send(context.Background(), testSubmit())

	require.NoError(t, err)
	assert.Equal(t, byte(42), reference)
	require.Len(t, requester.requests, 1)
	assert.True(t, strings.HasPrefix(requester.requests[0], "AT+CMGS=23\r\n00"))

	_, err = modem.Send(context.Background(), &sms.Deliver{})
	assert.Error(t, err)
}
