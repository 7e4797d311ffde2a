package ctrl

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ftl/smsc-pdu/gsm"
)

// SetMessageFormat according to [SMS] 3.2.3
func SetMessageFormat(format MessageFormat) string {
	return fmt.Sprintf("AT+CMGF=%d", format)
}

var requestMessageFormatResponse = regexp.MustCompile(`^\+CMGF: (\d)$`)

// RequestMessageFormat reads the current message format according to [SMS] 3.2.3
func RequestMessageFormat(ctx context.Context, requester gsm.Requester) (MessageFormat, error) {
	parts, err := requestSingleLine(ctx, requester, "AT+CMGF?", requestMessageFormatResponse)
	if err != nil {
		return 0, err
	}
	result, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	return MessageFormat(result), nil
}

// SetNewMessageIndications according to [SMS] 3.4.1
func SetNewMessageIndications(indications NewMessageIndications) string {
	return fmt.Sprintf("AT+CNMI=%d,%d,%d,%d,%d",
		indications.Mode,
		indications.Deliver,
		indications.Broadcast,
		indications.StatusReport,
		indications.BufferedResultsMode,
	)
}

// AcknowledgeNewMessage according to [SMS] 3.4.4
func AcknowledgeNewMessage() string {
	return "AT+CNMA"
}

// SetServiceCenterAddress according to [SMS] 3.3.1, the type of address is derived from the number.
func SetServiceCenterAddress(number string) string {
	typeOfAddress := 129
	if strings.HasPrefix(number, "+") {
		typeOfAddress = 145
	}
	return fmt.Sprintf(`AT+CSCA="%s",%d`, number, typeOfAddress)
}

var requestServiceCenterAddressResponse = regexp.MustCompile(`^\+CSCA: "([^"]*)"(?:,(\d+))?$`)

// RequestServiceCenterAddress reads the service centre address configured in the modem according to [SMS] 3.3.1.
// Numbers of the international type are returned with a leading +.
func RequestServiceCenterAddress(ctx context.Context, requester gsm.Requester) (string, error) {
	parts, err := requestSingleLine(ctx, requester, "AT+CSCA?", requestServiceCenterAddressResponse)
	if err != nil {
		return "", err
	}
	number := parts[1]
	if parts[2] == "145" && !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	return number, nil
}

// SignalQuality as reported by +CSQ according to [GSM] 8.5
type SignalQuality struct {
	RSSI int
	BER  int
}

// Unknown is the value of RSSI and BER if the modem cannot tell.
const Unknown = 99

// DBm converts the RSSI into dBm. It returns false if the RSSI is unknown.
func (q SignalQuality) DBm() (int, bool) {
	if q.RSSI < 0 || q.RSSI > 31 {
		return 0, false
	}
	return -113 + 2*q.RSSI, true
}

func (q SignalQuality) String() string {
	dbm, ok := q.DBm()
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%d dBm", dbm)
}

var requestSignalQualityResponse = regexp.MustCompile(`^\+CSQ: (\d+),(\d+)$`)

// RequestSignalQuality reads the current signal quality according to [GSM] 8.5
func RequestSignalQuality(ctx context.Context, requester gsm.Requester) (SignalQuality, error) {
	parts, err := requestSingleLine(ctx, requester, "AT+CSQ", requestSignalQualityResponse)
	if err != nil {
		return SignalQuality{}, err
	}
	rssi, err := strconv.Atoi(parts[1])
	if err != nil {
		return SignalQuality{}, err
	}
	ber, err := strconv.Atoi(parts[2])
	if err != nil {
		return SignalQuality{}, err
	}
	return SignalQuality{RSSI: rssi, BER: ber}, nil
}

func requestSingleLine(ctx context.Context, requester gsm.Requester, request string, expression *regexp.Regexp) ([]string, error) {
	responses, err := requester.Request(ctx, request)
	if err != nil {
		return nil, err
	}
	for _, response := range responses {
		parts := expression.FindStringSubmatch(strings.TrimSpace(response))
		if parts != nil {
			return parts, nil
		}
	}
	if len(responses) == 0 {
		return nil, fmt.Errorf("no response received")
	}
	return nil, fmt.Errorf("unexpected response: %s", responses[0])
}
