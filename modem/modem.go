// Package modem exchanges short messages with a GSM modem in PDU mode. Outgoing TPDUs are sent with
// AT+CMGS, incoming TPDUs arrive as +CMT and +CDS indications. Both carry the SMSC address in front of the TPDU.
package modem

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ftl/smsc-pdu/com"
	"github.com/ftl/smsc-pdu/ctrl"
	"github.com/ftl/smsc-pdu/gsm"
	"github.com/ftl/smsc-pdu/sms"
)

const (
	CRLF = "\r\n"
	// CtrlZ terminates the PDU of AT+CMGS
	CtrlZ = com.CtrlZ
)

// SendMessageRequest returns the AT+CMGS request for the given TPDU according to [SMS] 3.5.1. The SMSC address is
// put in front of the TPDU, the length parameter counts only the octets of the TPDU.
func SendMessageRequest(serviceCenter sms.Address, tpdu sms.TPDU) (string, error) {
	pdu, tpduLength, err := sms.EncodeWithServiceCenter(serviceCenter, tpdu)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("AT+CMGS=%d"+CRLF+"%s"+CtrlZ, tpduLength, gsm.BinaryToHex(pdu)), nil
}

var sendMessageResponse = regexp.MustCompile(`^\+CMGS: (\d+)`)

// ParseSendMessageResponse returns the TP-MR that the modem reports in the response to AT+CMGS.
func ParseSendMessageResponse(responses []string) (byte, error) {
	for _, response := range responses {
		parts := sendMessageResponse.FindStringSubmatch(strings.TrimLeft(strings.TrimSpace(response), "> "))
		if len(parts) != 2 {
			continue
		}
		value, err := strconv.Atoi(parts[1])
		if err != nil || value > 255 {
			return 0, fmt.Errorf("invalid message reference: %s", response)
		}
		return byte(value), nil
	}
	return 0, fmt.Errorf("no message reference received")
}

// Indication header lines of new messages and status reports routed directly to the terminal.
const (
	MessageIndication      = "+CMT:"
	StatusReportIndication = "+CDS:"
)

var indicationHeader = regexp.MustCompile(`^\+(CMT|CDS):\s*(?:.*,)?\s*(\d+)\s*$`)

// Indication is a TPDU received from the modem with the SMSC address that was put in front of it.
type Indication struct {
	ServiceCenter sms.Address
	TPDU          sms.TPDU
	// Length is the number of TPDU octets announced in the header line.
	Length int
}

// ParseIndication reads a +CMT or +CDS indication, which consists of the header line and the PDU line,
// according to [SMS] 3.4.1. The TPDU is decoded in the mobile terminated direction.
func ParseIndication(lines []string) (Indication, error) {
	if len(lines) != 2 {
		return Indication{}, fmt.Errorf("indication needs 2 lines, got %d", len(lines))
	}
	header := indicationHeader.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if len(header) != 3 {
		return Indication{}, fmt.Errorf("invalid indication header: %s", lines[0])
	}
	length, err := strconv.Atoi(header[2])
	if err != nil {
		return Indication{}, fmt.Errorf("invalid indication header: %s", lines[0])
	}

	pdu, err := gsm.HexToBinary(lines[1])
	if err != nil {
		return Indication{}, fmt.Errorf("invalid PDU: %w", err)
	}
	serviceCenter, tpdu, err := sms.DecodeWithServiceCenter(pdu, sms.MobileTerminated)
	if err != nil {
		return Indication{}, err
	}
	return Indication{ServiceCenter: serviceCenter, TPDU: tpdu, Length: length}, nil
}

// Modem sends TPDUs to a GSM modem.
type Modem struct {
	requester     gsm.Requester
	serviceCenter sms.Address
	logger        logrus.FieldLogger
}

// New creates a modem that uses the given requester. If the service centre address is the zero address, the modem
// uses the address configured in the SIM, unless Initialize finds one.
func New(requester gsm.Requester, serviceCenter sms.Address) *Modem {
	return &Modem{
		requester:     requester,
		serviceCenter: serviceCenter,
		logger:        logrus.StandardLogger(),
	}
}

func (m *Modem) WithLogger(logger logrus.FieldLogger) *Modem {
	m.logger = logger
	return m
}

func (m *Modem) ServiceCenter() sms.Address {
	return m.serviceCenter
}

// Initialize switches the modem into PDU mode and lets it forward new messages and status reports directly.
// Without a configured service centre address, the address is read from the modem.
func (m *Modem) Initialize(ctx context.Context) error {
	if synchronizer, ok := m.requester.(interface{ Synchronize(context.Context) error }); ok {
		err := synchronizer.Synchronize(ctx)
		if err != nil {
			return fmt.Errorf("cannot synchronize with modem: %w", err)
		}
	}

	for _, request := range []string{
		ctrl.SetMessageFormat(ctrl.PDUMode),
		ctrl.SetNewMessageIndications(ctrl.RouteToTerminal),
	} {
		_, err := m.requester.Request(ctx, request)
		if err != nil {
			return fmt.Errorf("%s failed: %w", request, err)
		}
	}

	if !m.serviceCenter.IsZero() {
		return nil
	}
	number, err := ctrl.RequestServiceCenterAddress(ctx, m.requester)
	if err != nil {
		m.logger.WithError(err).Warn("cannot read the service centre address, using the default of the SIM")
		return nil
	}
	serviceCenter, err := sms.ParseAddressString(number)
	if err != nil {
		m.logger.WithError(err).WithField("number", number).Warn("invalid service centre address, using the default of the SIM")
		return nil
	}
	m.serviceCenter = serviceCenter
	m.logger.WithField("service_center", serviceCenter.String()).Info("service centre address read from modem")
	return nil
}

// Send the given TPDU and return the message reference that the modem assigned.
func (m *Modem) Send(ctx context.Context, tpdu sms.TPDU) (byte, error) {
	if tpdu.Type() != sms.SMSSubmit && tpdu.Type() != sms.SMSCommand {
		return 0, fmt.Errorf("cannot send %v from a mobile station", tpdu.Type())
	}
	request, err := SendMessageRequest(m.serviceCenter, tpdu)
	if err != nil {
		return 0, err
	}
	responses, err := m.requester.Request(ctx, request)
	if err != nil {
		return 0, err
	}
	reference, err := ParseSendMessageResponse(responses)
	if err != nil {
		return 0, err
	}
	m.logger.WithFields(logrus.Fields{"type": tpdu.Type(), "reference": reference}).Debug("TPDU sent")
	return reference, nil
}
