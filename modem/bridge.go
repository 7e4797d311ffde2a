package modem

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ftl/smsc-pdu/sms"
	"github.com/ftl/smsc-pdu/smsc"
)

// DefaultBufferSize of the channels of a Bridge.
const DefaultBufferSize = 16

// IndicationSource delivers unsolicited result codes, like com.COM does.
type IndicationSource interface {
	AddIndication(prefix string, trailingLines int, handler func(lines []string)) error
}

// Bridge connects a modem with the core: incoming messages are reassembled by the core,
// outgoing messages are segmented by the core and sent through the modem.
type Bridge struct {
	core     *smsc.Core
	modem    *Modem
	local    sms.Address
	messages chan sms.AssembledMessage
	reports  chan *sms.StatusReport
	logger   logrus.FieldLogger
}

// NewBridge creates a bridge between the given core and modem. The local address is the number of the modem,
// it is used as recipient of the received messages and may be the zero address. The core must be configured
// for mobile terminated TPDUs.
func NewBridge(core *smsc.Core, modem *Modem, local sms.Address) (*Bridge, error) {
	if core.Direction() != sms.MobileTerminated {
		return nil, fmt.Errorf("a modem receives %v TPDUs, but the core is configured for %v", sms.MobileTerminated, core.Direction())
	}
	return &Bridge{
		core:     core,
		modem:    modem,
		local:    local,
		messages: make(chan sms.AssembledMessage, DefaultBufferSize),
		reports:  make(chan *sms.StatusReport, DefaultBufferSize),
		logger:   logrus.StandardLogger(),
	}, nil
}

func (b *Bridge) WithLogger(logger logrus.FieldLogger) *Bridge {
	b.logger = logger
	return b
}

// Messages returns the channel of completely received messages.
func (b *Bridge) Messages() <-chan sms.AssembledMessage {
	return b.messages
}

// StatusReports returns the channel of received status reports.
func (b *Bridge) StatusReports() <-chan *sms.StatusReport {
	return b.reports
}

// Attach registers the handlers for +CMT and +CDS at the given source.
func (b *Bridge) Attach(source IndicationSource) error {
	err := source.AddIndication(MessageIndication, 1, b.HandleIndication)
	if err != nil {
		return err
	}
	return source.AddIndication(StatusReportIndication, 1, b.HandleIndication)
}

// HandleIndication decodes the given +CMT or +CDS indication and passes the TPDU to the core.
func (b *Bridge) HandleIndication(lines []string) {
	indication, err := ParseIndication(lines)
	if err != nil {
		b.logger.WithError(err).WithField("lines", lines).Warn("cannot parse indication")
		return
	}

	logger := b.logger.WithFields(logrus.Fields{
		"type":           indication.TPDU.Type(),
		"service_center": indication.ServiceCenter.String(),
	})
	if encoded, err := sms.Encode(indication.TPDU); err == nil && len(encoded) != indication.Length {
		logger.WithFields(logrus.Fields{"announced": indication.Length, "actual": len(encoded)}).Warn("TPDU length does not match the indication")
	}

	result, err := b.core.Receive(indication.TPDU, b.local)
	if err != nil {
		logger.WithError(err).Warn("cannot receive TPDU")
		return
	}
	for _, message := range result.Messages {
		select {
		case b.messages <- message:
		default:
			logger.WithField("id", message.ID).Error("message dropped, the message channel is full")
		}
	}
	for _, control := range result.Control {
		report, ok := control.(*sms.StatusReport)
		if !ok {
			logger.Debug("ignoring control TPDU")
			continue
		}
		select {
		case b.reports <- report:
		default:
			logger.WithField("reference", report.MessageReference).Error("status report dropped, the report channel is full")
		}
	}
}

// Send the given message through the modem. It returns the message references of all sent parts.
func (b *Bridge) Send(ctx context.Context, message smsc.Outgoing) ([]byte, error) {
	tpdus, err := b.core.BuildOutgoing(message)
	if err != nil {
		return nil, err
	}
	references := make([]byte, 0, len(tpdus))
	for i, tpdu := range tpdus {
		reference, err := b.modem.Send(ctx, tpdu)
		if err != nil {
			return references, fmt.Errorf("cannot send part %d of %d: %w", i+1, len(tpdus), err)
		}
		references = append(references, reference)
	}
	b.logger.WithFields(logrus.Fields{
		"address": message.Address.String(),
		"parts":   len(tpdus),
	}).Info("message sent")
	return references, nil
}
