// Package smsc combines the codecs of this module into the core of a short message service centre:
// incoming envelopes are decoded and reassembled, outgoing messages are segmented, encoded, and wrapped.
package smsc

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ftl/smsc-pdu/envelope"
	"github.com/ftl/smsc-pdu/sms"
)

// Result of receiving one or more TPDUs.
type Result struct {
	// Messages that were completed by the received TPDUs.
	Messages []sms.AssembledMessage
	// Accepted is the number of parts that were stored for reassembly.
	Accepted int
	// Control contains the received TPDUs that carry no message (reports and commands).
	Control []sms.TPDU
}

func (r *Result) add(other Result) {
	r.Messages = append(r.Messages, other.Messages...)
	r.Accepted += other.Accepted
	r.Control = append(r.Control, other.Control...)
}

// Outgoing is a logical message that is sent to the peer.
type Outgoing struct {
	// Address is the originating address of an SMS-DELIVER or the destination address of an SMS-SUBMIT.
	Address sms.Address
	Text    string
	// Binary data is sent with 8-bit data coding instead of the text.
	Binary []byte
	Header sms.UserDataHeader
	// Class is the message class, the data coding scheme carries no class if it is nil.
	Class               *sms.MessageClass
	ProtocolIdentifier  byte
	StatusReportRequest bool
	ValidityPeriod      sms.ValidityPeriod
	// Timestamp is the service centre timestamp of an SMS-DELIVER. The current time is used if it is zero.
	Timestamp time.Time
}

// Core of the service centre.
type Core struct {
	direction           sms.Direction
	serviceCenter       sms.Address
	serviceCenterPrefix bool
	reassembler         *sms.Reassembler
	metrics             *sms.Metrics
	logger              logrus.FieldLogger
	clock               func() time.Time

	concatenationReference atomic.Uint32
	messageReference       atomic.Uint32
}

// NewCore creates a new core with the given configuration. If no logger is given, the core logs
// on the configured level.
func NewCore(cfg Config, logger logrus.FieldLogger) (*Core, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	direction, _ := cfg.ReceiveDirection()
	serviceCenter, _ := cfg.ServiceCenterAddress()
	if logger == nil {
		logger, err = NewLogger(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
	}

	store := sms.NewStore()
	metrics := sms.NewMetrics(cfg.MetricsNamespace, store)
	reassembler := sms.NewReassembler(store).
		WithTTL(cfg.ReassemblyTTL).
		WithSweepInterval(cfg.SweepInterval).
		WithTimeoutBuffer(cfg.TimeoutBuffer).
		WithLogger(logger).
		WithMetrics(metrics)

	return &Core{
		direction:           direction,
		serviceCenter:       serviceCenter,
		serviceCenterPrefix: cfg.ServiceCenterPrefix,
		reassembler:         reassembler,
		metrics:             metrics,
		logger:              logger,
		clock:               time.Now,
	}, nil
}

func (c *Core) withClock(clock func() time.Time) *Core {
	c.clock = clock
	c.reassembler.WithClock(clock)
	return c
}

// Direction of the received TPDUs.
func (c *Core) Direction() sms.Direction {
	return c.direction
}

// OutgoingDirection is the direction of the TPDUs built by EncodeOutgoing.
func (c *Core) OutgoingDirection() sms.Direction {
	if c.direction == sms.MobileOriginated {
		return sms.MobileTerminated
	}
	return sms.MobileOriginated
}

func (c *Core) ServiceCenter() sms.Address {
	return c.serviceCenter
}

func (c *Core) Reassembler() *sms.Reassembler {
	return c.reassembler
}

// Timeouts reports incomplete messages that were evicted from reassembly.
func (c *Core) Timeouts() <-chan sms.Timeout {
	return c.reassembler.Timeouts()
}

// Register the metrics of the core with the given registerer.
func (c *Core) Register(registerer prometheus.Registerer) error {
	return registerer.Register(c.metrics)
}

// Run the periodic eviction of incomplete messages until the given context is done.
func (c *Core) Run(ctx context.Context) {
	c.reassembler.Run(ctx)
}

// DecodeIncoming decodes the PDUs carried by the given envelope body.
func (c *Core) DecodeIncoming(body []byte, contentType string) (Result, error) {
	return c.DecodeIncomingFrom(sms.Address{}, body, contentType)
}

// DecodeIncomingFrom decodes the PDUs carried by the given envelope body. The origin is used to
// reassemble SMS-SUBMIT parts, which carry no originating address. If single PDUs cannot be decoded,
// the other PDUs of the envelope are still processed and all errors are returned together.
func (c *Core) DecodeIncomingFrom(origin sms.Address, body []byte, contentType string) (Result, error) {
	pdus, err := envelope.Unwrap(body, contentType)
	if err != nil {
		return Result{}, err
	}

	var result Result
	var errs *multierror.Error
	for i, pdu := range pdus {
		tpdu, err := c.decodePDU(pdu)
		if err != nil {
			c.logger.WithError(err).WithField("pdu", i).Warn("cannot decode PDU")
			errs = multierror.Append(errs, fmt.Errorf("PDU %d: %w", i, err))
			continue
		}
		received, err := c.Receive(tpdu, origin)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("PDU %d: %w", i, err))
			continue
		}
		result.add(received)
	}
	return result, errs.ErrorOrNil()
}

func (c *Core) decodePDU(pdu []byte) (sms.TPDU, error) {
	if !c.serviceCenterPrefix {
		return sms.Decode(pdu, c.direction)
	}
	serviceCenter, tpdu, err := sms.DecodeWithServiceCenter(pdu, c.direction)
	if err != nil {
		return nil, err
	}
	if !serviceCenter.IsZero() && !c.serviceCenter.IsZero() && serviceCenter != c.serviceCenter {
		c.logger.WithFields(logrus.Fields{
			"received":   serviceCenter.String(),
			"configured": c.serviceCenter.String(),
		}).Debug("PDU from other service centre")
	}
	return tpdu, nil
}

func (c *Core) encodePDU(tpdu sms.TPDU) ([]byte, error) {
	if !c.serviceCenterPrefix {
		return sms.Encode(tpdu)
	}
	result, _, err := sms.EncodeWithServiceCenter(c.serviceCenter, tpdu)
	return result, err
}

// Receive a decoded TPDU. SMS-DELIVER and SMS-SUBMIT are passed to reassembly, all other TPDUs
// are returned as control TPDUs.
func (c *Core) Receive(tpdu sms.TPDU, origin sms.Address) (Result, error) {
	switch tpdu.Type() {
	case sms.SMSDeliver, sms.SMSSubmit:
	default:
		c.logger.WithField("type", tpdu.Type()).Debug("received control TPDU")
		return Result{Control: []sms.TPDU{tpdu}}, nil
	}

	part, err := sms.NewPart(tpdu, origin)
	if err != nil {
		return Result{}, err
	}
	submitted, err := c.reassembler.Submit(part)
	if err != nil {
		return Result{}, err
	}
	if !submitted.Complete {
		return Result{Accepted: 1}, nil
	}
	c.logger.WithFields(logrus.Fields{
		"id":     submitted.Message.ID,
		"sender": submitted.Message.Sender.String(),
		"parts":  submitted.Message.Parts,
	}).Info("message received")
	return Result{Messages: []sms.AssembledMessage{*submitted.Message}}, nil
}

// EncodeOutgoing segments the given message, encodes one TPDU per segment, and wraps the TPDUs into an
// envelope. It returns the envelope body and its content type.
func (c *Core) EncodeOutgoing(message Outgoing) ([]byte, string, error) {
	tpdus, err := c.BuildOutgoing(message)
	if err != nil {
		return nil, "", err
	}

	pdus := make([][]byte, 0, len(tpdus))
	for _, tpdu := range tpdus {
		pdu, err := c.encodePDU(tpdu)
		if err != nil {
			return nil, "", err
		}
		pdus = append(pdus, pdu)
	}

	wrapped, err := envelope.Wrap(pdus)
	if err != nil {
		return nil, "", err
	}
	return wrapped.Bytes(), wrapped.ContentType, nil
}

// BuildOutgoing segments the given message into SMS-DELIVER or SMS-SUBMIT TPDUs, depending on the outgoing direction.
func (c *Core) BuildOutgoing(message Outgoing) ([]sms.TPDU, error) {
	if message.Address.IsZero() {
		return nil, fmt.Errorf("outgoing message without address: %w", sms.ErrInvalidAddress)
	}

	alphabet := sms.Data8Bit
	var segments []sms.UserData
	if message.Binary != nil {
		payloads, err := sms.SplitBinary(message.Binary, message.Header)
		if err != nil {
			return nil, err
		}
		segments = make([]sms.UserData, len(payloads))
		for i, payload := range payloads {
			segments[i].Binary = payload
		}
	} else {
		alphabet = sms.SelectAlphabet(message.Text)
		texts, err := sms.SplitText(message.Text, alphabet, message.Header)
		if err != nil {
			return nil, err
		}
		segments = make([]sms.UserData, len(texts))
		for i, text := range texts {
			segments[i].Text = text
		}
	}

	var reference byte
	if len(segments) > 1 {
		reference = byte(c.concatenationReference.Add(1))
	}
	for i := range segments {
		segments[i].Header = sms.ConcatenatedHeader(message.Header, reference, len(segments), i+1)
	}

	class := sms.NoClass
	if message.Class != nil {
		class = *message.Class
	}
	dcs := sms.NewDataCodingScheme(alphabet, class)
	timestamp := message.Timestamp
	if timestamp.IsZero() {
		timestamp = c.clock()
	}

	result := make([]sms.TPDU, 0, len(segments))
	for _, userData := range segments {
		if c.OutgoingDirection() == sms.MobileTerminated {
			result = append(result, &sms.Deliver{
				StatusReportIndication: message.StatusReportRequest,
				OriginatingAddress:     message.Address,
				ProtocolIdentifier:     message.ProtocolIdentifier,
				DataCodingScheme:       dcs,
				ServiceCentreTimestamp: sms.NewTimestamp(timestamp),
				UserData:               userData,
			})
		} else {
			result = append(result, &sms.Submit{
				StatusReportRequest: message.StatusReportRequest,
				MessageReference:    byte(c.messageReference.Add(1)),
				DestinationAddress:  message.Address,
				ProtocolIdentifier:  message.ProtocolIdentifier,
				DataCodingScheme:    dcs,
				ValidityPeriod:      message.ValidityPeriod,
				UserData:            userData,
			})
		}
	}
	c.logger.WithFields(logrus.Fields{
		"address":  message.Address.String(),
		"alphabet": alphabet,
		"parts":    len(result),
	}).Debug("message segmented")
	return result, nil
}
