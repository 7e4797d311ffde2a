package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Defaults of the Reassembler.
const (
	DefaultReassemblyTTL = 5 * time.Minute
	DefaultSweepInterval = 30 * time.Second
	DefaultTimeoutBuffer = 64
)

var (
	// ErrMissingOrigin is returned for a concatenated part without origin, which cannot be assigned to a message.
	ErrMissingOrigin = errors.New("concatenated part without origin")
	// ErrMixedPayload is returned when the parts of a message mix 8-bit data and text. The message is discarded.
	ErrMixedPayload = errors.New("parts mix 8-bit data and text")
)

// Result of submitting a part to the Reassembler. Message is only set if the part completed a message.
type Result struct {
	Message   *AssembledMessage
	Complete  bool
	Duplicate bool
}

// Reassembler collects the parts of concatenated messages and emits each message once, when its last part arrives.
type Reassembler struct {
	store         *Store
	ttl           time.Duration
	sweepInterval time.Duration
	clock         func() time.Time
	timeouts      chan Timeout
	logger        logrus.FieldLogger
	metrics       *Metrics
}

// NewReassembler creates a reassembler that keeps the incomplete messages in the given store.
func NewReassembler(store *Store) *Reassembler {
	return &Reassembler{
		store:         store,
		ttl:           DefaultReassemblyTTL,
		sweepInterval: DefaultSweepInterval,
		clock:         time.Now,
		timeouts:      make(chan Timeout, DefaultTimeoutBuffer),
		logger:        logrus.StandardLogger(),
	}
}

func (r *Reassembler) WithTTL(ttl time.Duration) *Reassembler {
	r.ttl = ttl
	return r
}

func (r *Reassembler) WithSweepInterval(interval time.Duration) *Reassembler {
	r.sweepInterval = interval
	return r
}

// WithTimeoutBuffer sets the capacity of the timeout channel. Timeouts are dropped when the channel is full.
func (r *Reassembler) WithTimeoutBuffer(size int) *Reassembler {
	r.timeouts = make(chan Timeout, size)
	return r
}

func (r *Reassembler) WithLogger(logger logrus.FieldLogger) *Reassembler {
	r.logger = logger
	return r
}

func (r *Reassembler) WithMetrics(metrics *Metrics) *Reassembler {
	r.metrics = metrics
	return r
}

func (r *Reassembler) WithClock(clock func() time.Time) *Reassembler {
	r.clock = clock
	return r
}

// Timeouts returns the channel that reports evicted incomplete messages.
func (r *Reassembler) Timeouts() <-chan Timeout {
	return r.timeouts
}

// Pending returns the number of incomplete messages.
func (r *Reassembler) Pending() int {
	return r.store.Len()
}

// Assemble turns a single part into a message without using the store.
func (r *Reassembler) Assemble(part Part) AssembledMessage {
	return assemble([]Part{part})
}

// Submit a part. Parts without concatenation information are assembled immediately. A part that arrives for
// a sequence number that was already received replaces the earlier part, this is reported as duplicate.
// A part that repeats a part of a message that completed within the time to live is reported as duplicate
// and not collected again.
func (r *Reassembler) Submit(part Part) (Result, error) {
	concatenation, ok := part.Concatenation()
	if !ok {
		message := r.Assemble(part)
		return Result{Message: &message, Complete: true}, nil
	}
	if part.Origin.IsZero() {
		return Result{}, ErrMissingOrigin
	}
	r.metrics.partReceived()

	key := setKey(part.Origin, concatenation)
	now := r.clock()
	var expired, completed *partialSet
	var duplicate, samePayload, retransmitted bool
	set := r.store.sets.Upsert(key, nil, func(exist bool, current *partialSet, _ *partialSet) *partialSet {
		if exist && !current.done && current.expired(now, r.ttl) {
			current.done = true
			expired = current
		}
		if !exist || current.done {
			if r.store.retransmitted(key, concatenation.Sequence, part, now, r.ttl) {
				retransmitted = true
				if exist {
					return current
				}
				return &partialSet{done: true}
			}
			current = newPartialSet(part.Origin, concatenation, now)
		}
		duplicate, samePayload = current.put(concatenation.Sequence, part)
		if current.complete() {
			current.done = true
			completed = current
			r.store.remember(key, current, now)
		}
		return current
	})

	logger := r.logger.WithFields(logrus.Fields{
		"origin":    part.Origin.String(),
		"reference": concatenation.Reference,
		"sequence":  concatenation.Sequence,
		"total":     concatenation.Total,
	})
	if expired != nil {
		r.reportTimeout(expired)
	}
	if retransmitted {
		r.store.remove(key, set)
		r.metrics.duplicateReceived()
		logger.Debug("received part of a completed message again")
		return Result{Duplicate: true}, nil
	}
	if duplicate {
		r.metrics.duplicateReceived()
		if samePayload {
			logger.Debug("received part again")
		} else {
			logger.Warn("received different part with the same sequence number, keeping the latest")
		}
	}
	if completed == nil {
		return Result{Duplicate: duplicate}, nil
	}

	r.store.remove(key, set)
	if !samePayloadKind(completed.parts) {
		logger.Warn("discarding message with parts that mix 8-bit data and text")
		return Result{Duplicate: duplicate}, fmt.Errorf("%w: message %d from %s", ErrMixedPayload, concatenation.Reference, part.Origin)
	}
	message := assemble(completed.parts)
	r.metrics.messageAssembled()
	logger.WithField("id", message.ID).Debug("message complete")
	return Result{Message: &message, Complete: true, Duplicate: duplicate}, nil
}

// Sweep evicts all incomplete messages that are older than the time to live at the given time and reports them as timeouts.
func (r *Reassembler) Sweep(now time.Time) int {
	expired := r.store.evictExpired(now, r.ttl)
	for _, set := range expired {
		r.reportTimeout(set)
	}
	return len(expired)
}

// Run sweeps the store periodically until the given context is done.
func (r *Reassembler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(r.clock())
		}
	}
}

func (r *Reassembler) reportTimeout(set *partialSet) {
	r.metrics.timedOut()
	timeout := set.timeout()
	logger := r.logger.WithFields(logrus.Fields{
		"origin":    timeout.Origin.String(),
		"reference": timeout.Reference,
		"received":  timeout.Received,
		"total":     timeout.Total,
	})
	select {
	case r.timeouts <- timeout:
		logger.Info("incomplete message timed out")
	default:
		logger.Warn("incomplete message timed out, timeout notification dropped")
	}
}
