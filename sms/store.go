package sms

import (
	"fmt"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// partialSet collects the parts of one concatenated message. It is only modified while the
// store holds the lock of its shard.
type partialSet struct {
	origin    Address
	reference uint16
	parts     []Part
	received  []bool
	count     int
	firstSeen time.Time
	done      bool
	// completedAt is set when the set is kept as the record of a completed message.
	completedAt time.Time
}

func newPartialSet(origin Address, concatenation Concatenation, now time.Time) *partialSet {
	return &partialSet{
		origin:    origin,
		reference: concatenation.Reference,
		parts:     make([]Part, concatenation.Total),
		received:  make([]bool, concatenation.Total),
		firstSeen: now,
	}
}

// put stores the part at its sequence slot, replacing a part that was received before.
func (s *partialSet) put(sequence byte, part Part) (duplicate bool, samePayload bool) {
	i := int(sequence) - 1
	if s.received[i] {
		duplicate = true
		samePayload = s.parts[i].samePayload(part)
	} else {
		s.count++
	}
	s.parts[i] = part
	s.received[i] = true
	return duplicate, samePayload
}

func (s *partialSet) complete() bool {
	return s.count == len(s.parts)
}

func (s *partialSet) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.firstSeen) > ttl
}

func (s *partialSet) timeout() Timeout {
	return Timeout{
		Origin:    s.origin,
		Reference: s.reference,
		Total:     len(s.parts),
		Received:  s.count,
		FirstSeen: s.firstSeen,
	}
}

// Timeout reports a concatenated message that was evicted before all of its parts arrived.
type Timeout struct {
	Origin    Address
	Reference uint16
	Total     int
	Received  int
	FirstSeen time.Time
}

func (t Timeout) String() string {
	return fmt.Sprintf("incomplete message %d from %s: %d of %d parts since %s", t.Reference, t.Origin, t.Received, t.Total, t.FirstSeen.Format(time.RFC3339))
}

// Store holds the partial sets of concatenated messages, keyed by origin, reference, and total number of parts.
// Completed messages are remembered for one time to live, so that retransmitted parts are not collected again.
// A store is owned by exactly one Reassembler.
type Store struct {
	sets      cmap.ConcurrentMap[string, *partialSet]
	completed cmap.ConcurrentMap[string, *partialSet]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sets:      cmap.New[*partialSet](),
		completed: cmap.New[*partialSet](),
	}
}

// Len returns the number of concatenated messages that are currently collected.
func (s *Store) Len() int {
	return s.sets.Count()
}

func setKey(origin Address, concatenation Concatenation) string {
	return fmt.Sprintf("%d/%d/%s|%d|%d", origin.TON, origin.NPI, origin.Digits, concatenation.Reference, concatenation.Total)
}

// remember keeps the given completed set under the given key.
func (s *Store) remember(key string, set *partialSet, now time.Time) {
	set.completedAt = now
	s.completed.Set(key, set)
}

// retransmitted indicates if the given part was already received as part of a message that completed
// within the time to live.
func (s *Store) retransmitted(key string, sequence byte, part Part, now time.Time, ttl time.Duration) bool {
	set, ok := s.completed.Get(key)
	if !ok || now.Sub(set.completedAt) > ttl {
		return false
	}
	return set.parts[int(sequence)-1].samePayload(part)
}

// remove deletes the given set, if it is still the one stored under the given key.
func (s *Store) remove(key string, set *partialSet) {
	s.sets.RemoveCb(key, func(_ string, current *partialSet, exists bool) bool {
		return exists && current == set
	})
}

// evictExpired removes all sets that are older than the given time to live and returns them.
func (s *Store) evictExpired(now time.Time, ttl time.Duration) []*partialSet {
	var result []*partialSet
	for item := range s.sets.IterBuffered() {
		key := item.Key
		s.sets.RemoveCb(key, func(_ string, current *partialSet, exists bool) bool {
			if !exists {
				return false
			}
			if current.done {
				return true
			}
			if !current.expired(now, ttl) {
				return false
			}
			current.done = true
			result = append(result, current)
			return true
		})
	}
	for item := range s.completed.IterBuffered() {
		s.completed.RemoveCb(item.Key, func(_ string, current *partialSet, exists bool) bool {
			return exists && now.Sub(current.completedAt) > ttl
		})
	}
	return result
}
