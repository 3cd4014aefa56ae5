package replication

import (
	"go.uber.org/zap"
)

// Sender delivers encoded snapshots to remote observers.
type Sender interface {
	Send(payload []byte) error
}

// SenderFunc adapts a function into a Sender.
type SenderFunc func(payload []byte) error

// Send calls f(payload).
func (f SenderFunc) Send(payload []byte) error { return f(payload) }

// Remover is implemented by senders that must hear about departed characters.
type Remover interface {
	Remove(characterID string)
}

// MirrorSender decodes every payload into a Mirror. It stands in for a
// network peer running in the same process.
type MirrorSender struct {
	Mirror *Mirror
}

// Send implements Sender.
func (m MirrorSender) Send(payload []byte) error {
	s, err := Decode(payload)
	if err != nil {
		return err
	}
	m.Mirror.Apply(s)
	return nil
}

// Remove implements Remover.
func (m MirrorSender) Remove(characterID string) { m.Mirror.Remove(characterID) }

// Broadcaster collects changed snapshots each frame and hands them to a Sender.
type Broadcaster struct {
	tracker *Tracker
	sender  Sender
	logger  *zap.Logger
}

// NewBroadcaster creates a Broadcaster.
//
// Precondition: tracker and sender must not be nil.
func NewBroadcaster(tracker *Tracker, sender Sender, logger *zap.Logger) *Broadcaster {
	if tracker == nil || sender == nil {
		panic("replication: NewBroadcaster: tracker and sender must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{tracker: tracker, sender: sender, logger: logger}
}

// Broadcast sends every changed snapshot and returns the number of bytes sent.
// A non-authoritative broadcaster sends nothing. Encode and send failures are
// logged and skipped. Characters missing from sources are passed to the
// sender's Remove when it implements Remover.
func (b *Broadcaster) Broadcast(sources []Source) int {
	snaps, err := b.tracker.Collect(sources)
	if err != nil {
		return 0
	}
	if r, ok := b.sender.(Remover); ok {
		for _, id := range b.tracker.Departed() {
			r.Remove(id)
		}
	}
	total := 0
	for _, s := range snaps {
		payload, err := Encode(s)
		if err != nil {
			b.logger.Warn("snapshot encode failed", zap.String("character", s.CharacterID), zap.Error(err))
			b.tracker.Forget(s.CharacterID)
			continue
		}
		if err := b.sender.Send(payload); err != nil {
			b.logger.Warn("snapshot send failed", zap.String("character", s.CharacterID), zap.Error(err))
			b.tracker.Forget(s.CharacterID)
			continue
		}
		total += len(payload)
	}
	if len(snaps) > 0 {
		b.logger.Debug("snapshots broadcast", zap.Int("count", len(snaps)), zap.Int("bytes", total))
	}
	return total
}
