package application

import (
	"context"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/notification"
	"github.com/felixgeelhaar/pitchroom/infrastructure/logging"
)

// notify hands an event to the notifier. Delivery problems are logged,
// never returned to the turn.
func (s *Session) notify(ctx context.Context, typ notification.EventType, at time.Time, payload any) {
	e, err := notification.NewEvent(typ, s.id, at, payload)
	if err == nil {
		err = s.cfg.Notifier.Notify(ctx, e)
	}
	if err != nil {
		logging.Warn().
			Add(logging.SessionID(s.id)).
			Add(logging.Str("event_type", string(typ))).
			Add(logging.ErrorField(err)).
			Msg("notification not queued")
	}
}
