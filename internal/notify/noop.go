package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

var _ Notifier = (*Noop)(nil)

type Noop struct{}

func (n *Noop) Post(_ context.Context, body string) (string, error) {
	log.Info().Int("bodyLen", len(body)).Msg("noop notifier post call")
	return "noop", nil
}

func (n *Noop) Edit(_ context.Context, messageID, body string) error {
	log.Info().Str("messageID", messageID).Int("bodyLen", len(body)).Msg("noop notifier edit call")
	return nil
}
