package feed

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

var _ Feed = (*Noop)(nil)

type Noop struct{}

func (f *Noop) List(_ context.Context, _, _ time.Time) ([]Event, error) {
	log.Info().Msg("noop feed list events call")
	return nil, nil
}
