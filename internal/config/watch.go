package config

import (
	"errors"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch reloads the config file whenever it changes on disk and publishes
// each valid result. Invalid edits are logged and skipped so the simulation
// keeps its last good settings. The channel holds at most one pending value;
// a newer reload replaces an undrained older one.
func (l *Loader) Watch(log zerolog.Logger) (<-chan Settings, error) {
	if l.path == "" {
		return nil, errors.New("watch: no config file")
	}
	out := make(chan Settings, 1)
	l.v.OnConfigChange(func(e fsnotify.Event) {
		s, err := l.decode()
		if err == nil {
			err = Validate(s)
		}
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("config reload rejected")
			return
		}
		select {
		case <-out:
		default:
		}
		out <- s
		log.Info().Str("file", e.Name).Msg("config reloaded")
	})
	l.v.WatchConfig()
	return out, nil
}
