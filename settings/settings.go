package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/oomph-ac/springbone/oerror"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

// Settings contains everything that can be configured for the spring bone scheduler.
type Settings struct {
	Simulation struct {
		// Enabled is whether springs should be simulated at all.
		Enabled bool
		// FrameRate is the nominal number of ticks per second. It sets the time step of the first
		// tick after the scene changed.
		FrameRate float64
		// MaxDeltaTime caps the time step of a single tick, in seconds. 0 disables the cap.
		MaxDeltaTime float64
		// Parallel is whether springs should be computed concurrently.
		Parallel bool
		// Workers is the maximum amount of springs computed at once. 0 uses one per CPU.
		Workers int
	}
	Log struct {
		// Level is one of logrus' level names: panic, fatal, error, warn, info, debug or trace.
		Level string
	}
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	settings := Settings{}
	settings.Simulation.Enabled = true
	settings.Simulation.FrameRate = 60
	settings.Simulation.MaxDeltaTime = 0.1
	settings.Log.Level = logrus.InfoLevel.String()
	return settings
}

// Validate checks that every value is within range.
func (s Settings) Validate() error {
	switch {
	case s.Simulation.FrameRate <= 0:
		return oerror.Config("frame rate must be positive, got %v", s.Simulation.FrameRate)
	case s.Simulation.MaxDeltaTime < 0:
		return oerror.Config("max delta time must not be negative, got %v", s.Simulation.MaxDeltaTime)
	case s.Simulation.Workers < 0:
		return oerror.Config("worker count must not be negative, got %v", s.Simulation.Workers)
	}
	if _, err := s.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured log level.
func (s Settings) LogLevel() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(s.Log.Level)
	if err != nil {
		return logrus.InfoLevel, oerror.Config("log level: %v", err)
	}
	return lvl, nil
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	s := DefaultSettings()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if data, err := toml.Marshal(s); err != nil {
			return fmt.Errorf("failed encoding default settings: %w", err)
		} else if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed creating settings file: %w", err)
		}
		return nil
	}
	return errors.New("settings file already exists")
}

// Load will load the settings from your settings file, and return an error if the file does not exist.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error reading config: %w", err)
	}

	var settings Settings
	if err = toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}
