package simulation

// Options define simulator behaviour.
type Options struct {
	// Debugf receives per-joint trace logs for callers that need deep diagnostics.
	Debugf func(format string, args ...any)
}

// Simulator advances springs by one frame.
type Simulator struct {
	Options Options
}

func (s Simulator) debugf(format string, args ...any) {
	if s.Options.Debugf != nil {
		s.Options.Debugf(format, args...)
	}
}
