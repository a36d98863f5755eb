package telemetry

import "io"

// noOpCollector is a Collector that does nothing. It is returned by
// FromContext when no collector is present, so instrumented code never has
// to nil-check.
type noOpCollector struct{}

func (noOpCollector) Start(name string) Timer              { return noOpTimer{} }
func (noOpCollector) Report(w io.Writer, styles interface{}) {}

// noOpTimer is a Timer that does nothing.
type noOpTimer struct{}

func (noOpTimer) End()                   {}
func (noOpTimer) Child(name string) Timer { return noOpTimer{} }
