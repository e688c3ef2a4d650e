package realtime

// Metrics receives hub counters. The server wires a Prometheus
// implementation; the zero hub uses nopMetrics.
type Metrics interface {
	ConnOpened()
	ConnClosed()
	Delivered(event string)
	Dropped(event string)
}

type nopMetrics struct{}

func (nopMetrics) ConnOpened()      {}
func (nopMetrics) ConnClosed()      {}
func (nopMetrics) Delivered(string) {}
func (nopMetrics) Dropped(string)   {}
