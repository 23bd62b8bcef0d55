package tui

// eventBacklog sizes the event channel. The pipeline is specified as
// unbounded: producers must never block and a full channel is a programming
// error, not backpressure. The backlog is therefore sized far beyond any
// realistic burst and Send panics instead of waiting when it fills.
const eventBacklog = 1 << 16

// Pipeline is the single many-producer/one-consumer event channel.
type Pipeline struct {
	ch chan Event
}

func NewPipeline() *Pipeline {
	return &Pipeline{ch: make(chan Event, eventBacklog)}
}

// Send enqueues an event without blocking. A full channel violates the
// unbounded-channel invariant and is fatal.
func (p *Pipeline) Send(ev Event) {
	select {
	case p.ch <- ev:
	default:
		panic("tui: event channel full; unbounded pipeline invariant violated")
	}
}

// Events returns the consumer side of the pipeline.
func (p *Pipeline) Events() <-chan Event { return p.ch }

// Close ends the stream. Only the orchestrator calls this, after every
// producer has finished.
func (p *Pipeline) Close() { close(p.ch) }
