package perception

import (
	"context"
	"time"
)

// Trace describes one provider call.
type Trace struct {
	InstructionLen int
	ResponseLen    int
	Duration       time.Duration
	Err            error
}

// TraceSink receives a Trace after every call. Implementations must not block.
type TraceSink interface {
	ObserveReasoning(Trace)
}

// TracingReasoner wraps any Reasoner and reports each call to a sink.
type TracingReasoner struct {
	underlying Reasoner
	sink       TraceSink
}

// NewTracingReasoner creates a tracing wrapper around an existing Reasoner.
func NewTracingReasoner(underlying Reasoner, sink TraceSink) *TracingReasoner {
	return &TracingReasoner{underlying: underlying, sink: sink}
}

// Submit delegates to the wrapped Reasoner and records the outcome.
func (t *TracingReasoner) Submit(ctx context.Context, instruction string) (string, error) {
	start := time.Now()
	out, err := t.underlying.Submit(ctx, instruction)
	if t.sink != nil {
		t.sink.ObserveReasoning(Trace{
			InstructionLen: len(instruction),
			ResponseLen:    len(out),
			Duration:       time.Since(start),
			Err:            err,
		})
	}
	return out, err
}
