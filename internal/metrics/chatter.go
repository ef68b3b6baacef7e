package metrics

import (
	"context"
	"time"

	"github.com/conneqt/leavebot-go/internal/llm"
)

// instrumentedChatter wraps a Chatter and records call counts and latency.
type instrumentedChatter struct {
	inner   llm.Chatter
	kind    llm.Kind
	metrics *Metrics
}

// InstrumentChatter decorates a Chatter with call metrics. Returns the
// inner chatter unchanged when metrics are disabled.
func (m *Metrics) InstrumentChatter(inner llm.Chatter, kind llm.Kind) llm.Chatter {
	if m == nil {
		return inner
	}
	return &instrumentedChatter{inner: inner, kind: kind, metrics: m}
}

func (c *instrumentedChatter) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	start := time.Now()
	resp, err := c.inner.Chat(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordLLMCall(c.inner.Provider().String(), string(c.kind), status, time.Since(start))
	return resp, err
}

func (c *instrumentedChatter) Provider() llm.Provider {
	return c.inner.Provider()
}

func (c *instrumentedChatter) Close() error {
	return c.inner.Close()
}
