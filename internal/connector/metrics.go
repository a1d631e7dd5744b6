package connector

import "time"

// Stats counts gateway activity for the status endpoint.
type Stats struct {
	StartedAt time.Time `json:"started_at"`

	InboundHandled  int `json:"inbound_handled"`
	InboundDeduped  int `json:"inbound_deduped"`
	InboundRejected int `json:"inbound_rejected"`
	FeedbackSent    int `json:"feedback_sent"`
	OutboundSent    int `json:"outbound_sent"`
	OutboundErrors  int `json:"outbound_errors"`

	LastError   string `json:"last_error,omitempty"`
	LastErrorAt string `json:"last_error_at,omitempty"`
}

func (c *Connector) noteInboundHandled() {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.stats.InboundHandled++
}

func (c *Connector) noteInboundDeduped() {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.stats.InboundDeduped++
}

func (c *Connector) noteInboundRejected() {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.stats.InboundRejected++
}

func (c *Connector) noteFeedbackSent() {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.stats.FeedbackSent++
}

func (c *Connector) noteOutbound(err error) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if err == nil {
		c.stats.OutboundSent++
		return
	}
	c.stats.OutboundErrors++
	c.stats.LastError = err.Error()
	c.stats.LastErrorAt = time.Now().UTC().Format(time.RFC3339)
}

// Stats returns a snapshot of the connector's counters.
func (c *Connector) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}
