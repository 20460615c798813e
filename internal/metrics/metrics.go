// Package metrics holds lock-free request counters for the mock backend.
package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
	now   func() time.Time
}

func StartTimer(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{start: now(), now: now}
}

func (t *Timer) Duration() time.Duration {
	return t.now().Sub(t.start)
}

// Requests counts served requests by outcome.
type Requests struct {
	Total       Counter
	ClientError Counter
	ServerError Counter
	Throttled   Counter
	Uploaded    Counter

	uptime *Timer
}

func NewRequests(now func() time.Time) *Requests {
	return &Requests{uptime: StartTimer(now)}
}

// Observe records one finished request by its status code.
func (r *Requests) Observe(status int) {
	r.Total.Inc()
	switch {
	case status == 429:
		r.Throttled.Inc()
		r.ClientError.Inc()
	case status >= 500:
		r.ServerError.Inc()
	case status >= 400:
		r.ClientError.Inc()
	}
}

type Snapshot struct {
	Uptime        string `json:"uptime"`
	Requests      uint64 `json:"requests"`
	ClientErrors  uint64 `json:"clientErrors"`
	ServerErrors  uint64 `json:"serverErrors"`
	Throttled     uint64 `json:"throttled"`
	UploadedBytes uint64 `json:"uploadedBytes"`
}

func (r *Requests) Snapshot() Snapshot {
	return Snapshot{
		Uptime:        r.uptime.Duration().Round(time.Second).String(),
		Requests:      r.Total.Load(),
		ClientErrors:  r.ClientError.Load(),
		ServerErrors:  r.ServerError.Load(),
		Throttled:     r.Throttled.Load(),
		UploadedBytes: r.Uploaded.Load(),
	}
}
