package atlink

import (
	"io"
	"sync"
	"time"
)

// PortStats is a point-in-time snapshot of traffic observed on the serial
// port, adapted from runZeroInc-sockstats's conniver.Conn (wrap.go):
// the same OpenedAt/FirstRx/LastRx/TxBytes/RxBytes shape, applied to a
// serial port instead of a TCP connection.
type PortStats struct {
	OpenedAt  time.Time
	FirstRxAt time.Time
	FirstTxAt time.Time
	LastRxAt  time.Time
	LastTxAt  time.Time
	RxBytes   uint64
	TxBytes   uint64
	RxErrors  uint64
	TxErrors  uint64
}

// StatsPort wraps an io.ReadWriter (typically a *serial.Port) and tracks
// byte counters and timestamps, the way conniver.Conn wraps a net.Conn.
// The counters are read only through Snapshot; the aodv metrics
// collector does not export them.
type StatsPort struct {
	rw io.ReadWriter

	mu    sync.Mutex
	stats PortStats
}

// WrapPort returns a StatsPort around rw, with OpenedAt set to now.
func WrapPort(rw io.ReadWriter, now time.Time) *StatsPort {
	return &StatsPort{rw: rw, stats: PortStats{OpenedAt: now}}
}

func (p *StatsPort) Read(b []byte) (int, error) {
	n, err := p.rw.Read(b)
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if n > 0 {
		if p.stats.FirstRxAt.IsZero() {
			p.stats.FirstRxAt = now
		}
		p.stats.LastRxAt = now
		p.stats.RxBytes += uint64(n)
	}
	if err != nil && err != io.EOF {
		p.stats.RxErrors++
	}
	return n, err
}

func (p *StatsPort) Write(b []byte) (int, error) {
	n, err := p.rw.Write(b)
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if n > 0 {
		if p.stats.FirstTxAt.IsZero() {
			p.stats.FirstTxAt = now
		}
		p.stats.LastTxAt = now
		p.stats.TxBytes += uint64(n)
	}
	if err != nil {
		p.stats.TxErrors++
	}
	return n, err
}

// Snapshot returns a copy of the current counters.
func (p *StatsPort) Snapshot() PortStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
