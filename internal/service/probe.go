package service

import (
	"context"
	"net"
	"runtime"
	"time"

	"vacuum_bridge/internal/logger"

	probing "github.com/prometheus-community/pro-bing"
)

// Prober answers whether a device address responds on the network.
type Prober interface {
	Reachable(ctx context.Context, ip string) bool
}

// ICMPProber pings device addresses.
type ICMPProber struct {
	timeout time.Duration
	count   int
	log     *logger.Logger
}

func NewICMPProber(timeout time.Duration, count int, log *logger.Logger) *ICMPProber {
	if count <= 0 {
		count = 1
	}
	return &ICMPProber{timeout: timeout, count: count, log: log}
}

func (p *ICMPProber) Reachable(ctx context.Context, ip string) bool {
	if net.ParseIP(ip) == nil {
		return false
	}
	pinger, err := probing.NewPinger(ip)
	if err != nil {
		p.log.Debugw("probe_pinger_failed", "ip", ip, "err", err)
		return false
	}
	pinger.Count = p.count
	pinger.Timeout = p.timeout
	pinger.SetPrivileged(runtime.GOOS == "windows")

	if err := pinger.RunWithContext(ctx); err != nil {
		p.log.Debugw("probe_run_failed", "ip", ip, "err", err)
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}
