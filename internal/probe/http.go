package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 10 * time.Second
	DefaultUserAgent      = "sitecheck/1.0 (+reachability probe)"
)

// DialFunc opens the TCP connection for a probe. Tests swap it to count
// connections or to fake network failures.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

type Options struct {
	ConnectTimeout time.Duration // bounds the TCP (and TLS) handshake
	ReadTimeout    time.Duration // bounds the wait for the status line
	UserAgent      string
	Dial           DialFunc
	// Proxy is nil by default: the probe always dials the target itself and
	// ignores HTTP_PROXY and friends.
	Proxy func(*http.Request) (*url.URL, error)
}

// HTTPProbe issues one GET per Check and classifies the outcome. Every call
// builds its own transport, so nothing is pooled across checks.
type HTTPProbe struct {
	opts Options
}

func NewHTTPProbe(opts Options) *HTTPProbe {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Dial == nil {
		d := &net.Dialer{Timeout: opts.ConnectTimeout}
		opts.Dial = d.DialContext
	}
	return &HTTPProbe{opts: opts}
}

func (p *HTTPProbe) Options() Options { return p.opts }

func (p *HTTPProbe) Check(ctx context.Context, target string) (res CheckResult) {
	target = NormalizeURL(target)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = FailureResult(fmt.Errorf("panic: %v", r), target, time.Since(start))
		}
	}()

	tr := p.newTransport()
	defer tr.CloseIdleConnections()
	client := &http.Client{Transport: tr}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return FailureResult(&malformedError{err: err}, target, time.Since(start))
	}
	req.Header.Set("User-Agent", p.opts.UserAgent)
	req.Close = true

	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return FailureResult(err, target, elapsed)
	}
	// only the status line matters; closing the unread body drops the conn
	defer resp.Body.Close()

	return StatusResult(resp.StatusCode, elapsed)
}

func (p *HTTPProbe) newTransport() *http.Transport {
	dial := p.opts.Dial
	connectTimeout := p.opts.ConnectTimeout
	return &http.Transport{
		Proxy: p.opts.Proxy,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dctx, cancel := context.WithTimeout(ctx, connectTimeout)
			defer cancel()
			return dial(dctx, network, addr)
		},
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: p.opts.ReadTimeout,
		DisableKeepAlives:     true,
	}
}
