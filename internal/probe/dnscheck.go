package probe

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

const (
	DNSResolves        = "RESOLVES"
	DNSNXDomain        = "NXDOMAIN"
	DNSNoARecord       = "NO_A_RECORD"
	DNSServfailTimeout = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName     = "INVALID_NAME"
)

// DNSStatus explains why a host failed to resolve. It is diagnostics only and
// never changes a CheckResult.
type DNSStatus struct {
	Host          string
	IPs           []net.IP
	CNAME         string
	Nameservers   []string
	Class         string
	ResolverError string
}

type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
}

var dnsTimeout = 3 * time.Second

// DiagnoseDNS resolves the host part of target with r (the OS resolver when r
// is nil) and classifies the answer.
func DiagnoseDNS(ctx context.Context, r Resolver, target string) DNSStatus {
	s := DNSStatus{Host: ExtractHost(target)}
	if s.Host == "" || strings.Contains(s.Host, "://") || strings.ContainsAny(s.Host, " /") {
		s.Class = DNSInvalidName
		return s
	}
	if r == nil {
		r = net.DefaultResolver
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()

	ips, err := r.LookupIP(ctx, "ip", s.Host)
	switch {
	case err == nil && len(ips) > 0:
		s.IPs = ips
		s.Class = DNSResolves
	case err != nil:
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) {
			if de.IsNotFound {
				s.Class = DNSNXDomain
			} else if de.IsTemporary || de.Timeout() {
				s.Class = DNSServfailTimeout
			}
		}
	}

	if cname, err := r.LookupCNAME(ctx, s.Host); err == nil && !strings.EqualFold(cname, s.Host+".") {
		s.CNAME = strings.TrimSuffix(cname, ".")
	}

	if ns, err := r.LookupNS(ctx, s.Host); err == nil && len(ns) > 0 {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
		if s.Class == DNSNXDomain {
			s.Class = DNSNoARecord
		}
	}

	if s.Class == "" {
		switch {
		case len(s.Nameservers) > 0:
			s.Class = DNSNoARecord
		case s.ResolverError != "":
			s.Class = DNSServfailTimeout
		default:
			s.Class = DNSNXDomain
		}
	}
	return s
}

func ExtractHost(raw string) string {
	u, err := url.Parse(NormalizeURL(raw))
	if err != nil || u.Hostname() == "" {
		return strings.TrimSpace(raw)
	}
	return u.Hostname()
}
