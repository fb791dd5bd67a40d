package probe

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/miekg/dns"
)

// DNSClient is a Resolver that asks one DNS server directly instead of going
// through the system resolver, so diagnostics can name the server that
// answered.
type DNSClient struct {
	Server string // host:port
	client *dns.Client
}

func NewDNSClient(server string, timeout time.Duration) *DNSClient {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	if timeout <= 0 {
		timeout = dnsTimeout
	}
	return &DNSClient{
		Server: server,
		client: &dns.Client{Net: "udp", Timeout: timeout},
	}
}

func (c *DNSClient) LookupIP(ctx context.Context, network, host string) ([]net.IP, error) {
	var qtypes []uint16
	switch network {
	case "ip4":
		qtypes = []uint16{dns.TypeA}
	case "ip6":
		qtypes = []uint16{dns.TypeAAAA}
	default:
		qtypes = []uint16{dns.TypeA, dns.TypeAAAA}
	}

	var ips []net.IP
	var firstErr error
	for _, qt := range qtypes {
		rrs, err := c.query(ctx, host, qt)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, rr := range rrs {
			switch v := rr.(type) {
			case *dns.A:
				ips = append(ips, v.A)
			case *dns.AAAA:
				ips = append(ips, v.AAAA)
			}
		}
	}
	switch {
	case len(ips) > 0:
		return ips, nil
	case firstErr != nil:
		return nil, firstErr
	}
	return nil, c.notFound(host)
}

// LookupCNAME returns the canonical name, or host itself as an FQDN when
// there is no CNAME record, like net.Resolver.
func (c *DNSClient) LookupCNAME(ctx context.Context, host string) (string, error) {
	rrs, err := c.query(ctx, host, dns.TypeCNAME)
	if err != nil {
		return "", err
	}
	for _, rr := range rrs {
		if v, ok := rr.(*dns.CNAME); ok {
			return v.Target, nil
		}
	}
	return dns.Fqdn(host), nil
}

func (c *DNSClient) LookupNS(ctx context.Context, name string) ([]*net.NS, error) {
	rrs, err := c.query(ctx, name, dns.TypeNS)
	if err != nil {
		return nil, err
	}
	var out []*net.NS
	for _, rr := range rrs {
		if v, ok := rr.(*dns.NS); ok {
			out = append(out, &net.NS{Host: v.Ns})
		}
	}
	if len(out) == 0 {
		return nil, c.notFound(name)
	}
	return out, nil
}

func (c *DNSClient) query(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true

	resp, _, err := c.client.ExchangeContext(ctx, m, c.Server)
	if err != nil {
		var ne net.Error
		timeout := errors.As(err, &ne) && ne.Timeout()
		return nil, &net.DNSError{Err: err.Error(), Name: name, Server: c.Server, IsTimeout: timeout, IsTemporary: true}
	}
	switch resp.Rcode {
	case dns.RcodeSuccess:
		return resp.Answer, nil
	case dns.RcodeNameError:
		return nil, c.notFound(name)
	}
	return nil, &net.DNSError{Err: dns.RcodeToString[resp.Rcode], Name: name, Server: c.Server, IsTemporary: true}
}

func (c *DNSClient) notFound(name string) error {
	return &net.DNSError{Err: "no such host", Name: name, Server: c.Server, IsNotFound: true}
}
