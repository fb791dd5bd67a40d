package probe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// startDNS serves a tiny fixed zone on a loopback UDP port.
func startDNS(t *testing.T) string {
	t.Helper()
	zone := map[string]map[uint16][]string{
		"www.example.": {
			dns.TypeA:     {"www.example. 60 IN A 10.0.0.1"},
			dns.TypeCNAME: {"www.example. 60 IN CNAME edge.cdn.example."},
			dns.TypeNS:    {"www.example. 60 IN NS ns1.example."},
		},
		"apex.example.": {
			dns.TypeNS: {"apex.example. 60 IN NS ns1.example."},
		},
	}

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(req)
			q := req.Question[0]
			records, known := zone[q.Name]
			switch {
			case q.Name == "broken.example.":
				m.Rcode = dns.RcodeServerFailure
			case !known:
				m.Rcode = dns.RcodeNameError
			default:
				for _, s := range records[q.Qtype] {
					rr, err := dns.NewRR(s)
					if err == nil {
						m.Answer = append(m.Answer, rr)
					}
				}
			}
			_ = w.WriteMsg(m)
		}),
	}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })
	return pc.LocalAddr().String()
}

func TestDNSClient_DiagnoseDNS(t *testing.T) {
	c := NewDNSClient(startDNS(t), time.Second)
	ctx := context.Background()

	cases := []struct {
		target string
		want   string
	}{
		{"https://www.example/", DNSResolves},
		{"nonexistent.invalid", DNSNXDomain},
		{"apex.example", DNSNoARecord},
		{"broken.example", DNSServfailTimeout},
	}
	for _, tc := range cases {
		got := DiagnoseDNS(ctx, c, tc.target)
		if got.Class != tc.want {
			t.Fatalf("%s: class=%q want %q (%+v)", tc.target, got.Class, tc.want, got)
		}
	}
}

func TestDNSClient_Records(t *testing.T) {
	c := NewDNSClient(startDNS(t), time.Second)
	ctx := context.Background()

	ips, err := c.LookupIP(ctx, "ip4", "www.example")
	if err != nil || len(ips) != 1 || !ips[0].Equal(net.ParseIP("10.0.0.1")) {
		t.Fatalf("LookupIP: %v %v", ips, err)
	}
	if cname, err := c.LookupCNAME(ctx, "www.example"); err != nil || cname != "edge.cdn.example." {
		t.Fatalf("LookupCNAME: %q %v", cname, err)
	}
	if cname, err := c.LookupCNAME(ctx, "apex.example"); err != nil || cname != "apex.example." {
		t.Fatalf("LookupCNAME without record: %q %v", cname, err)
	}

	_, err = c.LookupIP(ctx, "ip", "nonexistent.invalid")
	de, ok := err.(*net.DNSError)
	if !ok || !de.IsNotFound || de.Server != c.Server {
		t.Fatalf("want not-found DNSError from %s, got %v", c.Server, err)
	}
}

func TestNewDNSClient_DefaultPort(t *testing.T) {
	if got := NewDNSClient("9.9.9.9", 0).Server; got != "9.9.9.9:53" {
		t.Fatalf("Server=%q", got)
	}
}
