package probe

import (
	"context"
	"net"
	"testing"
)

type fakeResolver struct {
	ips   []net.IP
	ipErr error
	cname string
	ns    []*net.NS
}

func (f *fakeResolver) LookupIP(ctx context.Context, network, host string) ([]net.IP, error) {
	return f.ips, f.ipErr
}

func (f *fakeResolver) LookupCNAME(ctx context.Context, host string) (string, error) {
	if f.cname == "" {
		return "", &net.DNSError{Name: host, IsNotFound: true}
	}
	return f.cname, nil
}

func (f *fakeResolver) LookupNS(ctx context.Context, name string) ([]*net.NS, error) {
	if len(f.ns) == 0 {
		return nil, &net.DNSError{Name: name, IsNotFound: true}
	}
	return f.ns, nil
}

func TestDiagnoseDNS(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		target string
		r      *fakeResolver
		want   string
	}{
		{"resolves", "https://example.com/x", &fakeResolver{ips: []net.IP{net.ParseIP("93.184.216.34")}}, DNSResolves},
		{"nxdomain", "nonexistent.invalid", &fakeResolver{ipErr: &net.DNSError{IsNotFound: true}}, DNSNXDomain},
		{"zone without A", "apex.example", &fakeResolver{
			ipErr: &net.DNSError{IsNotFound: true},
			ns:    []*net.NS{{Host: "ns1.example."}},
		}, DNSNoARecord},
		{"servfail", "flaky.example", &fakeResolver{ipErr: &net.DNSError{IsTemporary: true}}, DNSServfailTimeout},
		{"empty", "   ", &fakeResolver{}, DNSInvalidName},
	}
	for _, c := range cases {
		got := DiagnoseDNS(ctx, c.r, c.target)
		if got.Class != c.want {
			t.Fatalf("%s: class=%q want %q (%+v)", c.name, got.Class, c.want, got)
		}
	}
}

func TestDiagnoseDNS_CNAMEAndNameservers(t *testing.T) {
	r := &fakeResolver{
		ips:   []net.IP{net.ParseIP("10.0.0.1")},
		cname: "edge.cdn.example.",
		ns:    []*net.NS{{Host: "ns1.example."}, {Host: "ns2.example."}},
	}
	got := DiagnoseDNS(context.Background(), r, "www.example")
	if got.Host != "www.example" || got.CNAME != "edge.cdn.example" {
		t.Fatalf("unexpected host/cname: %+v", got)
	}
	if len(got.Nameservers) != 2 || got.Nameservers[0] != "ns1.example" {
		t.Fatalf("unexpected nameservers: %v", got.Nameservers)
	}
}

func TestExtractHost(t *testing.T) {
	cases := []struct{ in, want string }{
		{"example.com", "example.com"},
		{"https://example.com:8443/p", "example.com"},
		{"http://[::1]:80/", "::1"},
	}
	for _, c := range cases {
		if got := ExtractHost(c.in); got != c.want {
			t.Fatalf("ExtractHost(%q)=%q want %q", c.in, got, c.want)
		}
	}
}
