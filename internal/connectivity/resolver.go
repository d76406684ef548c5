package connectivity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// DefaultResolvConf is where system resolvers are read from on Unix.
const DefaultResolvConf = "/etc/resolv.conf"

var (
	// ErrNotFound means the name does not exist or has no address records.
	ErrNotFound = errors.New("host not found")
	// ErrTemporary means resolution failed in a way that may succeed later
	// (timeout, server failure, unreachable resolver).
	ErrTemporary = errors.New("temporary resolution failure")
)

// Resolver resolves a host name. A nil error means the name resolved to at
// least one address.
type Resolver interface {
	LookupHost(ctx context.Context, host string) error
}

// DNSResolver queries the configured name servers directly.
type DNSResolver struct {
	servers []string
	client  *dns.Client
}

// NewDNSResolver loads name servers from a resolv.conf style file.
func NewDNSResolver(confPath string, timeout time.Duration) (*DNSResolver, error) {
	conf, err := dns.ClientConfigFromFile(confPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load resolver config %s: %w", confPath, err)
	}
	if len(conf.Servers) == 0 {
		return nil, fmt.Errorf("no name servers in %s", confPath)
	}
	servers := make([]string, 0, len(conf.Servers))
	for _, s := range conf.Servers {
		servers = append(servers, net.JoinHostPort(s, conf.Port))
	}
	return NewDNSResolverWithServers(servers, timeout), nil
}

// NewDNSResolverWithServers uses the given host:port name servers in order.
func NewDNSResolverWithServers(servers []string, timeout time.Duration) *DNSResolver {
	return &DNSResolver{
		servers: servers,
		client:  &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// LookupHost asks each server for A then AAAA records until one answers.
// NXDOMAIN from any server is final.
func (r *DNSResolver) LookupHost(ctx context.Context, host string) error {
	if net.ParseIP(host) != nil {
		return nil
	}
	if len(r.servers) == 0 {
		return fmt.Errorf("%w: no name servers configured", ErrTemporary)
	}

	lastErr := fmt.Errorf("%w: %s", ErrNotFound, host)
	name := dns.Fqdn(host)

servers:
	for _, server := range r.servers {
		for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
			msg := new(dns.Msg)
			msg.SetQuestion(name, qtype)
			msg.RecursionDesired = true

			resp, _, err := r.client.ExchangeContext(ctx, msg, server)
			if err != nil {
				lastErr = fmt.Errorf("%w: %s via %s: %v", ErrTemporary, host, server, err)
				if ctx.Err() != nil {
					return lastErr
				}
				continue servers
			}

			switch resp.Rcode {
			case dns.RcodeSuccess:
				if len(resp.Answer) > 0 {
					return nil
				}
				lastErr = fmt.Errorf("%w: %s has no address records", ErrNotFound, host)
			case dns.RcodeNameError:
				return fmt.Errorf("%w: %s", ErrNotFound, host)
			default:
				lastErr = fmt.Errorf("%w: %s via %s: %s", ErrTemporary, host, server, dns.RcodeToString[resp.Rcode])
				continue servers
			}
		}
	}
	return lastErr
}

// NetResolver uses the Go resolver, for platforms without a resolv.conf.
type NetResolver struct {
	r *net.Resolver
}

// NewNetResolver wraps net.DefaultResolver.
func NewNetResolver() *NetResolver {
	return &NetResolver{r: net.DefaultResolver}
}

// LookupHost resolves host with the Go resolver and maps its errors.
func (n *NetResolver) LookupHost(ctx context.Context, host string) error {
	addrs, err := n.r.LookupHost(ctx, host)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			if dnsErr.IsNotFound {
				return fmt.Errorf("%w: %s", ErrNotFound, host)
			}
			if dnsErr.IsTemporary || dnsErr.IsTimeout {
				return fmt.Errorf("%w: %s: %v", ErrTemporary, host, err)
			}
		}
		return fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, host)
	}
	return nil
}

// DefaultResolver queries the resolv.conf name servers directly, bypassing
// local resolver caches, and falls back to the Go resolver when no resolver
// config can be read. It answers the public-host tier; the remote host is
// resolved with NetResolver.
func DefaultResolver(timeout time.Duration) Resolver {
	r, err := NewDNSResolver(DefaultResolvConf, timeout)
	if err != nil {
		log.Debugf("using Go resolver: %v", err)
		return NewNetResolver()
	}
	return r
}
