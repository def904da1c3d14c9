package subnet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
)

// ErrInvalidSubnet is returned when an input cannot be parsed as an IPv4
// CIDR block.
var ErrInvalidSubnet = errors.New("invalid subnet")

// Subnet is a validated IPv4 CIDR block. Immutable once parsed.
type Subnet struct {
	network uint32 // network address (base of the block)
	ones    int    // prefix length
}

// Parse validates a CIDR string such as "192.168.1.0/24". Host bits in the
// base address are masked off, matching the behavior of net.ParseCIDR.
func Parse(cidr string) (*Subnet, error) {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubnet, cidr)
	}
	if ip.To4() == nil {
		return nil, fmt.Errorf("%w: %q is not an IPv4 block", ErrInvalidSubnet, cidr)
	}

	ones, bits := ipnet.Mask.Size()
	if bits != 32 {
		return nil, fmt.Errorf("%w: %q is not an IPv4 block", ErrInvalidSubnet, cidr)
	}

	return &Subnet{
		network: binary.BigEndian.Uint32(ipnet.IP.To4()),
		ones:    ones,
	}, nil
}

// String returns the normalized CIDR form, e.g. "192.168.1.0/24".
func (s *Subnet) String() string {
	return fmt.Sprintf("%s/%d", formatAddr(s.network), s.ones)
}

// Prefix returns the prefix length.
func (s *Subnet) Prefix() int {
	return s.ones
}

// NumAddresses returns the total number of addresses in the block,
// including the network and broadcast addresses.
func (s *Subnet) NumAddresses() int {
	return 1 << (32 - s.ones)
}

// NumHosts returns the number of usable host addresses without
// materializing them, so callers can size-check before a scan.
func (s *Subnet) NumHosts() int {
	if s.ones >= 31 {
		return s.NumAddresses()
	}
	return s.NumAddresses() - 2
}

// Hosts returns the usable host addresses of the block in ascending order.
// For prefixes of /30 and larger the network and broadcast addresses are
// excluded; /31 point-to-point and /32 single-host blocks have no such
// addresses and yield the whole block.
func (s *Subnet) Hosts() []string {
	size := uint64(s.NumAddresses())

	hosts := make([]string, 0, s.NumHosts())
	for off := uint64(0); off < size; off++ {
		if s.ones <= 30 && (off == 0 || off == size-1) {
			continue
		}
		hosts = append(hosts, formatAddr(s.network+uint32(off)))
	}
	return hosts
}

// Contains reports whether the given dotted-quad address falls inside the
// block.
func (s *Subnet) Contains(address string) bool {
	ip := net.ParseIP(address)
	if ip == nil || ip.To4() == nil {
		return false
	}
	v := binary.BigEndian.Uint32(ip.To4())
	return uint64(v-s.network) < uint64(s.NumAddresses())
}

func formatAddr(v uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return net.IP(b[:]).String()
}
