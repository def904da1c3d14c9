package subnet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"testing"

	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		cidr    string
		want    string
		wantErr bool
	}{
		{"/24 block", "192.168.1.0/24", "192.168.1.0/24", false},
		{"/30 block", "192.168.1.0/30", "192.168.1.0/30", false},
		{"/31 point-to-point", "10.0.0.0/31", "10.0.0.0/31", false},
		{"/32 single host", "10.0.0.1/32", "10.0.0.1/32", false},
		{"/16 block", "172.16.0.0/16", "172.16.0.0/16", false},
		{"host bits masked off", "192.168.1.5/24", "192.168.1.0/24", false},
		{"octet out of range", "300.1.1.0/24", "", true},
		{"prefix out of range", "10.0.0.0/33", "", true},
		{"missing prefix", "10.0.0.0", "", true},
		{"not an address", "not-a-subnet", "", true},
		{"empty", "", "", true},
		{"IPv6 block", "2001:db8::/64", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := Parse(tt.cidr)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.cidr, sub)
				}
				if !errors.Is(err, ErrInvalidSubnet) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalidSubnet", tt.cidr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.cidr, err)
			}
			if got := sub.String(); got != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.cidr, got, tt.want)
			}
		})
	}
}

func TestHosts(t *testing.T) {
	tests := []struct {
		name string
		cidr string
		want []string
	}{
		{
			"/30 excludes network and broadcast",
			"192.168.1.0/30",
			[]string{"192.168.1.1", "192.168.1.2"},
		},
		{
			"/31 yields both addresses",
			"10.0.0.0/31",
			[]string{"10.0.0.0", "10.0.0.1"},
		},
		{
			"/32 yields the single host",
			"10.0.0.1/32",
			[]string{"10.0.0.1"},
		},
		{
			"/29 excludes first and last",
			"10.0.0.0/29",
			[]string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5", "10.0.0.6"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := Parse(tt.cidr)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.cidr, err)
			}

			got := sub.Hosts()
			if len(got) != len(tt.want) {
				t.Fatalf("Hosts() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Hosts()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHostsSlash24(t *testing.T) {
	sub, err := Parse("192.168.1.0/24")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	hosts := sub.Hosts()
	if len(hosts) != 254 {
		t.Fatalf("expected 254 hosts, got %d", len(hosts))
	}
	if hosts[0] != "192.168.1.1" {
		t.Errorf("first host = %q, want 192.168.1.1", hosts[0])
	}
	if hosts[253] != "192.168.1.254" {
		t.Errorf("last host = %q, want 192.168.1.254", hosts[253])
	}
}

func TestNumHosts(t *testing.T) {
	tests := []struct {
		cidr          string
		wantHosts     int
		wantAddresses int
	}{
		{"10.0.0.0/24", 254, 256},
		{"10.0.0.0/30", 2, 4},
		{"10.0.0.0/31", 2, 2},
		{"10.0.0.1/32", 1, 1},
		{"10.0.0.0/16", 65534, 65536},
	}

	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			sub, err := Parse(tt.cidr)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := sub.NumHosts(); got != tt.wantHosts {
				t.Errorf("NumHosts() = %d, want %d", got, tt.wantHosts)
			}
			if got := sub.NumAddresses(); got != tt.wantAddresses {
				t.Errorf("NumAddresses() = %d, want %d", got, tt.wantAddresses)
			}
		})
	}
}

func TestContains(t *testing.T) {
	sub, err := Parse("192.168.1.0/24")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	for _, addr := range []string{"192.168.1.0", "192.168.1.1", "192.168.1.255"} {
		if !sub.Contains(addr) {
			t.Errorf("Contains(%q) = false, want true", addr)
		}
	}
	for _, addr := range []string{"192.168.2.1", "192.168.0.255", "10.0.0.1", "garbage"} {
		if sub.Contains(addr) {
			t.Errorf("Contains(%q) = true, want false", addr)
		}
	}
}

// TestHostsProperties checks the enumeration laws over random blocks: the
// host count matches the prefix formula, addresses are unique, ascending,
// inside the block, and never the network or broadcast address.
func TestHostsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.IntRange(22, 32).Draw(t, "prefix")
		base := rapid.Uint32().Draw(t, "base")

		var b [4]byte
		binary.BigEndian.PutUint32(b[:], base)
		cidr := fmt.Sprintf("%s/%d", net.IP(b[:]).String(), prefix)

		sub, err := Parse(cidr)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", cidr, err)
		}

		hosts := sub.Hosts()

		wantLen := 1 << (32 - prefix)
		if prefix <= 30 {
			wantLen -= 2
		}
		if len(hosts) != wantLen {
			t.Fatalf("len(Hosts()) = %d, want %d for prefix /%d", len(hosts), wantLen, prefix)
		}
		if len(hosts) != sub.NumHosts() {
			t.Fatalf("len(Hosts()) = %d, NumHosts() = %d", len(hosts), sub.NumHosts())
		}

		seen := make(map[string]struct{}, len(hosts))
		var prev uint32
		for i, addr := range hosts {
			ip := net.ParseIP(addr)
			if ip == nil || ip.To4() == nil {
				t.Fatalf("host %q is not an IPv4 address", addr)
			}
			v := binary.BigEndian.Uint32(ip.To4())

			if _, dup := seen[addr]; dup {
				t.Fatalf("duplicate host %q", addr)
			}
			seen[addr] = struct{}{}

			if i > 0 && v <= prev {
				t.Fatalf("hosts not ascending: %q after %q", addr, hosts[i-1])
			}
			prev = v

			if !sub.Contains(addr) {
				t.Fatalf("host %q outside block %s", addr, sub)
			}
		}

		if prefix <= 30 {
			networkAddr := hostAt(sub, 0)
			broadcastAddr := hostAt(sub, uint32(sub.NumAddresses()-1))
			if _, ok := seen[networkAddr]; ok {
				t.Fatalf("network address %q enumerated", networkAddr)
			}
			if _, ok := seen[broadcastAddr]; ok {
				t.Fatalf("broadcast address %q enumerated", broadcastAddr)
			}
		}
	})
}

// hostAt formats the address at the given offset within the block.
func hostAt(s *Subnet, offset uint32) string {
	ip, _, err := net.ParseCIDR(s.String())
	if err != nil {
		panic(err)
	}
	v := binary.BigEndian.Uint32(ip.To4()) + offset
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return net.IP(b[:]).String()
}
