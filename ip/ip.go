package ip

import (
	"math/big"
	"net"
	"strings"

	"github.com/pkg/errors"
)

// maxExpandedIPs bounds range and CIDR expansion so a typo like 10.0.0.0/8
// cannot allocate millions of entries.
const maxExpandedIPs = 1 << 16

// ParseIPsFromString expands a host address expression into individual IP
// address strings. Supported forms, also comma-separated:
//   - single IP: "192.168.1.1"
//   - range: "192.168.1.10-192.168.1.20"
//   - CIDR: "192.168.1.0/28"
//
// An empty input yields an empty list.
func ParseIPsFromString(input string) ([]string, error) {
	ips := []string{}
	seen := make(map[string]struct{})

	input = strings.TrimSpace(input)
	if input == "" {
		return ips, nil
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var expanded []string
		var err error
		switch {
		case strings.Contains(part, "/"):
			expanded, err = ExpandCIDR(part)
		case strings.Contains(part, "-"):
			bounds := strings.SplitN(part, "-", 2)
			expanded, err = ExpandRange(strings.TrimSpace(bounds[0]), strings.TrimSpace(bounds[1]))
		default:
			parsed := net.ParseIP(part)
			if parsed == nil {
				return nil, errors.Errorf("invalid IP address %q", part)
			}
			expanded = []string{parsed.String()}
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to expand %q", part)
		}

		for _, addr := range expanded {
			if _, dup := seen[addr]; !dup {
				ips = append(ips, addr)
				seen[addr] = struct{}{}
			}
		}
	}
	return ips, nil
}

// ExpandRange lists every address from start to end inclusive. Both bounds
// must belong to the same address family.
func ExpandRange(startStr, endStr string) ([]string, error) {
	start := net.ParseIP(startStr)
	end := net.ParseIP(endStr)
	if start == nil {
		return nil, errors.Errorf("invalid start IP address %q", startStr)
	}
	if end == nil {
		return nil, errors.Errorf("invalid end IP address %q", endStr)
	}

	startIsV4 := start.To4() != nil
	if startIsV4 != (end.To4() != nil) {
		return nil, errors.New("range bounds must be of the same address family")
	}

	startNum := ipToBigInt(start)
	endNum := ipToBigInt(end)
	if startNum.Cmp(endNum) > 0 {
		return nil, errors.Errorf("range start %s is above range end %s", startStr, endStr)
	}

	var ips []string
	one := big.NewInt(1)
	for current := new(big.Int).Set(startNum); current.Cmp(endNum) <= 0; current.Add(current, one) {
		if len(ips) >= maxExpandedIPs {
			return nil, errors.Errorf("range %s-%s expands to more than %d addresses", startStr, endStr, maxExpandedIPs)
		}
		ips = append(ips, bigIntToIP(current, startIsV4).String())
	}
	return ips, nil
}

// ExpandCIDR lists every address in the block, network and broadcast
// addresses excluded for IPv4 blocks that have them.
func ExpandCIDR(cidr string) ([]string, error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid CIDR block %q", cidr)
	}

	isV4 := ip.To4() != nil
	var all []string
	one := big.NewInt(1)
	for current := ipToBigInt(ipNet.IP); ipNet.Contains(bigIntToIP(current, isV4)); current.Add(current, one) {
		if len(all) >= maxExpandedIPs {
			return nil, errors.Errorf("CIDR %s expands to more than %d addresses", cidr, maxExpandedIPs)
		}
		all = append(all, bigIntToIP(current, isV4).String())
	}

	if isV4 && len(all) > 2 {
		return all[1 : len(all)-1], nil
	}
	return all, nil
}

// GetHostLocalIP returns a non-loopback IPv4 address of this machine,
// preferring global unicast over private or link-local ones.
func GetHostLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", errors.Wrap(err, "failed to get interface addresses")
	}

	fallback := ""
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		ipv4 := ipNet.IP.To4()
		if ipv4 == nil {
			continue
		}
		if ipv4.IsGlobalUnicast() && !ipv4.IsPrivate() {
			return ipv4.String(), nil
		}
		if fallback == "" {
			fallback = ipv4.String()
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", errors.New("no suitable local IPv4 address found")
}

func ipToBigInt(ip net.IP) *big.Int {
	if ipv4 := ip.To4(); ipv4 != nil {
		return new(big.Int).SetBytes(ipv4)
	}
	return new(big.Int).SetBytes(ip)
}

func bigIntToIP(n *big.Int, isV4 bool) net.IP {
	size := net.IPv6len
	if isV4 {
		size = net.IPv4len
	}
	raw := n.Bytes()
	if len(raw) > size {
		raw = raw[len(raw)-size:]
	}
	ip := make(net.IP, size)
	copy(ip[size-len(raw):], raw)
	return ip
}
