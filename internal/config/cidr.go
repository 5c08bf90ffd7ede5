package config

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"net"
)

// ErrCIDROverlap is returned when two networks that must be peered share addresses.
var ErrCIDROverlap = errors.New("CIDR blocks overlap")

// ParseIPv4CIDR parses prefix and rejects anything that is not IPv4.
func ParseIPv4CIDR(prefix string) (*net.IPNet, error) {
	_, network, err := net.ParseCIDR(prefix)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR prefix: %w", err)
	}
	if network.IP.To4() == nil {
		return nil, fmt.Errorf("only IPv4 addresses are supported, got IPv6: %s", prefix)
	}
	return network, nil
}

// CIDRSubnet calculates a subnet address given a network address, a netmask
// size increase, and a subnet number, like Terraform's cidrsubnet.
func CIDRSubnet(prefix string, newbits int, netnum int) (string, error) {
	network, err := ParseIPv4CIDR(prefix)
	if err != nil {
		return "", err
	}

	maskSize, totalBits := network.Mask.Size()
	newMaskSize := maskSize + newbits

	if newMaskSize > totalBits {
		return "", fmt.Errorf("prefix extension of %d bits is too large for %s", newbits, prefix)
	}

	maxSubnets := 1 << newbits
	if netnum < 0 || netnum >= maxSubnets {
		return "", fmt.Errorf("subnet number %d exceeds max subnets %d", netnum, maxSubnets)
	}

	ipInt := uintFromIP(network.IP.To4())
	subnetSize := uint64(1) << (totalBits - newMaskSize)
	// #nosec G115
	ipInt += uint64(netnum) * subnetSize

	return fmt.Sprintf("%s/%d", ipFromUint(ipInt).String(), newMaskSize), nil
}

// SplitCIDR divides prefix into count equal blocks, using the smallest
// prefix extension that fits count blocks.
func SplitCIDR(prefix string, count int) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("block count must be positive, got %d", count)
	}
	newbits := bits.Len(uint(count - 1))

	blocks := make([]string, count)
	for i := range blocks {
		block, err := CIDRSubnet(prefix, newbits, i)
		if err != nil {
			return nil, fmt.Errorf("failed to split %s into %d blocks: %w", prefix, count, err)
		}
		blocks[i] = block
	}
	return blocks, nil
}

// Overlaps reports whether the two IPv4 CIDR blocks share any address.
func Overlaps(a, b string) (bool, error) {
	na, err := ParseIPv4CIDR(a)
	if err != nil {
		return false, err
	}
	nb, err := ParseIPv4CIDR(b)
	if err != nil {
		return false, err
	}
	return na.Contains(nb.IP) || nb.Contains(na.IP), nil
}

// CheckNoOverlap returns an error wrapping ErrCIDROverlap when a and b overlap.
func CheckNoOverlap(a, b string) error {
	overlap, err := Overlaps(a, b)
	if err != nil {
		return err
	}
	if overlap {
		return fmt.Errorf("%w: %s and %s", ErrCIDROverlap, a, b)
	}
	return nil
}

func uintFromIP(ip net.IP) uint64 {
	if len(ip) == 16 {
		if ip4 := ip.To4(); ip4 != nil {
			return uint64(binary.BigEndian.Uint32(ip4))
		}
		return 0
	}
	return uint64(binary.BigEndian.Uint32(ip))
}

func ipFromUint(val uint64) net.IP {
	ip := make(net.IP, 4)
	// #nosec G115
	binary.BigEndian.PutUint32(ip, uint32(val))
	return ip
}
