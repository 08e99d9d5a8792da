package system

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

const netInfoScript = "netinfo.sh"

// ErrNoAddress is returned when no non-loopback IPv4 address is found.
var ErrNoAddress = errors.New("no IPv4 address")

// interfaceAddrs is swapped in tests.
var interfaceAddrs = net.InterfaceAddrs

// LocalIPv4 asks netinfo.sh for the Wi-Fi then Ethernet address and falls
// back to scanning local interfaces when the script is missing or silent.
func LocalIPv4(ctx context.Context, r Runner) (string, error) {
	if r != nil {
		for _, query := range []string{"wifi-ip", "ethernet-ip"} {
			stdout, _, err := r.Run(ctx, netInfoScript, query)
			if err != nil {
				continue
			}
			if ip := parseIPv4(stdout); ip != "" {
				return ip, nil
			}
		}
	}
	addrs, err := interfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", ErrNoAddress
}

// WebURL builds the address shown in the QR code. Port 80 is omitted.
func WebURL(ip, listenAddr string) string {
	if ip == "" {
		return ""
	}
	_, port, err := net.SplitHostPort(listenAddr)
	if err != nil || port == "" || port == "80" {
		return "http://" + ip + "/"
	}
	return "http://" + net.JoinHostPort(ip, port) + "/"
}

func parseIPv4(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() == nil || ip.IsLoopback() {
		return ""
	}
	return ip.To4().String()
}
