package main

import (
	"fmt"
	"net"
	"strings"
)

// browseURL returns the address clients on the LAN should open.
// A wildcard listen address is replaced by the best local IPv4 address.
func browseURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + "/browse/"
	}

	ip := net.ParseIP(host)
	if ip == nil || ip.IsUnspecified() {
		host = "localhost"
		if lan, err := localIPv4(); err == nil {
			host = lan
		}
	}

	return fmt.Sprintf("http://%s/browse/", net.JoinHostPort(host, port))
}

// localIPv4 picks the most likely LAN address: private ranges first,
// virtual and VPN interfaces last.
func localIPv4() (string, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	best, bestScore := net.IP(nil), 0
	for _, iface := range ifs {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil || ip4.IsLoopback() || ip4.IsLinkLocalUnicast() {
				continue
			}

			score := scoreInterface(strings.ToLower(iface.Name), iface.Flags)
			if ip4.IsPrivate() {
				score += 100
			}
			if best == nil || score > bestScore {
				best, bestScore = ip4, score
			}
		}
	}

	if best == nil {
		return "", fmt.Errorf("no LAN IPv4 address found")
	}
	return best.String(), nil
}

func scoreInterface(name string, flags net.Flags) int {
	score := 0
	if flags&net.FlagPointToPoint != 0 {
		score -= 200
	}
	for _, k := range []string{"docker", "veth", "br-", "virbr", "vmnet", "vbox", "tailscale", "wg", "tun", "tap", "zt"} {
		if strings.Contains(name, k) {
			score -= 1000
			break
		}
	}
	for _, k := range []string{"eth", "en", "wlan", "wl"} {
		if strings.HasPrefix(name, k) {
			score += 10
			break
		}
	}
	return score
}
