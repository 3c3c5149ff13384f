package netutil

import "net"

// OutboundIP returns the host's best-guess LAN address by probing the
// local routing table with a connectionless dial. No packets are sent.
// Falls back to loopback when no route is available.
func OutboundIP() string {
	conn, err := net.Dial("udp", "10.255.255.255:1")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close() //nolint:errcheck

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "127.0.0.1"
	}
	return addr.IP.String()
}
