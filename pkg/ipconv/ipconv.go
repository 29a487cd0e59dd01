// Package ipconv converts between LMS address/identity representations and
// the textual forms used towards Zabbix.
package ipconv

import (
	"fmt"
	"net/netip"
)

// ToDottedQuad renders an LMS integer IP address as dotted-quad text.
// LMS stores the address big-endian; zero means no address and maps to
// the empty string.
func ToDottedQuad(raw uint32) string {
	if raw == 0 {
		return ""
	}

	addr := netip.AddrFrom4([4]byte{
		byte(raw >> 24),
		byte(raw >> 16),
		byte(raw >> 8),
		byte(raw),
	})

	return addr.String()
}

// HostIdentifier derives the stable Zabbix technical host name for an LMS
// device id. The identifier never changes for the lifetime of the device,
// which keeps renames cheap on the Zabbix side.
func HostIdentifier(deviceID int64) string {
	return fmt.Sprintf("device-%d", deviceID)
}
