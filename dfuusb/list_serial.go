package dfuusb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
	"go.bug.st/serial/enumerator"
)

// listSerialFallback enumerates USB serial ports and keeps those whose
// VID/PID match the selector. It cannot see interface descriptors, so the
// DFU-class filter does not apply; it exists to give the list command
// something useful to print on hosts without a working libusb.
func listSerialFallback(sel Selector) ([]DeviceInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating serial ports: %w", err)
	}

	var infos []DeviceInfo
	for _, p := range ports {
		if p == nil || !p.IsUSB {
			continue
		}
		vid, err := strconv.ParseUint(p.VID, 16, 16)
		if err != nil {
			continue
		}
		pid, err := strconv.ParseUint(p.PID, 16, 16)
		if err != nil {
			continue
		}
		if sel.Vendor != nil && uint64(*sel.Vendor) != vid {
			continue
		}
		if sel.Product != nil && uint64(*sel.Product) != pid {
			continue
		}
		name := p.Product
		if p.SerialNumber != "" {
			name = strings.TrimSpace(name + " serial " + p.SerialNumber)
		}
		infos = append(infos, DeviceInfo{
			Vendor:  gousb.ID(vid),
			Product: gousb.ID(pid),
			Name:    name,
		})
	}
	return infos, nil
}
