package dfuusb

import (
	"fmt"

	"github.com/google/gousb"
)

// DeviceInfo is one row of the display-only device listing.
type DeviceInfo struct {
	Bus     int
	Address int
	Vendor  gousb.ID
	Product gousb.ID
	// DFUMode reports whether the DFU interface speaks the DFU-mode
	// protocol (bootloader) rather than the run-time protocol.
	DFUMode bool
	// Name is a human-readable label when one is available (serial
	// enumeration fallback only).
	Name string
}

func (i DeviceInfo) String() string {
	s := fmt.Sprintf("Bus %d Device %03d: ID %v:%v", i.Bus, i.Address, i.Vendor, i.Product)
	if i.DFUMode {
		s += " (DFU mode)"
	}
	if i.Name != "" {
		s += " " + i.Name
	}
	return s
}

// List enumerates matching DFU-capable devices for display. It is a pure
// read with no side effects on device state. When libusb enumeration
// fails, it falls back to serial-port enumeration, which can at least
// surface vendor/product ids and product strings.
func (h *Host) List(sel Selector) ([]DeviceInfo, error) {
	var infos []DeviceInfo
	devs, err := h.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return matchesDFU(desc, sel)
	})
	defer closeAll(devs)
	if err != nil {
		h.log.Debugf("libusb enumeration failed (%v), trying serial enumeration", err)
		return listSerialFallback(sel)
	}
	for _, dev := range devs {
		_, dfuMode := findInterface(dev.Desc)
		infos = append(infos, DeviceInfo{
			Bus:     dev.Desc.Bus,
			Address: dev.Desc.Address,
			Vendor:  dev.Desc.Vendor,
			Product: dev.Desc.Product,
			DFUMode: dfuMode,
		})
	}
	return infos, nil
}
