package dfuusb

import (
	"fmt"

	"github.com/google/gousb"
	"github.com/sirupsen/logrus"
)

// Host owns the libusb context used for discovery and device sessions.
type Host struct {
	ctx *gousb.Context
	log *logrus.Logger
}

// NewHost initializes a libusb context. A nil logger selects the logrus
// standard logger.
func NewHost(log *logrus.Logger) *Host {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Host{ctx: gousb.NewContext(), log: log}
}

// Close releases the libusb context.
func (h *Host) Close() error {
	return h.ctx.Close()
}

// FindDevices opens every attached device matching the DFU filter, in host
// enumeration order. The caller owns the returned handles and must close
// each of them.
func (h *Host) FindDevices(sel Selector) ([]*gousb.Device, error) {
	devs, err := h.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return matchesDFU(desc, sel)
	})
	if err != nil {
		closeAll(devs)
		return nil, fmt.Errorf("enumerating USB devices: %w", err)
	}
	return devs, nil
}

func closeAll(devs []*gousb.Device) {
	for _, d := range devs {
		if d != nil {
			d.Close()
		}
	}
}
