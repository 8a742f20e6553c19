package dfuusb

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/gousb"
	"github.com/sirupsen/logrus"

	"github.com/YixingShen/dfu/dfu"
)

// requestTimeout is the host-side timeout applied to every control
// transfer against an open device.
const requestTimeout = 5 * time.Second

// Standard USB request and descriptor type used to fetch the raw
// configuration descriptor (gousb does not surface the class-specific
// extra bytes where the DFU functional descriptor lives).
const (
	reqGetDescriptor     = 0x06
	descriptorTypeConfig = 0x02
)

// dfuVersion11 is the bcdDFUVersion enforced by Selector.StrictVersion.
const dfuVersion11 = 0x0101

// Device is one opened DFU-capable device together with its parsed
// functional descriptor. The claimed interface is a scoped resource:
// Claim acquires it and Close releases everything on every exit path.
type Device struct {
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	log  *logrus.Logger

	// Desc is the gousb device descriptor (bus/address/ids).
	Desc *gousb.DeviceDesc
	// Functional is the DFU functional descriptor, parsed once per session.
	Functional dfu.FunctionalDescriptor
	// Interface is the selected DFU interface number.
	Interface int
	// DFUMode reports whether the interface speaks the DFU-mode protocol;
	// false means the device still runs its application firmware.
	DFUMode bool
	// TransferSize is the negotiated chunk size for this device.
	TransferSize int
}

// Open finds exactly one device matching the selector and prepares it for
// a DFU session: zero matches fail with ErrDeviceNotFound, more than one
// with ErrAmbiguousDevice (the directory never guesses). The functional
// descriptor is located by walking the device's raw configuration
// descriptors; its absence means the device is not DFU capable.
func (h *Host) Open(sel Selector) (*Device, error) {
	devs, err := h.FindDevices(sel)
	if err != nil {
		return nil, err
	}
	if len(devs) == 0 {
		return nil, dfu.ErrDeviceNotFound
	}
	if len(devs) > 1 {
		closeAll(devs)
		return nil, fmt.Errorf("%d candidates: %w", len(devs), dfu.ErrAmbiguousDevice)
	}

	dev := devs[0]
	dev.ControlTimeout = requestTimeout
	if err := dev.SetAutoDetach(true); err != nil {
		h.log.Debugf("auto-detach not available: %v", err)
	}

	fd, ok := readFunctional(dev)
	if !ok {
		dev.Close()
		return nil, dfu.ErrNotADfuDevice
	}
	if sel.StrictVersion && fd.Version != dfuVersion11 {
		dev.Close()
		return nil, fmt.Errorf("bcdDFUVersion 0x%04X: %w", fd.Version, dfu.ErrNotADfuDevice)
	}

	intf, dfuMode := findInterface(dev.Desc)
	if sel.Interface >= 0 {
		intf = sel.Interface
	}
	size := sel.TransferSize
	if size <= 0 {
		size = int(fd.TransferSize)
	}
	if size <= 0 {
		dev.Close()
		return nil, fmt.Errorf("device reports wTransferSize 0, use an explicit transfer size")
	}

	d := &Device{
		dev:          dev,
		log:          h.log,
		Desc:         dev.Desc,
		Functional:   fd,
		Interface:    intf,
		DFUMode:      dfuMode,
		TransferSize: size,
	}
	h.log.Debugf("opened %v: %v", d, fd)
	return d, nil
}

// readFunctional fetches every raw configuration descriptor with a
// standard GET_DESCRIPTOR control transfer and searches each blob for the
// DFU functional descriptor.
func readFunctional(dev *gousb.Device) (dfu.FunctionalDescriptor, bool) {
	in := uint8(gousb.ControlIn) | uint8(gousb.ControlDevice)
	for i := 0; i < len(dev.Desc.Configs); i++ {
		value := uint16(descriptorTypeConfig)<<8 | uint16(i)

		// Header first for wTotalLength, then the full blob.
		head := make([]byte, 4)
		if n, err := dev.Control(in, reqGetDescriptor, value, 0, head); err != nil || n != len(head) {
			continue
		}
		total := binary.LittleEndian.Uint16(head[2:4])
		if total < uint16(len(head)) {
			continue
		}
		blob := make([]byte, total)
		n, err := dev.Control(in, reqGetDescriptor, value, 0, blob)
		if err != nil {
			continue
		}
		if fd, ok := dfu.FindFunctional(blob[:n]); ok {
			return fd, true
		}
	}
	return dfu.FunctionalDescriptor{}, false
}

// Claim acquires the device configuration and the DFU interface with the
// given alternate setting. Claiming is what makes the session exclusive;
// no engine-internal locking exists.
func (d *Device) Claim(alt int) error {
	cfgNum, err := d.dev.ActiveConfigNum()
	if err != nil || cfgNum == 0 {
		cfgNum = firstConfigNum(d.Desc)
	}
	d.log.Infof("claiming USB DFU interface %d (alt %d)", d.Interface, alt)
	cfg, err := d.dev.Config(cfgNum)
	if err != nil {
		return fmt.Errorf("selecting configuration %d: %w", cfgNum, err)
	}
	intf, err := cfg.Interface(d.Interface, alt)
	if err != nil {
		cfg.Close()
		return fmt.Errorf("claiming interface %d alt %d: %w", d.Interface, alt, err)
	}
	d.cfg = cfg
	d.intf = intf
	return nil
}

// Close releases the claimed interface, the configuration and the device
// handle. It is idempotent and safe on every exit path.
func (d *Device) Close() {
	if d == nil {
		return
	}
	if d.intf != nil {
		d.log.Info("releasing USB DFU interface")
		d.intf.Close()
		d.intf = nil
	}
	if d.cfg != nil {
		d.cfg.Close()
		d.cfg = nil
	}
	if d.dev != nil {
		d.dev.Close()
		d.dev = nil
	}
}

// Control issues a raw control transfer; Device satisfies dfu.Transport.
func (d *Device) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	return d.dev.Control(rType, request, val, idx, data)
}

// Reset performs a host-initiated USB reset of the device.
func (d *Device) Reset() error {
	return d.dev.Reset()
}

// Session starts a transfer session over the claimed interface.
func (d *Device) Session(alt int, uploadLimit int64) *dfu.Session {
	return dfu.NewSession(d, dfu.SessionConfig{
		Interface:   d.Interface,
		AltSetting:  alt,
		ChunkSize:   d.TransferSize,
		UploadLimit: uploadLimit,
		Logger:      d.log,
	})
}

func (d *Device) String() string {
	return fmt.Sprintf("Bus %d Device %03d: ID %v:%v",
		d.Desc.Bus, d.Desc.Address, d.Desc.Vendor, d.Desc.Product)
}

func firstConfigNum(desc *gousb.DeviceDesc) int {
	nums := sortedConfigNums(desc)
	if len(nums) == 0 {
		return 1
	}
	return nums[0]
}
