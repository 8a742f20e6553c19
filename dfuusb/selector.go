package dfuusb

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// DFU interface class/subclass/protocol codes.
const (
	classAppSpecific gousb.Class    = 0xFE
	subclassDFU      gousb.Class    = 0x01
	protocolRuntime  gousb.Protocol = 0x01
	protocolDFU      gousb.Protocol = 0x02
)

// Selector narrows device discovery and configures how the matched device
// is opened. The zero value matches any DFU-capable device with interface
// auto-detection; set Interface to -1 explicitly when building one by hand.
type Selector struct {
	// Vendor and Product restrict matching when non-nil.
	Vendor  *gousb.ID
	Product *gousb.ID
	// Interface overrides DFU interface auto-detection when >= 0.
	Interface int
	// AltSetting is the alternate setting selected at claim time.
	AltSetting int
	// TransferSize overrides the descriptor's wTransferSize when > 0.
	TransferSize int
	// StrictVersion rejects devices whose bcdDFUVersion is not 0x0101.
	StrictVersion bool
}

// ParseVIDPID parses a "vid" or "vid:pid" hex specification, as accepted
// by the -d/--device flag. Either half may be empty to leave it unfiltered.
func ParseVIDPID(spec string) (vendor, product *gousb.ID, err error) {
	parts := strings.Split(spec, ":")
	if len(parts) > 2 {
		return nil, nil, fmt.Errorf("invalid device specification %q, want vid or vid:pid", spec)
	}
	parse := func(s string) (*gousb.ID, error) {
		if s == "" {
			return nil, nil
		}
		v, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid hex id %q: %w", s, err)
		}
		id := gousb.ID(v)
		return &id, nil
	}
	if vendor, err = parse(parts[0]); err != nil {
		return nil, nil, err
	}
	if len(parts) == 2 {
		if product, err = parse(parts[1]); err != nil {
			return nil, nil, err
		}
	}
	return vendor, product, nil
}

// matchesDFU is the discovery predicate: the device passes the optional
// vendor/product filter and exposes at least one interface alternate
// setting with the DFU class/subclass. It is pure, it never touches
// device state.
func matchesDFU(desc *gousb.DeviceDesc, sel Selector) bool {
	if sel.Vendor != nil && *sel.Vendor != desc.Vendor {
		return false
	}
	if sel.Product != nil && *sel.Product != desc.Product {
		return false
	}
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == classAppSpecific && alt.SubClass == subclassDFU {
					return true
				}
			}
		}
	}
	return false
}

// findInterface picks the first DFU interface from the descriptors and
// reports whether that interface speaks the DFU-mode protocol (0x02) as
// opposed to the run-time protocol.
func findInterface(desc *gousb.DeviceDesc) (number int, dfuMode bool) {
	for _, num := range sortedConfigNums(desc) {
		for _, intf := range desc.Configs[num].Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == classAppSpecific && alt.SubClass == subclassDFU {
					return intf.Number, alt.Protocol == protocolDFU
				}
			}
		}
	}
	return 0, false
}

// sortedConfigNums returns the configuration numbers in ascending order;
// the Configs map has no stable iteration order.
func sortedConfigNums(desc *gousb.DeviceDesc) []int {
	nums := make([]int, 0, len(desc.Configs))
	for num := range desc.Configs {
		nums = append(nums, num)
	}
	sort.Ints(nums)
	return nums
}
