package dfuusb

import (
	"testing"

	"github.com/google/gousb"
)

// dfuDesc builds a device descriptor exposing one DFU interface.
func dfuDesc(vid, pid gousb.ID, protocol gousb.Protocol) *gousb.DeviceDesc {
	return &gousb.DeviceDesc{
		Vendor:  vid,
		Product: pid,
		Configs: map[int]gousb.ConfigDesc{
			1: {
				Number: 1,
				Interfaces: []gousb.InterfaceDesc{
					{
						Number: 0,
						AltSettings: []gousb.InterfaceSetting{
							{
								Number:   0,
								Class:    classAppSpecific,
								SubClass: subclassDFU,
								Protocol: protocol,
							},
						},
					},
				},
			},
		},
	}
}

func hidDesc(vid, pid gousb.ID) *gousb.DeviceDesc {
	return &gousb.DeviceDesc{
		Vendor:  vid,
		Product: pid,
		Configs: map[int]gousb.ConfigDesc{
			1: {
				Number: 1,
				Interfaces: []gousb.InterfaceDesc{
					{
						Number: 0,
						AltSettings: []gousb.InterfaceSetting{
							{Number: 0, Class: gousb.ClassHID},
						},
					},
				},
			},
		},
	}
}

func idPtr(v gousb.ID) *gousb.ID { return &v }

func TestMatchesDFUClassFilter(t *testing.T) {
	if !matchesDFU(dfuDesc(0x0483, 0xDF11, protocolDFU), Selector{}) {
		t.Error("DFU-mode device rejected by the empty selector")
	}
	if !matchesDFU(dfuDesc(0x0483, 0xDF11, protocolRuntime), Selector{}) {
		t.Error("run-time DFU device rejected by the empty selector")
	}
	if matchesDFU(hidDesc(0x0483, 0x5740), Selector{}) {
		t.Error("HID device matched the DFU filter")
	}
}

func TestMatchesDFUVendorProduct(t *testing.T) {
	// Two devices share a vendor id; filtering by vendor alone matches
	// both (an ambiguous selection), the product id disambiguates.
	a := dfuDesc(0x0483, 0xDF11, protocolDFU)
	b := dfuDesc(0x0483, 0xA27E, protocolDFU)

	byVendor := Selector{Vendor: idPtr(0x0483)}
	if !matchesDFU(a, byVendor) || !matchesDFU(b, byVendor) {
		t.Fatal("vendor-only filter should match both devices")
	}

	exact := Selector{Vendor: idPtr(0x0483), Product: idPtr(0xA27E)}
	if matchesDFU(a, exact) {
		t.Error("product filter failed to exclude the other device")
	}
	if !matchesDFU(b, exact) {
		t.Error("product filter excluded the matching device")
	}

	other := Selector{Vendor: idPtr(0x1209)}
	if matchesDFU(a, other) || matchesDFU(b, other) {
		t.Error("foreign vendor filter matched")
	}
}

func TestFindInterface(t *testing.T) {
	if num, dfuMode := findInterface(dfuDesc(1, 2, protocolDFU)); num != 0 || !dfuMode {
		t.Errorf("DFU-mode device: interface %d dfuMode %t", num, dfuMode)
	}
	if _, dfuMode := findInterface(dfuDesc(1, 2, protocolRuntime)); dfuMode {
		t.Error("run-time device reported as DFU mode")
	}
	if num, dfuMode := findInterface(hidDesc(1, 2)); num != 0 || dfuMode {
		t.Errorf("non-DFU device: interface %d dfuMode %t", num, dfuMode)
	}
}

func TestParseVIDPID(t *testing.T) {
	vid, pid, err := ParseVIDPID("0483:df11")
	if err != nil {
		t.Fatalf("ParseVIDPID: %v", err)
	}
	if vid == nil || *vid != 0x0483 || pid == nil || *pid != 0xDF11 {
		t.Errorf("parsed %v:%v", vid, pid)
	}

	vid, pid, err = ParseVIDPID("0483")
	if err != nil || vid == nil || *vid != 0x0483 || pid != nil {
		t.Errorf("vid-only parse: %v %v %v", vid, pid, err)
	}

	vid, pid, err = ParseVIDPID(":df11")
	if err != nil || vid != nil || pid == nil || *pid != 0xDF11 {
		t.Errorf("pid-only parse: %v %v %v", vid, pid, err)
	}

	for _, bad := range []string{"1:2:3", "zzzz", "12345:1"} {
		if _, _, err := ParseVIDPID(bad); err == nil {
			t.Errorf("ParseVIDPID(%q) accepted", bad)
		}
	}
}

func TestSortedConfigNums(t *testing.T) {
	desc := &gousb.DeviceDesc{Configs: map[int]gousb.ConfigDesc{
		3: {Number: 3}, 1: {Number: 1}, 2: {Number: 2},
	}}
	nums := sortedConfigNums(desc)
	for i, want := range []int{1, 2, 3} {
		if nums[i] != want {
			t.Fatalf("sortedConfigNums = %v", nums)
		}
	}
}
