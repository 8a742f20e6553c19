package dfu

import (
	"encoding/binary"
	"fmt"
)

const (
	// functionalDescLen is the fixed size of a DFU functional descriptor.
	functionalDescLen = 9
	// descTypeDFUFunctional is its bDescriptorType tag.
	descTypeDFUFunctional = 0x21
)

// FunctionalDescriptor is the decoded DFU functional descriptor a device
// appends to its DFU interface descriptor. It is parsed once per session
// and never changes while the device stays connected.
type FunctionalDescriptor struct {
	Attributes    Attributes
	DetachTimeout uint16 // milliseconds the device waits for USB reset after DFU_DETACH
	TransferSize  uint16 // maximum bytes per control-transfer chunk
	Version       uint16 // bcdDFUVersion, 0x0101 for DFU 1.1
}

// ParseFunctional decodes a raw descriptor record. It reports ok=false
// unless the record is exactly 9 bytes with the DFU functional type tag;
// a false return means "not a DFU functional descriptor", never an error.
func ParseFunctional(b []byte) (FunctionalDescriptor, bool) {
	if len(b) != functionalDescLen || b[1] != descTypeDFUFunctional {
		return FunctionalDescriptor{}, false
	}
	return FunctionalDescriptor{
		Attributes:    Attributes(b[2]),
		DetachTimeout: binary.LittleEndian.Uint16(b[3:5]),
		TransferSize:  binary.LittleEndian.Uint16(b[5:7]),
		Version:       binary.LittleEndian.Uint16(b[7:9]),
	}, true
}

// Bytes re-encodes the descriptor into its 9-byte wire form.
func (d FunctionalDescriptor) Bytes() []byte {
	b := make([]byte, functionalDescLen)
	b[0] = functionalDescLen
	b[1] = descTypeDFUFunctional
	b[2] = byte(d.Attributes)
	binary.LittleEndian.PutUint16(b[3:5], d.DetachTimeout)
	binary.LittleEndian.PutUint16(b[5:7], d.TransferSize)
	binary.LittleEndian.PutUint16(b[7:9], d.Version)
	return b
}

// FindFunctional walks a raw configuration descriptor blob, a chain of
// bLength-prefixed records, and returns the first DFU functional descriptor
// found. Absence is reported with ok=false: the caller must treat it as
// "not a DFU-capable configuration", not as a failure.
func FindFunctional(blob []byte) (FunctionalDescriptor, bool) {
	for off := 0; off+2 <= len(blob); {
		l := int(blob[off])
		if l < 2 || off+l > len(blob) {
			break // malformed record, stop walking
		}
		if l == functionalDescLen && blob[off+1] == descTypeDFUFunctional {
			if d, ok := ParseFunctional(blob[off : off+l]); ok {
				return d, true
			}
		}
		off += l
	}
	return FunctionalDescriptor{}, false
}

func (d FunctionalDescriptor) String() string {
	return fmt.Sprintf(
		"bcdDFUVersion=0x%04X wDetachTimeOut=%dms wTransferSize=%d bmAttributes=0x%02X(dnload=%t upload=%t manifest-tol=%t will-detach=%t)",
		d.Version, d.DetachTimeout, d.TransferSize, uint8(d.Attributes),
		d.Attributes.CanDownload(), d.Attributes.CanUpload(),
		d.Attributes.ManifestTolerant(), d.Attributes.WillDetach(),
	)
}
