package dfu

// DFU class request codes (DFU 1.1, table 3.2).
const (
	reqDetach    uint8 = 0
	reqDnload    uint8 = 1
	reqUpload    uint8 = 2
	reqGetStatus uint8 = 3
	reqClrStatus uint8 = 4
	reqGetState  uint8 = 5
	reqAbort     uint8 = 6
)

// bmRequestType values for DFU requests: class type, interface recipient.
const (
	requestTypeOut uint8 = 0x21 // host to device
	requestTypeIn  uint8 = 0xA1 // device to host
)

// State is the device-side DFU state machine state, as reported in the
// fifth byte of a DFU_GETSTATUS response.
type State uint8

const (
	StateAppIdle           State = 0x00
	StateAppDetach         State = 0x01
	StateDfuIdle           State = 0x02
	StateDownloadSync      State = 0x03
	StateDownloadBusy      State = 0x04
	StateDownloadIdle      State = 0x05
	StateManifestSync      State = 0x06
	StateManifest          State = 0x07
	StateManifestWaitReset State = 0x08
	StateUploadIdle        State = 0x09
	StateError             State = 0x0A
)

func (s State) String() string {
	switch s {
	case StateAppIdle:
		return "appIDLE"
	case StateAppDetach:
		return "appDETACH"
	case StateDfuIdle:
		return "dfuIDLE"
	case StateDownloadSync:
		return "dfuDNLOAD-SYNC"
	case StateDownloadBusy:
		return "dfuDNBUSY"
	case StateDownloadIdle:
		return "dfuDNLOAD-IDLE"
	case StateManifestSync:
		return "dfuMANIFEST-SYNC"
	case StateManifest:
		return "dfuMANIFEST"
	case StateManifestWaitReset:
		return "dfuMANIFEST-WAIT-RESET"
	case StateUploadIdle:
		return "dfuUPLOAD-IDLE"
	case StateError:
		return "dfuERROR"
	}
	return "UNKNOWN"
}

// StatusCode is the device-side error code reported in the first byte of a
// DFU_GETSTATUS response.
type StatusCode uint8

const (
	StatusOK             StatusCode = 0x00
	StatusErrTarget      StatusCode = 0x01
	StatusErrFile        StatusCode = 0x02
	StatusErrWrite       StatusCode = 0x03
	StatusErrErase       StatusCode = 0x04
	StatusErrCheckErased StatusCode = 0x05
	StatusErrProg        StatusCode = 0x06
	StatusErrVerify      StatusCode = 0x07
	StatusErrAddress     StatusCode = 0x08
	StatusErrNotDone     StatusCode = 0x09
	StatusErrFirmware    StatusCode = 0x0A
	StatusErrVendor      StatusCode = 0x0B
	StatusErrUSBReset    StatusCode = 0x0C
	StatusErrPOR         StatusCode = 0x0D
	StatusErrUnknown     StatusCode = 0x0E
	StatusErrStalledPkt  StatusCode = 0x0F
)

var statusNames = [...]string{
	StatusOK:             "OK",
	StatusErrTarget:      "errTARGET",
	StatusErrFile:        "errFILE",
	StatusErrWrite:       "errWRITE",
	StatusErrErase:       "errERASE",
	StatusErrCheckErased: "errCHECK_ERASED",
	StatusErrProg:        "errPROG",
	StatusErrVerify:      "errVERIFY",
	StatusErrAddress:     "errADDRESS",
	StatusErrNotDone:     "errNOTDONE",
	StatusErrFirmware:    "errFIRMWARE",
	StatusErrVendor:      "errVENDOR",
	StatusErrUSBReset:    "errUSBR",
	StatusErrPOR:         "errPOR",
	StatusErrUnknown:     "errUNKNOWN",
	StatusErrStalledPkt:  "errSTALLEDPKT",
}

var statusDescriptions = [...]string{
	StatusErrTarget:      "file is not targeted for use by this device",
	StatusErrFile:        "file fails a vendor-specific verification test",
	StatusErrWrite:       "device is unable to write memory",
	StatusErrErase:       "memory erase function failed",
	StatusErrCheckErased: "memory erase check failed",
	StatusErrProg:        "program memory function failed",
	StatusErrVerify:      "programmed memory failed verification",
	StatusErrAddress:     "address is out of range",
	StatusErrNotDone:     "received DFU_DNLOAD with wLength = 0 but device is not done",
	StatusErrFirmware:    "device firmware is corrupt",
	StatusErrVendor:      "vendor-specific error",
	StatusErrUSBReset:    "device detected unexpected USB reset signaling",
	StatusErrPOR:         "device detected unexpected power on reset",
	StatusErrUnknown:     "something went wrong, but the device does not know what",
	StatusErrStalledPkt:  "device stalled an unexpected request",
}

func (c StatusCode) String() string {
	if int(c) < len(statusNames) {
		return statusNames[c]
	}
	return "UNKNOWN"
}

// Description returns the human-readable explanation from the DFU 1.1 spec.
func (c StatusCode) Description() string {
	if c == StatusOK {
		return "no error"
	}
	if int(c) < len(statusDescriptions) {
		return statusDescriptions[c]
	}
	return "unknown error"
}

// Attributes is the bmAttributes field of the DFU functional descriptor.
type Attributes uint8

const (
	AttrCanDownload      Attributes = 1 << 0
	AttrCanUpload        Attributes = 1 << 1
	AttrManifestTolerant Attributes = 1 << 2
	AttrWillDetach       Attributes = 1 << 3
)

// CanDownload reports the bitCanDnload attribute.
func (a Attributes) CanDownload() bool { return a&AttrCanDownload != 0 }

// CanUpload reports the bitCanUpload attribute. The bit is advisory: the
// engine never refuses an upload because of it, only the device can.
func (a Attributes) CanUpload() bool { return a&AttrCanUpload != 0 }

// ManifestTolerant reports the bitManifestationTolerant attribute.
func (a Attributes) ManifestTolerant() bool { return a&AttrManifestTolerant != 0 }

// WillDetach reports the bitWillDetach attribute. When set, the device
// performs its own bus detach-attach after DFU_DETACH and the host must not
// issue a USB reset.
func (a Attributes) WillDetach() bool { return a&AttrWillDetach != 0 }
