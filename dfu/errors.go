package dfu

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceNotFound means no attached device matched the DFU filter.
	ErrDeviceNotFound = errors.New("no DFU devices found")
	// ErrAmbiguousDevice means more than one device matched; the engine
	// never guesses which one to use.
	ErrAmbiguousDevice = errors.New("more than one DFU device matches, specify vid:pid to disambiguate")
	// ErrNotADfuDevice means the device carries no usable DFU functional
	// descriptor.
	ErrNotADfuDevice = errors.New("no DFU functional descriptor, not a valid DFU device")
	// ErrNotInDfuMode means the device still runs its application firmware
	// and must be detached into the bootloader first.
	ErrNotInDfuMode = errors.New("device is still in run-time mode")
	// ErrUploadOverrun means the device never sent the short-packet
	// end-of-data sentinel before the configured upload limit.
	ErrUploadOverrun = errors.New("upload exceeded the size limit without a short packet")
)

// DeviceError is a failure reported by the device itself through
// DFU_GETSTATUS. The engine has already issued DFU_CLRSTATUS by the time
// this error surfaces.
type DeviceError struct {
	Status StatusCode
	State  State
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device reported %v in state %v: %s", e.Status, e.State, e.Status.Description())
}

// OpError attaches the failing top-level operation to an engine error.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return "dfu: " + e.Op + ": " + e.Err.Error() }

func (e *OpError) Unwrap() error { return e.Err }

// wrapOp wraps *err in an OpError, for use with defer at the top of an
// exported operation.
func wrapOp(op string, err *error) {
	if *err != nil {
		*err = &OpError{Op: op, Err: *err}
	}
}
