package dfu

import (
	"fmt"
	"time"
)

// statusLen is the size of a DFU_GETSTATUS response.
const statusLen = 6

// Status is the result of a DFU_GETSTATUS request. Status and State form a
// joint failure signal and are always read together.
type Status struct {
	Status StatusCode
	// PollTimeout is the minimum time the host must wait before the next
	// DFU_GETSTATUS request.
	PollTimeout time.Duration
	State       State
}

// parseStatus decodes the 6-byte DFU_GETSTATUS payload: status code at
// byte 0, 24-bit little-endian poll timeout in milliseconds at bytes 1..3,
// state at byte 4. Byte 5 is a string descriptor index and is unused.
func parseStatus(buf []byte) Status {
	ms := uint32(buf[1]) | uint32(buf[2])<<8 | uint32(buf[3])<<16
	return Status{
		Status:      StatusCode(buf[0]),
		PollTimeout: time.Duration(ms) * time.Millisecond,
		State:       State(buf[4]),
	}
}

// failed reports whether the device signals the unified failure condition:
// a non-OK status or the dfuERROR state.
func (s Status) failed() bool {
	return s.Status != StatusOK || s.State == StateError
}

func (s Status) String() string {
	return fmt.Sprintf("%v in state %v (poll %v)", s.Status, s.State, s.PollTimeout)
}
