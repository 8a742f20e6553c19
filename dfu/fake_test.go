package dfu

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// fakeDevice is a scripted DFU device behind the Transport interface. It
// models the state machine a well-behaved bootloader walks through during
// downloads and uploads, and records every request for assertions.
type fakeDevice struct {
	state  State
	status StatusCode

	// busyPolls is how many DNBUSY/MANIFEST polls precede settling.
	busyPolls int
	pending   int

	// download capture
	chunks [][]byte
	xacts  []uint16
	// failAt makes the download with that wValue fail with errWRITE; -1
	// disables it.
	failAt int

	// upload source
	image       []byte
	offset      int
	endless     bool // never produce the short-packet sentinel
	stallUpload bool // reject DFU_UPLOAD at the transport level

	// abortBroken makes DFU_ABORT leave the stale state in place.
	abortBroken bool

	requests []uint8
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{state: StateDfuIdle, failAt: -1}
}

func (f *fakeDevice) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	f.requests = append(f.requests, request)
	switch request {
	case reqGetStatus:
		if len(data) < statusLen {
			return 0, errors.New("status buffer too small")
		}
		switch f.state {
		case StateDownloadSync, StateDownloadBusy:
			if f.pending > 0 {
				f.pending--
				f.state = StateDownloadBusy
			} else {
				f.state = StateDownloadIdle
			}
		case StateManifestSync, StateManifest:
			if f.pending > 0 {
				f.pending--
				f.state = StateManifest
			} else {
				f.state = StateDfuIdle
			}
		}
		data[0] = byte(f.status)
		data[1], data[2], data[3] = 1, 0, 0 // 1 ms poll interval
		data[4] = byte(f.state)
		data[5] = 0
		return statusLen, nil

	case reqDnload:
		if f.failAt >= 0 && int(val) == f.failAt {
			f.status = StatusErrWrite
			f.state = StateError
			return len(data), nil
		}
		f.xacts = append(f.xacts, val)
		f.chunks = append(f.chunks, append([]byte(nil), data...))
		if len(data) == 0 {
			f.state = StateManifestSync
		} else {
			f.state = StateDownloadSync
		}
		f.pending = f.busyPolls
		return len(data), nil

	case reqUpload:
		if f.stallUpload {
			return 0, errors.New("endpoint stalled")
		}
		f.xacts = append(f.xacts, val)
		f.state = StateUploadIdle
		if f.endless {
			for i := range data {
				data[i] = 0xA5
			}
			return len(data), nil
		}
		n := len(data)
		if remaining := len(f.image) - f.offset; remaining < n {
			n = remaining
		}
		copy(data, f.image[f.offset:f.offset+n])
		f.offset += n
		return n, nil

	case reqClrStatus:
		f.status = StatusOK
		if f.state == StateError {
			f.state = StateDfuIdle
		}
		return 0, nil

	case reqAbort:
		if !f.abortBroken {
			f.state = StateDfuIdle
		}
		return 0, nil

	case reqDetach:
		f.state = StateAppDetach
		return 0, nil

	case reqGetState:
		if len(data) < 1 {
			return 0, errors.New("state buffer too small")
		}
		data[0] = byte(f.state)
		return 1, nil
	}
	return 0, fmt.Errorf("unexpected request 0x%02X", request)
}

// countRequests returns how many times a request code was issued.
func (f *fakeDevice) countRequests(code uint8) int {
	n := 0
	for _, r := range f.requests {
		if r == code {
			n++
		}
	}
	return n
}

// testSession builds a session over the fake with quiet logging.
func testSession(tp Transport, chunk int, uploadLimit int64) *Session {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewSession(tp, SessionConfig{
		ChunkSize:   chunk,
		UploadLimit: uploadLimit,
		Logger:      logger,
	})
}
