package dfu

import (
	"errors"
	"testing"
)

func TestGetStatusShortResponse(t *testing.T) {
	short := &fakeDevice{state: StateDfuIdle, failAt: -1}
	s := testSession(transportFunc(func(rType, request uint8, val, idx uint16, data []byte) (int, error) {
		n, err := short.Control(rType, request, val, idx, data)
		if request == reqGetStatus {
			return n - 2, err
		}
		return n, err
	}), 4096, 0)

	if _, err := s.GetStatus(); err == nil {
		t.Fatal("GetStatus accepted a short response")
	}
}

func TestGetState(t *testing.T) {
	dev := newFakeDevice()
	dev.state = StateUploadIdle
	s := testSession(dev, 4096, 0)

	st, err := s.GetState()
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if st != StateUploadIdle {
		t.Errorf("state = %v, want dfuUPLOAD-IDLE", st)
	}
}

func TestDetachRequest(t *testing.T) {
	dev := newFakeDevice()
	dev.state = StateAppIdle
	s := testSession(dev, 4096, 0)

	if err := s.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if dev.countRequests(reqDetach) != 1 {
		t.Errorf("detach issued %d times", dev.countRequests(reqDetach))
	}
	if dev.state != StateAppDetach {
		t.Errorf("device state = %v after detach", dev.state)
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	boom := errors.New("pipe error")
	s := testSession(transportFunc(func(rType, request uint8, val, idx uint16, data []byte) (int, error) {
		return 0, boom
	}), 4096, 0)

	err := s.Download(firmware(10), nil)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want the transport error", err)
	}
}

// transportFunc adapts a function to the Transport interface.
type transportFunc func(rType, request uint8, val, idx uint16, data []byte) (int, error)

func (f transportFunc) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	return f(rType, request, val, idx, data)
}
