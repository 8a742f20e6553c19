package dfu

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	st := parseStatus([]byte{0x00, 0xE8, 0x03, 0x00, 0x05, 0x00})
	if st.Status != StatusOK {
		t.Errorf("status = %v, want OK", st.Status)
	}
	if st.PollTimeout != 1000*time.Millisecond {
		t.Errorf("poll timeout = %v, want 1s", st.PollTimeout)
	}
	if st.State != StateDownloadIdle {
		t.Errorf("state = %v, want dfuDNLOAD-IDLE", st.State)
	}
}

func TestParseStatusPollTimeout24Bit(t *testing.T) {
	// All three timeout bytes carry weight, little-endian.
	st := parseStatus([]byte{0x0E, 0x01, 0x02, 0x03, 0x0A, 0x00})
	if want := time.Duration(0x030201) * time.Millisecond; st.PollTimeout != want {
		t.Errorf("poll timeout = %v, want %v", st.PollTimeout, want)
	}
	if st.Status != StatusErrUnknown || st.State != StateError {
		t.Errorf("joint pair = (%v, %v), want (errUNKNOWN, dfuERROR)", st.Status, st.State)
	}
}

func TestStatusFailed(t *testing.T) {
	cases := []struct {
		st   Status
		want bool
	}{
		{Status{Status: StatusOK, State: StateDfuIdle}, false},
		{Status{Status: StatusOK, State: StateDownloadBusy}, false},
		{Status{Status: StatusErrWrite, State: StateDownloadSync}, true},
		{Status{Status: StatusOK, State: StateError}, true},
		{Status{Status: StatusErrVerify, State: StateError}, true},
	}
	for _, c := range cases {
		if got := c.st.failed(); got != c.want {
			t.Errorf("(%v).failed() = %t, want %t", c.st, got, c.want)
		}
	}
}

func TestStateStrings(t *testing.T) {
	if s := StateManifestWaitReset.String(); s != "dfuMANIFEST-WAIT-RESET" {
		t.Errorf("state string = %q", s)
	}
	if s := State(0x42).String(); s != "UNKNOWN" {
		t.Errorf("out-of-range state string = %q", s)
	}
	if s := StatusErrStalledPkt.String(); s != "errSTALLEDPKT" {
		t.Errorf("status string = %q", s)
	}
	if d := StatusOK.Description(); d != "no error" {
		t.Errorf("OK description = %q", d)
	}
	if d := StatusCode(0x42).Description(); d != "unknown error" {
		t.Errorf("out-of-range description = %q", d)
	}
}
