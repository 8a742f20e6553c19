package dfu

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultUploadLimit caps an upload when the device never signals
// end-of-data. A negative SessionConfig.UploadLimit disables the cap.
const DefaultUploadLimit = 32 << 20

// defaultChunkSize is used only when the caller supplies no negotiated
// transfer size; real sessions take wTransferSize from the functional
// descriptor.
const defaultChunkSize = 4096

// SessionConfig parameterizes a transfer session against one claimed
// interface.
type SessionConfig struct {
	// Interface is the bInterfaceNumber of the claimed DFU interface; it is
	// the wIndex of every request.
	Interface int
	// AltSetting is the selected alternate setting, carried for logging.
	AltSetting int
	// ChunkSize is the negotiated maximum bytes per DOWNLOAD/UPLOAD chunk,
	// normally the descriptor's wTransferSize.
	ChunkSize int
	// UploadLimit is a hard cap on uploaded bytes; 0 selects
	// DefaultUploadLimit, negative disables the cap.
	UploadLimit int64
	// Logger receives session logs; nil selects logrus.StandardLogger.
	Logger *logrus.Logger
}

// Session runs DFU operations against a single claimed interface. It is
// strictly sequential: every request's effect is observed through a status
// poll before the next request is issued. The transaction counter starts
// at zero and increments by one per chunk request, never repeating within
// the session. Interface claim and release belong to the caller (the
// dfuusb device guard); a Session only borrows the handle.
type Session struct {
	tp    Transport
	intf  uint16
	chunk int
	limit int64
	xact  uint16
	log   *logrus.Entry
}

// NewSession wraps a claimed interface in a fresh session.
func NewSession(tp Transport, cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}
	limit := cfg.UploadLimit
	if limit == 0 {
		limit = DefaultUploadLimit
	}
	s := &Session{
		tp:    tp,
		intf:  uint16(cfg.Interface),
		chunk: chunk,
		limit: limit,
		log: logger.WithFields(logrus.Fields{
			"session": uuid.NewString()[:8],
			"intf":    cfg.Interface,
			"alt":     cfg.AltSetting,
		}),
	}
	return s
}

// ChunkSize returns the negotiated transfer chunk size.
func (s *Session) ChunkSize() int { return s.chunk }

// nextTransaction hands out the wValue for the next chunk request.
func (s *Session) nextTransaction() uint16 {
	v := s.xact
	s.xact++
	return v
}

// GetStatus issues DFU_GETSTATUS and decodes the joint (status, state)
// pair together with the device-declared poll interval.
func (s *Session) GetStatus() (Status, error) {
	buf := make([]byte, statusLen)
	n, err := s.tp.Control(requestTypeIn, reqGetStatus, 0, s.intf, buf)
	if err != nil {
		return Status{}, fmt.Errorf("DFU_GETSTATUS: %w", err)
	}
	if n != statusLen {
		return Status{}, fmt.Errorf("DFU_GETSTATUS: short response (%d of %d bytes)", n, statusLen)
	}
	st := parseStatus(buf)
	s.log.Debugf("status: %v", st)
	return st, nil
}

// GetState issues DFU_GETSTATE. The engine itself always works from the
// richer DFU_GETSTATUS pair; this is exposed for diagnostics.
func (s *Session) GetState() (State, error) {
	buf := make([]byte, 1)
	n, err := s.tp.Control(requestTypeIn, reqGetState, 0, s.intf, buf)
	if err != nil {
		return StateError, fmt.Errorf("DFU_GETSTATE: %w", err)
	}
	if n != 1 {
		return StateError, fmt.Errorf("DFU_GETSTATE: short response")
	}
	return State(buf[0]), nil
}

// ClearStatus issues DFU_CLRSTATUS. It is mandatory after any
// device-reported error before another request may be retried.
func (s *Session) ClearStatus() error {
	s.log.Debug("send DFU_CLRSTATUS")
	if _, err := s.tp.Control(requestTypeOut, reqClrStatus, 0, s.intf, nil); err != nil {
		return fmt.Errorf("DFU_CLRSTATUS: %w", err)
	}
	return nil
}

// Abort issues DFU_ABORT, cancelling a stale in-progress transfer and
// returning the device to dfuIDLE.
func (s *Session) Abort() error {
	s.log.Debug("send DFU_ABORT")
	if _, err := s.tp.Control(requestTypeOut, reqAbort, 0, s.intf, nil); err != nil {
		return fmt.Errorf("DFU_ABORT: %w", err)
	}
	return nil
}

// Detach issues DFU_DETACH. The device disconnects and re-enumerates in
// DFU mode; the caller must wait the detach delay and re-run discovery.
func (s *Session) Detach() error {
	s.log.Debug("send DFU_DETACH")
	if _, err := s.tp.Control(requestTypeOut, reqDetach, 0, s.intf, nil); err != nil {
		return fmt.Errorf("DFU_DETACH: %w", err)
	}
	return nil
}

// download issues one DFU_DNLOAD request. An empty chunk signals the end
// of the image and triggers manifestation.
func (s *Session) download(transaction uint16, chunk []byte) error {
	if _, err := s.tp.Control(requestTypeOut, reqDnload, transaction, s.intf, chunk); err != nil {
		return fmt.Errorf("DFU_DNLOAD transaction %d: %w", transaction, err)
	}
	return nil
}

// upload issues one DFU_UPLOAD request of up to size bytes and returns
// whatever the device produced. A response shorter than size is the
// end-of-data sentinel.
func (s *Session) upload(transaction uint16, size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := s.tp.Control(requestTypeIn, reqUpload, transaction, s.intf, buf)
	if err != nil {
		return nil, fmt.Errorf("DFU_UPLOAD transaction %d: %w", transaction, err)
	}
	return buf[:n], nil
}

// waitSettled polls DFU_GETSTATUS until the device settles into one of the
// given states, sleeping the device-declared poll interval between polls.
// A device-reported failure triggers the mandatory DFU_CLRSTATUS and
// surfaces as a DeviceError; the failed request is never resubmitted.
func (s *Session) waitSettled(settled ...State) error {
	for {
		st, err := s.GetStatus()
		if err != nil {
			return err
		}
		for _, want := range settled {
			if st.State == want {
				return nil
			}
		}
		if st.failed() {
			if cerr := s.ClearStatus(); cerr != nil {
				return fmt.Errorf("clearing %v: %w", st.Status, cerr)
			}
			return &DeviceError{Status: st.Status, State: st.State}
		}
		time.Sleep(st.PollTimeout)
	}
}

// preflight runs the shared download/upload preamble: refuse run-time
// mode, clear a pending error, and abort a stale transfer left over from
// a previous session.
func (s *Session) preflight() error {
	st, err := s.GetStatus()
	if err != nil {
		return err
	}
	if st.State == StateAppIdle || st.State == StateAppDetach {
		return fmt.Errorf("%w (state %v)", ErrNotInDfuMode, st.State)
	}

	st, err = s.GetStatus()
	if err != nil {
		return err
	}
	if st.failed() {
		s.log.Infof("device reports %v, clearing status", st.Status)
		if err := s.ClearStatus(); err != nil {
			return err
		}
	}

	st, err = s.GetStatus()
	if err != nil {
		return err
	}
	if st.State == StateDownloadIdle || st.State == StateUploadIdle {
		s.log.Info("aborting previous incomplete transfer")
		if err := s.Abort(); err != nil {
			return err
		}
		st, err = s.GetStatus()
		if err != nil {
			return err
		}
		if st.State == StateDownloadIdle || st.State == StateUploadIdle {
			return errors.New("abort did not return the device to idle")
		}
	}
	return nil
}
