package dfuusb

import (
	"fmt"
	"time"

	"github.com/YixingShen/dfu/dfu"
)

// EnsureDFUMode returns a device ready for download/upload. A device found
// in run-time mode is asked to detach: claim, clear a pending error,
// DFU_DETACH, release, wait detachDelay for re-enumeration, then re-run
// discovery. A device that still reports run-time mode afterwards is a
// permanent failure.
func (h *Host) EnsureDFUMode(sel Selector, detachDelay time.Duration) (*Device, error) {
	d, err := h.Open(sel)
	if err != nil {
		return nil, err
	}
	if d.DFUMode {
		h.log.Debug("device is already in DFU mode")
		return d, nil
	}

	h.log.Infof("%v is running in run-time mode, requesting detach", d)
	if err := h.detach(d, sel.AltSetting, detachDelay); err != nil {
		return nil, err
	}

	d, err = h.Open(sel)
	if err != nil {
		return nil, fmt.Errorf("re-discovering device after detach: %w", err)
	}
	if !d.DFUMode {
		d.Close()
		return nil, fmt.Errorf("after detach: %w", dfu.ErrNotInDfuMode)
	}
	return d, nil
}

// detach claims the device, issues DFU_DETACH and waits out the detach
// delay. The device handle is released in every case.
func (h *Host) detach(d *Device, alt int, detachDelay time.Duration) error {
	defer d.Close()

	if err := d.Claim(alt); err != nil {
		return err
	}
	s := d.Session(alt, 0)

	st, err := s.GetStatus()
	if err != nil {
		return err
	}
	time.Sleep(st.PollTimeout)
	if st.Status != dfu.StatusOK || st.State == dfu.StateError {
		if err := s.ClearStatus(); err != nil {
			return err
		}
	}
	if st.State == dfu.StateAppIdle || st.State == dfu.StateAppDetach {
		if err := s.Detach(); err != nil {
			return err
		}
	}

	d.Close()
	h.log.Infof("waiting %v for the device to re-enumerate", detachDelay)
	time.Sleep(detachDelay)
	return nil
}

// Detach opens the selected device and runs the detach sequence, the
// standalone "detach" operation of the command surface.
func (h *Host) Detach(sel Selector, detachDelay time.Duration) (err error) {
	defer func() {
		if err != nil {
			err = &dfu.OpError{Op: "detach", Err: err}
		}
	}()
	d, err := h.Open(sel)
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Claim(sel.AltSetting); err != nil {
		return err
	}
	s := d.Session(sel.AltSetting, 0)
	if err := s.Detach(); err != nil {
		return err
	}
	h.log.Infof("waiting %v after detach", detachDelay)
	time.Sleep(detachDelay)
	return nil
}

// FinalReset runs the optional post-flash reset: DFU_DETACH, the detach
// delay, then a host-initiated USB reset only when the device's
// will-detach attribute is clear (the device will not re-attach on its
// own). Devices advertising will-detach are trusted to reconnect unaided.
func (h *Host) FinalReset(d *Device, s *dfu.Session, detachDelay time.Duration) error {
	if err := s.Detach(); err != nil {
		return err
	}
	h.log.Infof("waiting %v after detach", detachDelay)
	time.Sleep(detachDelay)

	if d.Functional.Attributes.WillDetach() {
		h.log.Debug("device will detach on its own, skipping USB reset")
		return nil
	}
	h.log.Info("issuing USB reset")
	return d.Reset()
}
