package dfu

// Transport issues a single blocking USB control transfer and returns the
// number of bytes moved during the data stage. The host-side request
// timeout is owned by the transport. The signature matches
// (*gousb.Device).Control, so a gousb device handle satisfies Transport
// directly; tests substitute a scripted fake.
type Transport interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
}

// Progress receives (bytesDone, bytesTotal) updates during a transfer.
// For uploads the total is the advisory expected size and bounds the
// reported done value for display only. A nil Progress disables reporting.
type Progress func(done, total int64)
