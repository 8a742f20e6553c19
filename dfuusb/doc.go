// Package dfuusb is the gousb-backed transfer driver and device directory
// for the dfu protocol engine: it enumerates and filters attached devices
// by the DFU interface class, reads the DFU functional descriptor out of
// the raw configuration descriptors, and owns the claim/release lifecycle
// of the DFU interface.
package dfuusb
