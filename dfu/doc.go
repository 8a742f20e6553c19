// Package dfu implements the host side of the USB Device Firmware Upgrade
// (DFU) class protocol, revision 1.1. It speaks the six DFU class requests
// over an abstract control-transfer Transport, runs the status/state poll
// loop, and orchestrates chunked firmware download and upload sequences.
//
// The package is transport-agnostic: anything with a libusb-style Control
// method satisfies Transport, including *gousb.Device. The gousb-backed
// device directory and interface handling live in the dfuusb package.
package dfu
