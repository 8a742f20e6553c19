// dfu-util is a host-side USB Device Firmware Upgrade (DFU 1.1) client:
// it lists DFU-capable devices, switches them from run-time to DFU mode,
// and downloads firmware images to (or uploads them from) the bootloader.
package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/YixingShen/dfu/dfuusb"
)

var (
	deviceSpec    string
	intfNumber    int
	altSetting    int
	transferSize  int
	uploadSize    int64
	detachDelayS  int
	finalReset    bool
	strictVersion bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:           "dfu-util",
	Short:         "USB Device Firmware Upgrade (DFU 1.1) host utility",
	Long:          "dfu-util talks to DFU class bootloaders over USB control transfers:\nlisting devices, detaching run-time firmware into DFU mode, and moving\nfirmware images to and from the device.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&deviceSpec, "device", "d", "", "select device by hex vid or vid:pid")
	pf.IntVarP(&intfNumber, "intf", "i", -1, "DFU interface number, -1 auto-detects from the descriptors")
	pf.IntVarP(&altSetting, "alt", "a", 0, "alternate setting of the DFU interface")
	pf.IntVarP(&transferSize, "transfer-size", "t", 0, "bytes per USB transfer, 0 uses the device's wTransferSize")
	pf.IntVarP(&detachDelayS, "detach-delay", "E", 5, "seconds to wait for re-enumeration after detach")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&strictVersion, "strict-version", false, "reject devices whose bcdDFUVersion is not 0x0101")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(listCmd, detachCmd, downloadCmd, uploadCmd)
}

// selector builds the device selector from the persistent flags.
func selector() (dfuusb.Selector, error) {
	sel := dfuusb.Selector{
		Interface:     intfNumber,
		AltSetting:    altSetting,
		TransferSize:  transferSize,
		StrictVersion: strictVersion,
	}
	if deviceSpec != "" {
		vid, pid, err := dfuusb.ParseVIDPID(deviceSpec)
		if err != nil {
			return sel, err
		}
		sel.Vendor, sel.Product = vid, pid
	}
	return sel, nil
}

func detachDelay() time.Duration {
	return time.Duration(detachDelayS) * time.Second
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
