package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/YixingShen/dfu/dfuusb"
)

var downloadCmd = &cobra.Command{
	Use:   "download <file>",
	Short: "Download a firmware image from <file> to the device",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

func init() {
	downloadCmd.Flags().BoolVarP(&finalReset, "reset", "R", false,
		"detach after flashing and issue a USB reset if the device will not detach itself")
}

func runDownload(cmd *cobra.Command, args []string) error {
	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading firmware file: %w", err)
	}
	sel, err := selector()
	if err != nil {
		return err
	}

	h := dfuusb.NewHost(logrus.StandardLogger())
	defer h.Close()

	dev, err := h.EnsureDFUMode(sel, detachDelay())
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.Claim(altSetting); err != nil {
		return err
	}
	sess := dev.Session(altSetting, 0)

	fmt.Printf("Downloading binary file: %s (%d bytes, %d byte chunks)\n",
		args[0], len(image), sess.ChunkSize())
	bar := newProgressBar(os.Stdout)
	start := time.Now()
	if err := sess.Download(image, bar.update); err != nil {
		return err
	}
	fmt.Printf("The elapsed time = %v\n", time.Since(start).Round(time.Millisecond))

	if finalReset {
		if err := h.FinalReset(dev, sess, detachDelay()); err != nil {
			return err
		}
	}
	return nil
}
