package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/YixingShen/dfu/dfu"
	"github.com/YixingShen/dfu/dfuusb"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Read the device's firmware into <file>",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().Int64VarP(&uploadSize, "upload-size", "Z", dfu.DefaultUploadLimit,
		"expected upload size in bytes (progress display hint)")
}

func runUpload(cmd *cobra.Command, args []string) error {
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
	// Leave headroom above the expected size before the hard overrun cap
	// kicks in; the expected size itself stays a display hint.
	var limit int64
	if uploadSize > 0 {
		limit = 2 * uploadSize
	}
	sess := dev.Session(altSetting, limit)

	fmt.Printf("Uploading to binary file: %s (%d byte chunks)\n", args[0], sess.ChunkSize())
	bar := newProgressBar(os.Stdout)
	start := time.Now()
	data, err := sess.Upload(uploadSize, bar.update)
	if err != nil {
		return err
	}
	bar.finish(int64(len(data)))
	fmt.Printf("The elapsed time = %v\n", time.Since(start).Round(time.Millisecond))

	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("writing firmware file: %w", err)
	}
	fmt.Printf("Wrote %d bytes to %s\n", len(data), args[0])
	return nil
}
