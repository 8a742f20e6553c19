package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/YixingShen/dfu/dfuusb"
)

var detachCmd = &cobra.Command{
	Use:   "detach",
	Short: "Ask the attached DFU capable device to switch into DFU mode",
	Args:  cobra.NoArgs,
	RunE:  runDetach,
}

func runDetach(cmd *cobra.Command, args []string) error {
	sel, err := selector()
	if err != nil {
		return err
	}
	h := dfuusb.NewHost(logrus.StandardLogger())
	defer h.Close()

	return h.Detach(sel, detachDelay())
}
