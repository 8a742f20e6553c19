package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/YixingShen/dfu/dfuusb"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List currently attached DFU capable devices",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	sel, err := selector()
	if err != nil {
		return err
	}
	h := dfuusb.NewHost(logrus.StandardLogger())
	defer h.Close()

	infos, err := h.List(sel)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No DFU devices found")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("DFU device: %v\n", info)
	}
	return nil
}
