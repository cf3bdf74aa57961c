package cmd

import (
	"fmt"
	"runtime"

	"github.com/audiolibrelab/micloop/internal/host"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available capture devices",
	Long:  `List the microphone capture devices the audio backend can see on this system.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := host.ListCaptureDevices()
		if err != nil {
			return fmt.Errorf("failed to list capture devices: %w", err)
		}

		fmt.Printf("🎤 Capture Devices (%s)\n", runtime.GOOS)
		fmt.Printf("═══════════════════════════════════════\n\n")

		if len(names) == 0 {
			fmt.Println("No capture devices found (is a microphone plugged in?)")
			return nil
		}

		for i, name := range names {
			fmt.Printf("  %d. %s\n", i+1, name)
		}

		fmt.Printf("\n💡 Usage:\n")
		fmt.Printf("  • Select a device in the config: audio.device: \"<name>\"\n")
		fmt.Printf("  • A substring of the name is enough; empty means system default\n\n")

		return nil
	},
}
