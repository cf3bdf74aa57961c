package cmd

import (
	"fmt"

	"github.com/audiolibrelab/micloop/internal/engine"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show resolved engine parameters",
	Long:  `Display the engine parameters derived from the current configuration: buffer capacities, per-tick sample counts and display geometry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := engine.DefaultParams(cfg.Audio.SampleRate)

		fmt.Printf("=== AUDIO ===\n")
		fmt.Printf("sample_rate: %d\n", params.SampleRate)
		fmt.Printf("device: %s\n", deviceLabel(cfg.Audio.Device))
		fmt.Printf("samples_per_frame: %d\n", params.SamplesPerFrame())
		fmt.Printf("recording_capacity: %d samples (%d seconds mono)\n",
			params.RecordingCapacity(), params.RecordSeconds)
		fmt.Printf("playback_capacity: %d samples (stereo interleaved)\n",
			params.RecordingCapacity()*2)

		fmt.Printf("\n=== TIMING ===\n")
		fmt.Printf("fps: %d\n", params.FPS)
		fmt.Printf("message_display: %d frames\n", params.MessageFrames())

		fmt.Printf("\n=== DISPLAY ===\n")
		fmt.Printf("geometry: %dx%d\n", params.Width, params.Height)
		fmt.Printf("pixel_format: %s\n", engine.PixelFormatXRGB8888)
		fmt.Printf("row_stride: %d bytes\n", params.Width*4)

		return nil
	},
}

func deviceLabel(device string) string {
	if device == "" {
		return "(system default)"
	}
	return device
}
