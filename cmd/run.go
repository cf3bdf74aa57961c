package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/audiolibrelab/micloop/internal/engine"
	"github.com/audiolibrelab/micloop/internal/host"

	"github.com/spf13/cobra"
)

var (
	runNoVideo  bool
	runDuration time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the record/playback loop",
	Long: `Run the demo loop against the system microphone and audio output.
Press Enter to start recording (up to five seconds), press Enter again to
stop; playback starts immediately after. Ctrl+C exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := engine.DefaultParams(cfg.Audio.SampleRate)
		slog.Info("Starting demo loop",
			"sample_rate", params.SampleRate,
			"fps", params.FPS,
			"record_seconds", params.RecordSeconds)

		sink, err := host.NewOtoSink(params.SampleRate)
		if err != nil {
			return fmt.Errorf("failed to open audio output: %w", err)
		}
		defer sink.Close()

		var video engine.VideoSink = host.NewTermVideo(os.Stdout)
		if runNoVideo || cfg.Video.Disabled {
			video = host.NullVideo{}
		}

		caps := engine.Capabilities{
			Mic:   host.NewMalgoMicrophone(cfg.Audio.Device),
			Audio: sink,
			Video: video,
			Input: host.NewStdinInput(os.Stdin),
			Msg:   host.LogMessenger{},
		}

		ctrl, err := engine.New(params, caps)
		if err != nil {
			return fmt.Errorf("failed to create engine: %w", err)
		}
		if err := ctrl.Load(); err != nil {
			return fmt.Errorf("failed to load engine: %w", err)
		}
		defer ctrl.Close()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		var deadline <-chan time.Time
		if runDuration > 0 {
			deadline = time.After(runDuration)
		}

		ticker := time.NewTicker(time.Second / time.Duration(params.FPS))
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctrl.Tick()
			case <-deadline:
				fmt.Println()
				slog.Info("Duration reached, stopping")
				return nil
			case <-sigChan:
				fmt.Println()
				slog.Info("Interrupted, stopping")
				return nil
			}
		}
	},
}

func init() {
	runCmd.Flags().BoolVar(&runNoVideo, "no-video", false, "drop rendered frames instead of drawing progress bars")
	runCmd.Flags().DurationVar(&runDuration, "duration", 0, "stop after this long (0 = run until interrupted)")
}
