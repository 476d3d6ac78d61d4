package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ZacxDev/video-composer/internal/config"
	"github.com/ZacxDev/video-composer/internal/ffmpeg"
	"github.com/ZacxDev/video-composer/pkg/videocomposer"
)

var (
	rootCmd = &cobra.Command{
		Use:   "video-composer",
		Short: "Compose narrated short-form videos from images, a voice track and a script",
		Long: `video-composer turns a set of still images and a narration track into a finished
video with a Ken Burns motion effect, a title overlay and captions synced to the speech.

Examples:
  # Compose a vertical short from three images
  video-composer compose -a voice.mp3 -t "Ocean facts" --script "Whales sing. Dolphins sleep." -f shorts -o ./output a.png b.png c.png

  # Print caption timing for a narration as SRT
  video-composer transcribe -a voice.mp3 --script-file script.txt`,
		SilenceUsage: true,
	}

	composeCmd = &cobra.Command{
		Use:   "compose [images...]",
		Short: "Compose a video from images and a narration track",
		Long: fmt.Sprintf(`Compose a video from a narration track and one or more images.

Supported formats:
%s
Example:
  video-composer compose -a voice.mp3 -t "Title" --script-file script.txt -f normal -o ./output img1.jpg img2.jpg`,
			formatSupportedFormats()),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			c, err := newComposer(cmd, log)
			if err != nil {
				return err
			}

			audio, _ := cmd.Flags().GetString("audio")
			title, _ := cmd.Flags().GetString("title")
			formatName, _ := cmd.Flags().GetString("format")
			outputRoot, _ := cmd.Flags().GetString("output")
			requestID, _ := cmd.Flags().GetString("request-id")
			language, _ := cmd.Flags().GetString("language")
			hashtags, _ := cmd.Flags().GetStringSlice("hashtags")
			ttsModel, _ := cmd.Flags().GetString("tts-model")
			voice, _ := cmd.Flags().GetString("voice")

			script, err := readScript(cmd)
			if err != nil {
				return err
			}

			opts := &videocomposer.ComposeOptions{
				RequestID:  requestID,
				AudioPath:  audio,
				Title:      title,
				Script:     script,
				Language:   language,
				Images:     args,
				Format:     formatName,
				OutputRoot: outputRoot,
				Hashtags:   hashtags,
				TTSModel:   ttsModel,
				Voice:      voice,
				Progress: func(p int) {
					log.Info().Int("progress", p).Msg("compose progress")
				},
			}

			res, err := c.Compose(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}

	transcribeCmd = &cobra.Command{
		Use:   "transcribe",
		Short: "Time a script against a narration track and print SRT",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			c, err := newComposer(cmd, log)
			if err != nil {
				return err
			}

			audio, _ := cmd.Flags().GetString("audio")
			language, _ := cmd.Flags().GetString("language")
			script, err := readScript(cmd)
			if err != nil {
				return err
			}

			srt, err := c.Transcribe(cmd.Context(), audio, script, language)
			if err != nil {
				return err
			}
			fmt.Print(srt)
			return nil
		},
	}

	probeCmd = &cobra.Command{
		Use:   "probe <file>",
		Short: "Print the duration and streams of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newComposer(cmd, newLogger(cmd))
			if err != nil {
				return err
			}
			info, err := c.Probe(args[0])
			if err != nil {
				return err
			}
			return printJSON(info)
		},
	}

	formatsCmd = &cobra.Command{
		Use:   "formats",
		Short: "List supported output formats",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(formatSupportedFormats())
		},
	}
)

func formatSupportedFormats() string {
	var sb strings.Builder
	for _, name := range videocomposer.GetSupportedFormats() {
		sb.WriteString(fmt.Sprintf("- %s\n", name))
	}
	return sb.String()
}

func newLogger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func newComposer(cmd *cobra.Command, log zerolog.Logger) (*videocomposer.Composer, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Motion.Seed, _ = cmd.Flags().GetInt64("seed")
	}

	if err := ffmpeg.CheckDependencies(cfg.Encoder.FFmpegPath); err != nil {
		return nil, err
	}
	return videocomposer.New(cfg, log)
}

func readScript(cmd *cobra.Command) (string, error) {
	script, _ := cmd.Flags().GetString("script")
	scriptFile, _ := cmd.Flags().GetString("script-file")

	if scriptFile == "" {
		return script, nil
	}
	if script != "" {
		return "", errors.New("--script and --script-file are mutually exclusive")
	}
	data, err := os.ReadFile(scriptFile)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read script file %s", scriptFile)
	}
	return string(data), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, cmd := range []*cobra.Command{composeCmd, transcribeCmd, probeCmd} {
		cmd.Flags().String("config", "", "Path to a YAML config file")
		cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	}

	// Compose command flags
	composeCmd.Flags().StringP("audio", "a", "", "Narration audio file")
	composeCmd.Flags().StringP("title", "t", "", "Title drawn over the video")
	composeCmd.Flags().String("script", "", "Narration script text")
	composeCmd.Flags().String("script-file", "", "File containing the narration script")
	composeCmd.Flags().StringP("format", "f", "shorts",
		fmt.Sprintf("Output format (%s)", strings.Join(videocomposer.GetSupportedFormats(), ", ")))
	composeCmd.Flags().StringP("output", "o", "", "Output root directory (defaults to the configured output root)")
	composeCmd.Flags().String("request-id", "", "Request identifier used in output names (generated when empty)")
	composeCmd.Flags().String("language", "", "Narration language for speech recognition")
	composeCmd.Flags().Int64("seed", 0, "Seed for the motion effect")
	composeCmd.Flags().StringSlice("hashtags", nil, "Hashtags recorded in the script file")
	composeCmd.Flags().String("tts-model", "", "TTS model recorded in the script file")
	composeCmd.Flags().String("voice", "", "Voice recorded in the script file")

	composeCmd.MarkFlagRequired("audio")

	// Transcribe command flags
	transcribeCmd.Flags().StringP("audio", "a", "", "Narration audio file")
	transcribeCmd.Flags().String("script", "", "Narration script text")
	transcribeCmd.Flags().String("script-file", "", "File containing the narration script")
	transcribeCmd.Flags().String("language", "", "Narration language for speech recognition")

	transcribeCmd.MarkFlagRequired("audio")

	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(formatsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
