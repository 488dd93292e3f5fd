package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aomame/internal/adapter/provider"
)

var (
	transcribeKey  string
	transcribeLang string
	transcribeDump string
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio>",
	Short: "Transcribe a LINEAR16 16kHz recording",
	Long: `Transcribe speech with the Google Speech-to-Text API. The recording must be
raw LINEAR16 audio sampled at 16kHz.

Examples:
  aomame transcribe --lang en-US meeting.raw
  aomame transcribe --lang fr-FR --dump response.json interview.raw`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)
	transcribeCmd.Flags().StringVar(&transcribeKey, "key", "", "API key (default from providers.speech.api_key_env)")
	transcribeCmd.Flags().StringVar(&transcribeLang, "lang", "en-US", "language of the recording")
	transcribeCmd.Flags().StringVar(&transcribeDump, "dump", "", "write the raw JSON response to this file")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	lang, err := normalizeLang(transcribeLang)
	if err != nil {
		return err
	}
	opts, err := providerOptions("speech", transcribeKey)
	if err != nil {
		return err
	}
	speech := provider.NewGoogleSpeech(opts)
	speech.DumpPath = transcribeDump

	text, err := speech.Transcribe(cmd.Context(), args[0], lang)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}
	fmt.Println(text)
	return nil
}
