package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aomame/internal/adapter/provider"
	"aomame/internal/domain"
	"aomame/internal/port"
)

var (
	detectAPI   string
	detectKey   string
	detectOffline bool
	detectJSON  bool
)

var detectCmd = &cobra.Command{
	Use:   "detect [text]",
	Short: "Identify the language of a text",
	Long: `Identify the language of a text with a provider, or offline with --local.
Without arguments the text is read from stdin.

Examples:
  aomame detect -a microsoft "Guten Morgen"
  aomame detect --local "Bonjour tout le monde"`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	addProviderFlags(detectCmd, &detectAPI, &detectKey, provider.ProviderGoogle)
	detectCmd.Flags().BoolVar(&detectOffline, "local", false, "detect offline without calling a provider")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "output as JSON")
}

func runDetect(cmd *cobra.Command, args []string) error {
	text, err := textArg(args)
	if err != nil {
		return err
	}

	var dets []domain.Detection
	if detectOffline {
		lang, confidence := detectLocalLang(text)
		if lang == "" {
			return fmt.Errorf("could not detect the language reliably")
		}
		dets = []domain.Detection{{Lang: lang, Confidence: confidence}}
	} else {
		detector, err := capability[port.LanguageDetector](detectAPI, detectKey, "language detection")
		if err != nil {
			return err
		}
		dets, err = detector.Detect(cmd.Context(), text)
		if err != nil {
			return fmt.Errorf("detection failed: %w", err)
		}
	}

	if detectJSON {
		return printJSON(dets)
	}
	for _, d := range dets {
		fmt.Printf("%s\t%.2f\n", d.Lang, d.Confidence)
	}
	return nil
}
