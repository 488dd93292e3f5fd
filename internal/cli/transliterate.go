package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aomame/internal/adapter/provider"
	"aomame/internal/port"
)

var (
	translitAPI  string
	translitKey  string
	translitLang string
	translitFrom string
	translitTo   string
)

var transliterateCmd = &cobra.Command{
	Use:   "transliterate [text]",
	Short: "Convert text from one script to another",
	Long: `Convert text of a language between scripts. Run "aomame scripts" for the
available script codes. Without arguments the text is read from stdin.

Examples:
  aomame transliterate --lang ja --from Jpan --to Latn "こんにちは"
  aomame transliterate --lang sr-Cyrl --from Cyrl --to Latn "Добар дан"`,
	RunE: runTransliterate,
}

func init() {
	rootCmd.AddCommand(transliterateCmd)
	addProviderFlags(transliterateCmd, &translitAPI, &translitKey, provider.ProviderMicrosoft)
	transliterateCmd.Flags().StringVar(&translitLang, "lang", "", "language of the text (required)")
	transliterateCmd.Flags().StringVar(&translitFrom, "from", "", "source script code (required)")
	transliterateCmd.Flags().StringVar(&translitTo, "to", "", "target script code (required)")
	transliterateCmd.MarkFlagRequired("lang")
	transliterateCmd.MarkFlagRequired("from")
	transliterateCmd.MarkFlagRequired("to")
}

func runTransliterate(cmd *cobra.Command, args []string) error {
	text, err := textArg(args)
	if err != nil {
		return err
	}
	lang, err := normalizeLang(translitLang)
	if err != nil {
		return err
	}
	tl, err := capability[port.Transliterator](translitAPI, translitKey, "transliteration")
	if err != nil {
		return err
	}
	out, err := tl.Transliterate(cmd.Context(), text, lang, translitFrom, translitTo)
	if err != nil {
		return fmt.Errorf("transliteration failed: %w", err)
	}
	fmt.Println(out)
	return nil
}
