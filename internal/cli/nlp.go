package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"aomame/internal/adapter/provider"
	"aomame/internal/domain"
	"aomame/internal/port"
)

var (
	nlpAPI    string
	nlpKey    string
	nlpLang   string
	nlpJSON   bool
	nlpDoc    bool
	nlpTokens bool
)

var nlpCmd = &cobra.Command{
	Use:   "nlp",
	Short: "Linguistic analysis of a text",
	Long: `Run linguistic annotations through a provider with NLP endpoints.
Without a text argument, subcommands read stdin.

Examples:
  aomame nlp lemmatize --lang en "The cats were sleeping"
  aomame nlp pos --lang fr "Le chat dort"
  aomame nlp pos --lang en --tokens "New York , NY"
  aomame nlp tokenize --lang en --doc "One. Two three."
  aomame nlp sentences --lang en < article.txt
  aomame nlp ner --lang en "Ada Lovelace lived in London"`,
}

var nlpLemmatizeCmd = &cobra.Command{
	Use:   "lemmatize [text]",
	Short: "Print each token with its lemma",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalyzer(args, func(a port.Analyzer, text string) error {
			lemmas, err := a.Lemmatize(cmd.Context(), text, nlpLang)
			if err != nil {
				return err
			}
			if nlpJSON {
				return printJSON(lemmas)
			}
			for _, l := range lemmas {
				fmt.Printf("%s\t%s\n", l.Text, l.Lemma)
			}
			return nil
		})
	},
}

var nlpPOSCmd = &cobra.Command{
	Use:   "pos [text]",
	Short: "Print each token with its part of speech",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalyzer(args, func(a port.Analyzer, text string) error {
			var tags []domain.TaggedToken
			var err error
			if nlpTokens {
				tags, err = a.PosTag(cmd.Context(), strings.Fields(text), nlpLang)
			} else {
				tags, err = a.POS(cmd.Context(), text, nlpLang)
			}
			if err != nil {
				return err
			}
			if nlpJSON {
				return printJSON(tags)
			}
			for _, t := range tags {
				fmt.Printf("%s\t%s\n", t.Text, t.POS)
			}
			return nil
		})
	},
}

var nlpTokenizeCmd = &cobra.Command{
	Use:   "tokenize [text]",
	Short: "Print the word tokens, one per line or one sentence per line with --doc",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalyzer(args, func(a port.Analyzer, text string) error {
			if nlpDoc {
				doc, err := a.DocTokenize(cmd.Context(), text, nlpLang)
				if err != nil {
					return err
				}
				if nlpJSON {
					return printJSON(doc)
				}
				for _, sent := range doc {
					fmt.Println(strings.Join(sent, " "))
				}
				return nil
			}

			words, err := a.WordTokenize(cmd.Context(), text, nlpLang)
			if err != nil {
				return err
			}
			if nlpJSON {
				return printJSON(words)
			}
			for _, w := range words {
				fmt.Println(w)
			}
			return nil
		})
	},
}

var nlpSentencesCmd = &cobra.Command{
	Use:   "sentences [text]",
	Short: "Print one sentence per line",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalyzer(args, func(a port.Analyzer, text string) error {
			sents, err := a.SentTokenize(cmd.Context(), text, nlpLang)
			if err != nil {
				return err
			}
			if nlpJSON {
				return printJSON(sents)
			}
			for _, s := range sents {
				fmt.Println(s)
			}
			return nil
		})
	},
}

var nlpNERCmd = &cobra.Command{
	Use:   "ner [text]",
	Short: "Print the named-entity annotations as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalyzer(args, func(a port.Analyzer, text string) error {
			raw, err := a.NER(cmd.Context(), text, nlpLang)
			if err != nil {
				return err
			}
			return printJSON(raw)
		})
	},
}

func init() {
	rootCmd.AddCommand(nlpCmd)
	nlpCmd.PersistentFlags().StringVarP(&nlpAPI, "api", "a", provider.ProviderSystran, "provider to call")
	nlpCmd.PersistentFlags().StringVar(&nlpKey, "key", "", "API key (default from the provider's api_key_env)")
	nlpCmd.PersistentFlags().StringVar(&nlpLang, "lang", "", "language of the text (default: detected by the provider)")
	nlpCmd.PersistentFlags().BoolVar(&nlpJSON, "json", false, "output as JSON")
	nlpTokenizeCmd.Flags().BoolVar(&nlpDoc, "doc", false, "group tokens by sentence")
	nlpPOSCmd.Flags().BoolVar(&nlpTokens, "tokens", false, "treat the text as whitespace-separated tokens")

	nlpCmd.AddCommand(nlpLemmatizeCmd, nlpPOSCmd, nlpTokenizeCmd, nlpSentencesCmd, nlpNERCmd)
}

func withAnalyzer(args []string, fn func(port.Analyzer, string) error) error {
	text, err := textArg(args)
	if err != nil {
		return err
	}
	if nlpLang != "" {
		if nlpLang, err = normalizeLang(nlpLang); err != nil {
			return err
		}
	}
	a, err := capability[port.Analyzer](nlpAPI, nlpKey, "linguistic analysis")
	if err != nil {
		return err
	}
	if err := fn(a, text); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return nil
}
