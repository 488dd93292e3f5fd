package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"aomame/internal/adapter/cache"
	"aomame/internal/adapter/provider"
	"aomame/internal/port"
)

var (
	languagesAPI      string
	languagesKey      string
	languagesJSON     bool
	languagesSupports string
	languagesRefresh  bool

	scriptsAPI  string
	scriptsKey  string
	scriptsJSON bool
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages a provider can translate",
	Long: `List the target languages supported by a provider.

The list is saved next to the translation memory and reused until
languages.ttl expires. --refresh fetches it again.

Examples:
  aomame languages -a google
  aomame languages -a microsoft --json
  aomame languages -a systran --supports pt
  aomame languages -a google --refresh`,
	Args: cobra.NoArgs,
	RunE: runLanguages,
}

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "List the scripts available for transliteration",
	Long: `List target scripts of every transliteration pair as code and name.

Examples:
  aomame scripts
  aomame scripts --json`,
	Args: cobra.NoArgs,
	RunE: runScripts,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
	addProviderFlags(languagesCmd, &languagesAPI, &languagesKey, provider.ProviderGoogle)
	languagesCmd.Flags().BoolVar(&languagesJSON, "json", false, "output as JSON")
	languagesCmd.Flags().StringVar(&languagesSupports, "supports", "", "only report whether this language code is supported")
	languagesCmd.Flags().BoolVar(&languagesRefresh, "refresh", false, "fetch the list even when the saved one is fresh")

	rootCmd.AddCommand(scriptsCmd)
	addProviderFlags(scriptsCmd, &scriptsAPI, &scriptsKey, provider.ProviderMicrosoft)
	scriptsCmd.Flags().BoolVar(&scriptsJSON, "json", false, "output as JSON")
}

func runLanguages(cmd *cobra.Command, args []string) error {
	lister, err := capability[port.LanguageLister](languagesAPI, languagesKey, "language listing")
	if err != nil {
		return err
	}
	cfg := GetConfig()
	log := GetLogger()
	mem, err := openMemory(cfg.MemoryPath(GetRootDir()), log)
	if err != nil {
		return err
	}
	defer mem.Close()

	langs := cache.NewLanguageCache(lister, cfg.Languages.TTL).WithStore(languagesAPI, mem, log)
	if languagesRefresh {
		if _, err := langs.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("failed to list languages: %w", err)
		}
	}

	if languagesSupports != "" {
		code, err := normalizeLang(languagesSupports)
		if err != nil {
			return err
		}
		ok, err := langs.Supports(cmd.Context(), code)
		if err != nil {
			return fmt.Errorf("failed to list languages: %w", err)
		}
		if !ok {
			return fmt.Errorf("%s does not support %s", languagesAPI, code)
		}
		fmt.Printf("%s supports %s\n", languagesAPI, code)
		return nil
	}

	list, err := langs.Languages(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list languages: %w", err)
	}
	if languagesJSON {
		return printJSON(list)
	}
	for _, l := range list {
		if l.Name != "" {
			fmt.Printf("%s\t%s\n", l.Code, l.Name)
		} else {
			fmt.Println(l.Code)
		}
	}
	return nil
}

func runScripts(cmd *cobra.Command, args []string) error {
	tl, err := capability[port.Transliterator](scriptsAPI, scriptsKey, "transliteration")
	if err != nil {
		return err
	}
	scripts, err := tl.Scripts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list scripts: %w", err)
	}
	if scriptsJSON {
		return printJSON(scripts)
	}

	codes := make([]string, 0, len(scripts))
	for code := range scripts {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Printf("%s\t%s\n", code, scripts[code])
	}
	return nil
}
