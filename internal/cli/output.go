package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func addProviderFlags(cmd *cobra.Command, api, key *string, def string) {
	cmd.Flags().StringVarP(api, "api", "a", def, "provider to call")
	cmd.Flags().StringVar(key, "key", "", "API key (default from the provider's api_key_env)")
}

// textArg returns the positional arguments joined by spaces, or stdin when
// there are none.
func textArg(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\r\n")
	if text == "" {
		return "", fmt.Errorf("no input text")
	}
	return text, nil
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}
