package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the ingested documents",
	Long: `Ask retrieves the most relevant passages from the index and answers the
question with the configured language model, citing its sources. Questions
may be in English, Hindi, or Hinglish; the answer follows the question's
language.

Examples:
  pdfqa ask "What is the total revenue for 2024?"
  pdfqa ask "gandhinagar me kaun si companies hai?"
  pdfqa ask --json "मुख्य निष्कर्ष क्या हैं?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	if !indexExists() {
		return fmt.Errorf("no index found. Run 'pdfqa ingest' first")
	}

	session, idx, err := buildSession()
	if err != nil {
		return err
	}
	defer idx.Close()

	answer, err := session.Ask(cmd.Context(), question)
	if err != nil {
		return err
	}

	if askJSON {
		output, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range answer.Sources {
			fmt.Printf("  - %s, page %d\n", src.Document, src.Page)
		}
	}
	return nil
}
