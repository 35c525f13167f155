package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corpus state",
	Long:  `Status reports how many chunks are indexed and which document was ingested last.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	idx, err := openIndex()
	if err != nil {
		return err
	}
	defer idx.Close()

	status, err := idx.Status()
	if err != nil {
		return err
	}

	if statusJSON {
		output, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("State:    %s\n", status.State)
	fmt.Printf("Chunks:   %d\n", status.ChunkCount)
	if status.DocumentName != "" {
		fmt.Printf("Document: %s\n", status.DocumentName)
	}
	return nil
}
