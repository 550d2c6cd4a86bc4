package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haskel/bigo/internal/executor"
	"github.com/haskel/bigo/internal/workload"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered candidates",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(listCmd)
}

type candidateInfo struct {
	Name        string `json:"name"`
	Expected    string `json:"expected,omitempty"`
	Description string `json:"description,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	infos := candidateInfos()
	out := cmd.OutOrStdout()

	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEXPECTED\tDESCRIPTION")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Expected, info.Description)
	}
	return tw.Flush()
}

// candidateInfos lists every registered candidate, annotated where it is a
// built-in workload.
func candidateInfos() []candidateInfo {
	names := executor.Candidates()
	infos := make([]candidateInfo, len(names))
	for i, name := range names {
		infos[i] = candidateInfo{Name: name}
		if w, ok := workload.Get(name); ok {
			infos[i].Expected = w.Expected
			infos[i].Description = w.Description
		}
	}
	return infos
}
