package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tagsCmd)
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Lists the tag names known to the search endpoint.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient()

		tags, err := client.Tags(cmd.Context())
		if err != nil {
			fatal("failed to resolve tags", err)
		}

		names := make([]string, 0, len(tags))
		for name := range tags {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(name)
		}
	},
}
