package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opd-ai/customalbums/asset"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <name>...",
		Short: "Show how asset names are routed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			languages := make([]string, 0, len(cfg.Titles))
			for lang := range cfg.Titles {
				languages = append(languages, lang)
			}
			sort.Strings(languages)
			classifier := asset.NewClassifier(cfg.Albums.UID, languages)

			rows := make([][]string, 0, len(args))
			for _, name := range args {
				c := classifier.Classify(name)
				difficulty := ""
				if c.Difficulty > 0 {
					difficulty = strconv.Itoa(c.Difficulty)
				}
				rows = append(rows, []string{name, c.Kind.String(), c.Key, difficulty, c.Language})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Kind", "Album", "Difficulty", "Language"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
