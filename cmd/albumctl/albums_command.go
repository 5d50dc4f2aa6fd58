package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opd-ai/customalbums/album"
)

type albumRow struct {
	Key          string `json:"key"`
	Index        int    `json:"index"`
	Name         string `json:"name"`
	Author       string `json:"author"`
	BPM          string `json:"bpm"`
	Difficulties []int  `json:"difficulties"`
	Packaged     bool   `json:"packaged"`
	Path         string `json:"path"`
}

func newAlbumRow(a *album.Album) albumRow {
	return albumRow{
		Key:          a.Key,
		Index:        a.Index,
		Name:         a.Info.Name,
		Author:       a.Info.Author,
		BPM:          a.Info.BPM,
		Difficulties: a.Difficulties(),
		Packaged:     a.Packaged,
		Path:         a.Path,
	}
}

func newAlbumsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "albums",
		Short: "List the albums the loader would serve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.loadAlbums()
			if err != nil {
				return err
			}
			defer registry.Close()

			rows := make([]albumRow, 0, registry.Len())
			for _, a := range registry.All() {
				rows = append(rows, newAlbumRow(a))
			}

			if asJSON {
				return writeJSON(cmd, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No albums found")
				return nil
			}

			cells := make([][]string, 0, len(rows))
			for _, r := range rows {
				cells = append(cells, []string{
					r.Key,
					strconv.Itoa(r.Index),
					r.Name,
					r.Author,
					r.BPM,
					formatDifficulties(r.Difficulties),
					strconv.FormatBool(r.Packaged),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Index", "Name", "Author", "BPM", "Charts", "Packaged"},
				cells,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func formatDifficulties(ds []int) string {
	if len(ds) == 0 {
		return "-"
	}
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = "map" + strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}
