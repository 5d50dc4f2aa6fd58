package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opd-ai/customalbums/asset"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	var localized bool
	var titleLang string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the generated album manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry, err := ctx.loadAlbums()
			if err != nil {
				return err
			}
			defer registry.Close()

			var out string
			switch {
			case titleLang != "":
				title, ok := cfg.Titles[titleLang]
				if !ok {
					return fmt.Errorf("no album title configured for language %q", titleLang)
				}
				out, err = asset.AppendTitle("", title)
			case localized:
				out, err = asset.AppendLocalized("", registry.All())
			default:
				out, err = asset.BuildManifest(cfg.Albums.UID, registry.All())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&localized, "localized", false, "Print the localized entries appended to ALBUM<uid+1>_<language>")
	cmd.Flags().StringVar(&titleLang, "title", "", "Print the title entry appended to albums_<language>")
	return cmd
}
