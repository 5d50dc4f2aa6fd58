package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opd-ai/customalbums"
	"github.com/opd-ai/customalbums/hook"
	"github.com/opd-ai/customalbums/host"
)

// simulatedTarget stands in for the address of LoadFromName.
const simulatedTarget = 0x1000

func newSimulateCommand(ctx *commandContext) *cobra.Command {
	var language string
	var maxTicks int

	cmd := &cobra.Command{
		Use:   "simulate <name>...",
		Short: "Request assets through the loader against an in-memory game",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry, err := ctx.loadAlbums()
			if err != nil {
				return err
			}

			rt := host.NewMemory()
			rt.SetLanguage(language)
			loader := customalbums.NewWithAlbums(rt, hook.PlatformFuncs{}, registry, cfg.Options())
			defer loader.Close()
			if err := loader.Attach(simulatedTarget); err != nil {
				return err
			}

			rows := make([][]string, 0, len(args))
			for _, name := range args {
				h := host.Handle(loader.LoadFromName(0, rt.Intern(name), 0))
				kind := loader.Resolver().Classifier().Classify(name).Kind
				rows = append(rows, []string{name, kind.String(), describeObject(rt, h)})
			}

			// A parked decode only resumes when the game asks for the asset
			// again, so re-request the oldest one whenever nothing is active.
			ticks := 0
			for loader.Scheduler().Len() > 0 && ticks < maxTicks {
				if sched := loader.Scheduler(); sched.ActiveName() == "" {
					loader.LoadFromName(0, rt.Intern(sched.Names()[0]), 0)
				}
				loader.Iterate()
				ticks++
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Kind", "Result"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "Decode ticks: %d\n", ticks)
			if pending := loader.Scheduler().Len(); pending > 0 {
				fmt.Fprintf(out, "Pending decodes: %d (%v)\n", pending, loader.Scheduler().Names())
			}
			printStats(out, loader)
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "lang", "English", "Game language reported by the simulated runtime")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 1_000_000, "Stop driving decode after this many iterations")
	return cmd
}

func describeObject(rt *host.Memory, h host.Handle) string {
	if h.IsNil() {
		return "null"
	}
	kind, ok := rt.Kind(h)
	if !ok {
		return "destroyed"
	}
	switch kind {
	case host.KindText:
		text, _ := rt.TextAssetText(h)
		return "text, " + strconv.Itoa(len(text)) + " bytes"
	case host.KindClip:
		clip, _ := rt.Clip(h)
		return fmt.Sprintf("clip, %d frames x %d ch @ %d Hz", clip.Frames, clip.Channels, clip.SampleRate)
	case host.KindSprite:
		img, _ := rt.Sprite(h)
		return "sprite, " + strconv.Itoa(len(img)) + " bytes"
	case host.KindStage:
		s, _ := rt.Stage(h)
		return fmt.Sprintf("stage %s, music %s, bpm %g, md5 %s", s.MapName, s.Music, s.BPM, s.MD5)
	default:
		return "object"
	}
}

func printStats(out io.Writer, loader *customalbums.Loader) {
	s := loader.Resolver().Stats()
	fmt.Fprintf(out, "Synthesized: %d  Cache hits: %d  Misses: %d  Pass-through: %d\n",
		s.Synthesized, s.Hits, s.Misses, s.PassThrough)
}
