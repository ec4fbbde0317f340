package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/keff-search/internal/deck"
	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
)

type deckOptions struct {
	ppm     float64
	out     string
	example string
}

func newDeckCmd(root *rootOptions) *cobra.Command {
	opts := &deckOptions{}
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Write the engine input files for the pin cell at a boron concentration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var model *reactor.Model
			switch opts.example {
			case "":
				builder, err := reactor.NewPinCellBuilder(cfg.Model)
				if err != nil {
					return err
				}
				if model, err = builder.Build(opts.ppm); err != nil {
					return err
				}
			case "gap":
				if model, err = reactor.GapPinCell(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown example %q (must be gap)", opts.example)
			}

			paths, err := deck.Write(opts.out, model)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&opts.ppm, "ppm", 0, "boron concentration in ppm")
	cmd.Flags().StringVarP(&opts.out, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.example, "example", "", "write a fixed example model instead (gap)")
	return cmd
}
