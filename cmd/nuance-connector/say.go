package main

import (
	"github.com/spf13/cobra"
)

func newSayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "say <text>...",
		Short: "Open a session, send each argument as a user turn, and close it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.newRun(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := r.start(ctx); err != nil {
				return err
			}
			for _, text := range args {
				if err := r.say(ctx, text); err != nil {
					return r.finish(ctx, err)
				}
			}
			return r.finish(ctx, nil)
		},
	}
}
