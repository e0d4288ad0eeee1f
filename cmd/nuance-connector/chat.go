package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const quitCommand = "/quit"

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Hold an interactive dialog session on stdin",
		Long: `Opens a session and reads one user turn per line from stdin until EOF
or "/quit". An empty line sends an empty turn.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.newRun(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := r.start(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				if !opts.jsonOutput {
					fmt.Fprint(out, "you> ")
				}
				if !scanner.Scan() {
					break
				}
				text := strings.TrimSpace(scanner.Text())
				if text == quitCommand {
					break
				}
				if err := r.say(ctx, text); err != nil {
					return r.finish(ctx, err)
				}
			}
			return r.finish(ctx, scanner.Err())
		},
	}
}
