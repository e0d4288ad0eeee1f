package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeforequity-at/botium-connector-nuance/mix"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without contacting Nuance Mix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "configuration ok")
			fmt.Fprintf(out, "  dialog model: %s\n", mix.DialogModelURI(cfg.ContextTag))
			fmt.Fprintf(out, "  dialog endpoint: %s\n", cfg.Dialog.BaseURL())
			if cfg.NLPAnalytics {
				fmt.Fprintf(out, "  nlu model: %s\n", mix.NLUModelURI(cfg.ContextTag, cfg.NLULanguage))
				fmt.Fprintf(out, "  nlu endpoint: %s\n", cfg.NLU.BaseURL())
			}
			fmt.Fprintf(out, "  selector: %s/%s/%s\n", cfg.Session.Channel, cfg.Session.Language, cfg.Session.Library)
			fmt.Fprintf(out, "  entity value mode: %s\n", cfg.EntityValueMode)
			if cfg.Dialog.HostedEndpoint() || (cfg.NLPAnalytics && cfg.NLU.HostedEndpoint()) {
				fmt.Fprintln(out, "note: requests are protobuf JSON; hosted Nuance Mix endpoints need a JSON-capable gateway")
			}
			return nil
		},
	}
}
