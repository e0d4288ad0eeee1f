package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeforequity-at/botium-connector-nuance/connector"
	"github.com/codeforequity-at/botium-connector-nuance/observability"
)

// Environment variables consulted when the credential flags are not set.
const (
	envClientID     = "NUANCE_CLIENT_ID"
	envClientSecret = "NUANCE_CLIENT_SECRET"
)

type rootOptions struct {
	configFile      string
	verbose         bool
	observers       []string
	jsonOutput      bool
	contextTag      string
	clientID        string
	clientSecret    string
	channel         string
	language        string
	entityValueMode string
	skipWelcome     bool
	nlpAnalytics    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "nuance-connector",
		Short: "Run Nuance Mix dialog sessions from the terminal",
		Long: `Opens a Nuance Mix dialog session, sends user turns and prints the
normalized bot messages, including buttons and the NLU intent and entities.

Examples:
  nuance-connector validate -c config.yaml
  nuance-connector say -c config.yaml "book a flight" "Atlanta"
  nuance-connector chat -c config.yaml --nlp-analytics`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a JSON or YAML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging to stderr")
	flags.StringSliceVar(&opts.observers, "observer", []string{"slog"}, "Observers receiving session events, comma separated (slog, noop)")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print messages as JSON lines")
	flags.StringVar(&opts.contextTag, "context-tag", "", "Mix context tag (overrides config)")
	flags.StringVar(&opts.clientID, "client-id", "", "OAuth2 client id (overrides config, falls back to $"+envClientID+")")
	flags.StringVar(&opts.clientSecret, "client-secret", "", "OAuth2 client secret (overrides config, falls back to $"+envClientSecret+")")
	flags.StringVar(&opts.channel, "channel", "", "Selector channel (overrides config)")
	flags.StringVar(&opts.language, "language", "", "Selector language (overrides config)")
	flags.StringVar(&opts.entityValueMode, "entity-value-mode", "", "FORCE_LITERAL, FORCE_STRUCT or LITERAL_FOR_COMPLEX (overrides config)")
	flags.BoolVar(&opts.skipWelcome, "skip-welcome", false, "Do not run the welcome turn")
	flags.BoolVar(&opts.nlpAnalytics, "nlp-analytics", false, "Interpret every user turn with the NLU runtime")

	root.AddCommand(
		newValidateCmd(opts),
		newSayCmd(opts),
		newChatCmd(opts),
	)
	return root
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then the environment, then flags.
func (o *rootOptions) loadConfig() (*connector.Config, error) {
	cfg := connector.DefaultConfig()
	if o.configFile != "" {
		loaded, err := connector.LoadConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if cfg.Auth.ClientID == "" {
		cfg.Auth.ClientID = os.Getenv(envClientID)
	}
	if cfg.Auth.ClientSecret == "" {
		cfg.Auth.ClientSecret = os.Getenv(envClientSecret)
	}

	cfg.Merge(&connector.Config{
		ContextTag:      o.contextTag,
		EntityValueMode: o.entityValueMode,
		SkipWelcome:     o.skipWelcome,
		NLPAnalytics:    o.nlpAnalytics,
	})
	if o.clientID != "" {
		cfg.Auth.ClientID = o.clientID
	}
	if o.clientSecret != "" {
		cfg.Auth.ClientSecret = o.clientSecret
	}
	if o.channel != "" {
		cfg.Session.Channel = o.channel
	}
	if o.language != "" {
		cfg.Session.Language = o.language
	}
	return &cfg, nil
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) newObserver(w io.Writer) (observability.Observer, error) {
	observability.RegisterObserver("slog", observability.NewSlogObserver(o.logger(w)))

	observers := make([]observability.Observer, 0, len(o.observers))
	for _, name := range o.observers {
		obs, err := observability.GetObserver(name)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, observability.ObserverNames())
		}
		observers = append(observers, obs)
	}
	return observability.Combine(observers...), nil
}
