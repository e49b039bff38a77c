package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Desarso/companion"
	"github.com/Desarso/companion/archive"
	"github.com/Desarso/companion/stores"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "companion",
		Short:         "Branching AI companion chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), sessionsCmd(), resetCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var addr, persona string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := companion.LoadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.WithAddr(addr)
			}
			if persona != "" {
				cfg.WithPersonaFile(persona)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := companion.NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides COMPANION_ADDR)")
	cmd.Flags().StringVar(&persona, "persona", "", "YAML persona file (overrides COMPANION_PERSONA)")
	return cmd
}

func openState() (stores.KVStore, *stores.State, error) {
	cfg, err := companion.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	kv, err := companion.OpenStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return kv, stores.NewState(kv), nil
}

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List archived chat sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, state, err := openState()
			if err != nil {
				return err
			}
			defer kv.Close()

			snap, err := state.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "current thread: %d messages\n", len(snap.Messages))
			for _, s := range archive.New(snap.Sessions).Summaries() {
				fmt.Fprintf(out, "%s  %s  %3d  %s\n",
					s.ID, time.UnixMilli(s.Timestamp).Format("2006-01-02 15:04"), s.MessageCount, s.Title)
			}
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored conversation, call and persona setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			kv, state, err := openState()
			if err != nil {
				return err
			}
			defer kv.Close()
			if err := state.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

