package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"opp/internal/adapter/extractor"
	"opp/internal/adapter/jsonstore"
	"opp/internal/config"
	"opp/internal/service/admin"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var dataDirFlag string

	ctx := newCommandContext(&dataDirFlag)

	rootCmd := &cobra.Command{
		Use:           "opp",
		Short:         "Manage your one-page podcast",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", config.DefaultDataDir(), "Datastore directory")

	rootCmd.AddCommand(newInitCommand(ctx))
	rootCmd.AddCommand(newShowChannelCommand(ctx))
	rootCmd.AddCommand(newUpdateChannelCommand(ctx))
	rootCmd.AddCommand(newCreateEpisodeCommand(ctx))
	rootCmd.AddCommand(newListEpisodesCommand(ctx))
	rootCmd.AddCommand(newUpdateEpisodeCommand(ctx))
	rootCmd.AddCommand(newDeleteEpisodeCommand(ctx))

	return rootCmd
}

type commandContext struct {
	dataDir *string
	admin   *admin.AdminService
}

func newCommandContext(dataDir *string) *commandContext {
	return &commandContext{dataDir: dataDir}
}

func (c *commandContext) adminService() (*admin.AdminService, error) {
	if c.admin != nil {
		return c.admin, nil
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := jsonstore.New(*c.dataDir, log)
	if err != nil {
		return nil, err
	}

	c.admin = admin.NewAdminService(store, extractor.New(log), log)

	return c.admin, nil
}
