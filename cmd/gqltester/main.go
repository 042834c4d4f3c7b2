package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/router-for-me/GraphQLTester/internal/app"
	"github.com/router-for-me/GraphQLTester/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if errExec := newRootCommand().ExecuteContext(ctx); errExec != nil {
		log.Error(errExec)
		stop()
		os.Exit(1)
	}
}

// newRootCommand builds the gqltester command tree.
func newRootCommand() *cobra.Command {
	var appCfg config.AppConfig

	root := &cobra.Command{
		Use:           "gqltester",
		Short:         "GraphQL request tester with a credential-injecting relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&appCfg.ConfigPath, "config", "c", "",
		"config file (default $"+config.EnvConfigPath+" or "+config.DefaultConfigFile+")")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the tester HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.RunServer(cmd.Context(), appCfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the slot store tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if errMigrate := app.Migrate(cmd.Context(), appCfg); errMigrate != nil {
				return errMigrate
			}
			log.Info("migration complete")
			return nil
		},
	})

	var (
		userID    string
		companyID string
		ttl       time.Duration
	)
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, errIssue := app.IssueToken(appCfg, userID, companyID, ttl)
			if errIssue != nil {
				return errIssue
			}
			_, errWrite := fmt.Fprintln(cmd.OutOrStdout(), token)
			return errWrite
		},
	}
	tokenCmd.Flags().StringVar(&userID, "user", "", "user id placed in the token")
	tokenCmd.Flags().StringVar(&companyID, "company", "", "optional company id")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
	root.AddCommand(tokenCmd)

	return root
}
