package command

// root.go defines the root command for yamdbctl, the operator CLI that talks
// to the database directly.

import (
	"context"
	"fmt"
	"os"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/spf13/cobra"
)

// openUsers connects to the database and returns the user service plus a
// close func. Tests swap it for an in-memory service.
var openUsers = func(ctx context.Context) (service.UserService, func(), error) {
	cfg, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, nil, err
	}
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}

	db, err := database.Connect(ctx, cfg, cfg.NewLogger())
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = database.Close(db) }
	return service.NewUserService(repository.NewUserRepository(db)), closeDB, nil
}

var databaseURL string // overrides DATABASE_URL

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yamdbctl",
	Short: "yamdbctl - YaMDb administration",
	Long: `yamdbctl manages YaMDb accounts without going through the API:
- create or promote a superuser
- change the role of an existing user

Use "yamdbctl command --help" to see the flags of each command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "database URL (defaults to DATABASE_URL)")

	rootCmd.AddCommand(createSuperuserCmd)
	rootCmd.AddCommand(setRoleCmd)
}

// withUsers runs fn against a connected user service.
func withUsers(cmd *cobra.Command, fn func(ctx context.Context, users service.UserService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	users, closeFn, err := openUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer closeFn()
	return fn(ctx, users)
}
