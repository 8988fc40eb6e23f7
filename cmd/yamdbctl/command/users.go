package command

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/service"

	"github.com/spf13/cobra"
)

// createSuperuserCmd creates an admin account or promotes an existing one.
// The account signs in through the normal confirmation-code flow.
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a superuser account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")

		return withUsers(cmd, func(ctx context.Context, users service.UserService) error {
			user, err := users.CreateSuperuser(ctx, username, email)
			if err != nil {
				return fmt.Errorf("failed to create superuser: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Superuser %s (%s) is ready\n", user.Username, user.Email)
			fmt.Fprintln(cmd.OutOrStdout(), "Request a confirmation code through /api/v1/auth/signup to sign in.")
			return nil
		})
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role [username] [role]",
	Short: "Change the role of a user (user, moderator, admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := policy.ParseRole(args[1])
		if err != nil {
			return err
		}

		return withUsers(cmd, func(ctx context.Context, users service.UserService) error {
			user, err := users.SetRole(ctx, args[0], role)
			if err != nil {
				return fmt.Errorf("failed to set role: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", user.Username, user.Role)
			return nil
		})
	},
}

func init() {
	createSuperuserCmd.Flags().String("username", "", "username of the superuser")
	createSuperuserCmd.Flags().String("email", "", "email the confirmation code is sent to")
	createSuperuserCmd.MarkFlagRequired("username")
	createSuperuserCmd.MarkFlagRequired("email")
}
