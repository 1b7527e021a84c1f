package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/storyhub-api/internal/api"
	"github.com/storyhub-api/internal/database"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/repository"
	"github.com/storyhub-api/internal/service"
)

var (
	newUser  models.User
	userRole string
	tokenTTL time.Duration
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user and print a bearer token for it",
	Long: `Create a user record. Accounts normally come from the external auth
service; this command seeds moderators, admins and test users.

Examples:
  storyhub user add --username ann --email ann@example.com
  storyhub user add --username mod --email mod@example.com --role moderator --token-ttl 24h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserAdd()
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)

	userAddCmd.Flags().StringVar(&newUser.Username, "username", "", "Unique username (required)")
	userAddCmd.Flags().StringVar(&newUser.Email, "email", "", "Email address used for notifications (required)")
	userAddCmd.Flags().StringVar(&newUser.DisplayName, "display-name", "", "Display name")
	userAddCmd.Flags().StringVar(&newUser.Bio, "bio", "", "Short biography")
	userAddCmd.Flags().StringVar(&userRole, "role", string(models.RoleUser), "Role: user, moderator or admin")
	userAddCmd.Flags().DurationVar(&tokenTTL, "token-ttl", time.Hour, "Lifetime of the printed token (0 to skip)")
	_ = userAddCmd.MarkFlagRequired("username")
	_ = userAddCmd.MarkFlagRequired("email")
}

func runUserAdd() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	services := service.NewServices(repository.New(db), cfg, service.Deps{}, log)

	newUser.Role = models.Role(userRole)
	user, err := services.User.Create(context.Background(), &newUser)
	if err != nil {
		return err
	}

	out := struct {
		User  *models.User `json:"user"`
		Token string       `json:"token,omitempty"`
	}{User: user}

	if tokenTTL > 0 {
		out.Token, err = api.NewTokenManager(cfg.Auth.JWTSecret).Issue(user.ID, user.Name(), user.Role, tokenTTL)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
