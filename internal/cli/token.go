package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/exam-scheduler-api/internal/models"
	"github.com/noah-isme/exam-scheduler-api/internal/service"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed API access token for development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userRole := models.UserRole(strings.ToUpper(role))
			switch userRole {
			case models.RoleAdmin, models.RoleInstructor, models.RoleStudent:
			default:
				return fmt.Errorf("unknown role %q (ADMIN, INSTRUCTOR, STUDENT)", role)
			}

			auth := service.NewAuthService(logr, service.AuthConfig{
				AccessTokenSecret: cfg.JWT.Secret,
				AccessTokenExpiry: ttl,
				Issuer:            "exam-scheduler-api",
			})
			token, expires, err := auth.IssueToken(userID, userRole, email, userID)
			if err != nil {
				return err
			}
			return printResult(map[string]interface{}{
				"token":     token,
				"userId":    userID,
				"role":      userRole,
				"expiresAt": expires.Format(time.RFC3339),
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "admin", "User ID placed in the token subject")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "Role (ADMIN, INSTRUCTOR, STUDENT)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")

	return cmd
}
