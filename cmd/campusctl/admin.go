package main

import (
	"fmt"

	"campus-info-go/internal/model"
	"campus-info-go/internal/repository"
	"campus-info-go/internal/service"
	"campus-info-go/pkg/token"

	"github.com/spf13/cobra"
)

var adminInput service.RegisterInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		users := service.NewUserService(
			repository.NewUserRepository(s),
			repository.NewMemoryTokenBlacklist(),
			token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays),
		)
		u, err := users.CreateUser(cmd.Context(), adminInput, model.RoleAdmin)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", u.RegNo, u.ID)
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminInput.RegNo, "reg-no", "", "registration number used to log in")
	f.StringVar(&adminInput.Name, "name", "", "display name")
	f.StringVar(&adminInput.Email, "email", "", "email address")
	f.StringVar(&adminInput.Password, "password", "", "password (at least 6 characters)")
	f.StringVar(&adminInput.Department, "department", "", "department")
	_ = createAdminCmd.MarkFlagRequired("reg-no")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("password")
}
