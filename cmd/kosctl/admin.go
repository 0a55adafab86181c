package main

import (
	"errors"
	"fmt"

	"github.com/lalith-99/kosboard/internal/service"
	"github.com/spf13/cobra"
)

var (
	flagAdminName     string
	flagAdminEmail    string
	flagAdminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Register an admin account",
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&flagAdminName, "name", "Admin", "Display name")
	createAdminCmd.Flags().StringVar(&flagAdminEmail, "email", "", "Login email (required)")
	createAdminCmd.Flags().StringVar(&flagAdminPassword, "password", "", "Login password, at least 8 characters (required)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	e, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.svc.CreateAdmin(cmd.Context(), service.Operator, service.AdminInput{
		Name:     flagAdminName,
		Email:    flagAdminEmail,
		Password: flagAdminPassword,
	})
	var se *service.Error
	if errors.As(err, &se) && se.Kind == service.KindValidation {
		for field, problem := range se.Fields {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s\n", field, problem)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %s)\n", user.Email, user.ID)
	return nil
}
