package main

import (
	"github.com/spf13/cobra"

	"github.com/scribehub/go-scribe/auth"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify credentials against the platform and print the session claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		claims, err := sdk.Auth.Login(cmd.Context(), authLoginRequest(loginEmail, loginPassword))
		if err != nil {
			return err
		}
		return printJSON(claims)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")
}

func authLoginRequest(email, password string) auth.LoginRequest {
	return auth.LoginRequest{Email: email, Password: password}
}
