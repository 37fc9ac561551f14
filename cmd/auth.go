// Package cmd implements the command-line interface for the kasha playback client.
package cmd

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/kasha-player/kasha/auth"
	"github.com/kasha-player/kasha/color"
	"github.com/kasha-player/kasha/icon"
	"github.com/kasha-player/kasha/log"
	"github.com/kasha-player/kasha/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

// authCmd manages the controller access token stored in the system keyring.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the controller access token",
	Long:  `Store, inspect, or remove the access token used to authenticate against the karaoke controller server.`,
}

// authLoginCmd prompts for an access token and stores it in the keyring.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a controller access token in the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		var token string
		prompt := &survey.Password{
			Message: "Controller access token:",
			Help:    "The token issued by the controller for this playback client",
		}
		handleErr(survey.AskOne(prompt, &token, survey.WithValidator(survey.Required)))

		handleErr(auth.SetToken(strings.TrimSpace(token)))

		log.Info("controller access token stored")
		fmt.Printf("%s Token stored\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

// authStatusCmd reports whether an access token is currently stored.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a controller access token is stored",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := auth.GetToken(); err != nil {
			fmt.Printf("%s No token stored, requests will be sent unauthenticated\n", icon.Get(icon.Warning))
			return
		}

		fmt.Printf("%s Token present\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

// authLogoutCmd removes the stored access token from the keyring.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored controller access token",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())

		log.Info("controller access token removed")
		fmt.Printf("%s Token removed\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
