package cmd

import (
	"fmt"
	"os"

	"hydroclip/lib/geoapi"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the platform with the device-code flow.",
	Run: func(cmd *cobra.Command, args []string) {
		login, err := client.StartDeviceLogin(
			cmd.Context(),
			config.Platform.ClientId,
			config.Platform.Scope,
		)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		fmt.Printf("Open %s in a browser and enter the code: %s\n", login.VerificationUrl, login.UserCode)
		fmt.Println("Waiting for the login to be approved...")

		token, err := client.PollDeviceToken(cmd.Context(), login)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		err = geoapi.SaveToken(config.Platform.TokenFile, token)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Printf("Logged in, token cached at %s\n", config.Platform.TokenFile)
	},
}
