package cmd

import (
	"schallwerk/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the portal HTTP server",
	Long:  `Starts the Schallwerk HTTP server serving the admin, teacher, staff, engineer and parent APIs.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
