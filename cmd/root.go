package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gatewatch",
	Short: "Camera-based attendance tracking with face recognition",
	Long: `Gatewatch tracks people entering and leaving a monitored space by
matching recognized faces against a shared identity registry. Run the
entry and exit commands as two independent processes against the same
database; completed sessions are appended to the audit log.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
