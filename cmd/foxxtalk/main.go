package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "foxxtalk",
		Short: "The FoxxTalk blog server",
		Long:  "FoxxTalk serves the SlyyFoxx Media blog: public pages, the author admin, and the content REST API.",
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
