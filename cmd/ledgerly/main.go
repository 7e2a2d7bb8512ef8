package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/cleared-dev/ledgerly/internal/commands"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
