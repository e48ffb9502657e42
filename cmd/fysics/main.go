package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fysics/internal/config"
)

const releaseVersion = "0.1.0"

func main() {
	log.SetFlags(0)

	// .env is optional; only complain when one exists but cannot be read
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	cfg := config.Default()
	cobra.CheckErr(newRootCmd(cfg).Execute())
}
