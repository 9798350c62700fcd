// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "A CLI for the AleutianForge code generation service",
	Long: `Forge talks to a running AleutianForge server: build the reference
index, generate code against it, compare backend candidates, and
inspect service status.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	defaultURL := os.Getenv("FORGE_SERVER_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:12240"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultURL,
		"Forge server base URL (env: FORGE_SERVER_URL)")

	rootCmd.AddCommand(indexCmd, statusCmd, queryCmd, compareCmd)
}
