package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/toodoo/core/cmd/api/commands"
)

// @title Toodoo API
// @version 1.0
// @description Multi-user task management system with recurring tasks, activity tracking and realtime chat

// @contact.name Toodoo Support
// @contact.url https://github.com/toodoo/core

// @license.name MIT
// @license.url https://github.com/toodoo/core/blob/main/LICENSE

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "toodoo",
		Short: "Toodoo API Server",
		Long:  `Toodoo is a multi-user task management system with categories, recurring tasks, activity tracking, notifications and realtime chat.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewRecurCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
