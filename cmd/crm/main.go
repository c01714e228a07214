// crm: Personal CRM MCP Server
//
// An MCP server that gives AI assistants a persistent memory of the
// people in the user's life: contacts, notes, relationships, reminders,
// preferences — plus duplicate detection and contact merging.
//
// Usage:
//
//	crm serve      # Start MCP server (stdio transport)
//	crm version    # Print version information
package main

import (
	"fmt"
	"os"
	"runtime"

	crmserver "github.com/benkaiser/mob-mcp-crm-sub000/internal/server"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crm",
	Short: "Personal CRM MCP server",
	Long: `A personal CRM exposed over the Model Context Protocol.

It stores contacts and everything attached to them in a local SQLite
database, and lets AI assistants look people up, record what they learn,
find duplicate entries, and merge them.

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "crm": {
        "command": "crm",
        "args": ["serve"]
      }
    }
  }`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := crmserver.New()
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		defer cleanup()

		return server.ServeStdio(s)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("crm version %s\n", crmserver.Version)
		fmt.Printf("  Go version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
