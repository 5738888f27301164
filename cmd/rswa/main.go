// Command rswa generates key material for JOSE signing workflows.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rswa-project/rswa/internal/audit"
	"github.com/rswa-project/rswa/internal/config"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	auditLogPath string
	configPath   string
)

// loadedConfig holds the --config file for the running command, if any.
var loadedConfig *config.Config

func main() {
	err := rootCmd.Execute()
	// PersistentPostRunE is skipped when a command fails.
	if cerr := audit.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rswa",
	Short: "Generate key material for JOSE signing workflows",
	Long: `rswa generates asymmetric key pairs and prints them as JSON Web Keys
(RFC 7517) or COSE_Key structures, ready for token issuance.

Supported algorithms:
  EdDSA: Ed25519 (default), Ed448
  RSA:   any modulus size up to 65535 bits, tagged RS256, RS384 or RS512

Examples:
  # Ed25519 JWK
  rswa generate jwk

  # RSA 3072-bit key for RS384 with a key id
  rswa generate jwk --algorithm rsa --rsa-key-size 3072 --rsa-digest-size 384 --key-id signing-1

  # Ed448 COSE_Key, hex encoded
  rswa generate cose-key --curve ed448`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadedConfig = nil
		// The audit commands read a log; they must not open one for writing.
		if underCommand(cmd, auditCmd) {
			return nil
		}

		if configPath != "" {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			loadedConfig = cfg
		}

		if auditLogPath == "" {
			auditLogPath = os.Getenv("RSWA_AUDIT_LOG")
		}
		if auditLogPath != "" {
			if err := audit.InitFile(auditLogPath); err != nil {
				return fmt.Errorf("failed to initialize audit log: %w", err)
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return audit.Close()
	},
}

// underCommand reports whether cmd is parent or one of its descendants.
func underCommand(cmd, parent *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == parent {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.PersistentFlags().StringVar(&auditLogPath, "audit-log", "",
		"Path to audit log file (or set RSWA_AUDIT_LOG env var)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML file with default generate options")

	rootCmd.AddCommand(generateCmd) // rswa generate ...
	rootCmd.AddCommand(auditCmd)    // rswa audit ...
}
