package cmd

import (
	"errors"
	"os"

	"teamleader-mcp/internal/oauth"
	"teamleader-mcp/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands. These follow common conventions so the
// binary can be scripted.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

// errAuthRequired marks "no usable credential" outcomes so Execute can
// map them to ExitCodeAuthRequired.
var errAuthRequired = errors.New("authentication required: run 'teamleader-mcp auth login'")

// authFailedError marks interactive flow failures for ExitCodeAuthFailed.
type authFailedError struct {
	err error
}

func (e *authFailedError) Error() string { return e.err.Error() }
func (e *authFailedError) Unwrap() error { return e.err }

// Flags shared across commands.
var (
	// configPath points at an alternative config file.
	configPath string

	// debugLogging enables verbose logging.
	debugLogging bool
)

// rootCmd is the base command of the teamleader-mcp binary.
var rootCmd = &cobra.Command{
	Use:   "teamleader-mcp",
	Short: "Expose the Teamleader Focus CRM as MCP tools",
	Long: `teamleader-mcp bridges the Teamleader Focus CRM/ERP API to AI
assistants speaking the Model Context Protocol.

Run 'teamleader-mcp auth login' once to authorize the integration, then
point your MCP host at 'teamleader-mcp serve'. Tokens are refreshed and
persisted automatically for the lifetime of the credential.`,
	// Handled errors should not echo usage.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if debugLogging {
			level = logging.LevelDebug
		}
		// stderr always: stdout belongs to the MCP protocol in serve mode.
		logging.Init(level, os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: ~/.config/teamleader-mcp/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging")
}

// SetVersion sets the version for the root command. Called from main
// to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a semantic exit code.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "teamleader-mcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to exit codes.
func getExitCode(err error) int {
	if errors.Is(err, errAuthRequired) || oauth.IsReauthRequired(err) {
		return ExitCodeAuthRequired
	}

	var authFailed *authFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}
