package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/textline/internal/admin"
	"golang.org/x/term"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Hash an operator token for the config file",
		Long: "Reads an operator token and prints its SHA-256 digest for the\n" +
			"admin.token_hash config field. The token itself is never stored.",
		RunE: runToken,
	}
}

func runToken(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var raw string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(out, "Token: ")
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		raw = string(secret)
	} else {
		// Piped input, e.g. from a secret manager.
		var line string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		raw = line
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("token must not be empty")
	}

	fmt.Fprintf(out, "token_hash: %s\n", admin.HashToken(raw))
	return nil
}
