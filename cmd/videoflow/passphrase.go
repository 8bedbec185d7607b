package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassphrase prompts on a terminal without echo. Otherwise it reads one
// line per prompt from the command's input.
func readPassphrase(cmd *cobra.Command, prompt string, confirm bool) (string, error) {
	read := lineReader(cmd)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		read = func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			return string(b), err
		}
	}

	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	pass, err := read()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if pass == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	if !confirm {
		return pass, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Repeat passphrase: ")
	again, err := read()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if again != pass {
		return "", fmt.Errorf("passphrases do not match")
	}
	return pass, nil
}

func lineReader(cmd *cobra.Command) func() (string, error) {
	sc := bufio.NewScanner(cmd.InOrStdin())
	return func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("no input")
		}
		return strings.TrimRight(sc.Text(), "\r"), nil
	}
}
