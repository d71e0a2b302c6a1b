// Command hashpw prints a bcrypt hash for a password, ready to paste into a
// credential seed file or the credentials table.
//
//	hashpw [-cost 12] [-user name]
//
// The password is read from the terminal without echo, or from the first
// line of stdin when stdin is not a terminal.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/sentinel/internal/common"
	"github.com/dmitrijs2005/sentinel/internal/server/auth"
	"github.com/dmitrijs2005/sentinel/internal/server/config"
	"github.com/dmitrijs2005/sentinel/internal/server/repositories/credentials"
)

// test seams for the terminal
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) error {
	defaults := &config.Config{}
	defaults.LoadDefaults()

	fs := flag.NewFlagSet("hashpw", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cost := fs.Int("cost", defaults.BcryptCost, "bcrypt cost")
	user := fs.String("user", "", "print a seed record for this username instead of the bare hash")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := readSecret(stdin, stderr)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if len(password) == 0 {
		return errors.New("empty password")
	}
	if len(password) > auth.MaxPasswordBytes {
		fmt.Fprintf(stderr, "warning: password is %d bytes; only the first %d are used\n", len(password), auth.MaxPasswordBytes)
	}

	hash, err := auth.HashPassword(string(password), *cost)
	if err != nil {
		return err
	}

	if *user == "" {
		_, err = fmt.Fprintln(stdout, string(hash))
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode([]credentials.SeedRecord{{Username: *user, PasswordHash: string(hash)}})
}

func readSecret(stdin *os.File, prompt io.Writer) ([]byte, error) {
	fd := int(stdin.Fd())
	if isTerminal(fd) {
		fmt.Fprint(prompt, "Password: ")
		pw, err := readPassword(fd)
		fmt.Fprintln(prompt)
		return pw, err
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
