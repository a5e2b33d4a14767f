// Command hashpassword prints a bcrypt hash for pre-provisioning student accounts.
//
//	hashpassword <password>
//	echo -n <password> | hashpassword
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/cmis/studentportal/internal/pkg/auth"
	"github.com/cmis/studentportal/internal/pkg/logger"
)

func readPassword() (string, error) {
	if len(os.Args) > 1 {
		return os.Args[1], nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("no password given: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func main() {
	password, err := readPassword()
	if err != nil || password == "" {
		logger.Error().Err(err).Msg("Usage: hashpassword <password>")
		os.Exit(2)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		os.Exit(1)
	}

	fmt.Println(hash)
}
