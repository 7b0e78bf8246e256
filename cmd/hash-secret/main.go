// Command hash-secret prints a bcrypt hash suitable for SURVEY_SECRET_HASH.
package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/stemsi/aiready-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	cfg := config.Load()

	fmt.Fprint(os.Stderr, "Survey password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading password:", err)
		os.Exit(1)
	}
	if len(first) == 0 {
		fmt.Fprintln(os.Stderr, "Error: password must not be empty")
		os.Exit(1)
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading password:", err)
		os.Exit(1)
	}
	if string(first) != string(second) {
		fmt.Fprintln(os.Stderr, "Error: passwords do not match")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword(first, cfg.BcryptCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error hashing password:", err)
		os.Exit(1)
	}

	fmt.Printf("SURVEY_SECRET_HASH=%s\n", hash)
}
