package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"langops/pkg/config"
)

// cmdSecrets manages the encrypted credentials file.
func cmdSecrets(args []string) error {
	fs := flag.NewFlagSet("secrets", flag.ExitOnError)
	projectDir := fs.String("projectdir", ".", "Project directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch fs.Arg(0) {
	case "init":
		return secretsInit(*projectDir)
	case "list":
		return secretsList(*projectDir)
	default:
		return fmt.Errorf("usage: langops secrets [flags] init|list")
	}
}

// secretsInit interactively collects provider API keys and writes the
// encrypted secrets file.
func secretsInit(projectDir string) error {
	password, err := promptForPassword()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	secrets := make(map[string]string)
	for _, name := range []string{
		config.SecretAnthropicAPIKey,
		config.SecretOpenAIAPIKey,
		config.SecretGeminiAPIKey,
	} {
		fmt.Printf("%s (leave empty to skip): ", name)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if value := strings.TrimSpace(line); value != "" {
			secrets[name] = value
		}
	}

	if err := config.EncryptSecretsFile(projectDir, password, secrets); err != nil {
		return fmt.Errorf("failed to encrypt secrets: %w", err)
	}

	fmt.Printf("Credentials saved to %s/secrets.json.enc (file permissions: 0600)\n", config.ProjectConfigDir)
	return nil
}

// secretsList prints the names of stored secrets, never the values.
func secretsList(projectDir string) error {
	if err := unlockSecrets(projectDir); err != nil {
		return err
	}
	for _, name := range config.GetDecryptedSecretNames() {
		fmt.Println(name)
	}
	return nil
}

// unlockSecrets decrypts the secrets file into memory when it exists.
// Keys can also come from plain environment variables, so a missing file is
// not an error.
func unlockSecrets(projectDir string) error {
	if !config.SecretsFileExists(projectDir) {
		return nil
	}

	password := os.Getenv("LANGOPS_PASSWORD")
	if password == "" {
		fmt.Print("Project password: ")
		raw, err := term.ReadPassword(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}

	secrets, err := config.DecryptSecretsFile(projectDir, password)
	if err != nil {
		return err
	}
	config.SetDecryptedSecrets(secrets)
	return nil
}

// promptForPassword prompts for a new password with confirmation.
func promptForPassword() (string, error) {
	maxAttempts := 3
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Print("Enter a password for this project: ")
		password1, err := term.ReadPassword(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		fmt.Print("Confirm password: ")
		password2, err := term.ReadPassword(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		if !bytes.Equal(password1, password2) {
			if attempt < maxAttempts {
				fmt.Println("Passwords do not match. Please try again.")
				continue
			}
			return "", fmt.Errorf("passwords do not match after %d attempts", maxAttempts)
		}

		password := string(password1)
		for i := range password1 {
			password1[i] = 0
		}
		for i := range password2 {
			password2[i] = 0
		}
		return password, nil
	}
	return "", fmt.Errorf("password entry failed")
}
