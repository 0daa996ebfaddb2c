package main

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"schoolapi/internal/auth"
	"schoolapi/internal/config"
	"schoolapi/internal/database"
	"schoolapi/internal/model"
	"schoolapi/internal/repository/postgres"
)

// roleChoices maps menu selections to seeded role names.
var roleChoices = map[string]string{
	"1": model.RoleAdmin,
	"2": model.RoleEditor,
	"3": model.RoleUser,
}

func newCreateUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account interactively",
		Long: `create-user prompts for a role, email, username and password (with
confirmation) and creates the account. Accounts created this way are
active and verified immediately. Run init-db first so the default roles
exist.`,
		RunE: runCreateUser,
	}
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	in := bufio.NewReader(cmd.InOrStdin())

	roleName, err := promptRole(cmd, in)
	if err != nil {
		return err
	}
	email, err := promptLine(cmd, in, "Email: ")
	if err != nil {
		return err
	}
	username, err := promptLine(cmd, in, "Username: ")
	if err != nil {
		return err
	}
	password, err := promptPassword(cmd, in)
	if err != nil {
		return err
	}

	cfg := config.Load()
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	users := postgres.NewUserPostgres(db)
	roles := postgres.NewRolePostgres(db)

	role, err := roles.FindByName(ctx, roleName)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("role %q does not exist; run init-db first", roleName)
	}
	if err != nil {
		return fmt.Errorf("look up role: %w", err)
	}

	if _, err := users.FindByEmail(ctx, email); err == nil {
		return fmt.Errorf("a user with email %s already exists", email)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check email: %w", err)
	}
	if _, err := users.FindByUsername(ctx, username); err == nil {
		return fmt.Errorf("a user with username %s already exists", username)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check username: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	created, err := users.Create(ctx, &model.User{
		Email:          email,
		Username:       username,
		HashedPassword: hash,
		RoleID:         role.ID,
		IsActive:       true,
		IsVerified:     true,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	cmd.Printf("Created %s user %s (id %d)\n", roleName, created.Username, created.ID)
	return nil
}

// promptRole shows the role menu and returns the selected role name.
func promptRole(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	cmd.Printf("Select a role:\n")
	cmd.Printf("  1) %s\n", model.RoleAdmin)
	cmd.Printf("  2) %s\n", model.RoleEditor)
	cmd.Printf("  3) %s\n", model.RoleUser)

	choice, err := promptLine(cmd, in, "Role [1-3]: ")
	if err != nil {
		return "", err
	}
	name, ok := roleChoices[choice]
	if !ok {
		return "", fmt.Errorf("invalid role selection %q", choice)
	}
	return name, nil
}

// promptLine reads one non-empty line of input.
func promptLine(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	cmd.Printf("%s", label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("input must not be empty")
	}
	return line, nil
}

// promptPassword reads the password twice, echoing nothing when stdin is a
// terminal, and enforces the same strength policy as registration.
func promptPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	const attempts = 3
	for i := 0; i < attempts; i++ {
		password, err := readSecret(cmd, in, "Password: ")
		if err != nil {
			return "", err
		}
		if err := auth.ValidatePasswordStrength(password); err != nil {
			cmd.PrintErrf("%v\n", err)
			continue
		}
		confirm, err := readSecret(cmd, in, "Confirm password: ")
		if err != nil {
			return "", err
		}
		if password != confirm {
			cmd.PrintErrln("passwords do not match")
			continue
		}
		return password, nil
	}
	return "", errors.New("too many failed password attempts")
}

func readSecret(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	cmd.Printf("%s", label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	// Not a terminal (tests, piped input): read a plain line.
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
