package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/medlembra/medlembra/internal/db"
	"github.com/medlembra/medlembra/internal/security"
	"github.com/medlembra/medlembra/internal/services"
	"golang.org/x/crypto/bcrypt"
)

const temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

var errPasswordsDiffer = errors.New("passwords do not match")

// ResetPasswordOptions configures the reset-password operator command.
type ResetPasswordOptions struct {
	Database db.Config
	Email    string
	// Prompt asks for the new password on the terminal instead of
	// generating a temporary one.
	Prompt bool
	Stdin  *os.File
	Stdout io.Writer
	// readSecret is swapped in tests.
	readSecret func(*os.File) ([]byte, error)
}

func RunResetPasswordCommand(ctx context.Context, options ResetPasswordOptions) error {
	email := services.NormalizeAuthEmail(options.Email)
	if email == "" {
		return errors.New("a valid email is required")
	}
	if options.Stdout == nil {
		options.Stdout = os.Stdout
	}
	if options.Stdin == nil {
		options.Stdin = os.Stdin
	}
	if options.readSecret == nil {
		options.readSecret = readHiddenLine
	}

	database, err := db.Open(options.Database)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}
	users := db.NewUserRepository(database)

	user, found, err := users.FindByNormalizedEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !found {
		return fmt.Errorf("user %s not found", email)
	}

	password, generated, err := resolveNewPassword(options)
	if err != nil {
		return err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := users.UpdatePasswordHash(ctx, user.ID, string(passwordHash)); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	slog.Info("password reset", "user_id", user.ID, "generated", generated)

	fmt.Fprintln(options.Stdout, "Password reset successful")
	if generated {
		fmt.Fprintf(options.Stdout, "Temporary password: %s\n", password)
	}
	return nil
}

func resolveNewPassword(options ResetPasswordOptions) (string, bool, error) {
	if !options.Prompt {
		password, err := generateTemporaryPassword(12)
		if err != nil {
			return "", false, fmt.Errorf("generate temporary password: %w", err)
		}
		return password, true, nil
	}

	fmt.Fprint(options.Stdout, "New password: ")
	first, err := options.readSecret(options.Stdin)
	fmt.Fprintln(options.Stdout)
	if err != nil {
		return "", false, fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(options.Stdout, "Repeat password: ")
	second, err := options.readSecret(options.Stdin)
	fmt.Fprintln(options.Stdout)
	if err != nil {
		return "", false, fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", false, errPasswordsDiffer
	}
	if err := services.ValidatePasswordStrength(string(first)); err != nil {
		return "", false, err
	}
	return string(first), false, nil
}

// generateTemporaryPassword always satisfies the password strength policy.
func generateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}
	for {
		password, err := security.RandomString(length, temporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		if services.ValidatePasswordStrength(password) == nil {
			return password, nil
		}
	}
}
