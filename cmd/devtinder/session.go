package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devtinder/devtinder/internal/api"
	"github.com/devtinder/devtinder/internal/auth"
)

var (
	loginEmail    string
	loginPassword string

	registerFirst string
	registerLast  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and cache the session",
	Long: `Sign in to DevTinder and cache the session locally.

The password is prompted for when --password is not given. Examples:

  devtinder login --email ada@devtinder.local
  DEVTINDER_API_BASE_URL=http://localhost:3000 devtinder login --email ada@devtinder.local`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the cached session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE:  runRegister,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVar(&loginEmail, "email", "", "account email (required)")
	registerCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerFirst, "first-name", "", "first name (required)")
	registerCmd.Flags().StringVar(&registerLast, "last-name", "", "last name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("first-name")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(api.NopNavigator{}, false)
	if err != nil {
		return err
	}
	defer a.close()

	password, err := resolvePassword()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestCtx()
	defer cancel()
	user, err := a.auth.Login(ctx, loginEmail, password)
	if err != nil {
		if api.IsUnauthorized(err) || api.IsStatus(err, 400) {
			return fmt.Errorf("invalid credentials")
		}
		return err
	}

	fmt.Printf("Signed in as %s\n", user.FullName())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(api.NopNavigator{}, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := a.requestCtx()
	defer cancel()
	if err := a.auth.Logout(ctx); err != nil {
		// Local state is already gone; the server just didn't hear about it.
		fmt.Fprintln(os.Stderr, "Warning: server logout failed; local session discarded")
	}
	fmt.Println("Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp(api.NopNavigator{}, false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.bootstrap(); err != nil {
		return err
	}
	user, ok := a.store.Current()
	if !ok {
		return fmt.Errorf("not signed in")
	}
	return printUser(user)
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp(api.NopNavigator{}, false)
	if err != nil {
		return err
	}
	defer a.close()

	password, err := resolvePassword()
	if err != nil {
		return err
	}

	ctx, cancel := a.requestCtx()
	defer cancel()
	user, err := a.auth.Register(ctx, auth.RegisterRequest{
		FirstName: registerFirst,
		LastName:  registerLast,
		EmailID:   loginEmail,
		Password:  password,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Registered and signed in as %s\n", user.FullName())
	return nil
}

// resolvePassword uses --password when given, otherwise prompts without echo.
func resolvePassword() (string, error) {
	if loginPassword != "" {
		return loginPassword, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	// Piped stdin.
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
