// Command useradd provisions a portal login. The web application never
// creates users itself.
//
//	useradd -username alice
//
// The password is prompted twice without echo, or read from the first line
// of stdin when stdin is not a terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"

	"file-portal/internal/auth"
	"file-portal/internal/config"
	"file-portal/internal/db"
	"file-portal/internal/users"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type userCreator interface {
	Create(ctx context.Context, u users.UserProfile) error
}

func main() {
	config.LoadDotenv()

	databaseURL := os.Getenv("DATABASE_URL")
	dbConn, err := db.Open(databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "useradd: connect: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = dbConn.Close() }()

	if err := db.RunMigrations(databaseURL); err != nil {
		fmt.Fprintf(os.Stderr, "useradd: migrate: %v\n", err)
		os.Exit(1)
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if err := run(context.Background(), os.Args[1:], os.Stdin, interactive, os.Stdout, users.NewPostgresStore(dbConn)); err != nil {
		fmt.Fprintf(os.Stderr, "useradd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, interactive bool, out io.Writer, store userCreator) error {
	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.SetOutput(out)
	username := fs.String("username", "", "login name (letters, numbers, underscores)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" && fs.NArg() == 1 {
		*username = fs.Arg(0)
	}
	if ok, msg := users.ValidateUsername(*username); !ok {
		return errors.New(msg)
	}

	password, err := promptPassword(stdin, interactive, out)
	if err != nil {
		return err
	}
	if ok, msg := users.ValidatePassword(password); !ok {
		return errors.New(msg)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u := users.UserProfile{ID: uuid.NewString(), Username: *username, PasswordHash: hash}
	if err := store.Create(ctx, u); err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			return fmt.Errorf("user %q already exists", u.Username)
		}
		return err
	}

	fmt.Fprintf(out, "created user %s (%s)\n", u.Username, u.ID)
	return nil
}

func promptPassword(stdin io.Reader, interactive bool, out io.Writer) (string, error) {
	if !interactive {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	first, err := readTerminal(out, "Password: ")
	if err != nil {
		return "", err
	}
	second, err := readTerminal(out, "Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

func readTerminal(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
