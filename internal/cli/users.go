package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/locallibrary/internal/entities"
	"github.com/mrlokans/locallibrary/internal/entrypoint"
)

// CreateUserCommand adds a librarian or patron account.
type CreateUserCommand struct {
	DatabasePath string
	Username     string
	Email        string
	Password     string
	Role         string
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the SQLite catalog (defaults to DATABASE_PATH)")
	fs.StringVar(&cmd.Username, "username", "", "Login name (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 12 characters (required)")
	fs.StringVar(&cmd.Role, "role", string(entities.UserRolePatron), "Account role: librarian or patron")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <addr> -password <pw> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a catalog account. Librarians hold every permission.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("-username, -email and -password are required")
	}
	return nil
}

func (cmd *CreateUserCommand) Run() error {
	return withApp(cmd.DatabasePath, cmd.run)
}

func (cmd *CreateUserCommand) run(ctx context.Context, app *entrypoint.App) error {
	user, err := app.Auth.CreateUser(ctx, cmd.Username, cmd.Email, cmd.Password, entities.UserRole(cmd.Role))
	if err != nil {
		return err
	}
	fmt.Printf("Created %s %q (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}

// PermissionCommand grants or revokes a named capability.
type PermissionCommand struct {
	Revoke       bool
	DatabasePath string
	Username     string
	Permission   string
}

func NewGrantCommand() *PermissionCommand {
	return &PermissionCommand{}
}

func NewRevokeCommand() *PermissionCommand {
	return &PermissionCommand{Revoke: true}
}

func (cmd *PermissionCommand) name() string {
	if cmd.Revoke {
		return "revoke"
	}
	return "grant"
}

func (cmd *PermissionCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet(cmd.name(), flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the SQLite catalog (defaults to DATABASE_PATH)")
	fs.StringVar(&cmd.Username, "username", "", "Account to change (required)")
	fs.StringVar(&cmd.Permission, "perm", string(entities.PermissionCanMarkReturned), "Permission codename")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s -username <name> [-perm <codename>]\n\n", os.Args[0], cmd.name())
		fmt.Fprintf(os.Stderr, "Known permissions:\n")
		for _, p := range entities.KnownPermissions() {
			fmt.Fprintf(os.Stderr, "  %s\n", p)
		}
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		fs.Usage()
		return fmt.Errorf("-username is required")
	}
	return nil
}

func (cmd *PermissionCommand) Run() error {
	return withApp(cmd.DatabasePath, cmd.run)
}

func (cmd *PermissionCommand) run(ctx context.Context, app *entrypoint.App) error {
	perm := entities.Permission(cmd.Permission)
	if cmd.Revoke {
		if err := app.Auth.Revoke(ctx, cmd.Username, perm); err != nil {
			return err
		}
		fmt.Printf("Revoked %s from %q\n", perm, cmd.Username)
		return nil
	}
	if err := app.Auth.Grant(ctx, cmd.Username, perm); err != nil {
		return err
	}
	fmt.Printf("Granted %s to %q\n", perm, cmd.Username)
	return nil
}

// PasswordCommand changes an account password after checking the old one.
type PasswordCommand struct {
	DatabasePath string
	Username     string
	OldPassword  string
	NewPassword  string
}

func NewPasswordCommand() *PasswordCommand {
	return &PasswordCommand{}
}

func (cmd *PasswordCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the SQLite catalog (defaults to DATABASE_PATH)")
	fs.StringVar(&cmd.Username, "username", "", "Account to change (required)")
	fs.StringVar(&cmd.OldPassword, "old", "", "Current password (required)")
	fs.StringVar(&cmd.NewPassword, "new", "", "New password, at least 12 characters (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s passwd -username <name> -old <pw> -new <pw>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.OldPassword == "" || cmd.NewPassword == "" {
		fs.Usage()
		return fmt.Errorf("-username, -old and -new are required")
	}
	return nil
}

func (cmd *PasswordCommand) Run() error {
	return withApp(cmd.DatabasePath, cmd.run)
}

func (cmd *PasswordCommand) run(ctx context.Context, app *entrypoint.App) error {
	user, err := app.Auth.GetUserByUsername(ctx, cmd.Username)
	if err != nil {
		return err
	}
	if err := app.Auth.ChangePassword(ctx, user.ID, cmd.OldPassword, cmd.NewPassword); err != nil {
		return err
	}
	fmt.Printf("Password changed for %q\n", user.Username)
	return nil
}
