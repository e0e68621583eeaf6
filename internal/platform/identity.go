package platform

import (
	"fmt"
	"os"
	"os/user"
	"strings"
)

// Identity is the OS user the scaffolded project is attributed to.
type Identity struct {
	Username string
	Name     string // display name, may be empty
}

// CurrentIdentity returns the user running the process. When the user
// database is unavailable it falls back to $USER / $USERNAME.
func CurrentIdentity() (Identity, error) {
	u, err := user.Current()
	if err == nil && u.Username != "" {
		return Identity{Username: stripDomain(u.Username), Name: u.Name}, nil
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return Identity{Username: v}, nil
		}
	}
	if err == nil {
		err = fmt.Errorf("empty username")
	}
	return Identity{}, fmt.Errorf("resolving current user: %w", err)
}

// stripDomain turns a Windows "DOMAIN\user" login into "user".
func stripDomain(username string) string {
	if i := strings.LastIndex(username, `\`); i >= 0 {
		return username[i+1:]
	}
	return username
}

// Author formats the package.json author field, "name <email>".
// An empty name falls back to the username and an empty email to
// <username>@localhost.
func Author(id Identity, name, email string) string {
	if name == "" {
		name = id.Username
	}
	if email == "" {
		email = id.Username + "@localhost"
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
