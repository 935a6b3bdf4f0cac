package user

import (
	"os"
	"os/exec"
	"strings"

	gitconfig "github.com/go-git/go-git/v5/config"
)

const (
	// SourceConfig indicates the author came from userdoc configuration.
	SourceConfig = "config"

	// SourceGitConfig indicates the author came from the global git config.
	SourceGitConfig = "git-config"

	// SourceEnvironment indicates the author came from $USER or whoami.
	SourceEnvironment = "environment"
)

// Author signs the commits of a run.
type Author struct {
	Name   string
	Email  string
	Source string
}

// DetectAuthor resolves the commit author.
// Priority order:
//  1. Explicit name from configuration
//  2. Global git config (user.name + user.email)
//  3. Environment ($USER or whoami)
func DetectAuthor(name, email string) Author {
	if name != "" {
		return Author{Name: name, Email: email, Source: SourceConfig}
	}

	if a, ok := detectFromGitConfig(); ok {
		if email != "" {
			a.Email = email
		}
		return a
	}

	a := detectFromEnvironment()
	if email != "" {
		a.Email = email
	}
	return a
}

func detectFromGitConfig() (Author, bool) {
	cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope)
	if err != nil {
		return Author{}, false
	}
	name := strings.TrimSpace(cfg.User.Name)
	if name == "" {
		return Author{}, false
	}
	return Author{
		Name:   name,
		Email:  strings.TrimSpace(cfg.User.Email),
		Source: SourceGitConfig,
	}, true
}

func detectFromEnvironment() Author {
	name := strings.TrimSpace(os.Getenv("USER"))
	if name == "" {
		if out, err := exec.Command("whoami").Output(); err == nil {
			name = strings.TrimSpace(string(out))
		}
	}
	if name == "" {
		name = "userdoc"
	}

	return Author{
		Name:   name,
		Email:  deriveEmail(name),
		Source: SourceEnvironment,
	}
}

// deriveEmail builds a placeholder address from a login name, keeping only
// characters that are safe in the local part.
func deriveEmail(name string) string {
	var cleaned strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.' || r == '_' {
			cleaned.WriteRune(r)
		}
	}
	local := cleaned.String()
	if local == "" {
		local = "userdoc"
	}
	return local + "@localhost"
}
