// Package installation models the configured installation directories a
// flatpak client works against: the per-user one, the default system-wide
// one, and any named secondary system installations declared under
// installations.d.
package installation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Dir is one configured installation directory.
type Dir struct {
	ID          string
	DisplayName string
	Path        string
	User        bool
}

// ScopeID returns the identifier journal entries use to attribute an event
// to an installation. User installations are always "user"; the well-known
// default system id maps to "system"; a system installation without an id
// is "unknown".
func (d Dir) ScopeID() string {
	if d.User {
		return "user"
	}
	if d.ID == "" {
		return "unknown"
	}
	if d.ID == "default" {
		return "system"
	}
	return d.ID
}

// UserDir returns the per-user installation, honoring XDG_DATA_HOME.
func UserDir() Dir {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Dir{User: true, Path: filepath.Join(".local", "share", "flatpak")}
		}
		base = filepath.Join(home, ".local", "share")
	}
	return Dir{User: true, Path: filepath.Join(base, "flatpak")}
}

// DefaultSystemDir returns the default system-wide installation.
func DefaultSystemDir() Dir {
	return Dir{ID: "default", Path: "/var/lib/flatpak"}
}

// ConfigDir returns the directory holding installations.d, overridable via
// FLATPAK_CONFIG_DIR for tests and relocated deployments.
func ConfigDir() string {
	if dir := os.Getenv("FLATPAK_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "/etc/flatpak"
}

// installationsFile mirrors one installations.d/*.conf TOML file. A file
// may declare several installations.
type installationsFile struct {
	Installation []struct {
		ID          string `toml:"id"`
		Path        string `toml:"path"`
		DisplayName string `toml:"display-name"`
	} `toml:"installation"`
}

// SystemDirs returns the default system installation followed by every
// installation declared under configDir/installations.d, sorted by file
// name for a stable order. A missing installations.d is not an error.
func SystemDirs(configDir string) ([]Dir, error) {
	dirs := []Dir{DefaultSystemDir()}

	confD := filepath.Join(configDir, "installations.d")
	entries, err := os.ReadDir(confD)
	if err != nil {
		if os.IsNotExist(err) {
			return dirs, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", confD, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".conf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(confD, name)
		var f installationsFile
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, inst := range f.Installation {
			if inst.Path == "" {
				return nil, fmt.Errorf("installation %q in %s has no path", inst.ID, path)
			}
			dirs = append(dirs, Dir{
				ID:          inst.ID,
				DisplayName: inst.DisplayName,
				Path:        inst.Path,
			})
		}
	}

	return dirs, nil
}

// systemDirByID finds a named system installation.
func systemDirByID(configDir, id string) (Dir, error) {
	dirs, err := SystemDirs(configDir)
	if err != nil {
		return Dir{}, err
	}
	for _, d := range dirs {
		if d.ID == id {
			return d, nil
		}
	}
	return Dir{}, fmt.Errorf("no installation with id %q", id)
}

// DirsForFilter resolves the scope-selection flags of commands that can
// work across every installation at once (like history). When no flag is
// given it returns nil, meaning "no filter, include all installations".
func DirsForFilter(userFlag, systemFlag bool, installations []string) ([]Dir, error) {
	if !userFlag && !systemFlag && len(installations) == 0 {
		return nil, nil
	}

	var dirs []Dir
	if systemFlag {
		dirs = append(dirs, DefaultSystemDir())
	}
	if userFlag {
		dirs = append(dirs, UserDir())
	}
	for _, id := range installations {
		// --system already covers the default installation.
		if systemFlag && id == "default" {
			continue
		}
		d, err := systemDirByID(ConfigDir(), id)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}

	return dirs, nil
}

// DirForCommand resolves the scope-selection flags of commands that work
// on exactly one installation (like ls-remote). No flag at all selects the
// default system installation.
func DirForCommand(userFlag, systemFlag bool, installations []string) (Dir, error) {
	if (systemFlag && userFlag) ||
		(systemFlag && len(installations) > 0) ||
		(userFlag && len(installations) > 0) ||
		len(installations) > 1 {
		return Dir{}, fmt.Errorf("multiple installations specified for a command that works on one installation")
	}

	switch {
	case userFlag:
		return UserDir(), nil
	case len(installations) == 1:
		return systemDirByID(ConfigDir(), installations[0])
	default:
		return DefaultSystemDir(), nil
	}
}
