package config

import (
	"os"
	"path/filepath"
)

// Find returns the config file to load: explicit when set, otherwise the
// first of [FileNames] found in the working directory and then in
// [ConfigDir]. It returns "" when there is none.
func Find(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dirs := []string{"."}
	if dir, err := ConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if st, err := os.Stat(path); err == nil && !st.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadDefault loads the file chosen by [Find], or the defaults when there
// is none. The returned path is empty in the latter case.
func LoadDefault(explicit string) (Config, string, error) {
	path := Find(explicit)
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// ConfigDir returns $XDG_CONFIG_HOME/pinboard, defaulting to ~/.config.
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns $XDG_CACHE_HOME/pinboard, defaulting to ~/.cache.
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DataDir returns $XDG_DATA_HOME/pinboard, defaulting to ~/.local/share.
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}

// DirOrDefault returns c.Dir or [CacheDir].
func (c Cache) DirOrDefault() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	return CacheDir()
}

// DirOrDefault returns s.Dir or a "boards" directory below [DataDir].
func (s Store) DirOrDefault() (string, error) {
	if s.Dir != "" {
		return s.Dir, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "boards"), nil
}
