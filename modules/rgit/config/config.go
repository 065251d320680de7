// Package config is repository-local configuration: named remotes
// recorded as "[remote.<name>] path = ..." in ".rgit/config.toml",
// written with an atomic create-then-rename, grounded on the teacher's
// modules/zeta/config/encode.go.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Remote is one configured named remote.
type Remote struct {
	Path string `toml:"path"`
}

// Config is the repository's config.toml content.
type Config struct {
	Remote map[string]Remote `toml:"remote"`
}

func fileName(repoRoot string) string {
	return filepath.Join(repoRoot, "config.toml")
}

// Load reads config.toml, returning an empty Config if it does not exist.
func Load(repoRoot string) (*Config, error) {
	c := &Config{Remote: make(map[string]Remote)}
	if _, err := toml.DecodeFile(fileName(repoRoot), c); err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	if c.Remote == nil {
		c.Remote = make(map[string]Remote)
	}
	return c, nil
}

// Save atomically rewrites config.toml: encode to a temp file in the same
// directory, then rename over the target, so a crash mid-write never
// leaves a half-written config behind.
func Save(repoRoot string, c *Config) error {
	tmp := filepath.Join(repoRoot, fmt.Sprintf(".config-%d.toml", time.Now().UnixNano()))
	fd, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := toml.NewEncoder(fd)
	enc.Indent = ""
	if err := enc.Encode(c); err != nil {
		_ = fd.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := fd.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, fileName(repoRoot)); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// SetRemote records (or overwrites) a named remote's path.
func SetRemote(repoRoot, name, path string) error {
	c, err := Load(repoRoot)
	if err != nil {
		return err
	}
	c.Remote[name] = Remote{Path: path}
	return Save(repoRoot, c)
}

// ResolveRemote returns the configured path for name, or name itself
// unchanged if it is not a configured remote — a bare filesystem path
// argument always works unresolved.
func ResolveRemote(repoRoot, name string) string {
	c, err := Load(repoRoot)
	if err != nil {
		return name
	}
	if r, ok := c.Remote[name]; ok {
		return r.Path
	}
	return name
}
