package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultAppName names the per-user config and data directories.
const DefaultAppName = "shootdesk"

// Paths holds the resolved per-user locations for config, database, logs, and snapshots.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	// LogDir anchors dev log files.
	LogDir string
	// SnapshotDir receives timestamped `export --backup` files.
	SnapshotDir string
}

// SnapshotFile names one backup taken at t, e.g. shootdesk-20260310-141500.json.
func (p Paths) SnapshotFile(appName string, t time.Time) string {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		appName = DefaultAppName
	}
	return filepath.Join(p.SnapshotDir, fmt.Sprintf("%s-%s.json", appName, t.UTC().Format("20060102-150405")))
}

// Options selects the app directory name. DevMode appends "-dev" so a
// development build never touches production data.
type Options struct {
	AppName string
	DevMode bool
}

// DefaultPaths resolves paths for the production app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths for the current OS and environment.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = DefaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	if runtime.GOOS == "linux" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	env := map[string]string{}
	for _, name := range envOverrides[runtime.GOOS] {
		env[name] = strings.TrimSpace(os.Getenv(name))
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, appName)
}

// envOverrides lists, per GOOS, the variables that replace the config and data bases.
var envOverrides = map[string][2]string{
	"linux":   {"XDG_CONFIG_HOME", "XDG_DATA_HOME"},
	"windows": {"APPDATA", "LOCALAPPDATA"},
}

// PathsFor resolves paths for one platform without touching the process environment.
// macOS and other platforms keep the os.UserConfigDir defaults.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase, dataBase := userConfigDir, userDataDir
	if vars, ok := envOverrides[goos]; ok {
		if v := env[vars[0]]; v != "" {
			configBase = v
		}
		if v := env[vars[1]]; v != "" {
			dataBase = v
		}
	}

	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath:  filepath.Join(configBase, appName, "config.toml"),
		DataDir:     dataDir,
		DBPath:      filepath.Join(dataDir, appName+".db"),
		LogDir:      filepath.Join(dataDir, "log"),
		SnapshotDir: filepath.Join(dataDir, "snapshots"),
	}, nil
}
