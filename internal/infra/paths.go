package infra

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is used for the data directory, the mutex and the Run key value.
const AppName = "padshell"

// Paths holds every on-disk location the shell uses.
type Paths struct {
	DataDir      string // config and logs live here
	ConfigPath   string
	LogPath      string
	ErrorLogPath string
}

// DetectPaths resolves the per-user data directory.
// On Windows this is %LOCALAPPDATA%\padshell, elsewhere ~/.padshell.
func DetectPaths() *Paths {
	return PathsFor(defaultDataDir())
}

// PathsFor derives all locations from a data directory.
func PathsFor(dataDir string) *Paths {
	return &Paths{
		DataDir:      dataDir,
		ConfigPath:   filepath.Join(dataDir, "config.yaml"),
		LogPath:      filepath.Join(dataDir, AppName+".log"),
		ErrorLogPath: filepath.Join(dataDir, AppName+".error.log"),
	}
}

// Ensure creates the data directory.
func (p *Paths) Ensure() error {
	return os.MkdirAll(p.DataDir, 0755)
}

func defaultDataDir() string {
	if runtime.GOOS == "windows" {
		if dir, err := os.UserCacheDir(); err == nil {
			return filepath.Join(dir, AppName)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, "."+AppName)
}
