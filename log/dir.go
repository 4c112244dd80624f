package log

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const dirEnv = "VOICE_DICTATION_LOG_PATH"

// ResolveDir picks the log directory: the -logpath flag, then $VOICE_DICTATION_LOG_PATH,
// then ~/Library/Logs/voice-dictation on macOS or the user cache dir elsewhere.
// Relative paths are taken from the working directory.
func ResolveDir(flagPath string) (string, error) {
	for _, p := range []string{flagPath, os.Getenv(dirEnv)} {
		if p = strings.TrimSpace(p); p != "" {
			return filepath.Abs(p)
		}
	}
	return defaultDir()
}

func defaultDir() (string, error) {
	if runtime.GOOS == "darwin" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Logs", "voice-dictation"), nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cache, "voice-dictation", "logs"), nil
}

func SetDir(d string) { dir = d }

func Dir() string { return dir }
