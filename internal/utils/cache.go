package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"netcover.onebusaway.org/internal/report"
)

// CachedBundlePath returns the cache file name for a network's GTFS bundle
// downloaded from url. Files are named network_<id>_<sha1(url)>.zip.
func CachedBundlePath(cacheDir string, networkID int, url string) string {
	hash := sha1.Sum([]byte(url))
	return filepath.Join(cacheDir, fmt.Sprintf("network_%d_%s.zip", networkID, hex.EncodeToString(hash[:])))
}

// GetLastCachedFile returns the most recently modified cached bundle of a
// network.
func GetLastCachedFile(cacheDir string, networkID int) (string, error) {
	files, err := os.ReadDir(cacheDir)
	if err != nil {
		return "", err
	}

	var lastModTime time.Time
	var lastModFile string

	networkPrefix := fmt.Sprintf("network_%d_", networkID)

	for _, file := range files {
		if !file.IsDir() && strings.HasPrefix(file.Name(), networkPrefix) {
			fileInfo, err := file.Info()
			if err != nil {
				return "", err
			}
			if fileInfo.ModTime().After(lastModTime) {
				lastModTime = fileInfo.ModTime()
				lastModFile = file.Name()
			}
		}
	}

	if lastModFile == "" {
		return "", fmt.Errorf("no cached files found for network %d", networkID)
	}

	return filepath.Join(cacheDir, lastModFile), nil
}

// CreateCacheDirectory ensures the cache directory exists, creating it if necessary.
func CreateCacheDirectory(cacheDir string, logger *slog.Logger) error {
	stat, err := os.Stat(cacheDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(cacheDir, os.ModePerm); err != nil {
			reportCacheError(err, cacheDir)
			return err
		}
		logger.Info("Created cache directory", "cache_dir", cacheDir)
		return nil
	}
	if !stat.IsDir() {
		err := fmt.Errorf("%s is not a directory", cacheDir)
		reportCacheError(err, cacheDir)
		return err
	}
	return nil
}

func reportCacheError(err error, cacheDir string) {
	report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
		Level: sentry.LevelError,
		ExtraContext: map[string]interface{}{
			"cache_dir": cacheDir,
		},
	})
}
