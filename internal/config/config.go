package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"netcover.onebusaway.org/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds all the configuration settings for our application.
type Config struct {
	Port            int
	Env             string
	LogLevel        string
	LogFormat       string
	RefreshInterval int // minutes between re-analysis, 0 disables it
	MaxRetries      int
	CacheDir        string
	Mu              sync.RWMutex
	Networks        []models.Network
}

// NewConfig creates a new instance of a Config struct.
func NewConfig(port int, env string, networks []models.Network) *Config {
	return &Config{
		Port:     port,
		Env:      env,
		Networks: networks,
	}
}

// UpdateConfig safely replaces the configured networks.
func (cfg *Config) UpdateConfig(newNetworks []models.Network) {
	cfg.Mu.Lock()
	defer cfg.Mu.Unlock()
	cfg.Networks = newNetworks
}

// GetNetworks safely returns a copy of the networks slice.
// Other packages should use it instead of reading Networks directly.
func (cfg *Config) GetNetworks() []models.Network {
	cfg.Mu.RLock()
	defer cfg.Mu.RUnlock()
	return append([]models.Network(nil), cfg.Networks...)
}

// ValidateNetworks checks a network list read from a config source.
// Every network needs a name, a unique ID and exactly one record source:
// a GTFS URL, or both a stops file and a connections file. Numeric settings
// must not be negative.
func ValidateNetworks(networks []models.Network) error {
	var errs []error
	seen := make(map[int]bool, len(networks))

	for i, n := range networks {
		label := fmt.Sprintf("network %d (%q)", i, n.Name)
		if err := validate.Struct(n); err != nil {
			errs = append(errs, fieldErrors(label, err)...)
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %d", label, n.ID))
		}
		seen[n.ID] = true

		hasFiles := n.StopsFile != "" || n.ConnectionsFile != ""
		switch {
		case n.GtfsUrl != "" && hasFiles:
			errs = append(errs, fmt.Errorf("%s: gtfs_url and record files are mutually exclusive", label))
		case n.GtfsUrl == "" && (n.StopsFile == "" || n.ConnectionsFile == ""):
			errs = append(errs, fmt.Errorf("%s: either gtfs_url or both stops_file and connections_file are required", label))
		}
	}
	return errors.Join(errs...)
}

func fieldErrors(label string, err error) []error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{fmt.Errorf("%s: %w", label, err)}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Errorf("%s: field %s failed %q check", label, fe.Field(), fe.Tag()))
	}
	return out
}
