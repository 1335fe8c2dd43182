package config

import (
	"fmt"
	"strings"
)

// validEngineModes is the set of supported execute wrapping modes.
var validEngineModes = map[string]bool{
	"":        true, // defaults to outcome
	"outcome": true,
	"rethrow": true,
}

// validNotifyTypes is the set of supported notifier types.
var validNotifyTypes = map[string]bool{
	"slack":   true,
	"discord": true,
	"github":  true,
}

// Validate checks the Config for completeness and correctness.
// It reports every problem found in one error, one line per problem,
// each prefixed with "config: ".
func Validate(cfg *Config) error {
	var errs []string

	if !validEngineModes[cfg.Engine.Mode] {
		errs = append(errs, fmt.Sprintf(
			"config: engine.mode '%s' is invalid; must be one of: outcome, rethrow",
			cfg.Engine.Mode))
	}
	if cfg.Engine.DoneTimeoutMs < 0 {
		errs = append(errs, fmt.Sprintf(
			"config: engine.done_timeout_ms must be >= 0, got %d",
			cfg.Engine.DoneTimeoutMs))
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf(
			"config: server.port must be between 0 and 65535, got %d",
			cfg.Server.Port))
	}

	for i, n := range cfg.Notify {
		errs = append(errs, validateNotify(i, &n)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}

func validateNotify(i int, n *NotifyConfig) []string {
	var errs []string

	if !validNotifyTypes[n.Type] {
		errs = append(errs, fmt.Sprintf(
			"config: notify[%d].type '%s' is invalid; must be one of: slack, discord, github",
			i, n.Type))
		return errs
	}

	switch n.Type {
	case "slack", "discord":
		if n.URL == "" {
			errs = append(errs, fmt.Sprintf("config: notify[%d].url is required for %s", i, n.Type))
		}
	case "github":
		if n.Repo == "" || !strings.Contains(n.Repo, "/") {
			errs = append(errs, fmt.Sprintf("config: notify[%d].repo must be owner/repo", i))
		}
		if n.Issue <= 0 {
			errs = append(errs, fmt.Sprintf("config: notify[%d].issue must be a positive issue number", i))
		}
		if n.Token == "" {
			errs = append(errs, fmt.Sprintf("config: notify[%d].token is required for github", i))
		}
	}

	return errs
}
