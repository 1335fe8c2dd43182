package notify

import (
	"fmt"

	"github.com/gantrydev/gantry/internal/config"
)

// FromConfig builds the configured notifiers.
func FromConfig(cfgs []config.NotifyConfig) ([]Notifier, error) {
	var notifiers []Notifier
	for i, cfg := range cfgs {
		switch cfg.Type {
		case "slack", "discord":
			notifiers = append(notifiers, NewWebhookNotifier(cfg.Type, cfg.URL))
		case "github":
			n, err := NewGitHubNotifier(cfg.Repo, cfg.Issue, cfg.Token, "")
			if err != nil {
				return nil, fmt.Errorf("notify[%d]: %w", i, err)
			}
			notifiers = append(notifiers, n)
		default:
			return nil, fmt.Errorf("notify[%d]: unsupported type %q", i, cfg.Type)
		}
	}
	return notifiers, nil
}
