package config

import (
	"time"

	"github.com/gantrydev/gantry/task"
)

// Config is the top-level configuration for a gantry host.
type Config struct {
	Engine  EngineConfig   `yaml:"engine" json:"engine"`
	Storage StorageConfig  `yaml:"storage" json:"storage"`
	Server  ServerConfig   `yaml:"server" json:"server"`
	Notify  []NotifyConfig `yaml:"notify" json:"notify"`
}

// EngineConfig holds the task factory settings.
type EngineConfig struct {
	// Mode selects how Execute surfaces synchronous throws:
	// "outcome" (the default) converts them to Failure outcomes,
	// "rethrow" keeps the legacy propagating behaviour.
	Mode string `yaml:"mode" json:"mode"`
	// DoneTimeoutMs bounds waiting on a task's done future when the
	// caller supplies no deadline. 0 means unbounded.
	DoneTimeoutMs int `yaml:"done_timeout_ms" json:"done_timeout_ms"`
}

// FactoryOptions maps the engine section to task factory options.
func (e EngineConfig) FactoryOptions() task.Options {
	opts := task.DefaultOptions()
	if e.Mode == "rethrow" {
		opts.ReturnSuccessOrFailure = false
	}
	if e.DoneTimeoutMs > 0 {
		opts.DoneTimeout = time.Duration(e.DoneTimeoutMs) * time.Millisecond
	}
	return opts
}

// StorageConfig holds snapshot store settings.
type StorageConfig struct {
	Path string `yaml:"path" json:"path"`
}

// ServerConfig holds inspection server settings.
type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

// NotifyConfig defines a completion notifier target.
type NotifyConfig struct {
	Type  string `yaml:"type" json:"type"`   // slack|discord|github
	URL   string `yaml:"url" json:"url"`     // webhook URL for slack/discord
	Repo  string `yaml:"repo" json:"repo"`   // owner/repo for github
	Issue int    `yaml:"issue" json:"issue"` // issue number for github
	Token string `yaml:"token" json:"token"` // API token for github
}
