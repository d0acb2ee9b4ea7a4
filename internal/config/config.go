// Package config defines the necessary types to configure the
// application. An example config file config.yaml is provided in the
// repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	Provider     Provider     `yaml:"provider"`
	Backend      Backend      `yaml:"backend"`
	Registration Registration `yaml:"registration"`
	Liveness     Liveness     `yaml:"liveness"`
	Theme        Theme        `yaml:"theme"`
}

// Provider holds the identity provider connection parameters. The
// bridge refuses to initialise without them.
type Provider struct {
	ProjectID string              `yaml:"projectID"`
	APIKey    commoncfg.SourceRef `yaml:"apiKey"`

	// Endpoint and TokenEndpoint override the public identity toolkit
	// hosts, used by tests and on-premise deployments.
	Endpoint      string `yaml:"endpoint" default:"https://identitytoolkit.googleapis.com"`
	TokenEndpoint string `yaml:"tokenEndpoint" default:"https://securetoken.googleapis.com"`

	RequestTimeout time.Duration `yaml:"requestTimeout" default:"10s"`
}

// Backend addresses the server owning the cookie-backed session.
type Backend struct {
	BaseURL        string        `yaml:"baseURL" default:"http://localhost:8080"`
	SessionPath    string        `yaml:"sessionPath" default:"/auth/session"`
	LogoutPath     string        `yaml:"logoutPath" default:"/auth/logout"`
	RequestTimeout time.Duration `yaml:"requestTimeout" default:"10s"`
}

type Registration struct {
	RegisterPath   string        `yaml:"registerPath" default:"/api/registration/register"`
	RequestTimeout time.Duration `yaml:"requestTimeout" default:"15s"`
	// RedirectTo is where a completed registration sends the user.
	RedirectTo string `yaml:"redirectTo" default:"/dashboard"`
}

type Liveness struct {
	HealthPath   string        `yaml:"healthPath" default:"/health"`
	PollInterval time.Duration `yaml:"pollInterval" default:"1s"`
}

type Theme struct {
	// File persists the light/dark preference between runs.
	File string `yaml:"file" default:".auth-bridge-theme"`
}
