// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config reads engine settings from the environment and an
// optional dotenv file.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/devblok/potentia/core"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultFile is read when Load is given no files
const DefaultFile = ".env"

// Settings are the knobs that can be set without recompiling
type Settings struct {
	Title  string `env:"POTENTIA_TITLE" envDefault:"sosig game"`
	Width  int    `env:"POTENTIA_WIDTH" envDefault:"1000"`
	Height int    `env:"POTENTIA_HEIGHT" envDefault:"800"`

	ApplicationName string   `env:"POTENTIA_APPLICATION" envDefault:"game A"`
	Debug           bool     `env:"POTENTIA_DEBUG" envDefault:"true"`
	Layers          []string `env:"POTENTIA_LAYERS" envSeparator:"," envDefault:"VK_LAYER_KHRONOS_validation"`

	LogLevel string `env:"POTENTIA_LOG_LEVEL" envDefault:"info"`

	// Assets is a directory shaders are looked up in,
	// Archive a kar archive that takes precedence over it
	Assets         string `env:"POTENTIA_ASSETS" envDefault:"assets"`
	Archive        string `env:"POTENTIA_ARCHIVE"`
	VertexShader   string `env:"POTENTIA_VERTEX_SHADER" envDefault:"shaders/vert.spv"`
	FragmentShader string `env:"POTENTIA_FRAGMENT_SHADER" envDefault:"shaders/frag.spv"`

	FramesPerSecond int `env:"POTENTIA_FPS" envDefault:"60"`
	EventPollDelay  int `env:"POTENTIA_EVENT_POLL_DELAY" envDefault:"10"`
}

// ParseEnv fills target from the given environment
func ParseEnv(target interface{}, environment map[string]string) error {
	if err := env.ParseWithOptions(target, env.Options{Environment: environment}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads settings from the process environment, falling back to the
// dotenv files for anything the environment does not set. Without files,
// DefaultFile is read if it exists.
func Load(files ...string) (Settings, error) {
	var settings Settings

	var (
		environment map[string]string
		err         error
	)
	if len(files) == 0 {
		environment, err = godotenv.Read(DefaultFile)
		if os.IsNotExist(err) {
			environment, err = map[string]string{}, nil
		}
	} else {
		environment, err = godotenv.Read(files...)
	}
	if err != nil {
		return settings, fmt.Errorf("read dotenv: %w", err)
	}
	for k, v := range env.ToMap(os.Environ()) {
		environment[k] = v
	}

	if err := ParseEnv(&settings, environment); err != nil {
		return settings, err
	}
	return settings, nil
}

// Core turns the settings into an engine configuration
func (s Settings) Core() core.Configuration {
	cfg := core.DefaultConfiguration()
	cfg.Time.FramesPerSecond = s.FramesPerSecond
	cfg.Time.EventPollDelay = s.EventPollDelay
	cfg.Instance.ApplicationName = s.ApplicationName
	cfg.Instance.DebugMode = s.Debug
	cfg.Instance.Layers = s.Layers
	cfg.Renderer.VertexShader = s.VertexShader
	cfg.Renderer.FragmentShader = s.FragmentShader
	return cfg
}

// Logger builds a logger at the configured level
func (s Settings) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}
