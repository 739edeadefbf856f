// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is the environment-driven runtime configuration. Every field
// has a default suitable for a local Ollama setup.
type Config struct {
	DataDir string `env:"RECALL_DATA_DIR" envDefault:"./recall-data"`

	EmbeddingHost  string `env:"RECALL_EMBEDDING_HOST" envDefault:"http://localhost:11434/v1"`
	ChatHost       string `env:"RECALL_CHAT_HOST" envDefault:"http://localhost:11434/v1"`
	EmbeddingModel string `env:"RECALL_EMBEDDING_MODEL" envDefault:"embeddinggemma"`
	ChatModel      string `env:"RECALL_CHAT_MODEL" envDefault:"qwen2.5:3b"`
	APIToken       string `env:"RECALL_API_TOKEN" envDefault:"none"`

	CallTimeout time.Duration `env:"RECALL_CALL_TIMEOUT" envDefault:"60s"`
	LogLevel    string        `env:"RECALL_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// VectorDir is where the vector store persists its collections.
func (c *Config) VectorDir() string {
	return filepath.Join(c.DataDir, "vectors")
}

// RegistryDir is where the profile registry keeps its database.
func (c *Config) RegistryDir() string {
	return filepath.Join(c.DataDir, "registry")
}
