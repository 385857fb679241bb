//
// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package config loads the configuration of a generalization run.
//
// A configuration is read from a YAML file, then overridden by DIFFGEN_*
// environment variables and by any command line flag bound to the same
// viper instance.
package config

import (
	"fmt"

	"github.com/google/differential-privacy/diffgen/checks"
	"github.com/google/differential-privacy/diffgen/noise"
	"github.com/google/differential-privacy/diffgen/output"
	"github.com/google/differential-privacy/diffgen/score"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by New.
const EnvPrefix = "DIFFGEN"

// Config is the configuration of a run.
type Config struct {
	AttributeFile string `mapstructure:"attribute_file"`
	DataFile      string `mapstructure:"data_file"`
	// OutputPrefix is the path prefix of the names, data and test files.
	OutputPrefix string `mapstructure:"output_prefix"`

	Epsilon         float64 `mapstructure:"epsilon"`
	Specializations int     `mapstructure:"specializations"`
	// NumInput is the number of records read, -1 for all.
	NumInput    int `mapstructure:"num_input"`
	NumTraining int `mapstructure:"num_training"`

	Score  string `mapstructure:"score"`
	Noise  string `mapstructure:"noise"`
	Format string `mapstructure:"format"`
	// Seed makes a run reproducible. A negative seed uses a secure source.
	Seed int64 `mapstructure:"seed"`

	NPY         bool   `mapstructure:"npy"`
	ChartFile   string `mapstructure:"chart_file"`
	TreeFile    string `mapstructure:"tree_file"`
	SummaryFile string `mapstructure:"summary_file"`
}

// Default returns the configuration used for unset keys.
func Default() Config {
	return Config{
		Epsilon:         1,
		Specializations: 10,
		NumInput:        -1,
		Score:           score.InformationGain.String(),
		Noise:           noise.SecureLaplace.String(),
		Format:          output.C45.String(),
		Seed:            -1,
	}
}

// New returns a viper instance holding the defaults and reading DIFFGEN_*
// environment variables.
func New() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("attribute_file", d.AttributeFile)
	v.SetDefault("data_file", d.DataFile)
	v.SetDefault("output_prefix", d.OutputPrefix)
	v.SetDefault("epsilon", d.Epsilon)
	v.SetDefault("specializations", d.Specializations)
	v.SetDefault("num_input", d.NumInput)
	v.SetDefault("num_training", d.NumTraining)
	v.SetDefault("score", d.Score)
	v.SetDefault("noise", d.Noise)
	v.SetDefault("format", d.Format)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("npy", d.NPY)
	v.SetDefault("chart_file", d.ChartFile)
	v.SetDefault("tree_file", d.TreeFile)
	v.SetDefault("summary_file", d.SummaryFile)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path, if any, into v and returns the
// validated configuration.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("couldn't read the config file = %q, err = %w", path, err)
		}
	}
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("couldn't decode the configuration, err = %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that c describes a runnable generalization.
func (c *Config) Validate() error {
	if c.AttributeFile == "" {
		return fmt.Errorf("attribute_file is required")
	}
	if c.DataFile == "" {
		return fmt.Errorf("data_file is required")
	}
	if c.OutputPrefix == "" {
		return fmt.Errorf("output_prefix is required")
	}
	if err := checks.CheckEpsilonStrict(c.Epsilon); err != nil {
		return err
	}
	if err := checks.CheckSpecializations(c.Specializations); err != nil {
		return err
	}
	if err := checks.CheckTrainingSplit(c.NumTraining, c.NumInput); err != nil {
		return err
	}
	if _, err := c.ScoreFunction(); err != nil {
		return err
	}
	if _, err := c.NoiseKind(); err != nil {
		return err
	}
	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	return nil
}

// ScoreFunction returns the parsed score function.
func (c *Config) ScoreFunction() (score.Function, error) {
	return score.ParseFunction(c.Score)
}

// NoiseKind returns the parsed Laplace sampler.
func (c *Config) NoiseKind() (noise.Kind, error) {
	return noise.ParseKind(c.Noise)
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() (output.Format, error) {
	return output.ParseFormat(c.Format)
}
