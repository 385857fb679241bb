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

// diffgen releases a differentially private generalization of a labeled data
// set for classification.
//
// Usage example:
//
//	diffgen run --config=adult.yaml
//	diffgen run --attributes=adult.hchy --data=adult.rawdata --output=out/adult \
//	  --epsilon=1 --specializations=10 --num_training=30162 --score=infogain --format=c45
//	diffgen clean --data=adult.rawdata --output=adult.clean.rawdata
package main

import (
	"flag"

	log "github.com/golang/glog"
	"github.com/google/differential-privacy/diffgen/config"
	"github.com/google/differential-privacy/diffgen/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Exitf("diffgen failed, err = %v", err)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diffgen",
		Short: "diffgen releases differentially private generalized data",
		Long: `diffgen specializes the quasi-identifiers of a labeled data set top-down,
choosing every specialization with the exponential mechanism, and releases the
record counts of the resulting partitions with Laplace noise.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// glog reads its flags from flag.CommandLine once it is parsed.
			flag.CommandLine.Parse(nil)
		},
	}
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	cmd.AddCommand(runCmd(), cleanCmd())
	return cmd
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"attributes":      "attribute_file",
	"data":            "data_file",
	"output":          "output_prefix",
	"epsilon":         "epsilon",
	"specializations": "specializations",
	"num_input":       "num_input",
	"num_training":    "num_training",
	"score":           "score",
	"noise":           "noise",
	"format":          "format",
	"seed":            "seed",
	"npy":             "npy",
	"chart":           "chart_file",
	"tree":            "tree_file",
	"summary":         "summary_file",
}

func runCmd() *cobra.Command {
	v := config.New()
	var configFile string
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generalize a data set",
		Long: `Generalize a data set and write the names, data and test files of a
classifier, with an optional run summary, leaf chart and tree rendering.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			log.Infof("Running with epsilon = %v, specializations = %d, score = %s, format = %s",
				c.Epsilon, c.Specializations, c.Score, c.Format)
			return generalize(c)
		},
	}
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "YAML configuration file. Flags override its values.")
	f.String("attributes", d.AttributeFile, "Attribute file with one concept hierarchy per attribute.")
	f.String("data", d.DataFile, "Raw data file.")
	f.String("output", d.OutputPrefix, "Path prefix of the names, data and test files.")
	f.Float64("epsilon", d.Epsilon, "Total privacy budget.")
	f.Int("specializations", d.Specializations, "Number of specializations of the whole tree.")
	f.Int("num_input", d.NumInput, "Number of records read, -1 for all.")
	f.Int("num_training", d.NumTraining, "Number of leading records used for training.")
	f.String("score", d.Score, "Score function: max, infogain, discernibility or ncp.")
	f.String("noise", d.Noise, "Laplace sampler: secure or continuous.")
	f.String("format", d.Format, "Output format: "+output.C45.String()+", "+output.SVM.String()+" or "+output.Diff.String()+".")
	f.Int64("seed", d.Seed, "Seed of a reproducible run. A negative seed uses a secure source.")
	f.Bool("npy", d.NPY, "Also write the encoded data and test sets as NumPy files.")
	f.String("chart", d.ChartFile, "Optional image file of the leaf sizes.")
	f.String("tree", d.TreeFile, "Optional .dot, .png, .svg or .jpg file of the specialization tree.")
	f.String("summary", d.SummaryFile, "Optional YAML file of the run summary.")
	bindFlags(v, f)
	return cmd
}

func bindFlags(v *viper.Viper, f *pflag.FlagSet) {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, f.Lookup(name)); err != nil {
			log.Fatalf("couldn't bind flag %q to key %q: %v", name, key, err)
		}
	}
}

func cleanCmd() *cobra.Command {
	var src, dst string
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the records with unknown values from a raw data file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return output.CleanFile(src, dst)
		},
	}
	cmd.Flags().StringVar(&src, "data", "", "Raw data file.")
	cmd.Flags().StringVar(&dst, "output", "", "Cleaned data file.")
	cmd.MarkFlagRequired("data")
	cmd.MarkFlagRequired("output")
	return cmd
}
