/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mailmerge/internal/config"
	"mailmerge/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mailmerge",
		Short: "mailmerge generates pre-addressed email drafts from Excel data and Word templates.",
		Long: `mailmerge reads rows from an Excel spreadsheet, substitutes them into a
Word template with «field» placeholders, and writes one ready-to-send
.eml draft per row or per country group.

Two generation flows are available:

  merge           one draft per spreadsheet row
  address-change  one draft per country, with a populated trademark table

Use "mailmerge fields <template.docx>" to list the placeholders a
template expects.`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mailmerge.yaml)")

	rootCmd.AddCommand(NewMergeCmd())
	rootCmd.AddCommand(NewAddressChangeCmd())
	rootCmd.AddCommand(NewFieldsCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.App.ConfigFile != "" {
		logger.Debug("using config file", "path", cfg.App.ConfigFile)
	}
}
