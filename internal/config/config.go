package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App           App           `mapstructure:"app"`
	Merge         Merge         `mapstructure:"merge"`
	AddressChange AddressChange `mapstructure:"address_change"`
	Output        Output        `mapstructure:"output"`
	Logging       Logging       `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	BaseDir    string `mapstructure:"base_dir"`    // Root against which relative input paths resolve
	ConfigFile string `mapstructure:"config_file"` // Config file actually loaded, if any
}

// Merge holds configuration for the per-row mail-merge flow
type Merge struct {
	ToField         string `mapstructure:"to_field"`         // Column holding the To addresses
	CCField         string `mapstructure:"cc_field"`         // Column holding the CC addresses
	AttachmentField string `mapstructure:"attachment_field"` // Column holding semicolon-separated attachment paths
	SubjectTemplate string `mapstructure:"subject_template"` // Subject template with «field» placeholders
	FromAddress     string `mapstructure:"from_address"`     // Sender address stamped on generated drafts
}

// AddressChange holds configuration for the per-country grouped flow
type AddressChange struct {
	GroupColumn  string   `mapstructure:"group_column"`  // Column whose value buckets rows into groups
	TableColumns []string `mapstructure:"table_columns"` // Record fields written into the template table, by cell position
	CellFontPt   int      `mapstructure:"cell_font_pt"`  // Font size applied to inserted table cells, in points
}

// Output holds output configuration
type Output struct {
	Directory string `mapstructure:"directory"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".mailmerge")
		viper.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults()

	// Bind environment variables
	bindEnvironmentVariables()

	// Enable automatic environment variable reading
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Apply post-processing
	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.base_dir", "")

	// Merge defaults mirror the source spreadsheets: localized column
	// names, with English alternates handled at resolution time.
	viper.SetDefault("merge.to_field", "수신")
	viper.SetDefault("merge.cc_field", "참조")
	viper.SetDefault("merge.attachment_field", "첨부파일")
	viper.SetDefault("merge.subject_template", "(«관리번호»«국가코드») New trademark application(s) in «국가명칭»")
	viper.SetDefault("merge.from_address", "")

	// Address-change defaults
	viper.SetDefault("address_change.group_column", "Country Code")
	viper.SetDefault("address_change.table_columns", []string{
		"Mark", "Class", "Appl. Date", "Appl. No.", "Reg. Date", "Reg. No.",
	})
	viper.SetDefault("address_change.cell_font_pt", 10)

	// Output defaults
	viper.SetDefault("output.directory", "messages")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("merge.from_address", []string{
		"MAILMERGE_FROM",
		"MAIL_FROM",
	})

	bindEnvKeys("app.base_dir", []string{
		"MAILMERGE_BASE_DIR",
	})

	bindEnvKeys("output.directory", []string{
		"MAILMERGE_OUTPUT_DIR",
	})
}

// bindEnvKeys binds multiple environment variable names to a config key
func bindEnvKeys(configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(configKey, value)
			break
		}
	}
}

// postProcessConfig applies transformations after unmarshaling
func postProcessConfig(config *Config) error {
	// Resolve the application base directory once; all relative input
	// paths resolve against it.
	if config.App.BaseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determining working directory: %w", err)
		}
		config.App.BaseDir = cwd
	} else if !filepath.IsAbs(config.App.BaseDir) {
		abs, err := filepath.Abs(config.App.BaseDir)
		if err != nil {
			return fmt.Errorf("resolving base directory: %w", err)
		}
		config.App.BaseDir = abs
	}

	config.App.ConfigFile = viper.ConfigFileUsed()

	if config.App.Debug && config.Logging.Level == "info" {
		config.Logging.Level = "debug"
	}

	return nil
}

// validateConfig checks that the configuration is usable
func validateConfig(config *Config) error {
	if _, err := zerolog.ParseLevel(config.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level %q: %w", config.Logging.Level, err)
	}
	if config.AddressChange.GroupColumn == "" {
		return fmt.Errorf("address_change.group_column must not be empty")
	}
	if len(config.AddressChange.TableColumns) == 0 {
		return fmt.Errorf("address_change.table_columns must not be empty")
	}
	if config.AddressChange.CellFontPt <= 0 {
		return fmt.Errorf("address_change.cell_font_pt must be positive, got %d", config.AddressChange.CellFontPt)
	}
	return nil
}
