package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the site configuration for one billed region.
type Config struct {
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	Domain      string `mapstructure:"domain"`
	Project     string `mapstructure:"project"`
	KeystoneURL string `mapstructure:"keystone_url"`

	Site    string `mapstructure:"site"`
	Region  string `mapstructure:"region"`
	DataDir string `mapstructure:"datadir"`

	// ResourceTags maps a domain name to the site-configured resource tag
	// used for rate lookups and reported in every record.
	ResourceTags map[string]string `mapstructure:"resource_tags"`
}

// Load reads the configuration from the given file. The keystone password
// may be supplied through OS_PASSWORD instead of being stored on disk.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if pw := os.Getenv("OS_PASSWORD"); pw != "" {
		cfg.Password = pw
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	required := map[string]string{
		"username":     c.Username,
		"password":     c.Password,
		"domain":       c.Domain,
		"project":      c.Project,
		"keystone_url": c.KeystoneURL,
		"site":         c.Site,
		"region":       c.Region,
		"datadir":      c.DataDir,
	}

	for name, value := range required {
		if value == "" {
			return fmt.Errorf("config: missing required field %q", name)
		}
	}

	if len(c.ResourceTags) == 0 {
		return fmt.Errorf("config: resource_tags must map at least one domain name to a tag")
	}

	return nil
}
