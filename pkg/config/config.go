package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/younsl/ec2-inventory/internal/models"
	"github.com/younsl/ec2-inventory/pkg/utils"
)

// DefaultPath is the credential file read when no --config flag is given
const DefaultPath = "accounts.yaml"

var accountIDPattern = regexp.MustCompile(`^[0-9]{12}$`)

// Config is the static input of an inventory run
type Config struct {
	Accounts []models.AccountCredential
	Regions  []string
}

type fileFormat struct {
	Regions  []string  `yaml:"regions"`
	Accounts yaml.Node `yaml:"accounts"`
}

type accountEntry struct {
	Account         string `yaml:"account"`
	AccessKeyID     string `yaml:"aws_access_key_id"`
	SecretAccessKey string `yaml:"aws_secret_access_key"`
	SessionToken    string `yaml:"aws_session_token"`
	Profile         string `yaml:"profile"`
}

// Load reads and validates the credential file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigurationError{Field: "config", Reason: fmt.Sprintf("file %s not found", path)}
		}
		return nil, &ConfigurationError{Field: "config", Reason: "cannot read " + path, Err: err}
	}
	return Parse(data)
}

// Parse decodes a credential document. Accounts keep their document order.
func Parse(data []byte) (*Config, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigurationError{Field: "config", Reason: "malformed YAML", Err: err}
	}

	accounts, err := decodeAccounts(&doc.Accounts)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Accounts: accounts, Regions: doc.Regions}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeAccounts(node *yaml.Node) ([]models.AccountCredential, error) {
	if node.Kind == 0 || node.ShortTag() == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &ConfigurationError{
			Field:  "accounts",
			Reason: fmt.Sprintf("line %d: expected a mapping of account id to credentials", node.Line),
		}
	}

	accounts := make([]models.AccountCredential, 0, len(node.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var entry accountEntry
		if err := value.Decode(&entry); err != nil {
			return nil, &ConfigurationError{Field: "accounts." + key.Value, Reason: "malformed entry", Err: err}
		}
		if seen[key.Value] {
			return nil, &ConfigurationError{Field: "accounts." + key.Value, Reason: "duplicate account id"}
		}
		seen[key.Value] = true

		accounts = append(accounts, models.AccountCredential{
			AccountID:       key.Value,
			AccountName:     entry.Account,
			AccessKeyID:     entry.AccessKeyID,
			SecretAccessKey: entry.SecretAccessKey,
			SessionToken:    entry.SessionToken,
			Profile:         entry.Profile,
		})
	}
	return accounts, nil
}

// Validate checks accounts and regions
func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return &ConfigurationError{Field: "accounts", Reason: "at least one account is required"}
	}

	for _, account := range c.Accounts {
		if err := ValidateAccount(account); err != nil {
			return err
		}
	}

	return ValidateRegions(c.Regions)
}

// ValidateAccount checks a single credential entry
func ValidateAccount(account models.AccountCredential) error {
	field := "accounts." + account.AccountID

	switch {
	case !accountIDPattern.MatchString(account.AccountID):
		return &ConfigurationError{Field: field, Reason: "account id must be 12 digits"}
	case account.AccountName == "":
		return &ConfigurationError{Field: field + ".account", Reason: "account name is required"}
	case (account.AccessKeyID == "") != (account.SecretAccessKey == ""):
		return &ConfigurationError{Field: field, Reason: "aws_access_key_id and aws_secret_access_key must be set together"}
	case !account.HasStaticKeys() && account.Profile == "":
		return &ConfigurationError{Field: field, Reason: "either access keys or a profile is required"}
	}
	return nil
}

// ValidateRegions rejects malformed region codes and warns about unknown ones
func ValidateRegions(regions []string) error {
	seen := make(map[string]bool, len(regions))
	for _, region := range regions {
		if !utils.IsValidRegion(region) {
			return &ConfigurationError{
				Field:  "regions",
				Reason: fmt.Sprintf("malformed region %q (known: %s)", region, strings.Join(utils.KnownRegions(), ", ")),
			}
		}
		if !utils.IsKnownRegion(region) {
			log.WithField("region", region).Warn("Region is not in the known region list, scanning it anyway")
		}
		if seen[region] {
			return &ConfigurationError{Field: "regions", Reason: fmt.Sprintf("region %q listed twice", region)}
		}
		seen[region] = true
	}
	return nil
}
