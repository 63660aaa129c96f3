package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Credentials identify a relational store.
type Credentials struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
}

// LoadCredentials reads a YAML mapping with the keys user, password, host,
// port and database. Keys are case-insensitive and may carry the RDS_ prefix
// (RDS_USER, RDS_PASSWORD, ...).
func LoadCredentials(path string) (Credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}
	return CredentialsFromMap(raw)
}

// CredentialsFromMap normalizes a loosely keyed mapping into Credentials.
func CredentialsFromMap(raw map[string]any) (Credentials, error) {
	var c Credentials
	for k, v := range raw {
		key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(k)), "rds_")
		val := strings.TrimSpace(fmt.Sprint(v))
		switch key {
		case "user", "username":
			c.User = val
		case "password":
			c.Password = val
		case "host":
			c.Host = val
		case "port":
			p, err := strconv.Atoi(val)
			if err != nil {
				return Credentials{}, fmt.Errorf("invalid port %q: %w", val, err)
			}
			c.Port = p
		case "database", "dbname":
			c.Database = val
		}
	}
	return c, nil
}
