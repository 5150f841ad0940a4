package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the subset of the Secrets Manager client used to resolve
// secret ids.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ResolveSecrets fills the database password and session secret from
// Secrets Manager when their secret ids are set and the value itself is
// not. An id of the form "name#key" selects one key of a JSON secret.
func (c *Config) ResolveSecrets(ctx context.Context, client SecretsAPI) error {
	targets := []struct {
		id  string
		dst *string
	}{
		{c.Database.PasswordSecretID, &c.Database.Password},
		{c.App.SessionSecretID, &c.App.SessionSecret},
	}
	for _, t := range targets {
		if t.id == "" || *t.dst != "" {
			continue
		}
		v, err := fetchSecret(ctx, client, t.id)
		if err != nil {
			return err
		}
		*t.dst = v
	}
	return nil
}

// NeedsSecrets reports whether ResolveSecrets would call Secrets Manager.
func (c *Config) NeedsSecrets() bool {
	return (c.Database.PasswordSecretID != "" && c.Database.Password == "") ||
		(c.App.SessionSecretID != "" && c.App.SessionSecret == "")
}

func fetchSecret(ctx context.Context, client SecretsAPI, ref string) (string, error) {
	id, key, hasKey := strings.Cut(ref, "#")
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("reading secret %s: %w", id, err)
	}
	value := aws.ToString(out.SecretString)
	if !hasKey {
		return value, nil
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		return "", fmt.Errorf("secret %s is not a JSON object: %w", id, err)
	}
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("secret %s has no key %q", id, key)
	}
	return fmt.Sprint(v), nil
}
