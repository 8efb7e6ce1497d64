// Package devops loads deployment configuration: the attendance policy
// (holiday calendar, daily goal, tolerances) from a local YAML file or from
// SSM Parameter Store.
package devops

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"timekeep.io/timekeep/calendar"
	"timekeep.io/timekeep/core"
)

// PolicyConfig is the YAML shape of the attendance policy.
type PolicyConfig struct {
	// Holidays are non-working days as "2006-01-02" in the reference zone.
	Holidays []string `yaml:"holidays"`
	// GoalHours is the daily completion goal (default 8).
	GoalHours float64 `yaml:"goal_hours"`
	// FutureSkewMinutes bounds how far ahead of now a clock-in may be
	// (default 5).
	FutureSkewMinutes int `yaml:"future_skew_minutes"`
	// PendingAfterHours is the forgotten-clock-out threshold (default 24).
	PendingAfterHours int `yaml:"pending_after_hours"`
}

// EngineConfig converts the YAML policy to the engine's Config.
func (c PolicyConfig) EngineConfig() core.Config {
	return core.Config{
		FutureSkew:   time.Duration(c.FutureSkewMinutes) * time.Minute,
		PendingAfter: time.Duration(c.PendingAfterHours) * time.Hour,
		GoalHours:    c.GoalHours,
		Holidays:     calendar.NewHolidaySet(c.Holidays),
	}
}

// LoadPolicyFile reads the policy from a local YAML file.
func LoadPolicyFile(path string) (PolicyConfig, error) {
	var cfg PolicyConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return cfg, nil
}

var (
	once    sync.Once
	policy  PolicyConfig
	loadErr error
)

// LoadPolicyConfig fetches the policy YAML from the SSM parameter
// "timekeep-policy". The result is cached for the life of the process.
func LoadPolicyConfig(ctx context.Context) (PolicyConfig, error) {
	once.Do(func() {
		paramName := "timekeep-policy"

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			loadErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := ssm.NewFromConfig(cfg)

		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(paramName),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			loadErr = fmt.Errorf("get parameter: %w", err)
			return
		}

		var parsed PolicyConfig
		if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &parsed); err != nil {
			loadErr = fmt.Errorf("unmarshal yaml: %w", err)
			return
		}

		policy = parsed
	})

	return policy, loadErr
}
