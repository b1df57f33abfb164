package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/volcanion-labs/ssr-dispatcher/internal/benchclient"
)

// rateStepFile mirrors benchclient.RateStep for file (de)serialization.
type rateStepFile struct {
	RPS         int `yaml:"rps" json:"rps"`
	DurationSec int `yaml:"duration_sec" json:"duration_sec"`
}

// planFile is the on-disk shape of a benchmark plan, loaded from YAML or
// JSON with -f/--file.
type planFile struct {
	RunID       string            `yaml:"run_id" json:"run_id"`
	TargetURL   string            `yaml:"target_url" json:"target_url"`
	Method      string            `yaml:"method" json:"method"`
	Body        string            `yaml:"body" json:"body"`
	Headers     map[string]string `yaml:"headers" json:"headers"`
	Users       int               `yaml:"users" json:"users"`
	DurationSec int               `yaml:"duration_sec" json:"duration_sec"`
	RampUpSec   int               `yaml:"ramp_up_sec" json:"ramp_up_sec"`
	RatePattern string            `yaml:"rate_pattern" json:"rate_pattern"`
	TargetRPS   int               `yaml:"target_rps" json:"target_rps"`
	RateSteps   []rateStepFile    `yaml:"rate_steps" json:"rate_steps"`
	TimeoutMs   int               `yaml:"timeout_ms" json:"timeout_ms"`
}

func loadPlanFile(path string) (*planFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var pf planFile
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("failed to parse YAML plan: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("failed to parse JSON plan: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported plan file format: %s (use .yaml, .yml, or .json)", ext)
	}

	return &pf, nil
}

func (pf *planFile) toPlan() benchclient.Plan {
	steps := make([]benchclient.RateStep, len(pf.RateSteps))
	for i, s := range pf.RateSteps {
		steps[i] = benchclient.RateStep{RPS: s.RPS, DurationSec: s.DurationSec}
	}

	return benchclient.Plan{
		RunID:       pf.RunID,
		TargetURL:   pf.TargetURL,
		Method:      pf.Method,
		Body:        pf.Body,
		Headers:     pf.Headers,
		Users:       pf.Users,
		DurationSec: pf.DurationSec,
		RampUpSec:   pf.RampUpSec,
		RatePattern: benchclient.RatePattern(pf.RatePattern),
		TargetRPS:   pf.TargetRPS,
		RateSteps:   steps,
		TimeoutMs:   pf.TimeoutMs,
	}
}
