package mcp

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/actor/internal/validation"
)

// ValidateStepsInput validates StepsInput fields.
func ValidateStepsInput(in *StepsInput) error {
	if in.Library != "" {
		if err := validation.ValidateStepKey(in.Library); err != nil {
			return fmt.Errorf("invalid library: %w", err)
		}
	}
	return nil
}

// ValidatePlanInput validates PlanInput fields.
func ValidatePlanInput(in *PlanInput) error {
	if err := validation.ValidateDefinitionPath(in.DefinitionPath); err != nil {
		return fmt.Errorf("invalid definition_path: %w", err)
	}
	if err := validation.ValidateStepList(stripRemovals(in.Steps)); err != nil {
		return fmt.Errorf("invalid steps: %w", err)
	}
	if in.StartAt != "" {
		if err := validation.ValidateStepKey(in.StartAt); err != nil {
			return fmt.Errorf("invalid start_at: %w", err)
		}
	}
	return nil
}

// ValidateWaitCheckInput validates WaitCheckInput fields.
func ValidateWaitCheckInput(in *WaitCheckInput) error {
	if len(in.Specs) == 0 {
		return fmt.Errorf("invalid specs: %w", validation.ErrEmptyInput)
	}
	for _, s := range in.Specs {
		if err := validation.ValidateWaitSpec(s); err != nil {
			return fmt.Errorf("invalid spec: %w", err)
		}
	}
	return nil
}

// ValidateJobsInput validates JobsInput fields.
func ValidateJobsInput(in *JobsInput) error {
	if in.RunID != "" {
		if err := validation.ValidateRunID(in.RunID); err != nil {
			return fmt.Errorf("invalid run_id: %w", err)
		}
	}
	if in.Limit < 0 {
		return fmt.Errorf("invalid limit: %d", in.Limit)
	}
	return nil
}

// ValidateStatusInput validates StatusInput fields.
func ValidateStatusInput(in *StatusInput) error {
	if err := validation.ValidateDefinitionPath(in.DefinitionPath); err != nil {
		return fmt.Errorf("invalid definition_path: %w", err)
	}
	return nil
}

// stripRemovals drops the leading - of removed steps so the keys can be
// validated.
func stripRemovals(list string) string {
	keys := strings.Split(list, ",")
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(strings.TrimSpace(k), "-")
	}
	return strings.Join(keys, ",")
}
