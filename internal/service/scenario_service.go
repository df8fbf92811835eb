package service

import (
	"context"
	"fmt"

	"thermostat_automation/internal/models"
	"thermostat_automation/internal/repository"
)

type ScenarioService struct {
	repo repository.ScenarioRepo
}

func NewScenarioService(repo repository.ScenarioRepo) *ScenarioService {
	return &ScenarioService{repo: repo}
}

// Resolve returns the owner's scenario, or the defaults when none is stored.
// Values are not validated; the planner clamps what it needs to.
func (s *ScenarioService) Resolve(ctx context.Context, ownerID string) (models.HeatingScenario, error) {
	sc, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		return models.HeatingScenario{}, fmt.Errorf("load scenario: %w", err)
	}
	if sc == nil {
		return models.DefaultHeatingScenario(ownerID), nil
	}
	return *sc, nil
}
