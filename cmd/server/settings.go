package main

import (
	"fmt"

	"tinyplanet-server/internal/game"
	"tinyplanet-server/internal/poi"
	"tinyplanet-server/internal/resources"
	"tinyplanet-server/internal/shared/config"
	"tinyplanet-server/internal/tile"
)

func buildSettings(cfg *config.Config) game.Settings {
	probabilities := map[poi.Kind]float64{
		poi.KindTree:   cfg.POI.TreeProbability,
		poi.KindStone:  cfg.POI.StoneProbability,
		poi.KindCopper: cfg.POI.CopperProbability,
	}

	rules := poi.DefaultRules()
	for i := range rules {
		if p, ok := probabilities[rules[i].Kind]; ok {
			rules[i].Probability = p
		}
	}

	return game.Settings{
		Surface:        cfg.Planet.Surface,
		TileSize:       cfg.Planet.TileSize,
		MaxCableLength: cfg.Simulation.MaxCableLength,
		StartingResources: map[resources.Resource]int{
			resources.Wood:   cfg.Simulation.StartingWood,
			resources.Stone:  cfg.Simulation.StartingStone,
			resources.Copper: cfg.Simulation.StartingCopper,
		},
		POIRules:     rules,
		POIFrequency: cfg.POI.Frequency,
		HandDamage:   cfg.Simulation.HandDamage,
		LandingIndex: cfg.Simulation.LandingIndex,
	}
}

func loadCatalog(cfg config.SimulationConfig) (*tile.Catalog, error) {
	if cfg.CatalogPath == "" {
		return tile.DefaultCatalog(), nil
	}

	catalog, err := tile.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tile catalog: %w", err)
	}
	return catalog, nil
}
