package main

import (
	"fmt"
	"log/slog"

	"voltcheck/internal/config"
	"voltcheck/internal/inspection/analyze"
	"voltcheck/internal/inspection/detect"
	"voltcheck/internal/inspection/rules"
	"voltcheck/internal/inspection/video"
)

type pipeline struct {
	detector detect.Detector
	images   *analyze.ImageAnalyzer
	videos   *video.Analyzer
}

// buildPipeline wires the detector, rule engine, and analyzers from config.
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	detector, err := detect.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure detector: %w", err)
	}
	images := analyze.NewImageAnalyzer(detector, rules.NewEngine(), logger)
	return &pipeline{
		detector: detector,
		images:   images,
		videos:   video.NewAnalyzer(cfg, images, logger),
	}, nil
}
