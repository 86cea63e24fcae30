package main

import (
	"MengerSponge/internal/config"
	"MengerSponge/internal/logger"
	"MengerSponge/internal/menger"
	"MengerSponge/internal/renderer"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// defaultConfigPath is where settings.example.yaml is meant to be copied
const defaultConfigPath = "settings.yaml"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "menger:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("menger", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "settings file (.json, .yaml)")
	level := fs.Int("level", 0, "sponge level, overrides the settings file")
	workers := fs.Int("workers", 0, "goroutines for the sponge build, overrides the settings file")
	logLevel := fs.String("log-level", "", "log level, overrides the settings file")
	out := fs.String("out", "", "write the sponge mesh to this file")
	floorOut := fs.String("floor-out", "", "write the floor mesh to this file")
	describe := fs.Bool("describe", false, "print JSON descriptors of the synced models")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger.Init()
	defer logger.Sync()

	settings, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "level":
			settings.Sponge.InitialLevel = *level
		case "workers":
			settings.Sponge.Workers = *workers
		case "log-level":
			settings.Log.Level = *logLevel
		}
	})
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := logger.InitWithLevel(settings.Log.Level, settings.Log.Development); err != nil {
		return err
	}

	floor, err := menger.NewFloor(settings.Floor)
	if err != nil {
		return err
	}
	sponge, err := menger.NewSponge(settings.Sponge.InitialLevel, settings.SpongeOptions()...)
	if err != nil {
		return err
	}

	floorModel := renderer.NewModel("floor", floor)
	spongeModel := renderer.NewModel("sponge", sponge)
	models := []*renderer.Model{floorModel, spongeModel}

	// Two frames: the second must find nothing to upload
	uploader := renderer.NewMemoryUploader()
	for frame := 0; frame < 2; frame++ {
		for _, m := range models {
			if _, err := m.Sync(uploader); err != nil {
				return err
			}
		}
	}
	logger.Log.Info("Buffers synced",
		zap.Int("uploads", uploader.Uploads),
		zap.Int64("bytes", uploader.Bytes),
		zap.Int("sponge_indices", spongeModel.IndexCount),
		zap.Int("floor_indices", floorModel.IndexCount))

	if *out != "" {
		if err := exportModel(*out, spongeModel); err != nil {
			return err
		}
	}
	if *floorOut != "" {
		if err := exportModel(*floorOut, floorModel); err != nil {
			return err
		}
	}

	if *describe {
		for _, m := range models {
			data, err := renderer.SerializeModelToJSON(m, "")
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(data))
		}
	}
	return nil
}

// exportModel writes the binary mesh to path and its descriptor next to it.
// A .json mesh path is rejected since the descriptor would overwrite it.
func exportModel(path string, m *renderer.Model) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return fmt.Errorf("mesh path %s: .json is reserved for the descriptor", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := renderer.WriteMeshBinary(f, renderer.SerializeMesh(m.Source)); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	descriptor, err := renderer.SerializeModelToJSON(m, filepath.Base(path))
	if err != nil {
		return err
	}
	descriptorPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
	if err := os.WriteFile(descriptorPath, descriptor, 0o644); err != nil {
		return err
	}

	logger.Log.Info("Mesh exported",
		zap.String("model", m.Name),
		zap.String("path", path),
		zap.String("descriptor", descriptorPath))
	return nil
}
