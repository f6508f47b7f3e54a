package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coviddash/internal/api"
	"coviddash/internal/layout"
	"coviddash/internal/models"
	"coviddash/internal/reactive"
	"coviddash/internal/render"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard outputs for one selection to files",
		Long: `Runs the same update the dropdown triggers and writes the result to --out:
  <selection>.json       the metrics block and the four figures
  <selection>-<id>.png   one image per non-empty graph

Example:
  coviddash export --country Albania --out ./charts`,
		Args: cobra.NoArgs,
		RunE: a.runExport,
	}
	cmd.Flags().String("country", models.GlobalSelection, "selection to export")
	cmd.Flags().StringP("out", "o", ".", "output directory")
	cmd.Flags().Int("width", 0, "image width in pixels")
	cmd.Flags().Int("height", 0, "image height in pixels")
	addDataFlags(cmd.Flags())
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, args []string) error {
	applyFlags(cmd.Flags(), &a.conf)
	if err := a.conf.Validate(); err != nil {
		return err
	}
	country, _ := cmd.Flags().GetString("country")
	out, _ := cmd.Flags().GetString("out")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")

	dash, err := a.loadDashboard(cmd.Context())
	if err != nil {
		a.logger.Error("failed to load data", zap.Error(err))
		return err
	}

	rt := reactive.New(a.logger)
	if err := api.RegisterCallbacks(rt, dash); err != nil {
		return fmt.Errorf("register callbacks: %w", err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	sink := &fileSink{
		dir:       out,
		selection: country,
		charts:    render.Options{Width: width, Height: height},
		logger:    a.logger,
	}
	return rt.Dispatch(cmd.Context(), reactive.InputEvent{ID: layout.DropdownID, Value: country}, sink)
}

// fileSink writes one dispatch's updates: all of them to a JSON file and each
// figure to a PNG.
type fileSink struct {
	dir       string
	selection string
	charts    render.Options
	logger    *zap.Logger
}

func (s *fileSink) Push(_ context.Context, updates []reactive.Update) error {
	doc := make(map[string]any, len(updates))
	for _, u := range updates {
		doc[u.Slot.ID] = u.Value
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	jsonPath := filepath.Join(s.dir, s.selection+".json")
	if err := os.WriteFile(jsonPath, body, 0o644); err != nil {
		return err
	}
	s.logger.Info("wrote outputs", zap.String("path", jsonPath))

	for _, u := range updates {
		fig, ok := u.Value.(models.Figure)
		if !ok {
			continue
		}
		if err := s.writePNG(u.Slot.ID, fig); err != nil {
			return err
		}
	}
	return nil
}

func (s *fileSink) writePNG(id string, fig models.Figure) error {
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s.png", s.selection, id))
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = render.PNG(f, fig, s.charts)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if errors.Is(err, render.ErrNoData) {
		s.logger.Info("skipped empty figure", zap.String("id", id))
		return os.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", id, err)
	}
	s.logger.Info("wrote chart", zap.String("path", path))
	return nil
}
