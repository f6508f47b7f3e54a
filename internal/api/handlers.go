package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"coviddash/internal/engine"
	"coviddash/internal/layout"
	"coviddash/internal/models"
	"coviddash/internal/reactive"
	"coviddash/internal/render"
)

const (
	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
)

type Handler struct {
	dash    *engine.Dashboard
	runtime *reactive.Runtime
	page    *layout.Node
	charts  render.Options
	logger  *zap.Logger
}

// NewHandler builds the page tree once; it is served unchanged afterwards.
func NewHandler(dash *engine.Dashboard, rt *reactive.Runtime, charts render.Options, logger *zap.Logger) *Handler {
	return &Handler{
		dash:    dash,
		runtime: rt,
		page:    layout.Build(dash.Totals(), dash.Options()),
		charts:  charts,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetHome)

	api := e.Group("/api")
	api.GET("/options", h.GetOptions)
	api.GET("/totals", h.GetTotals)
	api.GET("/dashboard", h.GetDashboard)
	api.POST("/update", h.PostUpdate)
	api.GET("/charts/:chart", h.GetChart)
}

// --- HANDLERS ---

// selection reads ?country=, defaulting to Global, and rejects unknown values.
func (h *Handler) selection(c echo.Context) (string, error) {
	sel := c.QueryParam("country")
	if sel == "" {
		sel = models.GlobalSelection
	}
	if !h.dash.Valid(sel) {
		return "", NewUserVisibleError(http.StatusBadRequest, fmt.Sprintf("unknown selection %q", sel))
	}
	return sel, nil
}

func (h *Handler) GetHome(c echo.Context) error {
	return c.Render(http.StatusOK, "dashboard", h.page)
}

func (h *Handler) GetOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dash.Options())
}

func (h *Handler) GetTotals(c echo.Context) error {
	t := h.dash.Totals()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"totals": t,
		"formatted": map[string]string{
			"confirmed": engine.FormatCount(t.Confirmed),
			"deaths":    engine.FormatCount(t.Deaths),
			"recovered": engine.FormatCount(t.Recovered),
		},
	})
}

// GetDashboard returns the whole output bundle. The body depends only on the
// selection, so its hash doubles as the ETag.
func (h *Handler) GetDashboard(c echo.Context) error {
	sel, err := h.selection(c)
	if err != nil {
		return err
	}

	body, err := json.Marshal(h.dash.Update(sel))
	if err != nil {
		return err
	}

	tag := etag(body)
	c.Response().Header().Set(headerETag, tag)
	if c.Request().Header.Get(headerIfNoneMatch) == tag {
		return c.NoContent(http.StatusNotModified)
	}
	return c.JSONBlob(http.StatusOK, body)
}

type updateResponse struct {
	Outputs []reactive.Update `json:"outputs"`
}

// PostUpdate is the browser's side of the reactive runtime: one input change
// in, the ordered output updates back.
func (h *Handler) PostUpdate(c echo.Context) error {
	var ev reactive.InputEvent
	if err := c.Bind(&ev); err != nil {
		return err
	}

	var outputs []reactive.Update
	sink := reactive.SinkFunc(func(_ context.Context, updates []reactive.Update) error {
		outputs = updates
		return nil
	})

	err := h.runtime.Dispatch(c.Request().Context(), ev, sink)
	switch {
	case errors.Is(err, reactive.ErrUnknownInput):
		return NewUserVisibleError(http.StatusNotFound, err.Error())
	case errors.Is(err, reactive.ErrInvalidValue):
		return NewUserVisibleError(http.StatusBadRequest, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, updateResponse{Outputs: outputs})
}

// GetChart renders one graph of the page as PNG. Empty figures answer 204.
func (h *Handler) GetChart(c echo.Context) error {
	id := strings.TrimSuffix(c.Param("chart"), ".png")
	if n := h.page.Find(id); n == nil || n.Kind != layout.KindGraph {
		return echo.ErrNotFound
	}
	sel, err := h.selection(c)
	if err != nil {
		return err
	}

	fig, ok := layout.Figure(h.dash.Update(sel), id)
	if !ok {
		return echo.ErrNotFound
	}

	var buf bytes.Buffer
	err = render.PNG(&buf, fig, h.charts)
	if errors.Is(err, render.ErrNoData) {
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		h.logger.Error("chart render failed", zap.String("chart", id), zap.String("country", sel), zap.Error(err))
		return err
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
