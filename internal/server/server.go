// Package server exposes the solver over HTTP.
package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/piwi3910/sawfit/internal/engine"
	"github.com/piwi3910/sawfit/internal/model"
	"github.com/piwi3910/sawfit/internal/render"
)

// maxTimeout caps the per-phase timeout a request may ask for.
const maxTimeout = 5 * time.Minute

// Server answers solve requests using the defaults of an AppConfig.
type Server struct {
	cfg    model.AppConfig
	render render.Options
	router *gin.Engine
}

func New(cfg model.AppConfig) *Server {
	s := &Server{
		cfg:    cfg,
		render: render.OptionsFromConfig(cfg),
	}

	// release mode keeps gin from printing its route table
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.SetHTMLTemplate(template.Must(template.New("solution").Parse(solutionPage)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/problems", s.handleSolve)
	r.POST("/problems/usage", s.handleUsage)

	s.router = r
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		klog.Infof("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		klog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleSolve(c *gin.Context) {
	sol, ok := s.solve(c)
	if !ok {
		return
	}

	png, err := render.PNG(sol, s.render)
	if err != nil {
		klog.Errorf("render illustration: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not render illustration"})
		return
	}
	resp := newSolutionResponse(sol, png)

	if c.Query("format") == "html" {
		c.HTML(http.StatusOK, "solution", resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleUsage(c *gin.Context) {
	sol, ok := s.solve(c)
	if !ok {
		return
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := usageChart(sol).Render(c.Writer); err != nil {
		klog.Errorf("render usage chart: %v", err)
	}
}

// solve binds the request and runs the engine. On failure it has already
// written the error response.
func (s *Server) solve(c *gin.Context) (model.Solution, bool) {
	var req problemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return model.Solution{}, false
	}

	board, pieces, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return model.Solution{}, false
	}

	sol, err := engine.Solve(c.Request.Context(), board, pieces, s.options(req))
	if err != nil {
		klog.Warningf("solve %d pieces on %gx%g: %v", len(pieces), board.Height, board.Width, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return model.Solution{}, false
	}
	if !sol.Optimal {
		klog.Infof("returning non-optimal layout for %d pieces", len(pieces))
	}
	return sol, true
}

func (s *Server) options(req problemRequest) engine.Options {
	settings := model.DefaultSettings()
	s.cfg.ApplyToSettings(&settings)
	opts := engine.OptionsFromSettings(settings)
	if req.TimeoutSeconds > 0 {
		opts.Timeout = min(time.Duration(req.TimeoutSeconds*float64(time.Second)), maxTimeout)
	}
	return opts
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidDimension), errors.Is(err, model.ErrNotTenths),
		errors.Is(err, model.ErrTooManyPieces), errors.Is(err, engine.ErrDuplicatePiece):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrInfeasibleModel):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrSolverUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrNoIncumbent), errors.Is(err, engine.ErrNotOptimal),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		klog.V(1).Infof("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start).Round(time.Millisecond))
	}
}

const solutionPage = `<html><body>
<img src="data:image/png;base64,{{.Illustration}}">
<p>{{len .Cutouts}} placed, {{len .Unfits}} unfit, efficiency {{printf "%.1f" .Efficiency}}%{{if not .Optimal}} (time limit reached){{end}}</p>
</body></html>`
