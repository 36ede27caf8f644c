package model

import "time"

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new problems
	DefaultSawWidth     float64       `json:"default_saw_width"`
	DefaultTimeout      time.Duration `json:"default_timeout"`
	DefaultBackend      string        `json:"default_backend"`
	DefaultGCodeProfile string        `json:"default_gcode_profile"`

	// Web endpoint
	ListenAddr string `json:"listen_addr"`

	// Illustration size in pixels (longer side of the board drawing)
	RenderWidth  int `json:"render_width"`
	RenderHeight int `json:"render_height"`

	Theme string `json:"theme"` // system, light or dark

	RecentProblems []string `json:"recent_problems"`
}

// DefaultAppConfig returns an AppConfig matching DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultSawWidth:     2.5,
		DefaultTimeout:      defaults.Timeout,
		DefaultBackend:      defaults.Backend,
		DefaultGCodeProfile: defaults.GCodeProfile,
		ListenAddr:          ":8080",
		RenderWidth:         1600,
		RenderHeight:        1200,
		Theme:               "system",
		RecentProblems:      []string{},
	}
}

// ApplyToSettings copies the configured defaults into s.
func (c AppConfig) ApplyToSettings(s *CutSettings) {
	if c.DefaultTimeout > 0 {
		s.Timeout = c.DefaultTimeout
	}
	if c.DefaultBackend != "" {
		s.Backend = c.DefaultBackend
	}
	if c.DefaultGCodeProfile != "" {
		s.GCodeProfile = c.DefaultGCodeProfile
	}
}

// AddRecentProblem moves path to the front of the recent list, keeping at most limit entries.
func (c *AppConfig) AddRecentProblem(path string, limit int) {
	recent := []string{path}
	for _, p := range c.RecentProblems {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > limit {
		recent = recent[:limit]
	}
	c.RecentProblems = recent
}
