package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github-lite/internal/utils"
	"github-lite/pkg/config"
)

// HealthHandler manages health check requests
type HealthHandler struct {
	Configuration *config.Config
	Log           *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(configuration *config.Config, log *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		Configuration: configuration,
		Log:           log,
	}
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().Unix(),
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
		"upstream":   h.Configuration.GitHub.TokenURL,
	}

	utils.WriteJSONResponse(w, http.StatusOK, response, h.Log)
}
