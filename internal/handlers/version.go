package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github-lite/internal/utils"
)

// Set at build time with -ldflags "-X github-lite/internal/handlers.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// VersionInfo is the body of GET /version
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	Server    string `json:"server"`
}

// VersionHandler reports build information
type VersionHandler struct {
	Log *logrus.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(log *logrus.Logger) *VersionHandler {
	return &VersionHandler{Log: log}
}

func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		Server:    "github-lite login relay",
	}, h.Log)
}
