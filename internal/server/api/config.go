package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/siteconfig"
)

type configResponse struct {
	Config siteconfig.Config `json:"config"`
	Frozen bool              `json:"frozen"`
}

// ConfigHandler reports the site configuration in effect.
type ConfigHandler struct {
	source *siteconfig.Source
}

func NewConfigHandler(src *siteconfig.Source) *ConfigHandler {
	return &ConfigHandler{source: src}
}

func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, configResponse{
		Config: h.source.Current(),
		Frozen: h.source.Frozen(),
	})
}
