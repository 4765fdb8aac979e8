package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/qforge/qtopo/pkg/topology"
)

// catalogTTL bounds how long rendered catalogs live in the shared
// cache. Restarting the server with new presets takes effect within
// this window on every instance.
const catalogTTL = time.Hour

// topologyTTL bounds snapshot entries in the shared cache. Saves
// invalidate the entry directly, so the TTL only covers writes that
// bypass this server instance.
const topologyTTL = 5 * time.Minute

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }
func ptrS(v string) *string   { return &v }

// defaultPresets is the built-in connection preset catalog.
var defaultPresets = []topology.Preset{
	{
		Name: "fiber_link",
		Config: topology.MetadataPatch{
			Bandwidth:      ptrI(1000),
			Latency:        ptrI(2),
			PacketLossRate: ptrF(0.0001),
			MTU:            ptrI(1500),
		},
	},
	{
		Name: "satellite_link",
		Config: topology.MetadataPatch{
			Bandwidth:      ptrI(50),
			Latency:        ptrI(600),
			PacketLossRate: ptrF(0.01),
			MTU:            ptrI(1400),
		},
	},
	{
		Name: "quantum_fiber",
		Config: topology.MetadataPatch{
			LossPerKM:     ptrF(0.2),
			NoiseModel:    ptrS("depolarizing"),
			NoiseStrength: ptrF(0.01),
			QubitCapacity: ptrI(8),
		},
	},
	{
		Name: "quantum_freespace",
		Config: topology.MetadataPatch{
			LossPerKM:          ptrF(0.5),
			NoiseModel:         ptrS("amplitude_damping"),
			NoiseStrength:      ptrF(0.05),
			ErrorRateThreshold: ptrF(0.11),
			QubitCapacity:      ptrI(2),
		},
	},
}

// defaultConfig is the runtime configuration served to clients.
var defaultConfig = map[string]any{
	"autosave_interval_seconds": 2,
	"live_channel":              true,
	"max_zones":                 64,
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	s.serveCatalog(w, r, s.keyer.PresetKey("catalog"), defaultPresets)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.serveCatalog(w, r, s.keyer.ConfigKey("catalog"), defaultConfig)
}

// serveCatalog serves a static catalog through the shared cache, so
// multi-instance deployments render it once.
func (s *Server) serveCatalog(w http.ResponseWriter, r *http.Request, key string, v any) {
	if data, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cache.Set(r.Context(), key, data, catalogTTL); err != nil {
		s.logger.Warn("catalog cache write failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
