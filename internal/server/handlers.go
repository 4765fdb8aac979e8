package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	qerrors "github.com/qforge/qtopo/pkg/errors"
	"github.com/qforge/qtopo/pkg/snapshot"
)

func (s *Server) handlePutTopology(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, qerrors.Wrap(qerrors.ErrCodePersistence, err, "read body"))
		return
	}

	snap, err := snapshot.Decode(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if pk := chi.URLParam(r, "pk"); pk != "" {
		snap.PK = pk
	}

	stored, err := s.store.PutTopology(r.Context(), snap)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.cache.Delete(r.Context(), s.keyer.TopologyKey(stored.PK)); err != nil {
		s.logger.Warn("topology cache invalidation failed", "pk", stored.PK, "error", err)
	}

	s.hub.Broadcast("topology_saved", map[string]string{
		"pk":       stored.PK,
		"world_id": stored.WorldID,
		"user":     requestUser(r),
	})
	s.writeJSON(w, http.StatusOK, map[string]string{
		"pk":       stored.PK,
		"world_id": stored.WorldID,
	})
}

func (s *Server) handleGetTopology(w http.ResponseWriter, r *http.Request) {
	key := s.keyer.TopologyKey(chi.URLParam(r, "pk"))
	if data, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	snap, err := s.store.GetTopology(r.Context(), chi.URLParam(r, "pk"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if data, err := json.Marshal(snap); err == nil {
		if err := s.cache.Set(r.Context(), key, data, topologyTTL); err != nil {
			s.logger.Warn("topology cache write failed", "error", err)
		}
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListTopologies(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListTopologies(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []snapshot.Summary{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleStartSimulation(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.GetTopology(r.Context(), chi.URLParam(r, "topologyID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	id, err := s.sim.Start(snap)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"pk": id})
}

func (s *Server) handleStopSimulation(w http.ResponseWriter, r *http.Request) {
	s.sim.Stop()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From    string `json:"from_node_name"`
		To      string `json:"to_node_name"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, qerrors.Wrap(qerrors.ErrCodeImport, err, "decode message"))
		return
	}

	if err := s.sim.Message(body.From, body.To, body.Message); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"is_running": s.sim.Running()})
}

func (s *Server) handlePutUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.PutUser(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("user registered", "id", id)
	s.writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch qerrors.GetCode(err) {
	case qerrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case qerrors.ErrCodeImport, qerrors.ErrCodeEmptyTopology:
		status = http.StatusBadRequest
	case qerrors.ErrCodeNotConnected:
		status = http.StatusConflict
	}

	if status >= 500 {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Debug("request rejected", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": qerrors.UserMessage(err)})
}
