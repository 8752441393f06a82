package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/helio/keyword-mapper/internal/stream"
	"github.com/helio/keyword-mapper/internal/types"
)

// collectRequest is the JSON body for POST /jobs/collect-stream.
type collectRequest struct {
	TargetRole   string `json:"target_role"`
	Area         string `json:"area"`
	BaseLocation string `json:"base_location"`
	WorkMode     string `json:"work_mode"`
	DesiredCount int    `json:"desired_count"`
}

// handleCollectStream runs the pipeline and streams progress events as SSE.
// The final event is completed with the ranked keyword map inline, or
// failed with the error kind and message.
func (s *Server) handleCollectStream(w http.ResponseWriter, r *http.Request) {
	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	mode, ok := types.ParseWorkMode(req.WorkMode)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "work_mode must be onsite, hybrid, or remote")
		return
	}

	request := types.SearchRequest{
		TargetRole:   req.TargetRole,
		Area:         req.Area,
		BaseLocation: req.BaseLocation,
		WorkMode:     mode,
		DesiredCount: req.DesiredCount,
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	sink := stream.SinkFunc(func(event stream.Event) {
		if err := sse.WriteEvent(string(event.Type), event); err != nil {
			s.log.Warn("failed to write stream event", zap.Error(err))
		}
	})

	// The pipeline publishes its own completed/failed terminal event; the
	// returned error is already on the stream.
	if _, err := s.pipeline.Run(r.Context(), request, sink); err != nil {
		s.log.Warn("run failed",
			zap.String("role", request.TargetRole),
			zap.Error(err),
		)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
