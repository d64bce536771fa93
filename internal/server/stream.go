package server

import (
	"net/http"
	"sync"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/feasibility"
)

// streamMessage is one frame on the analysis websocket. Type is "progress",
// "result" or "error"; the other fields are populated per type.
type streamMessage struct {
	Type   string                     `json:"type"`
	Done   int                        `json:"done,omitempty"`
	Total  int                        `json:"total,omitempty"`
	Result *domain.OptimizationResult `json:"result,omitempty"`
	Error  string                     `json:"error,omitempty"`
}

// progressInterval throttles progress frames to one per this many scored
// candidates, plus a final frame at completion.
const progressInterval = 50

// handleAnalyzeStream runs an analysis over a websocket, streaming progress
// while the batch is scored and the full result when it completes. The
// client sends one AnalysisRequest as its first message.
// GET /api/feasibility/stream
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx := r.Context()

	var req feasibility.AnalysisRequest
	if err := wsjson.Read(ctx, conn, &req); err != nil {
		conn.Close(websocket.StatusInvalidFramePayloadData, "invalid analysis request")
		return
	}

	// Workers report progress concurrently; serialize writes to the socket.
	var writeMu sync.Mutex
	send := func(msg streamMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := wsjson.Write(ctx, conn, msg); err != nil {
			s.log.Debug().Err(err).Msg("Websocket write failed")
		}
	}

	progress := func(done, total int) {
		if done%progressInterval != 0 && done != total {
			return
		}
		send(streamMessage{Type: "progress", Done: done, Total: total})
	}

	result, err := s.feasibility.Analyze(ctx, req, progress)
	if err != nil {
		send(streamMessage{Type: "error", Error: err.Error()})
		conn.Close(websocket.StatusNormalClosure, "analysis failed")
		return
	}

	if err := s.snapshots.Save(result); err != nil {
		s.log.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to persist run snapshot")
	}

	send(streamMessage{Type: "result", Result: result})
	conn.Close(websocket.StatusNormalClosure, "done")
}
