package ws

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledpaint/internal/preview"
	"github.com/coreman2200/funtimes-ledpaint/internal/recording"
	"github.com/coreman2200/funtimes-ledpaint/internal/surface"
)

// Routes registers every endpoint on mux. static, when non-nil, is served
// at the root.
func (s *Server) Routes(mux *http.ServeMux, static fs.FS) {
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/sequence", s.HandleSequence)
	mux.HandleFunc("/schemes", s.HandleSchemes)
	mux.HandleFunc("/gradient.png", s.HandleGradient)
	if static != nil {
		mux.Handle("/", http.FileServer(http.FS(static)))
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.Studio.Snapshot()
	s.mu.RLock()
	resp := map[string]any{
		"frame_id":  s.frameID,
		"uptime_s":  time.Since(s.startTime).Seconds(),
		"count":     len(snap.LEDs),
		"fps":       s.FPS,
		"driver":    s.CurrentDriver,
		"state":     snap.State,
		"version":   snap.Version,
		"samples":   snap.Samples,
		"clients":   len(s.clients),
		"write_err": s.lastWrite,
	}
	s.mu.RUnlock()
	resp["metrics"] = s.Studio.Metrics.Snapshot()
	writeJSON(w, resp)
}

// HandleSequence exports the last recording. The default is the readable
// dump; ?format=raw returns samples with exact millisecond timestamps.
func (s *Server) HandleSequence(w http.ResponseWriter, r *http.Request) {
	seq := s.Studio.Sequence()
	if seq == nil {
		seq = recording.Sequence{}
	}
	if r.URL.Query().Get("format") == "raw" {
		writeJSON(w, seq)
		return
	}
	b, err := seq.MarshalDump()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

type schemeInfo struct {
	Name  string   `json:"name"`
	Key   string   `json:"key,omitempty"`
	CSS   string   `json:"css"`
	Stops []string `json:"stops"`
}

func (s *Server) HandleSchemes(w http.ResponseWriter, r *http.Request) {
	table := s.Studio.Table()
	var out []schemeInfo
	for _, name := range table.Names() {
		sc, ok := table.Lookup(name)
		if !ok {
			continue
		}
		info := schemeInfo{Name: name, CSS: preview.CSSGradient(sc)}
		info.Key, _ = surface.KeyForScheme(name)
		for _, c := range sc.Stops {
			info.Stops = append(info.Stops, c.Hex())
		}
		out = append(out, info)
	}
	writeJSON(w, out)
}

// HandleGradient renders the field of ?scheme= (default: the active one)
// as a PNG of ?w= by ?h= pixels.
func (s *Server) HandleGradient(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("scheme")
	if name == "" {
		name = s.Studio.Scheme()
	}
	sc, ok := s.Studio.Table().Lookup(name)
	if !ok {
		http.Error(w, "unknown scheme", http.StatusNotFound)
		return
	}
	width, _ := strconv.Atoi(q.Get("w"))
	height, _ := strconv.Atoi(q.Get("h"))

	var buf bytes.Buffer
	if err := preview.RenderGradient(&buf, sc, width, height); err != nil {
		log.Warn().Err(err).Str("scheme", name).Msg("render gradient")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=3600")
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
