package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledpaint/internal/config"
	diag "github.com/coreman2200/funtimes-ledpaint/internal/diagnostics"
	"github.com/coreman2200/funtimes-ledpaint/internal/led"
	"github.com/coreman2200/funtimes-ledpaint/internal/studio"
)

// Server publishes studio state over websockets and pushes frames to the
// LED driver whenever the studio changes.
type Server struct {
	mu  sync.RWMutex
	FPS int

	Studio        *studio.Studio
	Driver        led.Driver
	CurrentDriver string

	// Config is the persisted copy; runtime changes are written back to
	// ConfigPath when it is set.
	Config     *config.Config
	ConfigPath string

	frameID     uint64
	startTime   time.Time
	lastWrite   string
	clients     map[*client]bool
	diagClients map[*client]bool
	upgrader    websocket.Upgrader
}

// client serializes writes; gorilla connections allow one writer at a time.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func NewServer(fps int) *Server {
	return &Server{
		FPS:         fps,
		startTime:   time.Now(),
		clients:     map[*client]bool{},
		diagClients: map[*client]bool{},
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Frame is the message sent to /ws clients.
type Frame struct {
	Type    string          `json:"type"`
	T       int64           `json:"t"`
	FrameID uint64          `json:"frame_id"`
	Driver  string          `json:"driver,omitempty"`
	State   studio.Snapshot `json:"state"`
}

// RunRenderLoop polls the studio at FPS and, when it changed, writes the
// bank to the driver and broadcasts a frame. It returns when ctx is done.
func (s *Server) RunRenderLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(max(1, s.FPS)))
	defer ticker.Stop()

	var last uint64
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		v := s.Studio.Version()
		if !first && v == last {
			continue
		}
		first, last = false, v
		s.renderFrame()
	}
}

func (s *Server) renderFrame() {
	rgb := s.Studio.Bank().RGB()

	s.mu.Lock()
	s.frameID++
	drv := s.Driver
	s.mu.Unlock()

	if drv != nil {
		s.reportWrite(drv.Write(rgb))
	}
	s.broadcastFrame()
}

// reportWrite surfaces driver errors once per distinct message.
func (s *Server) reportWrite(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	s.mu.Lock()
	changed := msg != s.lastWrite
	s.lastWrite = msg
	s.mu.Unlock()
	if !changed || err == nil {
		return
	}
	log.Warn().Err(err).Str("driver", s.CurrentDriver).Msg("led write failed")
	s.pushDiag(diag.Diagnostic{
		Time:         time.Now(),
		Severity:     diag.Err,
		Code:         "LED.WRITE",
		Summary:      "LED driver write failed",
		Detail:       msg,
		LikelyCauses: []string{"strip unplugged", "wrong SPI device", "led_count does not match the strip"},
	})
}

func (s *Server) frame() []byte {
	s.mu.RLock()
	f := Frame{
		Type:    "frame",
		T:       time.Now().UnixNano(),
		FrameID: s.frameID,
		Driver:  s.CurrentDriver,
	}
	s.mu.RUnlock()
	f.State = s.Studio.Snapshot()
	b, _ := json.Marshal(f)
	return b
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()
	_ = c.send(s.frame())

	go s.drain(c, s.clients)
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	s.mu.Lock()
	s.diagClients[c] = true
	s.mu.Unlock()

	go s.drain(c, s.diagClients)
}

// drain reads until the peer goes away, then unregisters it.
func (s *Server) drain(c *client, set map[*client]bool) {
	defer func() {
		s.mu.Lock()
		delete(set, c)
		s.mu.Unlock()
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) broadcastFrame() {
	b := s.frame()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		if err := c.send(b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (s *Server) pushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.diagClients {
		_ = c.send(b)
	}
}

// PushEvent forwards a studio event to /diag clients. It is meant to be
// installed as studio.Options.OnEvent.
func (s *Server) PushEvent(ev studio.Event) {
	s.pushDiag(diag.FromEvent(ev.Kind, ev.Fields))
}
