package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-ledpaint/internal/config"
	diag "github.com/coreman2200/funtimes-ledpaint/internal/diagnostics"
	"github.com/coreman2200/funtimes-ledpaint/internal/ledbank"
	"github.com/coreman2200/funtimes-ledpaint/internal/studio"
	"github.com/coreman2200/funtimes-ledpaint/internal/surface"
)

var ErrUnknownControl = errors.New("unknown control")

// Control message types accepted on /control.
const (
	CtlPointer     = "pointer"
	CtlKey         = "key"
	CtlRecordStart = "record.start"
	CtlRecordStop  = "record.stop"
	CtlPlay        = "play"
	CtlPlayStop    = "play.stop"
	CtlToggle      = "led.toggle"
	CtlSelect      = "select"
	CtlSpeed       = "speed"
	CtlThreshold   = "threshold"
	CtlScheme      = "scheme"
)

// Control is one input event from the browser. Pointer events carry either
// client coordinates plus the field rect, or an already normalized x,y.
type Control struct {
	Type string `json:"type"`

	ClientX float64       `json:"clientX,omitempty"`
	ClientY float64       `json:"clientY,omitempty"`
	Rect    *surface.Rect `json:"rect,omitempty"`
	X       float64       `json:"x,omitempty"`
	Y       float64       `json:"y,omitempty"`

	Key       string  `json:"key,omitempty"`
	Index     int     `json:"index,omitempty"`
	Selection string  `json:"selection,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// Reply answers each control message with the resulting state.
type Reply struct {
	Type    string          `json:"type"`
	Control string          `json:"control"`
	Ok      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	State   studio.Snapshot `json:"state"`
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Control
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Msg("bad control message")
			continue
		}
		rep := Reply{Type: "reply", Control: msg.Type, Ok: true}
		if err := s.Apply(msg); err != nil {
			rep.Ok, rep.Error = false, err.Error()
		}
		rep.State = s.Studio.Snapshot()
		b, _ := json.Marshal(rep)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

// Apply routes a control message to the studio. Rejected messages are also
// reported on /diag.
func (s *Server) Apply(msg Control) error {
	err := s.apply(msg)
	if err != nil {
		s.pushDiag(diag.Rejected("CONTROL."+msg.Type, err, map[string]any{"type": msg.Type}))
	}
	return err
}

func (s *Server) apply(msg Control) error {
	st := s.Studio
	switch msg.Type {
	case CtlPointer:
		if msg.Rect != nil {
			st.PointerMove(msg.ClientX, msg.ClientY, *msg.Rect)
		} else {
			st.Move(surface.Position{X: msg.X, Y: msg.Y})
		}
	case CtlKey:
		st.KeyDown(msg.Key)
		s.persist()
	case CtlRecordStart:
		st.StartRecording()
	case CtlRecordStop:
		st.StopRecording()
	case CtlPlay:
		st.Play()
	case CtlPlayStop:
		st.StopPlayback()
	case CtlToggle:
		return st.ToggleLED(msg.Index)
	case CtlSelect:
		sel, err := ledbank.ParseSelection(msg.Selection)
		if err != nil {
			return err
		}
		return st.Select(sel)
	case CtlSpeed:
		if _, err := st.SetSpeed(msg.Value); err != nil {
			return err
		}
		s.persist()
	case CtlThreshold:
		st.SetThreshold(msg.Value)
		s.persist()
	case CtlScheme:
		if !st.SetScheme(msg.Name) {
			return fmt.Errorf("unknown scheme %q", msg.Name)
		}
		s.persist()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownControl, msg.Type)
	}
	return nil
}

// persist writes the user-tunable settings back to the config file.
func (s *Server) persist() {
	// Read the studio first: its event hook takes s.mu.
	speed, threshold, scheme := s.Studio.Speed(), s.Studio.Threshold(), s.Studio.Scheme()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ConfigPath == "" {
		return
	}
	if s.Config == nil {
		s.Config = config.Defaults()
	}
	s.Config.Playback.Speed = speed
	s.Config.Recording.Threshold = threshold
	s.Config.Recording.Scheme = scheme
	if err := config.Save(s.ConfigPath, s.Config); err != nil {
		log.Warn().Err(err).Str("path", s.ConfigPath).Msg("config save failed")
	}
}
