package ws

import (
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-ledpaint/internal/clock"
	"github.com/coreman2200/funtimes-ledpaint/internal/config"
	diag "github.com/coreman2200/funtimes-ledpaint/internal/diagnostics"
	"github.com/coreman2200/funtimes-ledpaint/internal/led"
	"github.com/coreman2200/funtimes-ledpaint/internal/palette"
	"github.com/coreman2200/funtimes-ledpaint/internal/recording"
	"github.com/coreman2200/funtimes-ledpaint/internal/studio"
	"github.com/coreman2200/funtimes-ledpaint/internal/surface"
)

type fixture struct {
	srv   *Server
	sim   *led.Sim
	clk   *clock.Manual
	http  *httptest.Server
	wsURL string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		srv: NewServer(60),
		sim: led.NewSim(4),
		clk: clock.NewManual(time.Unix(1700000000, 0)),
	}
	f.srv.Studio = studio.New(studio.Options{LEDs: 4, Clock: f.clk, OnEvent: f.srv.PushEvent})
	f.srv.Driver = f.sim
	f.srv.CurrentDriver = led.KindSim

	mux := http.NewServeMux()
	f.srv.Routes(mux, nil)
	f.http = httptest.NewServer(mux)
	t.Cleanup(f.http.Close)
	f.wsURL = "ws" + strings.TrimPrefix(f.http.URL, "http")
	return f
}

func (f *fixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *fixture) clientCount(diagSet bool) int {
	f.srv.mu.RLock()
	defer f.srv.mu.RUnlock()
	if diagSet {
		return len(f.srv.diagClients)
	}
	return len(f.srv.clients)
}

func send(t *testing.T, conn *websocket.Conn, msg Control) Reply {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	var rep Reply
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&rep))
	return rep
}

func TestControlRecordsPointerMoves(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/control")

	rep := send(t, conn, Control{Type: CtlRecordStart})
	require.True(t, rep.Ok)
	assert.Equal(t, "reply", rep.Type)
	assert.Equal(t, studio.ModeRecording, rep.State.State)

	f.clk.Advance(40 * time.Millisecond)
	rect := &surface.Rect{Left: 10, Top: 10, Width: 100, Height: 50}
	rep = send(t, conn, Control{Type: CtlPointer, ClientX: 110, ClientY: 10, Rect: rect})
	require.True(t, rep.Ok)
	assert.Equal(t, surface.Position{X: 1, Y: 0}, rep.State.Position)
	assert.Equal(t, 2, rep.State.Samples)
	assert.Equal(t, palette.Color{R: 255, B: 255}, rep.State.LEDs[0])

	rep = send(t, conn, Control{Type: CtlKey, Key: "6"})
	assert.Equal(t, palette.Ocean, rep.State.Scheme)

	rep = send(t, conn, Control{Type: CtlRecordStop})
	assert.Equal(t, studio.ModeIdle, rep.State.State)

	rep = send(t, conn, Control{Type: CtlPlay})
	require.True(t, rep.Ok)
	assert.Equal(t, studio.ModePlaying, rep.State.State)

	rep = send(t, conn, Control{Type: CtlSpeed, Value: 2})
	assert.False(t, rep.Ok)
	assert.Equal(t, studio.ErrPlaying.Error(), rep.Error)

	rep = send(t, conn, Control{Type: CtlPlayStop})
	assert.Equal(t, studio.ModeIdle, rep.State.State)
}

func TestControlErrors(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.srv.Apply(Control{Type: "explode"}), ErrUnknownControl)
	assert.Error(t, f.srv.Apply(Control{Type: CtlSelect, Selection: "diagonal"}))
	assert.Error(t, f.srv.Apply(Control{Type: CtlToggle, Index: 99}))
	assert.Error(t, f.srv.Apply(Control{Type: CtlScheme, Name: "plaid"}))

	require.NoError(t, f.srv.Apply(Control{Type: CtlSelect, Selection: "odd"}))
	require.NoError(t, f.srv.Apply(Control{Type: CtlToggle, Index: 0}))
	assert.Equal(t, []bool{true, true, false, true}, []bool(f.srv.Studio.Snapshot().Mask))
}

func TestDiagReceivesRejections(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/diag")
	require.Eventually(t, func() bool { return f.clientCount(true) == 1 }, time.Second, 5*time.Millisecond)

	require.Error(t, f.srv.Apply(Control{Type: "explode"}))

	var d diag.Diagnostic
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&d))
	assert.Equal(t, diag.Warn, d.Severity)
	assert.Equal(t, "CONTROL.explode", d.Code)

	require.NoError(t, f.srv.Apply(Control{Type: CtlPlay}))
	require.NoError(t, conn.ReadJSON(&d))
	assert.Equal(t, "PLAYBACK.EMPTY", d.Code)
}

func TestRenderFrameWritesDriverAndBroadcasts(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/ws")

	var fr Frame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&fr))
	assert.Equal(t, "frame", fr.Type)
	require.Eventually(t, func() bool { return f.clientCount(false) == 1 }, time.Second, 5*time.Millisecond)

	f.srv.Studio.StartRecording()
	f.clk.Advance(200 * time.Millisecond)
	f.srv.Studio.Move(surface.Position{X: 0, Y: 0.5})
	f.srv.renderFrame()

	require.NoError(t, conn.ReadJSON(&fr))
	assert.Equal(t, uint64(1), fr.FrameID)
	assert.Equal(t, led.KindSim, fr.Driver)
	assert.Equal(t, palette.Color{R: 128}, fr.State.LEDs[3])

	last, n := f.sim.Last()
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte{128, 0, 0}, last[:3])
}

func TestSequenceExport(t *testing.T) {
	f := newFixture(t)
	f.srv.Studio.StartRecording()
	f.clk.Advance(1500 * time.Millisecond)
	f.srv.Studio.Move(surface.Position{X: 0.5, Y: 0})
	f.srv.Studio.StopRecording()

	res, err := http.Get(f.http.URL + "/sequence")
	require.NoError(t, err)
	defer res.Body.Close()
	var rows []recording.DumpRow
	require.NoError(t, json.NewDecoder(res.Body).Decode(&rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "1.50s", rows[1].Time)
	assert.Equal(t, "rgb(0, 255, 128)", rows[1].Color)

	res2, err := http.Get(f.http.URL + "/sequence?format=raw")
	require.NoError(t, err)
	defer res2.Body.Close()
	var seq recording.Sequence
	require.NoError(t, json.NewDecoder(res2.Body).Decode(&seq))
	assert.Equal(t, f.srv.Studio.Sequence(), seq)
}

func TestSequenceExportBeforeRecording(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/sequence", "/sequence?format=raw"} {
		res, err := http.Get(f.http.URL + path)
		require.NoError(t, err)
		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(body), path)
	}
}

func TestHealthAndSchemes(t *testing.T) {
	f := newFixture(t)

	res, err := http.Get(f.http.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	var health map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&health))
	assert.Equal(t, float64(4), health["count"])
	assert.Equal(t, "idle", health["state"])
	assert.Contains(t, health, "metrics")

	res2, err := http.Get(f.http.URL + "/schemes")
	require.NoError(t, err)
	defer res2.Body.Close()
	var schemes []schemeInfo
	require.NoError(t, json.NewDecoder(res2.Body).Decode(&schemes))
	require.Len(t, schemes, 7)
	assert.Equal(t, "rainbow", schemes[0].Name)
	assert.Equal(t, "1", schemes[0].Key)
	assert.Equal(t, "#ff0000", schemes[0].Stops[0])
	assert.True(t, strings.HasPrefix(schemes[0].CSS, "linear-gradient("))
}

func TestGradientPNG(t *testing.T) {
	f := newFixture(t)

	res, err := http.Get(f.http.URL + "/gradient.png?scheme=ocean&w=40&h=20")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	img, err := png.Decode(res.Body)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())

	res2, err := http.Get(f.http.URL + "/gradient.png?scheme=plaid")
	require.NoError(t, err)
	res2.Body.Close()
	assert.Equal(t, http.StatusNotFound, res2.StatusCode)
}

func TestPersistWritesConfig(t *testing.T) {
	f := newFixture(t)
	f.srv.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, f.srv.Apply(Control{Type: CtlSpeed, Value: 1.5}))
	require.NoError(t, f.srv.Apply(Control{Type: CtlThreshold, Value: 0.02}))
	require.NoError(t, f.srv.Apply(Control{Type: CtlScheme, Name: palette.Sunset}))

	c, err := config.Load(f.srv.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 1.5, c.Playback.Speed)
	assert.Equal(t, 0.02, c.Recording.Threshold)
	assert.Equal(t, palette.Sunset, c.Recording.Scheme)
}
