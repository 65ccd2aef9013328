// Package diag streams live step-timing diagnostics from the motion engine
// to any connected observer (a dashboard, a test harness) over a websocket,
// independent of the engine's own hot path.
package diag

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	motionlog "github.com/feral42/RepRapFirmware/pkg/log"
)

// StepFrame is one broadcast unit: one step pulse of a single drive, with
// the interval, direction and state left by the CalcNextStep* call that
// computed it, enough for a dashboard to plot a step-time curve or flag a
// StepError without touching engine internals.
type StepFrame struct {
	Segment      int    `json:"segment"`
	Drive        int    `json:"drive"`
	NextStep     uint32 `json:"nextStep"`
	TotalSteps   uint32 `json:"totalSteps"`
	NextStepTime uint32 `json:"nextStepTime"`
	StepInterval uint32 `json:"stepInterval"`
	Direction    bool   `json:"direction"`
	State        string `json:"state"`
}

// Server is a small websocket broadcast hub: every StepFrame published via
// Publish is fanned out to every currently-connected client. Slow or absent
// clients never block the publisher -- frames are dropped for a client
// whose outbound buffer is full rather than stalling the simulation loop.
type Server struct {
	log      *motionlog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	out  chan StepFrame
}

// NewServer creates a diagnostics server. Call ServeHTTP (or use it as an
// http.Handler directly) to expose the websocket endpoint.
func NewServer(log *motionlog.Logger) *Server {
	return &Server{
		log:     log,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection as a diagnostics subscriber until it disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("diag: websocket upgrade failed")
		return
	}

	c := &client{conn: conn, out: make(chan StepFrame, 64)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writeLoop(c)
}

func (s *Server) writeLoop(c *client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.conn.Close()
	}()

	for frame := range c.out {
		if err := c.conn.WriteJSON(frame); err != nil {
			return
		}
	}
}

// Publish fans a frame out to every connected client, dropping it for any
// client whose buffer is currently full.
func (s *Server) Publish(frame StepFrame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.out <- frame:
		default:
			s.log.Debug("diag: dropping frame for slow client")
		}
	}
}

// MarshalFrame is a convenience used by tests that want to assert on the
// wire format without standing up a real websocket connection.
func MarshalFrame(f StepFrame) ([]byte, error) {
	return json.Marshal(f)
}
