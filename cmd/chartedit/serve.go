package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/rhythmkit/chartedit"
	"github.com/rhythmkit/chartedit/editor"
)

type (
	// server exposes an editor session over HTTP. The session is not safe for
	// concurrent use, so every request holds mu. After changes, the recovery
	// file is written once the requests have quieted down.
	server struct {
		mu       sync.Mutex
		session  *editor.Session
		debounce func(func())
	}

	chartResponse struct {
		chartedit.ChartMetadata
		FilePath         string
		Notes            int
		TempoChanges     int
		ChangedSinceSave bool
	}

	noteResponse struct {
		TimePoint    int
		Column       int
		Type         string
		TimePointEnd int `json:",omitempty"`
		Snap         int
	}

	sliceResponse struct {
		Index int
		Start int
		End   int
		Notes []noteResponse
	}

	bpmResponse struct {
		TimePoint  int
		BeatLength float64
		BPM        float64
	}

	actionResponse struct {
		Done    bool
		Message string `json:",omitempty"`
	}
)

func newRouter(s *server) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/chart", s.handleChart).Methods("GET")
	router.HandleFunc("/notes", s.handleNotes).Methods("GET")
	router.HandleFunc("/slices", s.handleSlices).Methods("GET")
	router.HandleFunc("/bpm", s.handleBpm).Methods("GET")
	router.HandleFunc("/undo", s.handleAction(func(e *editor.Session) editor.Action { return e.Undo() })).Methods("POST")
	router.HandleFunc("/redo", s.handleAction(func(e *editor.Session) editor.Action { return e.Redo() })).Methods("POST")
	router.HandleFunc("/save", s.handleAction(func(e *editor.Session) editor.Action { return e.Save() })).Methods("POST")
	return router
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Error encoding response: %v", err), http.StatusInternalServerError)
	}
}

// timeRange reads the begin and end query parameters, both required.
func timeRange(r *http.Request) (begin, end int, err error) {
	q := r.URL.Query()
	if begin, err = strconv.Atoi(q.Get("begin")); err != nil {
		return 0, 0, fmt.Errorf("invalid begin %q", q.Get("begin"))
	}
	if end, err = strconv.Atoi(q.Get("end")); err != nil {
		return 0, 0, fmt.Errorf("invalid end %q", q.Get("end"))
	}
	return begin, end, nil
}

func (s *server) note(n chartedit.Note) noteResponse {
	ret := noteResponse{TimePoint: n.TimePoint, Column: n.Column, Type: n.Type.String(), Snap: s.session.Snaps().Snap(n)}
	if n.IsHold() {
		ret.TimePointEnd = n.TimePointEnd
	}
	return ret
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.session.Chart()
	md, _ := s.session.Metadata()
	writeJSON(w, chartResponse{
		ChartMetadata:    md,
		FilePath:         c.FilePath,
		Notes:            c.NoteCount(),
		TempoChanges:     c.Timeline().Len(),
		ChangedSinceSave: s.session.ChangedSinceSave(),
	})
}

func (s *server) handleNotes(w http.ResponseWriter, r *http.Request) {
	begin, end, err := timeRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := []noteResponse{}
	s.session.Chart().IterateNotesInTimeRange(begin, end, func(n chartedit.Note) bool {
		notes = append(notes, s.note(n))
		return true
	})
	writeJSON(w, notes)
}

func (s *server) handleSlices(w http.ResponseWriter, r *http.Request) {
	begin, end, err := timeRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slices := []sliceResponse{}
	s.session.Chart().IterateTimeSlicesInTimeRange(begin, end, func(ts chartedit.TimeSlice) bool {
		resp := sliceResponse{Index: ts.Index, Start: ts.Start(), End: ts.End(), Notes: make([]noteResponse, len(ts.Notes))}
		for i, n := range ts.Notes {
			resp.Notes[i] = s.note(n)
		}
		slices = append(slices, resp)
		return true
	})
	writeJSON(w, slices)
}

func (s *server) handleBpm(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	points := []bpmResponse{}
	s.session.Chart().IterateAllBpmPoints(func(p chartedit.TimingPoint) bool {
		points = append(points, bpmResponse{TimePoint: p.TimePoint, BeatLength: p.BeatLength, BPM: p.BPM()})
		return true
	})
	writeJSON(w, points)
}

// handleAction runs a session action. A disabled action is reported with
// Done false; failures show up as the latest alert.
func (s *server) handleAction(action func(*editor.Session) editor.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		a := action(s.session)
		if !a.Enabled() {
			writeJSON(w, actionResponse{Done: false, Message: "not available"})
			return
		}
		before, _ := s.session.Alerts().Latest()
		a.Do()
		s.scheduleRecovery()
		resp := actionResponse{Done: true}
		if latest, ok := s.session.Alerts().Latest(); ok && latest.Name != before.Name {
			resp.Message = latest.Message
			resp.Done = latest.Priority != editor.Error
		}
		writeJSON(w, resp)
	}
}

func (s *server) scheduleRecovery() {
	if s.debounce == nil {
		return
	}
	s.debounce(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.session.SaveRecovery(); err != nil {
			fmt.Fprintf(os.Stderr, "could not save recovery file: %v\n", err)
		}
	})
}

var serveAddr string

const recoveryDelay = 2 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve <chart>",
	Short: "Serve a chart over HTTP",
	Long: `Serve opens a chart in an editor session and exposes it over HTTP:

  GET  /chart                 metadata and counts
  GET  /notes?begin=&end=     notes in a time range, in milliseconds
  GET  /slices?begin=&end=    time slices intersecting a time range
  GET  /bpm                   tempo changes
  POST /undo, /redo, /save    session actions`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := editor.LoadConfig()
		session := editor.NewSession(cfg)
		if !session.Open(args[0]) {
			a, _ := session.Alerts().Latest()
			return fmt.Errorf("%s", a.Message)
		}
		s := &server{session: session, debounce: debounce.New(recoveryDelay)}
		handler := cors.Default().Handler(newRouter(s))
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", args[0], serveAddr)
		return http.ListenAndServe(serveAddr, handler)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:10000", "address to listen on")
	rootCmd.AddCommand(serveCmd)
}
