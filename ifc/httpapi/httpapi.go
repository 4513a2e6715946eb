// Package httpapi exposes a small read-only debug surface over a
// running interpreter: how much audio is still queued to play, and
// what functions and sequence literals the session has bound so far.
// It is not part of the language's own pipeline; nothing in it
// depends on this being reachable, but every performance rig wants a
// way to glance at a running session from outside the MIDI stream
// that's driving it.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mddl-lang/mddl/env"
	"github.com/mddl-lang/mddl/scheduler"
)

// Status is the JSON body /status returns.
type Status struct {
	Pending       int    `json:"pending"`
	PendingWaitNs uint64 `json:"pendingWaitNs"`
	Recording     bool   `json:"recording"`
}

// ScopeNode is one node of the /scopes JSON tree.
type ScopeNode struct {
	ID        string      `json:"id"`
	Vars      int         `json:"vars"`
	Footprint uint64      `json:"footprint"`
	Error     bool        `json:"error,omitempty"`
	Children  []ScopeNode `json:"children,omitempty"`
}

// Source is the subset of a running interpreter the debug server
// reads from. Interpreter (package interp) satisfies it without
// httpapi ever importing interp directly, the same Stack-interface
// trick optable uses to avoid a dependency on runtime.
type Source interface {
	Scheduler() *scheduler.Scheduler
	GlobalScope() *env.Scope
	LiteralIDs() []string
	Recording() bool
}

// Server wraps a gorilla/mux router over src, CORS-wrapped with
// rs/cors the way a debug endpoint meant to be polled from a browser
// tool (rather than only from curl) should be.
type Server struct {
	src    Source
	router *mux.Router
}

func New(src Source) *Server {
	s := &Server{src: src, router: mux.NewRouter().StrictSlash(true)}
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/scopes", s.handleScopes).Methods(http.MethodGet)
	s.router.HandleFunc("/literals", s.handleLiterals).Methods(http.MethodGet)
	return s
}

// ListenAndServe starts the debug server on addr, blocking until it
// fails. Callers typically run this on its own goroutine.
func (s *Server) ListenAndServe(addr string) error {
	handler := cors.Default().Handler(s.router)
	log.Printf("[mddl] debug api listening on %s", addr)
	return http.ListenAndServe(addr, handler)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sched := s.src.Scheduler()
	status := Status{Recording: s.src.Recording()}
	if sched != nil {
		status.Pending = sched.Pending()
		status.PendingWaitNs = sched.PendingWaitTotal()
	}
	writeJSON(w, status)
}

func (s *Server) handleScopes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, scopeNode(s.src.GlobalScope()))
}

func scopeNode(sc *env.Scope) ScopeNode {
	node := ScopeNode{ID: sc.ID, Vars: len(sc.Vars), Footprint: sc.VarFootprint(), Error: sc.Error}
	for _, child := range sc.Children {
		node.Children = append(node.Children, scopeNode(child))
	}
	return node
}

func (s *Server) handleLiterals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.src.LiteralIDs())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
