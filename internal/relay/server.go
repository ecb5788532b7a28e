package relay

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"idkit/internal/domain"
)

// DefaultTTL is how long the in-memory relay keeps a request.
const DefaultTTL = 5 * time.Minute

type entry struct {
	status   string
	request  *domain.Envelope
	response *domain.Envelope
	created  time.Time
}

// Server is an in-memory relay implementing the bridge wire contract. All
// state is lost when the process exits.
type Server struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewServer returns an empty relay. A non-positive ttl selects DefaultTTL.
func NewServer(ttl time.Duration, log zerolog.Logger) *Server {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Server{
		entries: make(map[uuid.UUID]*entry),
		ttl:     ttl,
		now:     time.Now,
		log:     log,
	}
}

// Handler returns the relay routes wrapped with panic recovery and a
// permissive CORS policy, so browser-based requesters can use it too.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/request", s.createRequest).Methods(http.MethodPost)
	r.HandleFunc("/request/{id}", s.fetchRequest).Methods(http.MethodGet)
	r.HandleFunc("/response/{id}", s.postResponse).Methods(http.MethodPut)
	r.HandleFunc("/response/{id}", s.fetchResponse).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return handlers.RecoveryHandler()(cors(r))
}

// Len reports how many live requests the relay holds.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.entries)
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	env, ok := decodeEnvelope(w, r)
	if !ok {
		return
	}
	id := uuid.New()

	s.mu.Lock()
	s.sweepLocked()
	s.entries[id] = &entry{
		status:  domain.RelayStatusInitialized,
		request: &env,
		created: s.now(),
	}
	s.mu.Unlock()

	s.log.Info().Str("request_id", id.String()).Msg("request created")
	writeJSON(w, http.StatusCreated, domain.CreateRequestResponse{RequestID: id})
}

// fetchRequest hands the sealed request to the wallet exactly once.
func (s *Server) fetchRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := requestID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	e := s.lookupLocked(id)
	if e == nil || e.request == nil {
		s.mu.Unlock()
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	env := *e.request
	e.request = nil
	e.status = domain.RelayStatusRetrieved
	s.mu.Unlock()

	s.log.Info().Str("request_id", id.String()).Msg("request retrieved")
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) postResponse(w http.ResponseWriter, r *http.Request) {
	id, ok := requestID(w, r)
	if !ok {
		return
	}
	env, ok := decodeEnvelope(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	e := s.lookupLocked(id)
	switch {
	case e == nil:
		s.mu.Unlock()
		http.Error(w, "not found", http.StatusNotFound)
		return
	case e.status == domain.RelayStatusCompleted:
		s.mu.Unlock()
		http.Error(w, "response already set", http.StatusConflict)
		return
	}
	e.request = nil
	e.response = &env
	e.status = domain.RelayStatusCompleted
	s.mu.Unlock()

	s.log.Info().Str("request_id", id.String()).Msg("response stored")
	w.WriteHeader(http.StatusCreated)
}

// fetchResponse reports the request state. A completed response is served
// once and then dropped.
func (s *Server) fetchResponse(w http.ResponseWriter, r *http.Request) {
	id, ok := requestID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	e := s.lookupLocked(id)
	if e == nil {
		s.mu.Unlock()
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	out := domain.RelayStatus{Status: e.status, Response: e.response}
	if e.status == domain.RelayStatusCompleted {
		delete(s.entries, id)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) lookupLocked(id uuid.UUID) *entry {
	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	if s.now().Sub(e.created) > s.ttl {
		delete(s.entries, id)
		return nil
	}
	return e
}

func (s *Server) sweepLocked() {
	now := s.now()
	for id, e := range s.entries {
		if now.Sub(e.created) > s.ttl {
			delete(s.entries, id)
		}
	}
}

func requestID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decodeEnvelope(w http.ResponseWriter, r *http.Request) (domain.Envelope, bool) {
	defer r.Body.Close()
	var env domain.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return env, false
	}
	if env.IV == "" || env.Payload == "" {
		http.Error(w, "iv and payload are required", http.StatusBadRequest)
		return env, false
	}
	return env, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
