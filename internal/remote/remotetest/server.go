// Package remotetest provides an in-memory record service for tests.
package remotetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"sticky-wall/internal/remote"
)

// Server serves GET, PATCH and POST on records kept in memory.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	records  map[string]*remote.Object
	patches  [][]byte
	gets     int
	nextID   int
	failNext int
	failCode int
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{records: map[string]*remote.Object{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Put stores a record whose data is the JSON object data.
func (s *Server) Put(id, data string) {
	s.PutNamed(id, "", data)
}

// PutNamed stores a named record.
func (s *Server) PutNamed(id, name, data string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj := &remote.Object{ID: id, Name: name}
	if err := json.Unmarshal([]byte(data), &obj.Data); err != nil {
		panic(err)
	}
	s.records[id] = obj
}

// FailWith answers the next times requests with code.
func (s *Server) FailWith(code, times int) {
	s.mu.Lock()
	s.failCode, s.failNext = code, times
	s.mu.Unlock()
}

// PatchCount returns the number of PATCH requests received.
func (s *Server) PatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.patches)
}

// LastPatch returns the body of the latest PATCH request.
func (s *Server) LastPatch() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.patches) == 0 {
		return nil
	}
	return s.patches[len(s.patches)-1]
}

// GetCount returns the number of GET requests received.
func (s *Server) GetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

// Record returns a copy of the stored record, or nil.
func (s *Server) Record(id string) *remote.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.records[id]
	if !ok {
		return nil
	}
	return &remote.Object{ID: obj.ID, Name: obj.Name, Data: obj.CloneData()}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext > 0 {
		s.failNext--
		w.WriteHeader(s.failCode)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodGet:
		s.gets++
		obj, ok := s.records[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(obj)
	case http.MethodPatch:
		body, _ := io.ReadAll(r.Body)
		s.patches = append(s.patches, body)
		obj, ok := s.records[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var in remote.Object
		if err := json.Unmarshal(body, &in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		obj.Data = in.Data
		json.NewEncoder(w).Encode(obj)
	case http.MethodPost:
		if id != "" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var in remote.Object
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.nextID++
		in.ID = fmt.Sprintf("rec-%d", s.nextID)
		s.records[in.ID] = &in
		json.NewEncoder(w).Encode(&in)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
