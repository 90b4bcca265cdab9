package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/frescoui/fresco/pkg/page"
)

// Session holds one browser's page instances and its key/value storage.
// Storage entries are ordered by first write and tagged with the set of
// page paths that have written them; an entry is only visible to a path
// that appears in its owner set.
type Session struct {
	Token     string
	CreatedAt time.Time

	mu          sync.Mutex
	pages       map[string]*PageInstance
	storage     []*entry
	currentPath string
	logger      *slog.Logger
}

type entry struct {
	key    string
	value  any
	owners map[string]struct{}
}

func newSession(token string, logger *slog.Logger) *Session {
	return &Session{
		Token:     token,
		CreatedAt: time.Now(),
		pages:     make(map[string]*PageInstance),
		logger:    logger,
	}
}

// Instantiate returns the live instance for def.Path, constructing the page
// on first access. Construction scans the page once for endpoint and
// exposure providers; later navigations back to the path reuse the instance
// with its state intact. When instantiation moves the session off a
// different path, storage entries owned exclusively by that outgoing path
// are purged.
func (s *Session) Instantiate(def *page.Definition) *PageInstance {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inst, ok := s.pages[def.Path]; ok {
		s.currentPath = def.Path
		return inst
	}

	if s.currentPath != "" && s.currentPath != def.Path {
		s.purgeOwnedLocked(s.currentPath)
	}
	s.currentPath = def.Path

	p := def.New()
	inst := &PageInstance{
		Path:      def.Path,
		Title:     def.Title,
		Page:      p,
		Storage:   &scopedStorage{sess: s, path: def.Path},
		endpoints: map[string]page.EndpointFunc{},
	}
	if ep, ok := p.(page.EndpointProvider); ok {
		for name, fn := range ep.Endpoints() {
			inst.endpoints[name] = fn
		}
	}
	if xp, ok := p.(page.ExposureProvider); ok {
		inst.exposures = xp.Exposures()
	}
	s.pages[def.Path] = inst

	s.logger.Debug("page instantiated",
		"token", s.Token, "path", def.Path, "endpoints", len(inst.endpoints))
	return inst
}

// Instance returns the already-built instance for path, if any.
func (s *Session) Instance(path string) (*PageInstance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.pages[path]
	return inst, ok
}

// CurrentPath reports the path of the most recently instantiated page.
func (s *Session) CurrentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPath
}

// Replace schedules the instance at path for eviction after grace. The
// delay lets an in-flight poll or endpoint call finish against the old
// instance; a navigation back within the grace period keeps it alive only
// until the timer fires. Storage owned exclusively by the path goes with
// the instance.
func (s *Session) Replace(path string, grace time.Duration) {
	s.mu.Lock()
	inst, ok := s.pages[path]
	s.mu.Unlock()
	if !ok {
		return
	}

	time.AfterFunc(grace, func() {
		s.mu.Lock()
		if s.pages[path] == inst {
			delete(s.pages, path)
			s.purgeOwnedLocked(path)
		}
		s.mu.Unlock()
		s.logger.Debug("page evicted", "token", s.Token, "path", path)
	})
}

// Reset drops every page instance and all storage.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = make(map[string]*PageInstance)
	s.storage = nil
	s.currentPath = ""
}

// Storage returns the key/value view scoped to path.
func (s *Session) Storage(path string) page.Storage {
	return &scopedStorage{sess: s, path: path}
}

// purgeOwnedLocked removes entries whose only owner is path. Entries shared
// with other paths survive with the full owner set; the departing path may
// still return and read them.
func (s *Session) purgeOwnedLocked(path string) {
	kept := s.storage[:0]
	for _, e := range s.storage {
		if _, owns := e.owners[path]; owns && len(e.owners) == 1 {
			continue
		}
		kept = append(kept, e)
	}
	s.storage = kept
}

func (s *Session) entryLocked(key string) *entry {
	for _, e := range s.storage {
		if e.key == key {
			return e
		}
	}
	return nil
}

// scopedStorage is the page.Storage view a single page path sees.
type scopedStorage struct {
	sess *Session
	path string
}

func (sc *scopedStorage) Get(key string) (any, bool) {
	sc.sess.mu.Lock()
	defer sc.sess.mu.Unlock()
	e := sc.sess.entryLocked(key)
	if e == nil {
		return nil, false
	}
	if _, ok := e.owners[sc.path]; !ok {
		return nil, false
	}
	return e.value, true
}

func (sc *scopedStorage) Set(key string, value any) {
	sc.sess.mu.Lock()
	defer sc.sess.mu.Unlock()
	if e := sc.sess.entryLocked(key); e != nil {
		e.value = value
		e.owners[sc.path] = struct{}{}
		return
	}
	sc.sess.storage = append(sc.sess.storage, &entry{
		key:    key,
		value:  value,
		owners: map[string]struct{}{sc.path: {}},
	})
}

func (sc *scopedStorage) Delete(key string) {
	sc.sess.mu.Lock()
	defer sc.sess.mu.Unlock()
	for i, e := range sc.sess.storage {
		if e.key != key {
			continue
		}
		if _, ok := e.owners[sc.path]; !ok {
			return
		}
		sc.sess.storage = append(sc.sess.storage[:i], sc.sess.storage[i+1:]...)
		return
	}
}

func (sc *scopedStorage) Keys() []string {
	sc.sess.mu.Lock()
	defer sc.sess.mu.Unlock()
	var keys []string
	for _, e := range sc.sess.storage {
		if _, ok := e.owners[sc.path]; ok {
			keys = append(keys, e.key)
		}
	}
	return keys
}
