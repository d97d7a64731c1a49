package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gastos/internal/storage"
)

// Store is an in-process KV backend. Values are copied in and out.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: map[string][]byte{}}
}

// NewFromDir seeds the store from "<key>.json" files in base. When no
// categorias.json exists, a seed_categories.txt file with one name per line
// is used instead. Missing files are skipped.
func NewFromDir(base string) *Store {
	s := New()
	if base == "" {
		return s
	}
	for _, key := range storage.Keys {
		raw, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err == nil {
			s.data[key] = raw
		}
	}
	if _, ok := s.data[storage.KeyCategories]; !ok {
		if cats := readLines(filepath.Join(base, "seed_categories.txt")); len(cats) > 0 {
			if raw, err := json.Marshal(cats); err == nil {
				s.data[storage.KeyCategories] = raw
			}
		}
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
