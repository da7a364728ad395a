package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// JSONStore 把所有表保存在一个 JSON 文件中，读操作走内存，写操作整体落盘。
type JSONStore struct {
	path   string
	mu     sync.RWMutex
	tables map[string][]Record
	now    func() time.Time
}

// NewJSONStore 打开（或创建）指定路径的 JSON 存储文件。
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	s := &JSONStore{path: path, tables: make(map[string][]Record), now: time.Now}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	// 保留整数精度，id 比较依赖它
	dec.UseNumber()
	if err := dec.Decode(&s.tables); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	if s.tables == nil {
		s.tables = make(map[string][]Record)
	}
	return nil
}

// persistLocked 先写临时文件再 rename，保证文件内容始终完整。调用方需持有写锁。
func (s *JSONStore) persistLocked() error {
	data, err := json.MarshalIndent(s.tables, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tables: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *JSONStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// Find 返回满足条件的记录副本。
func (s *JSONStore) Find(ctx context.Context, table string, where ...Eq) ([]Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0)
	for _, r := range s.tables[table] {
		if r.Matches(where) {
			out = append(out, r.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// Insert 以当前最大 id + 1 作为新记录的 id。物理删除最大 id 的记录后该 id 会被再次分配；
// 话题接口只做软删除，物理删除只来自 sqlshim 的 DELETE。
func (s *JSONStore) Insert(ctx context.Context, table string, fields Record) (int64, error) {
	rec, err := prepareInsert(table, fields)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, r := range s.tables[table] {
		if id := r.ID(); id > maxID {
			maxID = id
		}
	}
	id := maxID + 1
	ts := s.timestamp()
	rec["id"] = id
	rec["created_at"] = ts
	rec["updated_at"] = ts

	prev := s.tables[table]
	s.tables[table] = append(prev[:len(prev):len(prev)], rec)
	if err := s.persistLocked(); err != nil {
		s.tables[table] = prev
		return 0, err
	}
	return id, nil
}

// Update 合并字段并刷新 updated_at。
func (s *JSONStore) Update(ctx context.Context, table string, id int64, fields Record) (int64, error) {
	changes, err := prepareUpdate(table, fields)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	idx := indexOf(rows, id)
	if idx < 0 {
		return 0, nil
	}
	old := rows[idx]
	merged := old.Clone()
	for k, v := range changes {
		merged[k] = v
	}
	merged["updated_at"] = s.timestamp()
	rows[idx] = merged
	if err := s.persistLocked(); err != nil {
		rows[idx] = old
		return 0, err
	}
	return 1, nil
}

// Delete 物理删除记录。
func (s *JSONStore) Delete(ctx context.Context, table string, id int64) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	idx := indexOf(rows, id)
	if idx < 0 {
		return 0, nil
	}
	kept := make([]Record, 0, len(rows)-1)
	kept = append(kept, rows[:idx]...)
	kept = append(kept, rows[idx+1:]...)
	s.tables[table] = kept
	if err := s.persistLocked(); err != nil {
		s.tables[table] = rows
		return 0, err
	}
	return 1, nil
}

// Close 对 JSON 存储无需做任何事。
func (s *JSONStore) Close() error {
	return nil
}

func indexOf(rows []Record, id int64) int {
	for i, r := range rows {
		if r.ID() == id {
			return i
		}
	}
	return -1
}
