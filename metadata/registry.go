package metadata

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ichaly/entschema/log"
	"github.com/oklog/ulid/v2"
)

// Snapshot 一次成功规范化的实体集合，发布后不再修改
type Snapshot struct {
	Version  string
	LoadedAt time.Time
	schemas  []*Schema
	index    map[string]*Schema
}

func newSnapshot(list []*Schema) *Snapshot {
	s := &Snapshot{
		Version:  ulid.Make().String(),
		LoadedAt: time.Now(),
		schemas:  list,
		index:    make(map[string]*Schema, len(list)),
	}
	for _, v := range list {
		s.index[v.Name] = v
	}
	return s
}

// Get 按实体名获取规范化结果，调用方不得修改
func (my *Snapshot) Get(name string) (*Schema, bool) {
	v, ok := my.index[name]
	return v, ok
}

// Names 按加载顺序返回实体名
func (my *Snapshot) Names() []string {
	names := make([]string, len(my.schemas))
	for i, v := range my.schemas {
		names[i] = v.Name
	}
	return names
}

// Schemas 返回全部实体
func (my *Snapshot) Schemas() []*Schema {
	return append([]*Schema(nil), my.schemas...)
}

// Registry 持有当前发布的快照，重新加载时整体替换
type Registry struct {
	current   atomic.Pointer[Snapshot]
	opts      []Option
	mu        sync.Mutex
	listeners []func(*Snapshot)
}

func NewRegistry(opts ...Option) *Registry {
	return &Registry{opts: opts}
}

// Load 规范化完整集合，成功后原子替换当前快照；失败时保留原快照
func (my *Registry) Load(raws []*Schema) (*Snapshot, error) {
	my.mu.Lock()
	defer my.mu.Unlock()

	list, err := NormalizeAll(raws, my.opts...)
	if err != nil {
		log.Warn().Err(err).Msg("实体集合校验失败，保留当前版本")
		return nil, err
	}
	snap := newSnapshot(list)
	my.current.Store(snap)
	log.Info().Str("version", snap.Version).Int("entities", len(list)).Msg("实体集合已发布")

	for _, fn := range my.listeners {
		fn(snap)
	}
	return snap, nil
}

// Lint 使用相同选项规范化但不发布
func (my *Registry) Lint(raws []*Schema) ([]*Schema, error) {
	return NormalizeAll(raws, my.opts...)
}

// LoadPaths 从文件或目录加载后发布
func (my *Registry) LoadPaths(paths ...string) (*Snapshot, error) {
	raws, err := Load(paths...)
	if err != nil {
		return nil, err
	}
	return my.Load(raws)
}

// Current 返回当前快照，尚未加载时为nil
func (my *Registry) Current() *Snapshot {
	return my.current.Load()
}

// Get 从当前快照获取实体
func (my *Registry) Get(name string) (*Schema, bool) {
	snap := my.Current()
	if snap == nil {
		return nil, false
	}
	return snap.Get(name)
}

// OnChange 注册发布回调，回调在发布后同步执行
func (my *Registry) OnChange(fn func(*Snapshot)) {
	my.mu.Lock()
	defer my.mu.Unlock()
	my.listeners = append(my.listeners, fn)
}
