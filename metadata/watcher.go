package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ichaly/entschema/log"
)

// Watcher 监听实体文件变更并通过 Registry 重新发布
type Watcher struct {
	registry *Registry
	paths    []string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	stop     chan struct{}
	once     sync.Once
}

func NewWatcher(r *Registry, paths []string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{registry: r, paths: paths, debounce: debounce}
}

// Start 开始监听，目录会递归加入监听
func (my *Watcher) Start() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监视器失败: %w", err)
	}
	for _, p := range my.paths {
		if err := addWatch(w, p); err != nil {
			_ = w.Close()
			return err
		}
	}
	my.watcher = w
	my.stop = make(chan struct{})
	go my.loop()

	log.Info().Strs("paths", my.paths).Msg("已启动实体文件监听")
	return nil
}

func addWatch(w *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("实体路径不可用: %w", err)
	}
	if !info.IsDir() {
		// 监听所在目录以捕获编辑器的替换写入
		return w.Add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

func (my *Watcher) loop() {
	var timer *time.Timer
	for {
		select {
		case event, ok := <-my.watcher.Events:
			if !ok {
				return
			}
			if !isSchemaFile(event.Name) || !event.Op.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			log.Debug().Str("file", event.Name).Str("operation", event.Op.String()).Msg("检测到实体文件变更")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(my.debounce, my.reload)
		case err, ok := <-my.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("实体文件监视错误")
		case <-my.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (my *Watcher) reload() {
	if _, err := my.registry.LoadPaths(my.paths...); err != nil {
		log.Error().Err(err).Msg("实体重新加载失败")
	}
}

// Stop 停止监听
func (my *Watcher) Stop() error {
	var err error
	my.once.Do(func() {
		if my.watcher == nil {
			return
		}
		close(my.stop)
		err = my.watcher.Close()
		log.Info().Msg("已停止实体文件监听")
	})
	return err
}
