package services

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// KeywordWatcher 监听关键词 CSV 文件变化并自动重载词典
// 管理端的手动重载接口仍然保留, 这里只是省去大多数时候的手动触发
type KeywordWatcher struct {
	dict     *KeywordDictionary
	csvPath  string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// NewKeywordWatcher 创建文件监听器
func NewKeywordWatcher(dict *KeywordDictionary, csvPath string) (*KeywordWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监听器失败: %w", err)
	}

	// 监听所在目录而不是文件本身: 编辑器保存时常用重命名替换, 直接监听文件会丢事件
	dir := filepath.Dir(csvPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("监听目录失败 %s: %w", dir, err)
	}

	return &KeywordWatcher{
		dict:     dict,
		csvPath:  csvPath,
		watcher:  watcher,
		stopChan: make(chan struct{}),
	}, nil
}

// Start 后台开始监听
func (w *KeywordWatcher) Start() {
	log.Printf("👀 已开启关键词 CSV 监听: %s", w.csvPath)
	go w.loop()
}

// Stop 停止监听
func (w *KeywordWatcher) Stop() {
	close(w.stopChan)
	w.watcher.Close()
}

func (w *KeywordWatcher) loop() {
	base := filepath.Base(w.csvPath)

	// 编辑器保存往往触发一串事件, 去抖 500ms 合并成一次重载
	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(500 * time.Millisecond)
			} else {
				debounce.Reset(500 * time.Millisecond)
			}
			debounceC = debounce.C

		case <-debounceC:
			debounceC = nil
			count, err := w.dict.Reload()
			if err != nil {
				log.Printf("⚠️ CSV 变化后重载失败, 继续使用旧词典: %v", err)
				continue
			}
			log.Printf("🔁 检测到 CSV 变化, 词典已重载: %d 条", count)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️ 文件监听错误: %v", err)

		case <-w.stopChan:
			return
		}
	}
}
