package webhelpers

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is the default debounce interval for file watch events.
const DefaultWatchDebounce = 500 * time.Millisecond

// FileWatcher calls a function whenever a single file is written, created
// or renamed into place. Bursts of events within the debounce interval
// produce one call.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	path      string
	debounce  time.Duration
	onChange  func() error
	onError   func(error)
	stopCh    chan struct{}
	stoppedCh chan struct{}
	mu        sync.Mutex
	running   bool
	stopped   bool
}

// NewFileWatcher watches path. onError receives both watcher errors and
// errors returned by onChange; either callback may be nil.
func NewFileWatcher(path string, debounce time.Duration, onChange func() error, onError func(error)) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	// Editors that save by renaming replace the inode, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &FileWatcher{
		watcher:   watcher,
		path:      path,
		debounce:  debounce,
		onChange:  onChange,
		onError:   onError,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine. Calling Start twice is a no-op.
func (fw *FileWatcher) Start() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.running || fw.stopped {
		return
	}
	fw.running = true
	go fw.loop()
}

// Stop ends watching and waits for the loop to exit. It is safe to call
// more than once, and before Start.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return
	}
	fw.stopped = true
	running := fw.running
	fw.mu.Unlock()

	close(fw.stopCh)
	if running {
		<-fw.stoppedCh
	} else {
		fw.watcher.Close()
	}
}

func (fw *FileWatcher) matches(name string) bool {
	if filepath.Base(name) != filepath.Base(fw.path) {
		return false
	}
	want, err1 := filepath.Abs(fw.path)
	got, err2 := filepath.Abs(name)
	return err1 != nil || err2 != nil || want == got
}

func (fw *FileWatcher) loop() {
	defer close(fw.stoppedCh)
	defer fw.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-fw.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.matches(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(fw.debounce)
			fire = timer.C

		case <-fire:
			timer, fire = nil, nil
			if fw.onChange == nil {
				continue
			}
			if err := fw.onChange(); err != nil && fw.onError != nil {
				fw.onError(err)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			if fw.onError != nil {
				fw.onError(err)
			}
		}
	}
}
