package ops

import (
	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/config"
	"github.com/hpungsan/cuebin/internal/logger"
	"github.com/hpungsan/cuebin/internal/view"
	"github.com/hpungsan/cuebin/internal/viewfile"
)

// Library holds what view operations need beyond the database: views
// declared in the views file, the index cache, and a logger.
type Library struct {
	FileViews []view.View
	Cache     *view.IndexCache
	Log       *logger.Logger

	// LoadErr is the views file error, if any. The library still works
	// without file views.
	LoadErr error
}

// NewLibrary loads the configured views file. A broken file is logged and
// recorded in LoadErr rather than failing startup.
func NewLibrary(cfg *config.Config, baseDir string, log *logger.Logger) *Library {
	if log == nil {
		log = logger.Nop()
	}
	lib := &Library{Cache: &view.IndexCache{}, Log: log}
	if cfg == nil {
		return lib
	}
	path := cfg.ViewsPath(baseDir)
	if path == "" {
		return lib
	}
	views, err := viewfile.Load(path)
	if err != nil {
		log.Warn("views file not loaded", "path", path, "error", err)
		lib.LoadErr = err
		return lib
	}
	if len(views) > 0 {
		log.Debug("views file loaded", "path", path, "views", len(views))
	}
	lib.FileViews = views
	return lib
}

func (l *Library) fileViews() []view.View {
	if l == nil {
		return nil
	}
	return l.FileViews
}

func (l *Library) logger() *logger.Logger {
	if l == nil || l.Log == nil {
		return logger.Nop()
	}
	return l.Log
}

func (l *Library) rows(s catalog.Snapshot) []view.Row {
	if l == nil || l.Cache == nil {
		return view.BuildIndex(s)
	}
	return l.Cache.Rows(s)
}
