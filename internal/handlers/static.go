package handlers

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/console-university/pkg/scenario"
)

// GameDataHandler serves the game data the server is running with, so a
// browser client renders exactly the same world.
type GameDataHandler struct {
	world  *scenario.Scenario
	logger *slog.Logger
}

func NewGameDataHandler(world *scenario.Scenario, logger *slog.Logger) *GameDataHandler {
	return &GameDataHandler{world: world, logger: logger}
}

// ServeHTTP handles GET /data/game.json
func (h *GameDataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, h.logger, r, http.MethodGet, http.MethodHead)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, h.logger, http.StatusOK, h.world)
}

// StaticHandler serves the browser bundle. Paths that match no file fall
// back to index.html so client-side routes resolve.
type StaticHandler struct {
	dir    string
	files  http.Handler
	logger *slog.Logger
}

func NewStaticHandler(dir string, logger *slog.Logger) *StaticHandler {
	return &StaticHandler{
		dir:    dir,
		files:  http.FileServer(http.Dir(dir)),
		logger: logger,
	}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, h.logger, r, http.MethodGet, http.MethodHead)
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	if clean != "/" {
		info, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))))
		if err == nil && !info.IsDir() {
			h.files.ServeHTTP(w, r)
			return
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("Failed to stat static file", "path", clean, "error", err)
		}
	}

	f, err := os.Open(filepath.Join(h.dir, "index.html"))
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	http.ServeContent(w, r, "index.html", info.ModTime(), f)
}
