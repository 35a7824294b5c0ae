package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/cuebin/internal/config"
	"github.com/hpungsan/cuebin/internal/db"
	"github.com/hpungsan/cuebin/internal/errors"
)

// ExportSchemaVersion is written to, and required in, export headers.
const ExportSchemaVersion = "1.0"

// ExportHeader is the first line of an export file.
type ExportHeader struct {
	CuebinExport  bool   `json:"_cuebin_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
	Revision      int64  `json:"revision"`
}

// ExportRecord is one entity line of an export file.
type ExportRecord struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	// Path defaults to <base>/exports/cuebin-<timestamp>.jsonl.
	Path string `json:"path,omitempty"`
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string         `json:"path"`
	Count      int            `json:"count"`
	Counts     map[string]int `json:"counts"`
	Revision   int64          `json:"revision"`
	ExportedAt int64          `json:"exported_at"`
}

// Export writes the whole catalog and the saved views as JSONL. The file is
// written beside the destination and renamed into place, so a failed export
// leaves any existing file untouched.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	path := input.Path
	if path == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "cuebin-"+now.Format("2006-01-02T150405")+".jsonl")
	}
	if err := ValidatePath(path, PathCheckWrite, cfg); err != nil {
		return nil, err
	}
	path, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	snap, err := db.LoadSnapshot(ctx, database)
	if err != nil {
		return nil, err
	}
	views, err := db.ListViews(ctx, database)
	if err != nil {
		return nil, err
	}

	records := make([]ExportRecord, 0, len(snap.Actors)+len(snap.Scenes)+len(snap.Bins)+
		len(snap.Media)+len(snap.Takes)+len(views))
	counts := make(map[string]int, len(Kinds))
	add := func(kind string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return errors.NewInternal(err)
		}
		records = append(records, ExportRecord{Kind: kind, Data: data})
		counts[kind]++
		return nil
	}
	for _, a := range snap.Actors {
		if err := add(KindActor, a); err != nil {
			return nil, err
		}
	}
	for _, s := range snap.Scenes {
		if err := add(KindScene, s); err != nil {
			return nil, err
		}
	}
	for _, b := range snap.Bins {
		if err := add(KindBin, b); err != nil {
			return nil, err
		}
	}
	for _, m := range snap.Media {
		if err := add(KindMedia, m); err != nil {
			return nil, err
		}
	}
	for _, t := range snap.Takes {
		if err := add(KindTake, t); err != nil {
			return nil, err
		}
	}
	for _, v := range views {
		if err := add(KindView, v); err != nil {
			return nil, err
		}
	}

	header := ExportHeader{
		CuebinExport:  true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    now.Unix(),
		Revision:      snap.Revision,
	}
	if err := writeExportFile(ctx, path, header, records); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       path,
		Count:      len(records),
		Counts:     counts,
		Revision:   snap.Revision,
		ExportedAt: header.ExportedAt,
	}, nil
}

func writeExportFile(ctx context.Context, path string, header ExportHeader, records []ExportRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(suffix) + ".tmp"
	file, err := createNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_EXCL, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	done := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !done {
			os.Remove(tempPath)
		}
	}()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(header); err != nil {
		return errors.NewInternal(err)
	}
	for _, r := range records {
		if err := checkCancelled(ctx, "export"); err != nil {
			return err
		}
		if err := enc.Encode(r); err != nil {
			return errors.NewInternal(err)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink placed at the destination meanwhile.
	if isSymlink(path) {
		return errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}
	done = true
	return nil
}
