package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/config"
	"github.com/hpungsan/cuebin/internal/db"
	"github.com/hpungsan/cuebin/internal/errors"
	"github.com/hpungsan/cuebin/internal/view"
)

// ImportMode controls what happens when an imported id already exists.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // abort the whole import (atomic)
	ImportModeReplace ImportMode = "replace" // overwrite the existing entity
	ImportModeSkip    ImportMode = "skip"    // keep the existing entity
)

// maxImportLine bounds one JSONL line; prompts can be long.
const maxImportLine = 16 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     `json:"path"`
	Mode ImportMode `json:"mode,omitempty"`
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int            `json:"imported"`
	Skipped  int            `json:"skipped"`
	Counts   map[string]int `json:"counts"`
	Errors   []ImportError  `json:"errors"`
}

// ImportError describes one line that was not imported.
type ImportError struct {
	Line    int    `json:"line"`
	Kind    string `json:"kind,omitempty"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// importRecord is a parsed and checked export line.
type importRecord struct {
	line   int
	kind   string
	id     string
	entity any
}

// Import loads an export file. Records are applied in dependency order in
// one transaction. In error mode any parse failure or id collision aborts
// the import with nothing written; the other modes import what they can and
// report the rest.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	switch input.Mode {
	case ImportModeError, ImportModeReplace, ImportModeSkip:
	default:
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, skip")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openNoFollow(input.Path)
	if err != nil {
		if errors.As(err) != nil {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, problems, err := parseImport(file)
	if err != nil {
		return nil, err
	}
	out := &ImportOutput{Counts: map[string]int{}, Errors: problems}
	if input.Mode == ImportModeError && len(problems) > 0 {
		return out, nil
	}

	slices.SortStableFunc(records, func(a, b importRecord) int {
		return slices.Index(Kinds, a.kind) - slices.Index(Kinds, b.kind)
	})

	// errAbort rolls back an error-mode import; the reason is in out.Errors.
	errAbort := errors.NewConflict("import aborted")
	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		for _, r := range records {
			if err := checkCancelled(ctx, "import"); err != nil {
				return err
			}

			if input.Mode != ImportModeReplace {
				found, err := recordExists(ctx, tx, r)
				if err != nil {
					return err
				}
				if found && input.Mode == ImportModeSkip {
					out.Skipped++
					continue
				}
				if found {
					out.Errors = append(out.Errors, r.problem("COLLISION",
						fmt.Sprintf("%s %s already exists", r.kind, r.id)))
					return errAbort
				}
			}

			if err := applyRecord(ctx, tx, r); err != nil {
				if errors.As(err) == nil || errors.Is(err, errors.ErrInternal) {
					return err
				}
				out.Errors = append(out.Errors, r.problem(importCode(err), err.Error()))
				if input.Mode == ImportModeError {
					return errAbort
				}
				continue
			}
			out.Imported++
			out.Counts[r.kind]++
		}
		return nil
	})
	if err == errAbort {
		out.Imported = 0
		out.Counts = map[string]int{}
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r importRecord) problem(code, msg string) ImportError {
	return ImportError{Line: r.line, Kind: r.kind, ID: r.id, Code: code, Message: msg}
}

func importCode(err error) string {
	if ce := errors.As(err); ce != nil {
		return string(ce.Code)
	}
	return string(errors.ErrInternal)
}

// parseImport reads every line up front so error mode can refuse a bad file
// before touching the database.
func parseImport(r io.Reader) ([]importRecord, []ImportError, error) {
	var (
		records  []importRecord
		problems []ImportError
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxImportLine)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}

		var envelope struct {
			ExportHeader
			ExportRecord
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			problems = append(problems, ImportError{Line: line, Code: "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		if envelope.CuebinExport {
			if envelope.SchemaVersion != ExportSchemaVersion {
				problems = append(problems, ImportError{Line: line, Code: "UNSUPPORTED_VERSION",
					Message: fmt.Sprintf("unsupported schema_version %q", envelope.SchemaVersion)})
			}
			continue
		}

		rec, err := decodeRecord(line, envelope.ExportRecord)
		if err != nil {
			problems = append(problems, ImportError{Line: line, Kind: envelope.Kind, Code: "INVALID_RECORD",
				Message: err.Error()})
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("failed to read import file: %v", err))
	}
	return records, problems, nil
}

// decodeRecord decodes and checks one entity. Cross-record references are
// left to the database.
func decodeRecord(line int, rec ExportRecord) (importRecord, error) {
	out := importRecord{line: line, kind: rec.Kind}
	if len(rec.Data) == 0 {
		return out, fmt.Errorf("missing data")
	}

	switch rec.Kind {
	case KindActor:
		var a catalog.Actor
		if err := json.Unmarshal(rec.Data, &a); err != nil {
			return out, err
		}
		if catalog.CleanName(a.DisplayName) == "" {
			return out, fmt.Errorf("display_name is required")
		}
		a.DisplayName = catalog.CleanName(a.DisplayName)
		out.id, out.entity = a.ID, &a
	case KindScene:
		var s catalog.Scene
		if err := json.Unmarshal(rec.Data, &s); err != nil {
			return out, err
		}
		if catalog.CleanName(s.Name) == "" {
			return out, fmt.Errorf("name is required")
		}
		s.Name = catalog.CleanName(s.Name)
		out.id, out.entity = s.ID, &s
	case KindBin:
		var b catalog.Bin
		if err := json.Unmarshal(rec.Data, &b); err != nil {
			return out, err
		}
		if err := catalog.CheckBin(b); err != nil {
			return out, err
		}
		out.id, out.entity = b.ID, &b
	case KindMedia:
		var m catalog.Media
		if err := json.Unmarshal(rec.Data, &m); err != nil {
			return out, err
		}
		if err := catalog.CheckMedia(m, nil); err != nil {
			return out, err
		}
		out.id, out.entity = m.ID, &m
	case KindTake:
		var t catalog.Take
		if err := json.Unmarshal(rec.Data, &t); err != nil {
			return out, err
		}
		if !catalog.IsTakeStatus(t.Status) {
			return out, fmt.Errorf("unknown status %q", t.Status)
		}
		if t.MediaID == "" {
			return out, fmt.Errorf("media_id is required")
		}
		out.id, out.entity = t.ID, &t
	case KindView:
		var v view.View
		if err := json.Unmarshal(rec.Data, &v); err != nil {
			return out, err
		}
		if err := validateViewID(v.ID); err != nil {
			return out, err
		}
		if diags := view.Validate(v); view.HasErrors(diags) {
			return out, fmt.Errorf("invalid view: %s", diags[0])
		}
		v.Source = view.SourceCustom
		out.id, out.entity = v.ID, &v
	case "":
		return out, fmt.Errorf("missing kind")
	default:
		return out, fmt.Errorf("unknown kind %q", rec.Kind)
	}

	if strings.TrimSpace(out.id) == "" {
		return out, fmt.Errorf("missing id")
	}
	return out, nil
}

func recordExists(ctx context.Context, q db.Querier, r importRecord) (bool, error) {
	var err error
	switch r.kind {
	case KindActor:
		_, err = db.GetActor(ctx, q, r.id)
	case KindScene:
		_, err = db.GetScene(ctx, q, r.id)
	case KindBin:
		_, err = db.GetBin(ctx, q, r.id)
	case KindMedia:
		_, err = db.GetMedia(ctx, q, r.id)
	case KindTake:
		_, err = db.GetTake(ctx, q, r.id)
	case KindView:
		_, err = db.GetView(ctx, q, r.id)
	}
	if errors.Is(err, errors.ErrNotFound) || errors.Is(err, errors.ErrViewNotFound) {
		return false, nil
	}
	return err == nil, err
}

// applyRecord upserts one entity. Error and skip modes only get here for
// ids that do not exist yet.
func applyRecord(ctx context.Context, q db.Querier, r importRecord) error {
	switch e := r.entity.(type) {
	case *catalog.Actor:
		return db.UpsertActor(ctx, q, e)
	case *catalog.Scene:
		return db.UpsertScene(ctx, q, e)
	case *catalog.Bin:
		if err := checkOwner(ctx, q, e.OwnerType, e.OwnerID); err != nil {
			return err
		}
		if e.SceneID != "" {
			if _, err := db.GetScene(ctx, q, e.SceneID); err != nil {
				return err
			}
		}
		return db.UpsertBin(ctx, q, e)
	case *catalog.Media:
		if err := checkOwner(ctx, q, e.OwnerType, e.OwnerID); err != nil {
			return err
		}
		if e.BinID != "" {
			bin, err := db.GetBin(ctx, q, e.BinID)
			if err != nil {
				return err
			}
			if err := catalog.CheckMedia(*e, bin); err != nil {
				return errors.NewPolicyViolation(err)
			}
		}
		return db.UpsertMedia(ctx, q, e)
	case *catalog.Take:
		if _, err := db.GetMedia(ctx, q, e.MediaID); err != nil {
			return err
		}
		return db.UpsertTake(ctx, q, e)
	case *view.View:
		return db.SaveView(ctx, q, *e)
	}
	return errors.NewInternal(fmt.Errorf("unhandled record kind %q", r.kind))
}
