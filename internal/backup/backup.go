package backup

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iseprep/backend/internal/repository"
	"github.com/iseprep/backend/internal/repository/sqldb"
	"github.com/iseprep/backend/internal/storage"
	"github.com/rs/zerolog/log"
)

// Service archives the sqlite database plus the export directory into a
// zip under the backup directory, and restores from such archives. The
// archive name embeds the project code so backups from different
// missions stay distinguishable.
type Service struct {
	db       *sqldb.DB
	settings repository.SettingsRepository
	dbPath   string
	dir      string
	dataDirs []string
	store    storage.ObjectStorage

	now func() time.Time
}

// Result describes a finished backup run.
type Result struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Uploaded  bool   `json:"uploaded"`
}

// RestoreSummary reports what came back out of an archive.
type RestoreSummary struct {
	DatabaseRestored bool           `json:"database_restored"`
	TableCounts      map[string]int `json:"table_counts"`
	RestoredFiles    int            `json:"restored_files"`
}

func NewService(db *sqldb.DB, settings repository.SettingsRepository, dbPath, dir string, dataDirs []string, store storage.ObjectStorage) *Service {
	return &Service{
		db:       db,
		settings: settings,
		dbPath:   dbPath,
		dir:      dir,
		dataDirs: dataDirs,
		store:    store,
		now:      time.Now,
	}
}

// Create builds the backup archive and, when an object store is
// configured, pushes it there as well. A failed upload is logged but
// does not fail the backup.
func (s *Service) Create(ctx context.Context) (Result, error) {
	if s.db.Driver != "sqlite3" {
		return Result{}, fmt.Errorf("file backup supports the sqlite3 driver, not %s", s.db.Driver)
	}

	code := s.projectCode(ctx)
	name := fmt.Sprintf("iseprep_backup_%s_%s.zip", code, s.now().Format("20060102_150405"))

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("backup directory %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, name)

	if err := s.writeArchive(path); err != nil {
		os.Remove(path)
		return Result{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}

	result := Result{Path: path, SizeBytes: info.Size()}

	if s.store != nil {
		payload, err := os.ReadFile(path)
		if err == nil {
			err = s.store.UploadObject(ctx, "backups/"+name, payload)
		}
		if err != nil {
			log.Warn().Err(err).Str("archive", name).Msg("backup upload failed, archive kept locally")
		} else {
			result.Uploaded = true
		}
	}

	return result, nil
}

func (s *Service) writeArchive(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", path, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	if _, err := os.Stat(s.dbPath); err == nil {
		if err := addFile(zw, s.dbPath, filepath.Base(s.dbPath)); err != nil {
			return err
		}
	} else {
		log.Warn().Str("path", s.dbPath).Msg("database file missing, archive will not contain it")
	}

	for _, dir := range s.dataDirs {
		if err := addDir(zw, dir); err != nil {
			return err
		}
	}

	return nil
}

// Restore extracts an archive, swaps the database file into place and
// verifies the key tables are readable afterwards.
func (s *Service) Restore(ctx context.Context, archivePath string) (RestoreSummary, error) {
	if s.db.Driver != "sqlite3" {
		return RestoreSummary{}, fmt.Errorf("file restore supports the sqlite3 driver, not %s", s.db.Driver)
	}

	summary := RestoreSummary{TableCounts: map[string]int{}}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return summary, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer zr.Close()

	dbName := filepath.Base(s.dbPath)
	for _, f := range zr.File {
		clean := filepath.Clean(f.Name)
		if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
			return summary, fmt.Errorf("archive entry escapes the workspace: %s", f.Name)
		}

		if clean == dbName {
			if err := extractFile(f, s.dbPath); err != nil {
				return summary, fmt.Errorf("restore database: %w", err)
			}
			summary.DatabaseRestored = true
			continue
		}

		if dir := containingDataDir(clean, s.dataDirs); dir != "" {
			if err := extractFile(f, clean); err != nil {
				return summary, fmt.Errorf("restore %s: %w", clean, err)
			}
			summary.RestoredFiles++
		}
	}

	if summary.DatabaseRestored {
		for _, table := range []string{"scenarios", "compositions", "items_list"} {
			var count int
			if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil {
				log.Warn().Err(err).Str("table", table).Msg("restored table not readable")
				continue
			}
			summary.TableCounts[table] = count
		}
	}

	return summary, nil
}

// RestoreByName restores from an archive living in the backup directory.
func (s *Service) RestoreByName(ctx context.Context, name string) (RestoreSummary, error) {
	return s.Restore(ctx, filepath.Join(s.dir, name))
}

// ListArchives returns the local backup archives, newest first.
func (s *Service) ListArchives() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	archives := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".zip") {
			continue
		}
		archives = append(archives, entry.Name())
	}
	// Timestamped names sort chronologically; reverse for newest first.
	for i, j := 0, len(archives)-1; i < j; i, j = i+1, j-1 {
		archives[i], archives[j] = archives[j], archives[i]
	}
	return archives, nil
}

func (s *Service) projectCode(ctx context.Context) string {
	_, code, err := s.settings.ProjectInfo(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("project code unavailable for backup name")
	}
	if code == "" {
		return "NO_PROJECT"
	}
	return sanitizeName(code)
}

func sanitizeName(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, v)
}

func addFile(zw *zip.Writer, src, arcName string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	w, err := zw.Create(filepath.ToSlash(arcName))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

func addDir(zw *zip.Writer, dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		return addFile(zw, path, path)
	})
}

func extractFile(f *zip.File, dest string) error {
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	in, err := f.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func containingDataDir(path string, dirs []string) string {
	for _, dir := range dirs {
		clean := filepath.Clean(dir)
		if path == clean || strings.HasPrefix(path, clean+string(filepath.Separator)) {
			return dir
		}
	}
	return ""
}
