package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/database"
)

const backupPrefix = "feasibility-backup-"

// minBackupsToKeep backups survive rotation regardless of age.
const minBackupsToKeep = 3

// BackupService snapshots the engine's databases, bundles them into a
// tar.gz archive with a checksum manifest, and ships the archive to object
// storage.
type BackupService struct {
	store     *ObjectStore
	databases []*database.DB
	dataDir   string
	keep      int
	log       zerolog.Logger
}

// BackupManifest describes the contents of one archive.
type BackupManifest struct {
	Timestamp time.Time          `json:"timestamp"`
	Databases []DatabaseManifest `json:"databases"`
}

// DatabaseManifest is one database's entry in the manifest.
type DatabaseManifest struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo describes a stored archive for listing and rotation.
type BackupInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// NewBackupService creates a backup service over the given databases. keep
// sets rotation depth; values below the safety minimum are raised to it.
func NewBackupService(store *ObjectStore, databases []*database.DB, dataDir string, keep int, log zerolog.Logger) *BackupService {
	if keep < minBackupsToKeep {
		keep = minBackupsToKeep
	}
	return &BackupService{
		store:     store,
		databases: databases,
		dataDir:   dataDir,
		keep:      keep,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// CreateAndUpload snapshots every database into a staging directory, writes
// the manifest, archives everything and uploads the archive.
func (s *BackupService) CreateAndUpload(ctx context.Context) error {
	s.log.Info().Msg("Starting backup")
	started := time.Now()

	stagingDir := filepath.Join(s.dataDir, "backup-staging")
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	manifest := BackupManifest{
		Timestamp: started.UTC(),
		Databases: make([]DatabaseManifest, 0, len(s.databases)),
	}

	var files []string
	for _, db := range s.databases {
		filename := db.Name() + ".db"
		snapshotPath := filepath.Join(stagingDir, filename)

		if err := s.snapshotDatabase(db, snapshotPath); err != nil {
			return fmt.Errorf("failed to snapshot %s: %w", db.Name(), err)
		}

		info, err := os.Stat(snapshotPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s snapshot: %w", db.Name(), err)
		}
		checksum, err := fileChecksum(snapshotPath)
		if err != nil {
			return fmt.Errorf("failed to checksum %s snapshot: %w", db.Name(), err)
		}

		manifest.Databases = append(manifest.Databases, DatabaseManifest{
			Name:      db.Name(),
			Filename:  filename,
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
		files = append(files, filename)
	}

	manifestPath := filepath.Join(stagingDir, "backup-manifest.json")
	if err := writeManifest(manifestPath, manifest); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	files = append(files, "backup-manifest.json")

	archiveName := backupPrefix + started.Format("2006-01-02-150405") + ".tar.gz"
	archivePath := filepath.Join(stagingDir, archiveName)
	if err := createArchive(archivePath, stagingDir, files); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	if err := s.store.Upload(ctx, archiveName, archive); err != nil {
		return err
	}

	archiveInfo, _ := os.Stat(archivePath)
	var sizeKB int64
	if archiveInfo != nil {
		sizeKB = archiveInfo.Size() / 1024
	}
	s.log.Info().
		Str("archive", archiveName).
		Int64("size_kb", sizeKB).
		Dur("elapsed", time.Since(started)).
		Msg("Backup uploaded")

	return s.rotate(ctx)
}

// snapshotDatabase produces a consistent copy without blocking writers.
// VACUUM INTO gives a compacted, transactionally consistent snapshot.
func (s *BackupService) snapshotDatabase(db *database.DB, destPath string) error {
	_, err := db.Exec("VACUUM INTO ?", destPath)
	return err
}

// ListBackups returns stored archives, newest first.
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, backupPrefix)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}
		key := *obj.Key
		if !strings.HasSuffix(key, ".tar.gz") {
			continue
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(key, backupPrefix), ".tar.gz")
		ts, err := time.Parse("2006-01-02-150405", stamp)
		if err != nil {
			s.log.Warn().Str("key", key).Msg("Unparseable backup key, skipping")
			continue
		}

		var size int64
		if obj.Size != nil {
			size = *obj.Size
		}
		backups = append(backups, BackupInfo{
			Key:       key,
			Timestamp: ts,
			SizeBytes: size,
			AgeHours:  int64(now.Sub(ts).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// rotate prunes archives beyond the configured keep depth.
func (s *BackupService) rotate(ctx context.Context) error {
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return err
	}
	if len(backups) <= s.keep {
		return nil
	}

	deleted := 0
	for _, backup := range backups[s.keep:] {
		if err := s.store.Delete(ctx, backup.Key); err != nil {
			s.log.Error().Err(err).Str("key", backup.Key).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}
	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Int("kept", s.keep).Msg("Backup rotation completed")
	}
	return nil
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeManifest(path string, manifest BackupManifest) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(manifest)
}

func createArchive(archivePath, sourceDir string, filenames []string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer archiveFile.Close()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	defer tarWriter.Close()

	for _, filename := range filenames {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, filename), filename); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", filename, err)
		}
	}
	return nil
}

func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tarWriter, file)
	return err
}
