package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// CheckpointManager snapshots and restores the ledger database file.
type CheckpointManager struct {
	db             *sql.DB
	now            func() time.Time
	dbPath         string
	checkpointsDir string
}

// CheckpointMetadata is written next to each snapshot as <id>.meta.json.
type CheckpointMetadata struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
	IsAuto        bool           `json:"is_auto"`
}

// CheckpointInfo summarizes a checkpoint for listing.
type CheckpointInfo struct {
	CreatedAt           time.Time
	ID                  string
	Description         string
	FileSize            int64
	Accounts            int
	Transactions        int
	PlannedTransactions int
	Bills               int
	SchemaVersion       int
	IsAuto              bool
}

// Checkpoint errors.
var (
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrCheckpointCorrupted = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists    = errors.New("checkpoint already exists")
	ErrCheckpointInMemory  = errors.New("in-memory databases cannot be checkpointed")
	ErrInvalidCheckpointID = errors.New("invalid checkpoint ID: cannot contain path separators")
	ErrDiskSpaceLow        = errors.New("insufficient disk space for checkpoint")
)

// maxAutoCheckpoints is how many automatic checkpoints are retained.
const maxAutoCheckpoints = 5

// countedTables are the tables whose sizes are recorded with each checkpoint.
var countedTables = []string{
	"accounts", "transactions", "categories", "labels", "contacts",
	"budgets", "goals", "planned_transactions", "bills",
}

// NewCheckpointManager creates a checkpoint manager storing snapshots in a
// checkpoints directory beside the database file.
func NewCheckpointManager(db *sql.DB, dbPath string) (*CheckpointManager, error) {
	if dbPath == ":memory:" {
		return nil, ErrCheckpointInMemory
	}

	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	checkpointsDir := filepath.Join(filepath.Dir(absPath), "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{
		db:             db,
		now:            time.Now,
		dbPath:         absPath,
		checkpointsDir: checkpointsDir,
	}, nil
}

// Create snapshots the database under tag. An empty tag gets a timestamped name.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointInfo, error) {
	return cm.create(ctx, tag, description, false)
}

// AutoCheckpoint snapshots the database before an operation named by prefix
// and prunes old automatic checkpoints.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, prefix string) error {
	tag := fmt.Sprintf("auto-%s-%s", prefix, cm.now().Format("2006-01-02-150405"))
	if _, err := cm.create(ctx, tag, "Automatic checkpoint before "+prefix, true); err != nil {
		return fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	if err := cm.cleanupOldAutoCheckpoints(ctx); err != nil {
		slog.Warn("failed to clean up old auto-checkpoints", "error", err)
	}
	return nil
}

func (cm *CheckpointManager) create(ctx context.Context, tag, description string, auto bool) (*CheckpointInfo, error) {
	if tag == "" {
		tag = "checkpoint-" + cm.now().Format("2006-01-02-150405")
	}
	if err := validateCheckpointID(tag); err != nil {
		return nil, err
	}

	checkpointPath := cm.snapshotPath(tag)
	if _, err := os.Stat(checkpointPath); err == nil {
		return nil, ErrCheckpointExists
	}

	var schemaVersion int
	if err := cm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	rowCounts := cm.collectRowCounts(ctx)

	dbInfo, err := os.Stat(cm.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	if !cm.hasEnoughDiskSpace(dbInfo.Size() + dbInfo.Size()/10) {
		return nil, ErrDiskSpaceLow
	}

	if err := cm.backupDatabase(ctx, checkpointPath); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}

	snapshotInfo, err := os.Stat(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	metadata := CheckpointMetadata{
		ID:            tag,
		CreatedAt:     cm.now(),
		Description:   description,
		FileSize:      snapshotInfo.Size(),
		RowCounts:     rowCounts,
		SchemaVersion: schemaVersion,
		IsAuto:        auto,
	}

	if err := saveMetadata(cm.metadataPath(tag), metadata); err != nil {
		if rmErr := os.Remove(checkpointPath); rmErr != nil {
			slog.Error("failed to remove checkpoint file after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	// The metadata file is authoritative; the table copy is informational.
	if err := cm.storeMetadataInDB(ctx, metadata); err != nil {
		slog.Warn("failed to store checkpoint metadata in database", "error", err)
	}

	info := metadata.info()
	return &info, nil
}

// List returns all checkpoints, newest first.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(cm.checkpointsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	checkpoints := make([]CheckpointInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}

		metadata, err := loadMetadata(filepath.Join(cm.checkpointsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable checkpoint metadata", "file", entry.Name(), "error", err)
			continue
		}
		checkpoints = append(checkpoints, metadata.info())
	}

	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})
	return checkpoints, nil
}

// Info returns a single checkpoint's metadata.
func (cm *CheckpointManager) Info(_ context.Context, checkpointID string) (*CheckpointInfo, error) {
	if err := validateCheckpointID(checkpointID); err != nil {
		return nil, err
	}

	metadata, err := loadMetadata(cm.metadataPath(checkpointID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}

	info := metadata.info()
	return &info, nil
}

// Restore replaces the database file with a checkpoint. The manager's
// database handle is closed; callers must reopen storage afterwards.
func (cm *CheckpointManager) Restore(_ context.Context, checkpointID string) error {
	if err := validateCheckpointID(checkpointID); err != nil {
		return err
	}

	checkpointPath := cm.snapshotPath(checkpointID)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if _, err := loadMetadata(cm.metadataPath(checkpointID)); err != nil {
		return fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}

	if err := verifyIntegrity(checkpointPath); err != nil {
		slog.Error("checkpoint failed integrity check", "checkpoint", checkpointID, "error", err)
		return ErrCheckpointCorrupted
	}

	if err := cm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	backupPath := cm.dbPath + ".restore-backup"
	if err := copyFile(cm.dbPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}

	if err := copyFile(checkpointPath, cm.dbPath); err != nil {
		if restoreErr := copyFile(backupPath, cm.dbPath); restoreErr != nil {
			slog.Error("failed to restore backup after checkpoint restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}

	// A leftover write-ahead log belongs to the replaced file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(cm.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove stale journal file", "path", cm.dbPath+suffix, "error", err)
		}
	}

	if err := os.Remove(backupPath); err != nil {
		slog.Error("failed to remove backup file", "error", err)
	}
	return nil
}

// Delete removes a checkpoint.
func (cm *CheckpointManager) Delete(ctx context.Context, checkpointID string) error {
	if err := validateCheckpointID(checkpointID); err != nil {
		return err
	}

	checkpointPath := cm.snapshotPath(checkpointID)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := os.Remove(checkpointPath); err != nil {
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}

	metadataPath := cm.metadataPath(checkpointID)
	if err := os.Remove(metadataPath); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "path", metadataPath)
	}

	if _, err := cm.db.ExecContext(ctx, "DELETE FROM checkpoint_metadata WHERE id = ?", checkpointID); err != nil {
		slog.Debug("failed to remove checkpoint metadata from database", "error", err, "id", checkpointID)
	}
	return nil
}

func (cm *CheckpointManager) snapshotPath(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".db")
}

func (cm *CheckpointManager) metadataPath(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".meta.json")
}

func (m CheckpointMetadata) info() CheckpointInfo {
	return CheckpointInfo{
		ID:                  m.ID,
		CreatedAt:           m.CreatedAt,
		Description:         m.Description,
		FileSize:            m.FileSize,
		Accounts:            m.RowCounts["accounts"],
		Transactions:        m.RowCounts["transactions"],
		PlannedTransactions: m.RowCounts["planned_transactions"],
		Bills:               m.RowCounts["bills"],
		SchemaVersion:       m.SchemaVersion,
		IsAuto:              m.IsAuto,
	}
}

func validateCheckpointID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, `/\'";`) || strings.Contains(id, "..") {
		return ErrInvalidCheckpointID
	}
	return nil
}

func (cm *CheckpointManager) collectRowCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int, len(countedTables))
	for _, table := range countedTables {
		var count int
		// #nosec G202 - table names come from a fixed list
		if err := cm.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			slog.Debug("failed to count rows", "table", table, "error", err)
		}
		counts[table] = count
	}
	return counts
}

func (cm *CheckpointManager) hasEnoughDiskSpace(required int64) bool {
	testFile := filepath.Join(cm.checkpointsDir, ".space-test")
	// #nosec G304 - testFile is a fixed name inside the checkpoints directory
	f, err := os.Create(testFile)
	if err != nil {
		return false
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close test file", "error", err)
		}
		if err := os.Remove(testFile); err != nil {
			slog.Error("failed to remove test file", "error", err)
		}
	}()

	return f.Truncate(required) == nil
}

func (cm *CheckpointManager) backupDatabase(ctx context.Context, destPath string) error {
	if _, err := cm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	if !filepath.IsAbs(destPath) || strings.ContainsAny(destPath, `'";`) || strings.Contains(destPath, "..") {
		return fmt.Errorf("invalid destination path %q", destPath)
	}

	// #nosec G201 - destPath is validated above
	if _, err := cm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", destPath)); err != nil {
		slog.Debug("VACUUM INTO failed, copying database file", "error", err)
		return copyFile(cm.dbPath, destPath)
	}
	return nil
}

func (cm *CheckpointManager) storeMetadataInDB(ctx context.Context, metadata CheckpointMetadata) error {
	rowCounts, err := json.Marshal(metadata.RowCounts)
	if err != nil {
		return err
	}

	_, err = cm.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO checkpoint_metadata
		(id, created_at, description, file_size, row_counts, schema_version, is_auto)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		metadata.ID,
		metadata.CreatedAt,
		metadata.Description,
		metadata.FileSize,
		string(rowCounts),
		metadata.SchemaVersion,
		metadata.IsAuto,
	)
	return err
}

func (cm *CheckpointManager) cleanupOldAutoCheckpoints(ctx context.Context) error {
	checkpoints, err := cm.List(ctx)
	if err != nil {
		return err
	}

	autoCount := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		autoCount++
		if autoCount <= maxAutoCheckpoints {
			continue
		}
		if err := cm.Delete(ctx, cp.ID); err != nil {
			slog.Debug("failed to delete old auto-checkpoint during cleanup", "error", err, "checkpoint", cp.ID)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	if filepath.Clean(src) != src || filepath.Clean(dst) != dst {
		return fmt.Errorf("invalid file paths")
	}

	// #nosec G304 - src is a cleaned path owned by the manager
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			slog.Error("failed to close source file", "error", closeErr)
		}
	}()

	tmpDst := dst + ".tmp"
	// #nosec G304 - tmpDst is derived from a cleaned path
	destination, err := os.Create(tmpDst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmpDst)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmpDst)
		return err
	}

	return os.Rename(tmpDst, dst)
}

func saveMetadata(path string, metadata CheckpointMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func loadMetadata(path string) (*CheckpointMetadata, error) {
	// #nosec G304 - path is built from a validated checkpoint ID
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var metadata CheckpointMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
