package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
)

const backupKeepCount = 10

// Manager loads and edits the analysis prompt templates. Templates live in
// one JSON file so a domain expert can adjust them without a deploy; every
// change is preceded by a timestamped backup.
type Manager struct {
	mu          sync.RWMutex
	promptsFile string
	backupDir   string
	prompts     map[string]*entities.PromptTemplate
	logger      *zap.Logger
}

// NewManager creates a prompt manager. A missing prompts file is
// initialized with the default templates.
func NewManager(promptsFile, backupDir string, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		promptsFile: promptsFile,
		backupDir:   backupDir,
		logger:      logger,
	}

	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := os.Stat(promptsFile); os.IsNotExist(err) {
		m.logger.Info("🔄 Initializing default prompt templates", zap.String("file", promptsFile))
		if err := m.save(defaultPrompts()); err != nil {
			return nil, err
		}
	}

	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload re-reads the prompts file into memory.
func (m *Manager) Reload() error {
	data, err := os.ReadFile(m.promptsFile)
	if err != nil {
		return fmt.Errorf("failed to read prompts file: %w", err)
	}
	prompts := make(map[string]*entities.PromptTemplate)
	if err := json.Unmarshal(data, &prompts); err != nil {
		return fmt.Errorf("failed to parse prompts file: %w", err)
	}

	m.mu.Lock()
	m.prompts = prompts
	m.mu.Unlock()
	return nil
}

// GetTemplate returns the template text of one prompt.
func (m *Manager) GetTemplate(promptID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.prompts[promptID]
	if !ok {
		return "", entities.ErrPromptNotFound
	}
	return p.Template, nil
}

// GetInfo returns the full record of one prompt.
func (m *Manager) GetInfo(promptID string) (*entities.PromptTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.prompts[promptID]
	if !ok {
		return nil, entities.ErrPromptNotFound
	}
	copied := *p
	return &copied, nil
}

// GetAll returns every prompt keyed by id.
func (m *Manager) GetAll() map[string]entities.PromptTemplate {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]entities.PromptTemplate, len(m.prompts))
	for id, p := range m.prompts {
		out[id] = *p
	}
	return out
}

// Update replaces a prompt's template text. The previous prompts file is
// backed up first.
func (m *Manager) Update(promptID, newTemplate, modifiedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.prompts[promptID]
	if !ok {
		return entities.ErrPromptNotFound
	}

	if err := m.createBackup(); err != nil {
		return err
	}

	p.Template = newTemplate
	p.LastModified = time.Now()
	p.ModifiedBy = modifiedBy

	if err := m.save(m.prompts); err != nil {
		return err
	}
	m.logger.Info("✅ Prompt template updated",
		zap.String("prompt_id", promptID),
		zap.String("modified_by", modifiedBy))
	return nil
}

// Validate checks a candidate template against a prompt's required
// variables and estimates its token footprint.
func (m *Manager) Validate(promptID, template string) entities.PromptValidation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := entities.PromptValidation{Valid: true}

	p, ok := m.prompts[promptID]
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("알 수 없는 프롬프트 ID: %s", promptID))
		return result
	}

	for _, v := range p.RequiredVariables {
		placeholder := "{" + v + "}"
		if !strings.Contains(template, placeholder) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("필수 변수 누락: %s", placeholder))
		}
	}

	estimated := int(float64(len(strings.Fields(template))) * 1.3)
	result.EstimatedTokens = estimated
	if estimated > 3000 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("프롬프트가 너무 길 수 있습니다 (추정 토큰: %d)", estimated))
	}

	if strings.TrimSpace(template) == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "템플릿이 비어있습니다.")
	}

	return result
}

// BackupInfo describes one stored prompts backup.
type BackupInfo struct {
	Filename string    `json:"filename"`
	Created  time.Time `json:"created"`
	Size     int64     `json:"size"`
}

// ListBackups returns available backups, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	var backups []BackupInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "prompts_backup_") || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Filename: e.Name(),
			Created:  info.ModTime(),
			Size:     info.Size(),
		})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Created.After(backups[j].Created)
	})
	return backups, nil
}

// Restore replaces the prompts file with a named backup and reloads. The
// current file is backed up first so a bad restore can itself be undone.
func (m *Manager) Restore(backupFilename string) error {
	if strings.Contains(backupFilename, "/") || strings.Contains(backupFilename, "..") {
		return entities.ErrBackupNotFound
	}
	backupPath := filepath.Join(m.backupDir, backupFilename)
	data, err := os.ReadFile(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return entities.ErrBackupNotFound
		}
		return fmt.Errorf("failed to read backup: %w", err)
	}

	m.mu.Lock()
	if err := m.createBackup(); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := os.WriteFile(m.promptsFile, data, 0o644); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to restore prompts file: %w", err)
	}
	m.mu.Unlock()

	m.logger.Info("✅ Prompts restored from backup", zap.String("backup", backupFilename))
	return m.Reload()
}

func (m *Manager) save(prompts map[string]*entities.PromptTemplate) error {
	if err := os.MkdirAll(filepath.Dir(m.promptsFile), 0o755); err != nil {
		return fmt.Errorf("failed to create prompts directory: %w", err)
	}
	data, err := json.MarshalIndent(prompts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prompts: %w", err)
	}
	if err := os.WriteFile(m.promptsFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write prompts file: %w", err)
	}
	return nil
}

// createBackup copies the current prompts file into the backup directory
// and trims old backups. Callers hold the write lock.
func (m *Manager) createBackup() error {
	data, err := os.ReadFile(m.promptsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read prompts file for backup: %w", err)
	}

	name := fmt.Sprintf("prompts_backup_%s.json", time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(m.backupDir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	m.cleanupOldBackups()
	return nil
}

// cleanupOldBackups keeps only the most recent backups.
func (m *Manager) cleanupOldBackups() {
	backups, err := m.ListBackups()
	if err != nil {
		m.logger.Warn("failed to list backups for cleanup", zap.Error(err))
		return
	}
	for _, old := range backups[min(len(backups), backupKeepCount):] {
		if err := os.Remove(filepath.Join(m.backupDir, old.Filename)); err != nil {
			m.logger.Warn("failed to remove old backup",
				zap.String("backup", old.Filename), zap.Error(err))
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
