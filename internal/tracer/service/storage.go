package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ============================================================
// File Storage
// ============================================================

// FileStorage хранит загруженные планы помещений по рабочим пространствам.
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) WorkspaceDir(workspaceID string) string {
	return filepath.Join(s.root, workspaceID)
}

// PlanPath - путь к плану с расширением формата (svg, png, jpeg ...).
func (s *FileStorage) PlanPath(workspaceID, format string) string {
	return filepath.Join(s.WorkspaceDir(workspaceID), "plan."+strings.ToLower(format))
}

func (s *FileStorage) EnsureDir(workspaceID string) error {
	path := s.WorkspaceDir(workspaceID)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir workspace dir: %w", err)
	}
	return nil
}

// SavePlan заменяет план пространства: старые файлы плана удаляются.
func (s *FileStorage) SavePlan(workspaceID, format string, data []byte) (string, error) {
	if err := s.EnsureDir(workspaceID); err != nil {
		return "", err
	}
	old, _ := filepath.Glob(filepath.Join(s.WorkspaceDir(workspaceID), "plan.*"))
	for _, path := range old {
		os.Remove(path)
	}

	target := s.PlanPath(workspaceID, format)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write plan: %w", err)
	}
	return target, nil
}

// RemoveWorkspace удаляет все файлы пространства.
func (s *FileStorage) RemoveWorkspace(workspaceID string) error {
	if err := os.RemoveAll(s.WorkspaceDir(workspaceID)); err != nil {
		return fmt.Errorf("remove workspace dir: %w", err)
	}
	return nil
}
