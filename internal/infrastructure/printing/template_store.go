package printing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// TemplateStore resolves form templates by name.
// It supports loading from an external directory (for customization)
// with fallback to the embedded templates. Parsed templates are cached.
type TemplateStore struct {
	externalDir string
	logger      *zap.Logger
	cache       map[string]*FormTemplate
	mu          sync.RWMutex
}

// TemplateStoreConfig configures the template store
type TemplateStoreConfig struct {
	// ExternalDir is searched for <name>.yaml before the embedded templates.
	ExternalDir string
	Logger      *zap.Logger
}

// NewTemplateStore creates a new template store
func NewTemplateStore(config *TemplateStoreConfig) *TemplateStore {
	store := &TemplateStore{
		cache:  make(map[string]*FormTemplate),
		logger: zap.NewNop(),
	}
	if config != nil {
		store.externalDir = config.ExternalDir
		if config.Logger != nil {
			store.logger = config.Logger
		}
	}
	return store
}

// Get returns the named template. A name ending in .yaml or .yml is treated
// as a file path.
func (s *TemplateStore) Get(name string) (*FormTemplate, error) {
	if name == "" {
		name = DefaultTemplateName
	}

	s.mu.RLock()
	tpl, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	tpl, err := s.load(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[name] = tpl
	s.mu.Unlock()
	return tpl, nil
}

func (s *TemplateStore) load(name string) (*FormTemplate, error) {
	if ext := strings.ToLower(filepath.Ext(name)); ext == ".yaml" || ext == ".yml" {
		s.logger.Debug("loading template file", zap.String("path", name))
		return LoadTemplateFile(name)
	}

	// Try external directory first
	if s.externalDir != "" {
		path := filepath.Join(s.externalDir, name+".yaml")
		if _, err := os.Stat(path); err == nil {
			s.logger.Debug("loading external template", zap.String("path", path))
			return LoadTemplateFile(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, NewRenderError(ErrCodeTemplateInvalid, "failed to stat template "+path, err)
		}
		// Fall through to embedded if external not found
	}

	content, err := LoadTemplateContent(name)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateInvalid, "unknown template "+name, err)
	}
	return ParseTemplate(content, "")
}

// Reload drops cached templates so the next Get re-reads them
func (s *TemplateStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*FormTemplate)
}
