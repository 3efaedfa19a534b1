package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driven"
	"github.com/kedarkumargolla/scholarsync/internal/loaders/images"
	"github.com/kedarkumargolla/scholarsync/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// ErrPromptPlaceholder is returned for a template missing a required placeholder.
var ErrPromptPlaceholder = errors.New("prompt is missing a placeholder")

// builtinPrompts seed the prompt directory and back every failed load.
var builtinPrompts = map[string]string{
	driven.PromptAnswer:       domain.DefaultAnswerPrompt,
	driven.PromptImageCaption: images.CaptionPrompt,
}

// placeholders lists what each template must keep to be usable.
var placeholders = map[string][]string{
	driven.PromptAnswer: {"{context}", "{question}"},
}

const promptReadme = "# ScholarSync prompts\n\n" +
	"Templates sent to the language models. Changes apply to the next command.\n\n" +
	"- `answer.txt`: question answering over retrieved passages. Must keep `{context}` and `{question}`.\n" +
	"- `image_caption.txt`: instruction sent with every image during ingestion.\n\n" +
	"Delete a file to restore its default.\n"

// PromptStore reads prompt templates from <dir>/<name>.txt. The directory is
// created and seeded with the built-in templates on first Load. A file that is
// missing, unreadable or lacks a required placeholder yields the built-in
// template.
type PromptStore struct {
	dir string

	once    sync.Once
	initErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a store rooted at dir, or ~/.scholarsync/prompts
// when dir is empty. It does no I/O.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the template called name.
func (s *PromptStore) Load(name string) (string, error) {
	s.once.Do(s.seed)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	builtin, known := builtinPrompts[name]
	prompt, err := s.read(name)
	switch {
	case err == nil:
	case known:
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Using built-in %s prompt: %v", name, err)
		}
		prompt = builtin
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// read loads and validates one template file.
func (s *PromptStore) read(name string) (string, error) {
	if s.initErr != nil {
		return "", s.initErr
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))
	for _, p := range placeholders[name] {
		if !strings.Contains(prompt, p) {
			return "", fmt.Errorf("%w: %s needs %s", ErrPromptPlaceholder, s.path(name), p)
		}
	}
	return prompt, nil
}

// seed creates the directory, the built-in templates and a README without
// touching files that already exist.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	files := map[string]string{"README.md": promptReadme}
	for name, content := range builtinPrompts {
		files[name+".txt"] = content + "\n"
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			s.initErr = fmt.Errorf("write %s: %w", file, err)
			return
		}
	}
}
