package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// RunRecord captures run-level metadata.
type RunRecord struct {
	ID           string            `json:"id"`
	Pipeline     string            `json:"pipeline"`
	Timestamp    time.Time         `json:"timestamp"`
	SeedFields   []string          `json:"seed_fields"`
	SeedHash     string            `json:"seed_hash"`
	Status       string            `json:"status"`
	FailedStage  string            `json:"failed_stage,omitempty"`
	Error        string            `json:"error,omitempty"`
	Terminal     string            `json:"terminal,omitempty"`
	OutputHash   string            `json:"output_hash,omitempty"`
	ToolVersions map[string]string `json:"tool_versions,omitempty"`
}

// StageRecord captures evidence for a single stage.
type StageRecord struct {
	Name             string            `json:"name"`
	Index            int               `json:"index"`
	Inputs           []string          `json:"inputs"`
	Output           string            `json:"output"`
	Adapter          string            `json:"adapter"`
	Model            string            `json:"model"`
	Instructions     string            `json:"instructions,omitempty"`
	InstructionsHash string            `json:"instructions_hash,omitempty"`
	Content          string            `json:"content,omitempty"`
	ContentHash      string            `json:"content_hash,omitempty"`
	ContentRef       string            `json:"content_ref,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	Error            string            `json:"error,omitempty"`
	DurationMillis   int64             `json:"duration_ms"`
}

// Writer writes evidence bundles to disk.
type Writer struct {
	baseDir string
	runDir  string
}

// NewWriter creates a new evidence writer rooted at baseDir/runID.
func NewWriter(baseDir, runID string) (*Writer, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}

	runDir := filepath.Join(baseDir, runID)
	for _, dir := range []string{runDir, filepath.Join(runDir, "stages"), filepath.Join(runDir, "blobs")} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
		if err := os.Chmod(dir, 0700); err != nil {
			return nil, err
		}
	}

	return &Writer{baseDir: baseDir, runDir: runDir}, nil
}

// RunDir returns the run directory path.
func (w *Writer) RunDir() string {
	return w.runDir
}

// WriteRun writes run metadata to run.json.
func (w *Writer) WriteRun(record RunRecord) error {
	return writeJSON(filepath.Join(w.runDir, "run.json"), record)
}

// WriteStage writes a stage record to stages/<index>-<stage>.json.
func (w *Writer) WriteStage(record StageRecord) error {
	if record.Name == "" {
		return fmt.Errorf("stage name is required")
	}
	name := fmt.Sprintf("%02d-%s.json", record.Index, sanitizeKind(record.Name, "stage"))
	return writeJSON(filepath.Join(w.runDir, "stages", name), record)
}

// WriteBlob stores content under blobs/ keyed by its sha256 and returns the
// run-relative reference and the hex digest. Writing the same content twice
// returns the same reference.
func (w *Writer) WriteBlob(kind string, content []byte) (string, string, error) {
	sum := sha256.Sum256(content)
	sha := hex.EncodeToString(sum[:])
	ref := filepath.ToSlash(filepath.Join("blobs", fmt.Sprintf("%s-%s.txt", sanitizeKind(kind, "blob"), sha)))

	path := filepath.Join(w.runDir, filepath.FromSlash(ref))
	if _, err := os.Stat(path); err == nil {
		return ref, sha, nil
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		return "", "", err
	}
	return ref, sha, nil
}

// Fill sets Content on the record, spilling to a blob when the text is
// longer than limit.
func (w *Writer) Fill(record *StageRecord, content string, limit int) error {
	if limit <= 0 || len(content) <= limit {
		record.Content = content
		return nil
	}
	ref, sha, err := w.WriteBlob(record.Output, []byte(content))
	if err != nil {
		return err
	}
	record.Content = Truncate(content, limit)
	record.ContentHash = sha
	record.ContentRef = ref
	return nil
}

// Truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func sanitizeKind(kind, fallback string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(kind) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		case r == ' ' || r == '-':
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return fallback
	}
	return sb.String()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
