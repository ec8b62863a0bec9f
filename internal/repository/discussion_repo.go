package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/discussion-grader/internal/models"
)

// Filesystem layout constants. Each discussion owns one directory under the
// base directory; renaming these breaks existing stores.
const (
	discussionDirPrefix = "discussion_"
	metadataFileName    = "metadata.json"
	questionFileName    = "question.md"
	submissionsDirName  = "submissions"
)

var (
	// ErrDiscussionNotFound means no discussion directory exists for the id.
	ErrDiscussionNotFound = errors.New("discussion not found")
)

// DiscussionUpdate carries the fields of a partial update. Nil means leave
// the current value untouched.
type DiscussionUpdate struct {
	Title    *string
	Points   *int
	MinWords *int
	Question *string
}

// DiscussionRepository persists discussions as flat files under a base
// directory: metadata.json for the record, question.md for the prompt text.
type DiscussionRepository interface {
	Create(title, question string, points, minWords int) (models.Discussion, error)
	Get(id int) (models.Discussion, error)
	List() ([]models.Discussion, error)
	Update(id int, update DiscussionUpdate) (models.Discussion, error)
	FindOrCreate(question, title string, points, minWords int) (models.Discussion, bool, error)
}

type discussionRepository struct {
	baseDir string
	now     func() time.Time
}

// NewDiscussionRepository constructs a file-backed repository rooted at
// baseDir. The directory is created on first write, not here.
func NewDiscussionRepository(baseDir string) DiscussionRepository {
	return &discussionRepository{baseDir: baseDir, now: time.Now}
}

func (r *discussionRepository) Create(title, question string, points, minWords int) (models.Discussion, error) {
	if points <= 0 {
		points = models.DefaultPoints
	}
	if minWords <= 0 {
		minWords = models.DefaultMinWords
	}

	id, err := r.nextID()
	if err != nil {
		return models.Discussion{}, err
	}

	now := r.now().UTC()
	discussion := models.Discussion{
		ID:           id,
		Title:        title,
		Points:       points,
		MinWords:     minWords,
		QuestionFile: questionFileName,
		Question:     question,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	dir := r.discussionDir(id)
	if err := os.MkdirAll(filepath.Join(dir, submissionsDirName), 0o755); err != nil {
		return models.Discussion{}, fmt.Errorf("create discussion directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, questionFileName), []byte(question), 0o644); err != nil {
		return models.Discussion{}, fmt.Errorf("write question file: %w", err)
	}
	if err := r.writeMetadata(dir, discussion); err != nil {
		return models.Discussion{}, err
	}

	return discussion, nil
}

func (r *discussionRepository) Get(id int) (models.Discussion, error) {
	dir := r.discussionDir(id)
	raw, err := os.ReadFile(filepath.Join(dir, metadataFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return models.Discussion{}, fmt.Errorf("%w: id %d", ErrDiscussionNotFound, id)
		}
		return models.Discussion{}, fmt.Errorf("read discussion metadata: %w", err)
	}

	var discussion models.Discussion
	if err := json.Unmarshal(raw, &discussion); err != nil {
		return models.Discussion{}, fmt.Errorf("decode discussion %d metadata: %w", id, err)
	}

	question, err := os.ReadFile(filepath.Join(dir, discussion.QuestionFile))
	if err != nil {
		if !os.IsNotExist(err) {
			return models.Discussion{}, fmt.Errorf("read question file: %w", err)
		}
		// Metadata without a question file is still a valid record.
	} else {
		discussion.Question = string(question)
	}

	return discussion, nil
}

func (r *discussionRepository) List() ([]models.Discussion, error) {
	ids, err := r.discussionIDs()
	if err != nil {
		return nil, err
	}
	sort.Ints(ids)

	discussions := make([]models.Discussion, 0, len(ids))
	for _, id := range ids {
		discussion, err := r.Get(id)
		if err != nil {
			if errors.Is(err, ErrDiscussionNotFound) {
				continue
			}
			return nil, err
		}
		discussions = append(discussions, discussion)
	}
	return discussions, nil
}

func (r *discussionRepository) Update(id int, update DiscussionUpdate) (models.Discussion, error) {
	discussion, err := r.Get(id)
	if err != nil {
		return models.Discussion{}, err
	}

	if update.Title != nil {
		discussion.Title = *update.Title
	}
	if update.Points != nil {
		discussion.Points = *update.Points
	}
	if update.MinWords != nil {
		discussion.MinWords = *update.MinWords
	}
	if update.Question != nil {
		discussion.Question = *update.Question
	}
	discussion.UpdatedAt = r.now().UTC()

	dir := r.discussionDir(id)
	if update.Question != nil {
		if err := os.WriteFile(filepath.Join(dir, discussion.QuestionFile), []byte(discussion.Question), 0o644); err != nil {
			return models.Discussion{}, fmt.Errorf("write question file: %w", err)
		}
	}
	if err := r.writeMetadata(dir, discussion); err != nil {
		return models.Discussion{}, err
	}

	return discussion, nil
}

// FindOrCreate locates a discussion whose question matches the given text
// after whitespace and case normalization, creating one when none matches.
// The boolean reports whether a new discussion was created. An existing match
// is returned as stored; the caller decides whether to sync other fields.
func (r *discussionRepository) FindOrCreate(question, title string, points, minWords int) (models.Discussion, bool, error) {
	discussions, err := r.List()
	if err != nil {
		return models.Discussion{}, false, err
	}

	want := normalizeQuestion(question)
	for _, discussion := range discussions {
		if normalizeQuestion(discussion.Question) == want {
			return discussion, false, nil
		}
	}

	created, err := r.Create(title, question, points, minWords)
	if err != nil {
		return models.Discussion{}, false, err
	}
	return created, true, nil
}

func (r *discussionRepository) discussionDir(id int) string {
	return filepath.Join(r.baseDir, discussionDirPrefix+strconv.Itoa(id))
}

func (r *discussionRepository) writeMetadata(dir string, discussion models.Discussion) error {
	raw, err := json.MarshalIndent(discussion, "", "  ")
	if err != nil {
		return fmt.Errorf("encode discussion metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFileName), raw, 0o644); err != nil {
		return fmt.Errorf("write discussion metadata: %w", err)
	}
	return nil
}

// discussionIDs scans the base directory for discussion_<n> entries. Entries
// that do not match the pattern are ignored.
func (r *discussionRepository) discussionIDs() ([]int, error) {
	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read base directory: %w", err)
	}

	var ids []int
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), discussionDirPrefix) {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(entry.Name(), discussionDirPrefix))
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// nextID is one past the highest existing id, so ids stay stable even after
// a discussion directory is removed by hand.
func (r *discussionRepository) nextID() (int, error) {
	ids, err := r.discussionIDs()
	if err != nil {
		return 0, err
	}
	next := 1
	for _, id := range ids {
		if id >= next {
			next = id + 1
		}
	}
	return next, nil
}

func normalizeQuestion(question string) string {
	return strings.ToLower(strings.Join(strings.Fields(question), " "))
}
