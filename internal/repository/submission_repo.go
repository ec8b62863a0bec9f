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

const submissionFilePrefix = "submission_"

// ErrSubmissionNotFound means no submission file exists for the id pair.
var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionRecord is the on-disk shape of one graded submission, stored as
// submissions/submission_<id>.json inside its discussion directory.
type SubmissionRecord struct {
	SubmissionID int                     `json:"submission_id"`
	DiscussionID int                     `json:"discussion_id"`
	Submission   models.Submission       `json:"submission"`
	Grading      models.GradedSubmission `json:"grading"`
	CreatedAt    time.Time               `json:"created_at"`
}

// SubmissionRepository persists graded submissions under their discussion.
type SubmissionRepository interface {
	Save(discussionID int, submission models.Submission, grading models.GradedSubmission) (SubmissionRecord, error)
	Get(discussionID, submissionID int) (SubmissionRecord, error)
	List(discussionID int) ([]SubmissionRecord, error)
}

type submissionRepository struct {
	baseDir string
	now     func() time.Time
}

// NewSubmissionRepository constructs a file-backed repository sharing the
// discussion repository's base directory.
func NewSubmissionRepository(baseDir string) SubmissionRepository {
	return &submissionRepository{baseDir: baseDir, now: time.Now}
}

func (r *submissionRepository) Save(discussionID int, submission models.Submission, grading models.GradedSubmission) (SubmissionRecord, error) {
	dir := r.submissionsDir(discussionID)
	if _, err := os.Stat(filepath.Dir(dir)); err != nil {
		if os.IsNotExist(err) {
			return SubmissionRecord{}, fmt.Errorf("%w: id %d", ErrDiscussionNotFound, discussionID)
		}
		return SubmissionRecord{}, fmt.Errorf("stat discussion directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SubmissionRecord{}, fmt.Errorf("create submissions directory: %w", err)
	}

	id, err := r.nextID(discussionID)
	if err != nil {
		return SubmissionRecord{}, err
	}

	// Word count is always recomputed from the stored text.
	submission.DiscussionID = discussionID
	submission.WordCount = models.CountWords(submission.Text)
	grading.WordCount = submission.WordCount
	grading.SubmissionID = id

	record := SubmissionRecord{
		SubmissionID: id,
		DiscussionID: discussionID,
		Submission:   submission,
		Grading:      grading,
		CreatedAt:    r.now().UTC(),
	}

	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return SubmissionRecord{}, fmt.Errorf("encode submission record: %w", err)
	}
	path := filepath.Join(dir, submissionFilePrefix+strconv.Itoa(id)+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return SubmissionRecord{}, fmt.Errorf("write submission record: %w", err)
	}

	return record, nil
}

func (r *submissionRepository) Get(discussionID, submissionID int) (SubmissionRecord, error) {
	path := filepath.Join(r.submissionsDir(discussionID), submissionFilePrefix+strconv.Itoa(submissionID)+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return SubmissionRecord{}, fmt.Errorf("%w: discussion %d submission %d", ErrSubmissionNotFound, discussionID, submissionID)
		}
		return SubmissionRecord{}, fmt.Errorf("read submission record: %w", err)
	}

	var record SubmissionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return SubmissionRecord{}, fmt.Errorf("decode submission %d record: %w", submissionID, err)
	}
	return record, nil
}

func (r *submissionRepository) List(discussionID int) ([]SubmissionRecord, error) {
	ids, err := r.submissionIDs(discussionID)
	if err != nil {
		return nil, err
	}
	sort.Ints(ids)

	records := make([]SubmissionRecord, 0, len(ids))
	for _, id := range ids {
		record, err := r.Get(discussionID, id)
		if err != nil {
			if errors.Is(err, ErrSubmissionNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *submissionRepository) submissionsDir(discussionID int) string {
	return filepath.Join(r.baseDir, discussionDirPrefix+strconv.Itoa(discussionID), submissionsDirName)
}

func (r *submissionRepository) submissionIDs(discussionID int) ([]int, error) {
	entries, err := os.ReadDir(r.submissionsDir(discussionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read submissions directory: %w", err)
	}

	var ids []int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, submissionFilePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, submissionFilePrefix), ".json"))
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *submissionRepository) nextID(discussionID int) (int, error) {
	ids, err := r.submissionIDs(discussionID)
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
