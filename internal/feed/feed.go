// ABOUTME: Job feed store: recommended jobs with a cursor plus saved/applied collections
// ABOUTME: All mutations go through the API first; local state changes only on success

package feed

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
)

// API is the subset of the backend the feed needs
type API interface {
	RecommendedJobs(ctx context.Context) ([]client.Job, error)
	SavedJobs(ctx context.Context) ([]client.SavedJob, error)
	CreateSavedJob(ctx context.Context, jobID int64, status client.JobStatus) (*client.SavedJob, error)
	UpdateSavedJob(ctx context.Context, id int64, status client.JobStatus) (*client.SavedJob, error)
	DeleteSavedJob(ctx context.Context, id int64) error
}

// Store holds the recommendation feed and the saved/applied collections.
// It is safe for concurrent use.
type Store struct {
	api API

	mu      sync.RWMutex
	jobs    []client.Job
	cursor  int
	saved   []client.SavedJob
	applied []client.SavedJob
	gen     uint64 // bumped per feed fetch
	epoch   uint64 // bumped per Reset
	loading bool
	err     error
}

// New creates an empty feed store
func New(api API) *Store {
	return &Store{api: api}
}

// FetchRecommended replaces the feed and resets the cursor. On failure the
// previous feed is kept. A fetch superseded by a newer one is discarded.
func (s *Store) FetchRecommended(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	jobs, err := s.api.RecommendedJobs(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		slog.Debug("Discarding superseded feed fetch", "generation", gen)
		return nil
	}
	s.loading = false
	if err != nil {
		s.err = errors.Wrap(err, "failed to load recommendations")
		return s.err
	}
	s.jobs = jobs
	s.cursor = 0
	slog.Debug("Feed loaded", "jobs", len(jobs))
	return nil
}

// Current returns the job at the cursor
func (s *Store) Current() (client.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cursor >= len(s.jobs) {
		return client.Job{}, false
	}
	return s.jobs[s.cursor], true
}

// Window returns up to n jobs starting at the cursor
func (s *Store) Window(n int) []client.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cursor >= len(s.jobs) || n <= 0 {
		return nil
	}
	end := min(s.cursor+n, len(s.jobs))
	return slices.Clone(s.jobs[s.cursor:end])
}

// Skip advances the cursor, stopping at the last job
func (s *Store) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor < len(s.jobs)-1 {
		s.cursor++
	}
}

// Save tags job as saved on the server, records it locally and advances
// past it if it is still the current job. A job already saved or applied
// is left as it is.
func (s *Store) Save(ctx context.Context, job client.Job) error {
	epoch := s.currentEpoch()
	if s.findByJob(job.ID) != nil {
		s.advancePast(job.ID)
		return nil
	}

	sj, err := s.api.CreateSavedJob(ctx, job.ID, client.StatusSaved)
	if err == nil {
		sj, err = s.resolveCreated(ctx, job.ID, sj, client.StatusSaved)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return s.discard("save", job.ID)
	}
	if err != nil {
		s.err = errors.Wrapf(err, "failed to save %q", jobLabel(job))
		return s.err
	}
	s.saved = append(s.saved, withJob(*sj, job))
	s.err = nil
	s.advancePastLocked(job.ID)
	return nil
}

// Apply tags job as applied. A job already in the saved collection is
// updated in place and moved to the applied collection.
func (s *Store) Apply(ctx context.Context, job client.Job) error {
	epoch := s.currentEpoch()
	existing := s.findByJob(job.ID)
	if existing != nil && existing.Status == client.StatusApplied {
		s.advancePast(job.ID)
		return nil
	}

	var (
		sj  *client.SavedJob
		err error
	)
	if existing != nil {
		sj, err = s.api.UpdateSavedJob(ctx, existing.ID, client.StatusApplied)
	} else {
		sj, err = s.api.CreateSavedJob(ctx, job.ID, client.StatusApplied)
		if err == nil {
			sj, err = s.resolveCreated(ctx, job.ID, sj, client.StatusApplied)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return s.discard("apply", job.ID)
	}
	if err != nil {
		s.err = errors.Wrapf(err, "failed to apply to %q", jobLabel(job))
		return s.err
	}

	entry := withJob(*sj, job)
	entry.Status = client.StatusApplied
	if existing != nil {
		s.saved = slices.DeleteFunc(s.saved, func(e client.SavedJob) bool { return e.ID == existing.ID })
	}
	s.applied = append(s.applied, entry)
	s.err = nil
	s.advancePastLocked(job.ID)
	return nil
}

// resolveCreated makes a freshly created entry match what was asked for.
// A create response without an id is looked up in the saved list, and an
// entry stored with another status is patched to want.
func (s *Store) resolveCreated(ctx context.Context, jobID int64, sj *client.SavedJob, want client.JobStatus) (*client.SavedJob, error) {
	if sj.ID == 0 {
		list, err := s.api.SavedJobs(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to look up the new entry")
		}
		idx := slices.IndexFunc(list, func(e client.SavedJob) bool { return e.Job.ID == jobID })
		if idx < 0 {
			return nil, errors.Newf("server did not record job %d", jobID)
		}
		found := list[idx]
		if found.Job.Title == "" {
			found.Job = sj.Job
		}
		sj = &found
	}

	switch {
	case sj.Status == want:
		return sj, nil
	case sj.Status == "" && want == client.StatusSaved:
		sj.Status = client.StatusSaved
		return sj, nil
	}

	slog.Debug("Correcting status of new entry", "id", sj.ID, "got", sj.Status, "want", want)
	updated, err := s.api.UpdateSavedJob(ctx, sj.ID, want)
	if err != nil {
		return nil, err
	}
	updated.Status = want
	if updated.Job.ID == 0 {
		updated.Job = sj.Job
	}
	return updated, nil
}

// FetchSaved replaces both collections with the server's list. Entries
// with an unknown status are dropped.
func (s *Store) FetchSaved(ctx context.Context) error {
	epoch := s.currentEpoch()
	list, err := s.api.SavedJobs(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return s.discard("saved list", 0)
	}
	if err != nil {
		s.err = errors.Wrap(err, "failed to load saved jobs")
		return s.err
	}

	saved := make([]client.SavedJob, 0, len(list))
	applied := make([]client.SavedJob, 0, len(list))
	for _, sj := range list {
		switch sj.Status {
		case client.StatusSaved:
			saved = append(saved, sj)
		case client.StatusApplied:
			applied = append(applied, sj)
		default:
			slog.Debug("Dropping saved job with unknown status", "id", sj.ID, "status", sj.Status)
		}
	}
	s.saved = saved
	s.applied = applied
	s.err = nil
	return nil
}

// MarkApplied moves a saved entry to applied
func (s *Store) MarkApplied(ctx context.Context, savedID int64) error {
	epoch := s.currentEpoch()
	entry, ok := s.findSaved(savedID)
	if !ok {
		return s.record(errors.Mark(errors.Newf("no saved job with id %d", savedID), client.ErrNotFound))
	}
	if entry.Status == client.StatusApplied {
		return nil
	}

	sj, err := s.api.UpdateSavedJob(ctx, savedID, client.StatusApplied)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return s.discard("mark applied", entry.Job.ID)
	}
	if err != nil {
		s.err = errors.Wrapf(err, "failed to mark %q applied", jobLabel(entry.Job))
		return s.err
	}
	updated := withJob(*sj, entry.Job)
	updated.Status = client.StatusApplied
	s.saved = slices.DeleteFunc(s.saved, func(e client.SavedJob) bool { return e.ID == savedID })
	s.applied = append(s.applied, updated)
	s.err = nil
	return nil
}

// Remove deletes a saved or applied entry
func (s *Store) Remove(ctx context.Context, savedID int64) error {
	epoch := s.currentEpoch()
	entry, ok := s.findSaved(savedID)
	if !ok {
		return s.record(errors.Mark(errors.Newf("no saved job with id %d", savedID), client.ErrNotFound))
	}

	err := s.api.DeleteSavedJob(ctx, savedID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return s.discard("remove", entry.Job.ID)
	}
	if err != nil {
		s.err = errors.Wrapf(err, "failed to remove %q", jobLabel(entry.Job))
		return s.err
	}
	match := func(e client.SavedJob) bool { return e.ID == savedID }
	s.saved = slices.DeleteFunc(s.saved, match)
	s.applied = slices.DeleteFunc(s.applied, match)
	s.err = nil
	return nil
}

// StatusOf reports the collection a job is in, if any
func (s *Store) StatusOf(jobID int64) (client.JobStatus, bool) {
	if e := s.findByJob(jobID); e != nil {
		return e.Status, true
	}
	return "", false
}

// HasMore reports whether the cursor still points at a job
func (s *Store) HasMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor < len(s.jobs)
}

// Cursor returns the current position in the feed
func (s *Store) Cursor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// Len returns the number of jobs in the feed
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Jobs returns a copy of the whole feed
func (s *Store) Jobs() []client.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.jobs)
}

// Saved returns a copy of the saved collection
func (s *Store) Saved() []client.SavedJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.saved)
}

// Applied returns a copy of the applied collection
func (s *Store) Applied() []client.SavedJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.applied)
}

// Err returns the last recorded error
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// IsLoading reports whether a feed fetch is in flight
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Reset drops all local state, used on logout
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.epoch++
	s.jobs = nil
	s.cursor = 0
	s.saved = nil
	s.applied = nil
	s.loading = false
	s.err = nil
}

func (s *Store) advancePast(jobID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advancePastLocked(jobID)
}

func (s *Store) advancePastLocked(jobID int64) {
	if s.cursor < len(s.jobs) && s.jobs[s.cursor].ID == jobID {
		s.cursor++
	}
}

func (s *Store) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// discard drops the result of a request that outlived a Reset. Callers
// hold s.mu.
func (s *Store) discard(op string, jobID int64) error {
	slog.Debug("Discarding result from before reset", "op", op, "job", jobID)
	return nil
}

func (s *Store) record(err error) error {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	return err
}

func (s *Store) findByJob(jobID int64) *client.SavedJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, coll := range [][]client.SavedJob{s.saved, s.applied} {
		for i := range coll {
			if coll[i].Job.ID == jobID {
				e := coll[i]
				return &e
			}
		}
	}
	return nil
}

func (s *Store) findSaved(savedID int64) (client.SavedJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, coll := range [][]client.SavedJob{s.saved, s.applied} {
		for _, e := range coll {
			if e.ID == savedID {
				return e, true
			}
		}
	}
	return client.SavedJob{}, false
}

// withJob fills in the job details when the server answered with a bare id
func withJob(sj client.SavedJob, job client.Job) client.SavedJob {
	if sj.Job.Title == "" && (sj.Job.ID == 0 || sj.Job.ID == job.ID) {
		sj.Job = job
	}
	return sj
}

func jobLabel(job client.Job) string {
	if job.Title == "" {
		return "job"
	}
	if job.Company == "" {
		return job.Title
	}
	return job.Title + " at " + job.Company
}
