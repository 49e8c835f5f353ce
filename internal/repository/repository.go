// Package repository implements offline-first persistence for typing
// tests: every write lands in the local cache unconditionally, remote
// writes are best effort and reconciled through the retry queue.
package repository

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/larmaysee/typier-sub002/internal/localstore"
	"github.com/larmaysee/typier-sub002/internal/model"
	"github.com/larmaysee/typier-sub002/internal/remote"
	"github.com/larmaysee/typier-sub002/internal/syncqueue"
)

// Collection is the remote document collection holding typing tests.
const Collection = "typing_tests"

const testKeyPrefix = "typing_test_"

func testKey(id string) string { return testKeyPrefix + id }

func saveOpID(testID string) string   { return "save_" + testID }
func deleteOpID(testID string) string { return "delete_" + testID }

// Repository composes the local cache and the remote client.
type Repository struct {
	local  localstore.Store
	remote remote.Client
	queue  *syncqueue.Processor
	now    func() time.Time
}

// Option customizes the repository.
type Option func(*Repository)

// WithClock injects a deterministic time source for timeFrame cutoffs.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates a repository over the given collaborators.
func New(local localstore.Store, remoteClient remote.Client, queue *syncqueue.Processor, opts ...Option) *Repository {
	r := &Repository{
		local:  local,
		remote: remoteClient,
		queue:  queue,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save persists the test. The local write is the durability contract
// and its failure propagates; the remote write is advisory and any
// failure enqueues a retry instead. Practice tests stay local only.
func (r *Repository) Save(ctx context.Context, test model.TypingTest) error {
	if err := localstore.SetJSON(ctx, r.local, testKey(test.ID), test); err != nil {
		return &RepositoryError{Op: "save " + test.ID, Err: err}
	}
	if test.Mode == model.ModePractice {
		return nil
	}
	if err := r.remote.Create(ctx, Collection, test.ID, test); err != nil {
		log.Printf("repository: remote save of %s failed, queueing: %v", test.ID, err)
		op := model.QueuedOperation{
			ID:     saveOpID(test.ID),
			Type:   model.OpSave,
			Test:   &test,
			UserID: test.UserID,
			TestID: test.ID,
		}
		if qerr := r.queue.Enqueue(ctx, op); qerr != nil {
			return &RepositoryError{Op: "queue save " + test.ID, Err: qerr}
		}
	}
	return nil
}

// BulkSave applies Save semantics to each test; every failed remote
// write queues its own retry.
func (r *Repository) BulkSave(ctx context.Context, tests []model.TypingTest) error {
	for _, test := range tests {
		if err := r.Save(ctx, test); err != nil {
			return err
		}
	}
	return nil
}

// GetUserTests merges the remote listing with the local cache, remote
// entries winning on id collision. A remote failure degrades to
// local-only results; practice tests surface only through the local
// side.
func (r *Repository) GetUserTests(ctx context.Context, userID string, filter model.TestFilter) ([]model.TypingTest, error) {
	local, err := r.localTests(ctx, func(t model.TypingTest) bool {
		return t.UserID == userID && filter.Matches(t)
	})
	if err != nil {
		return nil, &RepositoryError{Op: "list local tests", Err: err}
	}

	merged := map[string]model.TypingTest{}
	for _, t := range local {
		merged[t.ID] = t
	}
	docs, err := r.remote.List(ctx, Collection, testQuery(userID, filter))
	if err != nil {
		log.Printf("repository: remote list failed, using local only: %v", err)
	} else {
		for _, doc := range docs {
			var t model.TypingTest
			if derr := doc.Decode(&t); derr != nil {
				log.Printf("repository: skipping undecodable remote test %s: %v", doc.ID, derr)
				continue
			}
			merged[t.ID] = t
		}
	}

	tests := make([]model.TypingTest, 0, len(merged))
	for _, t := range merged {
		if filter.Matches(t) {
			tests = append(tests, t)
		}
	}
	sort.Slice(tests, func(i, j int) bool {
		return tests[i].Timestamp.After(tests[j].Timestamp)
	})
	return paginate(tests, filter.Offset, filter.Limit), nil
}

// GetLeaderboard returns ranked best-per-user results. The remote
// listing gives global visibility; on failure the board degrades to
// this device's cached tests.
func (r *Repository) GetLeaderboard(ctx context.Context, filter model.LeaderboardFilter) ([]model.LeaderboardEntry, error) {
	docs, err := r.remote.List(ctx, Collection, leaderboardQuery(filter, r.now()))
	if err == nil {
		tests := decodeTests(docs)
		return buildLeaderboard(tests, filter, r.now()), nil
	}
	log.Printf("repository: remote leaderboard failed, using local only: %v", err)

	local, lerr := r.localTests(ctx, func(model.TypingTest) bool { return true })
	if lerr != nil {
		return nil, &RepositoryError{Op: "list local tests", Err: lerr}
	}
	return buildLeaderboard(local, filter, r.now()), nil
}

// GetCompetitionEntries lists all tests for a competition, remote
// first for cross-user consistency, local fallback on failure.
func (r *Repository) GetCompetitionEntries(ctx context.Context, competitionID string) ([]model.TypingTest, error) {
	query := remote.Query{OrderBy: "results.wpm", Descending: true}.
		WhereEqual("competitionId", competitionID)
	docs, err := r.remote.List(ctx, Collection, query)
	if err == nil {
		return decodeTests(docs), nil
	}
	log.Printf("repository: remote competition list failed, using local only: %v", err)

	local, lerr := r.localTests(ctx, func(t model.TypingTest) bool {
		return t.CompetitionID == competitionID
	})
	if lerr != nil {
		return nil, &RepositoryError{Op: "list local tests", Err: lerr}
	}
	sort.Slice(local, func(i, j int) bool {
		return local[i].Results.WPM > local[j].Results.WPM
	})
	return local, nil
}

// DeleteUserTest removes the test locally first, then attempts the
// remote delete, queueing a retry on failure. An already-deleted
// remote document counts as success.
func (r *Repository) DeleteUserTest(ctx context.Context, userID, testID string) error {
	if err := r.local.RemoveItem(ctx, testKey(testID)); err != nil {
		return &RepositoryError{Op: "delete " + testID, Err: err}
	}
	err := r.remote.Delete(ctx, Collection, testID)
	if err == nil || remote.IsNotFound(err) {
		return nil
	}
	log.Printf("repository: remote delete of %s failed, queueing: %v", testID, err)
	op := model.QueuedOperation{
		ID:     deleteOpID(testID),
		Type:   model.OpDelete,
		UserID: userID,
		TestID: testID,
	}
	if qerr := r.queue.Enqueue(ctx, op); qerr != nil {
		return &RepositoryError{Op: "queue delete " + testID, Err: qerr}
	}
	return nil
}

// SyncNow triggers an immediate drain of the retry queue.
func (r *Repository) SyncNow(ctx context.Context) error {
	return r.queue.SyncNow(ctx)
}

// GetSyncStatus reports pending retries and the last successful sync.
func (r *Repository) GetSyncStatus(ctx context.Context) (model.SyncStatus, error) {
	return r.queue.Status(ctx)
}

func (r *Repository) localTests(ctx context.Context, keep func(model.TypingTest) bool) ([]model.TypingTest, error) {
	keys, err := r.local.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var tests []model.TypingTest
	for _, key := range keys {
		if !strings.HasPrefix(key, testKeyPrefix) {
			continue
		}
		test, ok, err := localstore.GetJSON[model.TypingTest](ctx, r.local, key)
		if err != nil {
			return nil, err
		}
		if ok && keep(test) {
			tests = append(tests, test)
		}
	}
	return tests, nil
}

func testQuery(userID string, filter model.TestFilter) remote.Query {
	// Pagination happens after the merge so that remote and local
	// entries page as one result set.
	query := remote.Query{
		OrderBy:    "createdAt",
		Descending: true,
	}.WhereEqual("userId", userID)
	if filter.Mode != "" {
		query = query.WhereEqual("mode", string(filter.Mode))
	}
	if filter.Language != "" {
		query = query.WhereEqual("language", filter.Language)
	}
	if filter.Difficulty != "" {
		query = query.WhereEqual("difficulty", filter.Difficulty)
	}
	if filter.DateFrom != nil {
		query.Where = append(query.Where, remote.Condition{
			Field: "timestamp", Op: remote.OpGreaterOrEqual,
			Value: filter.DateFrom.UTC().Format(time.RFC3339Nano),
		})
	}
	if filter.DateTo != nil {
		query.Where = append(query.Where, remote.Condition{
			Field: "timestamp", Op: remote.OpLessOrEqual,
			Value: filter.DateTo.UTC().Format(time.RFC3339Nano),
		})
	}
	return query
}

func leaderboardQuery(filter model.LeaderboardFilter, now time.Time) remote.Query {
	query := remote.Query{OrderBy: "results.wpm", Descending: true}
	if filter.Language != "" {
		query = query.WhereEqual("language", filter.Language)
	}
	if filter.Mode != "" {
		query = query.WhereEqual("mode", string(filter.Mode))
	}
	if cutoff := filter.TimeFrame.Cutoff(now); !cutoff.IsZero() {
		query.Where = append(query.Where, remote.Condition{
			Field: "timestamp", Op: remote.OpGreaterOrEqual,
			Value: cutoff.UTC().Format(time.RFC3339Nano),
		})
	}
	return query
}

// buildLeaderboard reduces tests to each user's best WPM inside the
// time frame. Practice tests never contribute.
func buildLeaderboard(tests []model.TypingTest, filter model.LeaderboardFilter, now time.Time) []model.LeaderboardEntry {
	cutoff := filter.TimeFrame.Cutoff(now)
	best := map[string]model.TypingTest{}
	for _, t := range tests {
		if t.Mode == model.ModePractice {
			continue
		}
		if filter.Mode != "" && t.Mode != filter.Mode {
			continue
		}
		if filter.Language != "" && t.Language != filter.Language {
			continue
		}
		if !cutoff.IsZero() && t.Timestamp.Before(cutoff) {
			continue
		}
		prior, ok := best[t.UserID]
		if !ok || t.Results.WPM > prior.Results.WPM {
			best[t.UserID] = t
		}
	}

	entries := make([]model.LeaderboardEntry, 0, len(best))
	for _, t := range best {
		entries = append(entries, model.LeaderboardEntry{
			UserID:    t.UserID,
			TestID:    t.ID,
			WPM:       t.Results.WPM,
			Accuracy:  t.Results.Accuracy,
			Language:  t.Language,
			Mode:      t.Mode,
			Timestamp: t.Timestamp,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].WPM == entries[j].WPM {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		}
		return entries[i].WPM > entries[j].WPM
	})
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func decodeTests(docs []remote.Document) []model.TypingTest {
	tests := make([]model.TypingTest, 0, len(docs))
	for _, doc := range docs {
		var t model.TypingTest
		if err := doc.Decode(&t); err != nil {
			log.Printf("repository: skipping undecodable remote test %s: %v", doc.ID, err)
			continue
		}
		tests = append(tests, t)
	}
	return tests
}

func paginate(tests []model.TypingTest, offset, limit int) []model.TypingTest {
	if offset > 0 {
		if offset >= len(tests) {
			return nil
		}
		tests = tests[offset:]
	}
	if limit > 0 && len(tests) > limit {
		tests = tests[:limit]
	}
	return tests
}
