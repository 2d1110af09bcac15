package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"counsellor/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(config.DatabaseConfig{
		Driver: config.DriverModernc,
		Path:   filepath.Join(t.TempDir(), "counsellor.db"),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	sess, err := newTestStore(t).Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	t.Cleanup(func() { _ = sess.Release() })
	return sess
}

func seedUniversity(t *testing.T, sess *Session, name, country string, ranking int) int64 {
	t.Helper()
	id, err := sess.InsertUniversity(context.Background(), &University{
		Name: name, Country: country, TuitionFee: 30000, AcceptanceRate: 0.3, Ranking: ranking,
	})
	if err != nil {
		t.Fatalf("InsertUniversity(%s) error = %v", name, err)
	}
	return id
}

func TestOpen_SchemaAndMigrations(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	assert.True(t, tableExists(s.db, "profiles"))
	assert.True(t, tableExists(s.db, "application_documents"))
	assert.True(t, columnExists(s.db, "universities", "description"))
	assert.Equal(t, config.DriverModernc, s.Driver())
}

func TestOpen_MigratesLegacyUniversities(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sql.Open(config.DriverModernc, path)
	require.NoError(t, err)
	_, err = legacy.Exec(`
		CREATE TABLE universities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			country TEXT NOT NULL,
			degree_type TEXT NOT NULL DEFAULT '',
			field_of_study TEXT NOT NULL DEFAULT '',
			tuition_fee REAL NOT NULL DEFAULT 0,
			acceptance_rate REAL NOT NULL DEFAULT 0,
			ranking INTEGER NOT NULL DEFAULT 0
		);
		INSERT INTO universities (name, country, ranking) VALUES ('Old Catalog', 'UK', 3);`)
	require.NoError(t, err)
	require.False(t, columnExists(legacy, "universities", "description"))
	require.NoError(t, legacy.Close())

	s, err := Open(config.DatabaseConfig{Driver: config.DriverModernc, Path: path})
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, columnExists(s.db, "universities", "description"))

	sess, err := s.Acquire(context.Background())
	require.NoError(t, err)
	defer sess.Release()
	unis, err := sess.ListUniversities(context.Background(), "UK")
	require.NoError(t, err)
	require.Len(t, unis, 1)
	assert.Equal(t, "Old Catalog", unis[0].Name)
	assert.Empty(t, unis[0].Description)

	// The column is present now, so migrating again changes nothing.
	require.NoError(t, runMigrations(s.db))
}

func TestOpen_Reopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "counsellor.db")
	cfg := config.DatabaseConfig{Driver: config.DriverModernc, Path: path}

	s1, err := Open(cfg)
	require.NoError(t, err)
	sess, err := s1.Acquire(context.Background())
	require.NoError(t, err)
	seedUniversity(t, sess, "Persisted", "UK", 1)
	require.NoError(t, sess.Release())
	require.NoError(t, s1.Close())

	s2, err := Open(cfg)
	require.NoError(t, err)
	defer s2.Close()
	sess2, err := s2.Acquire(context.Background())
	require.NoError(t, err)
	defer sess2.Release()

	n, err := sess2.CountUniversities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, path, s2.Path())
}

func TestSession_ReleaseTwice(t *testing.T) {
	t.Parallel()
	sess, err := newTestStore(t).Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, sess.Release())
	require.NoError(t, sess.Release())
	assert.Error(t, sess.InTx(context.Background(), func(*Session) error { return nil }))
}

func TestShortlist_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := newTestSession(t)
	a := seedUniversity(t, sess, "A", "USA", 2)
	b := seedUniversity(t, sess, "B", "USA", 1)

	created, err := sess.AddShortlist(ctx, 1, a)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = sess.AddShortlist(ctx, 1, a)
	require.NoError(t, err)
	assert.False(t, created, "second add must be a no-op")

	_, err = sess.AddShortlist(ctx, 1, b)
	require.NoError(t, err)

	ids, err := sess.ShortlistedIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{a, b}, ids, "creation order, not ranking order")

	other, err := sess.ShortlistedIDs(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)

	removed, err := sess.RemoveShortlist(ctx, 1, a)
	require.NoError(t, err)
	assert.True(t, removed)
	has, err := sess.IsShortlisted(ctx, 1, a)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestLock_UniquePerPair(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := newTestSession(t)
	a := seedUniversity(t, sess, "A", "USA", 2)

	created, err := sess.AddLock(ctx, 7, a)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = sess.AddLock(ctx, 7, a)
	require.NoError(t, err)
	assert.False(t, created)

	ids, err := sess.LockedIDs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{a}, ids)

	locked, err := sess.IsLocked(ctx, 7, a)
	require.NoError(t, err)
	assert.True(t, locked)

	removed, err := sess.RemoveLock(ctx, 7, a)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = sess.RemoveLock(ctx, 7, a)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestForeignKeys_Enforced(t *testing.T) {
	t.Parallel()
	sess := newTestSession(t)

	_, err := sess.AddShortlist(context.Background(), 1, 9999)
	assert.Error(t, err, "unknown university must be rejected")
}

func TestInTx_RollbackAndCommit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := newTestSession(t)
	a := seedUniversity(t, sess, "A", "USA", 1)

	boom := errors.New("boom")
	err := sess.InTx(ctx, func(tx *Session) error {
		if _, err := tx.AddLock(ctx, 1, a); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	locked, err := sess.IsLocked(ctx, 1, a)
	require.NoError(t, err)
	assert.False(t, locked, "rolled back write must not persist")

	err = sess.InTx(ctx, func(tx *Session) error {
		// nested call joins the outer transaction
		return tx.InTx(ctx, func(inner *Session) error {
			_, err := inner.AddLock(ctx, 1, a)
			return err
		})
	})
	require.NoError(t, err)

	locked, err = sess.IsLocked(ctx, 1, a)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestProfile_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := newTestSession(t)

	_, err := sess.GetProfile(ctx, 3)
	require.ErrorIs(t, err, ErrNotFound)

	gpa := 3.7
	p := &Profile{
		UserID:             3,
		IntendedDegree:     "Master's",
		FieldOfStudy:       "Computer Science",
		GPA:                &gpa,
		PreferredCountries: "USA, UK ,",
		IELTSTOEFLStatus:   "In progress",
	}
	require.NoError(t, sess.UpsertProfile(ctx, p))

	got, err := sess.GetProfile(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, got.GPA)
	assert.InDelta(t, 3.7, *got.GPA, 1e-9)
	assert.Nil(t, got.BudgetPerYear)
	assert.Nil(t, got.GraduationYear)
	assert.Equal(t, []string{"USA", "UK"}, got.Countries())
	created := got.CreatedAt
	assert.False(t, created.IsZero())

	p.SOPStatus = "Ready"
	p.GPA = nil
	require.NoError(t, sess.UpsertProfile(ctx, p))

	got, err = sess.GetProfile(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Ready", got.SOPStatus)
	assert.Nil(t, got.GPA)
	assert.Equal(t, created, got.CreatedAt, "created_at survives updates")
}

func TestTodos(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := newTestSession(t)
	uni := seedUniversity(t, sess, "A", "USA", 1)

	first, err := sess.CreateTodo(ctx, 1, NewTodo{Title: "Submit test scores", UniversityID: &uni})
	require.NoError(t, err)
	_, err = sess.CreateTodo(ctx, 1, NewTodo{Title: "Prepare SOP", Description: "draft"})
	require.NoError(t, err)
	_, err = sess.CreateTodo(ctx, 1, NewTodo{Title: "Prepare SOP"})
	require.NoError(t, err, "duplicate titles are allowed")

	asc, err := sess.ListTodos(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, first.ID, asc[0].ID)
	require.NotNil(t, asc[0].UniversityID)
	assert.Equal(t, uni, *asc[0].UniversityID)

	desc, err := sess.ListTodos(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, asc[2].ID, desc[0].ID)

	ok, err := sess.CompleteFirstOpenTodo(ctx, 1, "TEST SCORE")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := sess.GetTodo(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)

	ok, err = sess.CompleteFirstOpenTodo(ctx, 1, "test score")
	require.NoError(t, err)
	assert.False(t, ok, "only open tasks match")

	reopened, err := sess.SetTodoCompleted(ctx, 1, first.ID, false)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)

	_, err = sess.SetTodoCompleted(ctx, 2, first.ID, true)
	assert.ErrorIs(t, err, ErrNotFound, "other owners cannot touch the task")
}

func TestDocuments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := newTestSession(t)
	uni := seedUniversity(t, sess, "A", "UK", 1)

	docs, err := sess.ListDocuments(ctx, 1, uni)
	require.NoError(t, err)
	assert.Empty(t, docs)

	created, err := sess.CreateDocuments(ctx, 1, uni, []string{"SOP", "CV"})
	require.NoError(t, err)
	require.Len(t, created, 2)

	doc, err := sess.SetDocumentCompleted(ctx, 1, created[1].ID, true)
	require.NoError(t, err)
	assert.True(t, doc.Completed)
	assert.Equal(t, "CV", doc.Name)

	_, err = sess.SetDocumentCompleted(ctx, 2, created[1].ID, true)
	assert.ErrorIs(t, err, ErrNotFound)

	docs, err = sess.ListDocuments(ctx, 1, uni)
	require.NoError(t, err)
	assert.Equal(t, []string{"SOP", "CV"}, []string{docs[0].Name, docs[1].Name})
}

func TestUniversities_Queries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := newTestSession(t)

	unranked := seedUniversity(t, sess, "Unranked", "USA", 0)
	second := seedUniversity(t, sess, "Second", "USA", 20)
	first := seedUniversity(t, sess, "First", "USA", 5)
	uk := seedUniversity(t, sess, "Oxford", "UK", 3)

	got, err := sess.UniversitiesByCountries(ctx, []string{"USA"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{first, second, unranked}, universityIDs(got))

	got, err = sess.UniversitiesByCountries(ctx, []string{"USA", "UK"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{uk, first}, universityIDs(got))

	got, err = sess.UniversitiesByCountries(ctx, nil, 10)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = sess.UniversitiesExcluding(ctx, []int64{first, uk}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{second, unranked}, universityIDs(got))

	got, err = sess.UniversitiesByIDs(ctx, []int64{uk, 12345})
	require.NoError(t, err)
	assert.Equal(t, []int64{uk}, universityIDs(got))

	got, err = sess.ListUniversities(ctx, "UK")
	require.NoError(t, err)
	assert.Equal(t, []int64{uk}, universityIDs(got))

	u, err := sess.GetUniversity(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "Second", u.Name)

	_, err = sess.GetUniversity(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func universityIDs(us []University) []int64 {
	ids := make([]int64, len(us))
	for i, u := range us {
		ids[i] = u.ID
	}
	return ids
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
