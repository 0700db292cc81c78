package academicsvc

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	academicrepo "libms/repository/academic"
	"libms/util/database"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(academicrepo.New(db))
}

func TestAddStream(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id, err := svc.AddStream(ctx, "Engineering")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = svc.AddStream(ctx, "Engineering")
	require.Equal(t, ErrDuplicate, Code(err))

	_, err = svc.AddStream(ctx, "   ")
	require.Equal(t, ErrBadInput, Code(err))
}

func TestAddCourseAndSubject(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	streamID, err := svc.AddStream(ctx, "Engineering")
	require.NoError(t, err)

	courseID, err := svc.AddCourse(ctx, "Computer Science", streamID, 8)
	require.NoError(t, err)

	_, err = svc.AddCourse(ctx, "Computer Science", streamID, 8)
	require.Equal(t, ErrDuplicate, Code(err))

	subjectID, err := svc.AddSubject(ctx, "Operating Systems", courseID, 5)
	require.NoError(t, err)
	require.NotEmpty(t, subjectID)

	_, err = svc.AddSubject(ctx, "Operating Systems", courseID, 5)
	require.Equal(t, ErrDuplicate, Code(err))

	// the course only runs 8 semesters
	_, err = svc.AddSubject(ctx, "Ghost Subject", courseID, 9)
	require.Equal(t, ErrBadSemester, Code(err))

	_, err = svc.AddSubject(ctx, "Orphan Subject", uuid.NewString(), 1)
	require.Equal(t, ErrCourseNotFound, Code(err))
}

func TestHierarchy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	streamID, err := svc.AddStream(ctx, "Engineering")
	require.NoError(t, err)
	courseID, err := svc.AddCourse(ctx, "Computer Science", streamID, 8)
	require.NoError(t, err)
	_, err = svc.AddSubject(ctx, "Algorithms", courseID, 3)
	require.NoError(t, err)
	_, err = svc.AddSubject(ctx, "Data Structures", courseID, 3)
	require.NoError(t, err)
	_, err = svc.AddSubject(ctx, "Compilers", courseID, 6)
	require.NoError(t, err)

	tree, err := svc.Hierarchy(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, "Engineering", tree[0].Name)
	require.Len(t, tree[0].Courses, 1)

	bySem := tree[0].Courses[0].SubjectsBySemester
	require.Len(t, bySem[3], 2)
	require.Len(t, bySem[6], 1)
}
