package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/memory"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// recordID derives a stable uuid from a readable label.
func recordID(label string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(label)).String()
}

func clientTask(label string, updated time.Time) syncapi.Task {
	return syncapi.Task{
		ID:        recordID(label),
		Title:     "task " + label,
		Status:    syncapi.StatusTodo,
		Priority:  syncapi.PriorityMedium,
		Tags:      []string{},
		CreatedAt: t0,
		UpdatedAt: updated,
	}
}

func clientDomain(label string, updated time.Time) syncapi.Domain {
	return syncapi.Domain{
		ID:        recordID(label),
		Name:      "domain " + label,
		Color:     "#3366FF",
		Icon:      "briefcase",
		CreatedAt: t0,
		UpdatedAt: updated,
	}
}

func newSync() (*SyncService, *memory.Manager) {
	m := memory.NewManager()
	return NewSyncService(m, logging.NopLogger{}), m
}

func TestPush_ThenFullPull(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	tk := clientTask("t1", t0)
	tk.DomainID = ptr(recordID("d1"))
	tk.Priority = syncapi.PriorityUrgent
	tk.DueDate = ptr("2026-03-20")
	tk.EstimatedMinutes = ptr(45)

	resp, err := s.Push(ctx, "u1", &syncapi.PushRequest{
		Tasks:   []syncapi.Task{tk},
		Domains: []syncapi.Domain{clientDomain("d1", t0)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Pushed)
	assert.Equal(t, 0, resp.Conflicts)

	pulled, err := s.Pull(ctx, "u1", nil)
	require.NoError(t, err)
	require.Len(t, pulled.Tasks, 1)
	require.Len(t, pulled.Domains, 1)

	got := pulled.Tasks[0]
	assert.Equal(t, syncapi.PriorityHigh, got.Priority, "urgent collapses to high")
	assert.Equal(t, "2026-03-20", *got.DueDate)
	assert.Equal(t, 45, *got.EstimatedMinutes)
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, "#3366FF", pulled.Domains[0].Color)

	other, err := s.Pull(ctx, "u2", nil)
	require.NoError(t, err)
	assert.Empty(t, other.Tasks)
	assert.Empty(t, other.Domains)
}

func TestPull_StrictlyAfterCursor(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	_, err := s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{
		clientTask("old", t0),
		clientTask("edge", t0.Add(time.Minute)),
		clientTask("new", t0.Add(2*time.Minute)),
	}})
	require.NoError(t, err)

	cursor := t0.Add(time.Minute)
	resp, err := s.Pull(ctx, "u1", &cursor)
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, recordID("new"), resp.Tasks[0].ID)
}

func TestPull_SubMicrosecondCursor(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	stamp := t0.Add(time.Microsecond)
	_, err := s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{clientTask("a", stamp)}})
	require.NoError(t, err)

	before := t0.Add(600 * time.Nanosecond)
	resp, err := s.Pull(ctx, "u1", &before)
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 1, "cursor strictly before updatedAt")
	assert.True(t, resp.Tasks[0].UpdatedAt.Equal(stamp))

	after := stamp.Add(400 * time.Nanosecond)
	resp, err = s.Pull(ctx, "u1", &after)
	require.NoError(t, err)
	assert.Empty(t, resp.Tasks, "cursor strictly after updatedAt")
}

func TestPullCursor(t *testing.T) {
	assert.Nil(t, pullCursor(nil))

	got := pullCursor(ptr(t0.Add(1600 * time.Nanosecond)))
	assert.True(t, got.Equal(t0.Add(time.Microsecond)))
	assert.Equal(t, time.UTC, got.Location())
}

func TestPush_RejectsSubMicrosecondStamps(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	_, err := s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{clientTask("a", t0.Add(500*time.Nanosecond))}})
	assert.ErrorIs(t, err, common.ErrValidation)

	pulled, err := s.Pull(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, pulled.Tasks)
}

func TestPush_Idempotent(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()
	req := &syncapi.PushRequest{
		Tasks:      []syncapi.Task{clientTask("t1", t0.Add(123456*time.Microsecond))},
		Domains:    []syncapi.Domain{clientDomain("d1", t0)},
		LastSyncAt: ptr(t0.Add(-time.Hour)),
	}

	_, err := s.Push(ctx, "u1", req)
	require.NoError(t, err)
	second, err := s.Push(ctx, "u1", req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Conflicts, "re-pushing the same state is not a conflict")

	pulled, err := s.Pull(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Len(t, pulled.Tasks, 1)
	assert.Len(t, pulled.Domains, 1)
}

func TestPush_CountsConflictsButAppliesIncoming(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	_, err := s.Push(ctx, "u1", &syncapi.PushRequest{
		Tasks:   []syncapi.Task{clientTask("t1", t0.Add(time.Hour)), clientTask("t2", t0)},
		Domains: []syncapi.Domain{clientDomain("d1", t0.Add(time.Hour))},
	})
	require.NoError(t, err)

	stale := clientTask("t1", t0.Add(time.Minute))
	stale.Title = "stale edit"
	resp, err := s.Push(ctx, "u1", &syncapi.PushRequest{
		Tasks: []syncapi.Task{
			stale,
			clientTask("t2", t0.Add(time.Minute)),
			clientTask("t3", t0),
		},
		Domains:    []syncapi.Domain{clientDomain("d1", t0)},
		LastSyncAt: ptr(t0),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Pushed)
	assert.Equal(t, 2, resp.Conflicts, "t1 and d1 are newer on the server")

	pulled, err := s.Pull(ctx, "u1", nil)
	require.NoError(t, err)
	for _, tk := range pulled.Tasks {
		if tk.ID == recordID("t1") {
			assert.Equal(t, "stale edit", tk.Title, "the client version wins")
			assert.True(t, tk.UpdatedAt.Equal(t0.Add(time.Minute)))
		}
	}
}

func TestPush_NoConflictCountWithoutCursor(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	_, err := s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{clientTask("t1", t0.Add(time.Hour))}})
	require.NoError(t, err)

	resp, err := s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{clientTask("t1", t0)}})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Conflicts)
}

func TestPush_Tombstone(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	_, err := s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{clientTask("t1", t0)}})
	require.NoError(t, err)

	deleted := clientTask("t1", t0.Add(time.Minute))
	deleted.DeletedAt = ptr(t0.Add(time.Minute))
	_, err = s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{deleted}})
	require.NoError(t, err)

	resp, err := s.Pull(ctx, "u1", ptr(t0))
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 1)
	require.NotNil(t, resp.Tasks[0].DeletedAt)
}

func TestPush_ValidationRejectsWholeBatch(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	bad := clientTask("t2", t0)
	bad.Title = ""
	_, err := s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{clientTask("t1", t0), bad}})

	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tasks[1].title", verr.Details[0].Field)

	pulled, err := s.Pull(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, pulled.Tasks)
}

func TestPush_UnknownDomainReference(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	_, err := s.Push(ctx, "u2", &syncapi.PushRequest{Domains: []syncapi.Domain{clientDomain("foreign", t0)}})
	require.NoError(t, err)

	tk := clientTask("t1", t0)
	tk.DomainID = ptr(recordID("foreign"))
	_, err = s.Push(ctx, "u1", &syncapi.PushRequest{
		Tasks:   []syncapi.Task{tk},
		Domains: []syncapi.Domain{clientDomain("d1", t0)},
	})

	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tasks[0].domainId", verr.Details[0].Field)

	pulled, err := s.Pull(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, pulled.Domains, "d1 was rolled back with the batch")
}

func TestPush_ExistingDomainReference(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	_, err := s.Push(ctx, "u1", &syncapi.PushRequest{Domains: []syncapi.Domain{clientDomain("d1", t0)}})
	require.NoError(t, err)

	tk := clientTask("t1", t0)
	tk.DomainID = ptr(recordID("d1"))
	_, err = s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{tk}})
	require.NoError(t, err)
}

func TestPush_ForeignIDIsOwnershipError(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	_, err := s.Push(ctx, "u2", &syncapi.PushRequest{Tasks: []syncapi.Task{clientTask("shared", t0)}})
	require.NoError(t, err)

	hijack := clientTask("shared", t0.Add(time.Minute))
	hijack.Title = "mine now"
	_, err = s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{clientTask("own", t0), hijack}})
	require.ErrorIs(t, err, common.ErrOwnership)

	pulled, err := s.Pull(ctx, "u2", nil)
	require.NoError(t, err)
	require.Len(t, pulled.Tasks, 1)
	assert.Equal(t, "task shared", pulled.Tasks[0].Title)

	mine, err := s.Pull(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, mine.Tasks)
}

func TestPush_ExpiredContextWritesNothing(t *testing.T) {
	s, _ := newSync()
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{clientTask("t1", t0)}})
	require.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)

	pulled, err := s.Pull(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, pulled.Tasks)
}

func TestPush_ConcurrentBatchesDoNotInterleave(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	const n = 50
	batch := func(label string) *syncapi.PushRequest {
		req := &syncapi.PushRequest{}
		for i := 0; i < n; i++ {
			tk := clientTask(fmt.Sprintf("t%02d", i), t0)
			tk.Title = label
			req.Tasks = append(req.Tasks, tk)
		}
		return req
	}

	var wg sync.WaitGroup
	for _, label := range []string{"A", "B"} {
		wg.Add(1)
		go func(label string) {
			defer wg.Done()
			_, err := s.Push(ctx, "u1", batch(label))
			assert.NoError(t, err)
		}(label)
	}
	wg.Wait()

	pulled, err := s.Pull(ctx, "u1", nil)
	require.NoError(t, err)
	require.Len(t, pulled.Tasks, n)
	winner := pulled.Tasks[0].Title
	for _, tk := range pulled.Tasks {
		assert.Equal(t, winner, tk.Title, "one batch survives intact")
	}
}

func TestPush_ConcurrentSameRecordIsNeverMixed(t *testing.T) {
	ctx := context.Background()

	laptop := clientTask("shared", t0)
	laptop.Title = "from laptop"
	laptop.Description = "laptop notes"
	laptop.Order = 1
	laptop.EstimatedMinutes = ptr(15)

	phone := clientTask("shared", t0.Add(time.Second))
	phone.Title = "from phone"
	phone.Description = "phone notes"
	phone.Status = syncapi.StatusInProgress
	phone.Priority = syncapi.PriorityHigh
	phone.Order = 2
	phone.EstimatedMinutes = ptr(90)
	phone.DueDate = ptr("2026-04-01")

	// what each write looks like once stored on its own
	stored := func(tk syncapi.Task) syncapi.Task {
		s, _ := newSync()
		_, err := s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{tk}})
		require.NoError(t, err)
		pulled, err := s.Pull(ctx, "u1", nil)
		require.NoError(t, err)
		require.Len(t, pulled.Tasks, 1)
		return pulled.Tasks[0]
	}
	want := []syncapi.Task{stored(laptop), stored(phone)}

	for i := 0; i < 20; i++ {
		s, _ := newSync()

		var wg sync.WaitGroup
		for _, tk := range []syncapi.Task{laptop, phone} {
			wg.Add(1)
			go func(tk syncapi.Task) {
				defer wg.Done()
				_, err := s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{tk}})
				assert.NoError(t, err)
			}(tk)
		}
		wg.Wait()

		pulled, err := s.Pull(ctx, "u1", nil)
		require.NoError(t, err)
		require.Len(t, pulled.Tasks, 1)
		got := pulled.Tasks[0]
		assert.True(t, cmp.Equal(want[0], got) || cmp.Equal(want[1], got),
			"record mixes both writes: %s", cmp.Diff(want[0], got))
	}
}

func TestPullPush_CursorCycle(t *testing.T) {
	s, _ := newSync()
	ctx := context.Background()

	_, err := s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{clientTask("a", t0)}})
	require.NoError(t, err)

	// device B pulls everything and remembers the cursor
	cursor := t0.Add(time.Minute)
	first, err := s.Pull(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Len(t, first.Tasks, 1)

	// device A edits after that
	_, err = s.Push(ctx, "u1", &syncapi.PushRequest{Tasks: []syncapi.Task{clientTask("a", cursor.Add(time.Second))}})
	require.NoError(t, err)

	next, err := s.Pull(ctx, "u1", &cursor)
	require.NoError(t, err)
	require.Len(t, next.Tasks, 1)
	assert.True(t, next.Tasks[0].UpdatedAt.After(cursor))
}
