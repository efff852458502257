package store

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSessionRepository_CreateFinish(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess, err := repo.Create()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session ID should be set")
	}
	if sess.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if !got.Active() {
		t.Error("new session should be active")
	}
	if !got.StartedAt.Equal(sess.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, sess.StartedAt)
	}

	stats := SessionStats{Frames: 120, Published: 118, Consumed: 90, Dropped: 28, Skipped: 2}
	if err := repo.Finish(sess.ID, stats); err != nil {
		t.Fatalf("failed to finish session: %v", err)
	}

	got, err = repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.Active() {
		t.Error("finished session should not be active")
	}
	if got.EndedAt.Before(got.StartedAt) {
		t.Errorf("EndedAt %v is before StartedAt %v", got.EndedAt, got.StartedAt)
	}
	if diff := cmp.Diff(stats, got.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionRepository_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if err := repo.Finish("missing", SessionStats{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Finish() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	var ids []string
	for i := 0; i < 3; i++ {
		sess, err := repo.Create()
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		ids = append(ids, sess.ID)
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{ids[2], ids[1], ids[0]}},
		{name: "limited", limit: 2, want: []string{ids[2], ids[1]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions, err := repo.List(tt.limit)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var got []string
			for _, sess := range sessions {
				got = append(got, sess.ID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("List() order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess, err := repo.Create()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := repo.Delete(sess.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}
