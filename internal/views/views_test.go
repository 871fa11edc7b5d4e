package views

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/tunebook/internal/auth"
	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/repositories"
	"github.com/desertthunder/tunebook/internal/shared"
	"github.com/desertthunder/tunebook/internal/tasks"
	th "github.com/desertthunder/tunebook/internal/testing"
)

var (
	alice = &models.Identity{ID: "user-alice", Email: "alice@example.com"}
	bob   = &models.Identity{ID: "user-bob", Email: "bob@example.com"}
)

type fixture struct {
	tunes *countingTunes
	recs  *repositories.RecordingRepository
}

// countingTunes records how many updates reach the store.
type countingTunes struct {
	*repositories.TuneRepository
	updates  atomic.Int32
	failNext error
	onUpdate func()
}

func (c *countingTunes) Update(ctx context.Context, tune *models.Tune) error {
	c.updates.Add(1)
	if c.onUpdate != nil {
		c.onUpdate()
	}
	if err := c.failNext; err != nil {
		c.failNext = nil
		return err
	}
	return c.TuneRepository.Update(ctx, tune)
}

// editingRecordings runs onUpdate before each store write.
type editingRecordings struct {
	*repositories.RecordingRepository
	onUpdate func()
}

func (e *editingRecordings) Update(ctx context.Context, rec *models.Recording) error {
	if e.onUpdate != nil {
		e.onUpdate()
	}
	return e.RecordingRepository.Update(ctx, rec)
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return &fixture{
		tunes: &countingTunes{TuneRepository: repositories.NewTuneRepository(db)},
		recs:  repositories.NewRecordingRepository(db),
	}
}

func signedIn(user *models.Identity) auth.State {
	return auth.State{User: user, Token: "token-" + user.ID}
}

func (f *fixture) addTune(t *testing.T, user *models.Identity, name string) *models.Tune {
	t.Helper()
	form := &AddTuneForm{Name: name}
	if _, err := form.Submit(context.Background(), f.tunes, signedIn(user)); err != nil {
		t.Fatalf("failed to add tune %q: %v", name, err)
	}
	tunes, err := f.tunes.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to list tunes: %v", err)
	}
	var found *models.Tune
	for _, tune := range tunes {
		if tune.Name() == name {
			found = tune
		}
	}
	if found == nil {
		t.Fatalf("tune %q not found after create", name)
	}
	return found
}

func (f *fixture) addRecording(t *testing.T, user *models.Identity, tuneID, name, url, sortOrder string) *models.Recording {
	t.Helper()
	form := &AddRecordingForm{TuneID: tuneID, Name: name, URL: url, SortOrder: sortOrder}
	if _, err := form.Submit(context.Background(), f.recs, signedIn(user)); err != nil {
		t.Fatalf("failed to add recording %q: %v", name, err)
	}
	recs, err := f.recs.ListByTune(context.Background(), user.ID, tuneID)
	if err != nil {
		t.Fatalf("failed to list recordings: %v", err)
	}
	var found *models.Recording
	for _, rec := range recs {
		if rec.Name() == name {
			found = rec
		}
	}
	if found == nil {
		t.Fatalf("recording %q not found after create", name)
	}
	return found
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status Status
		name   string
		ready  bool
	}{
		{Loading, "loading", false},
		{Saved, "saved", true},
		{Dirty, "dirty", true},
		{Deleted, "deleted", false},
		{NotFound, "not_found", false},
		{Failed, "failed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.status.String() != tt.name {
				t.Errorf("expected %q, got %q", tt.name, tt.status.String())
			}
			if tt.status.Ready() != tt.ready {
				t.Errorf("expected Ready() = %v", tt.ready)
			}
		})
	}
}

func TestTuneList(t *testing.T) {
	ctx := context.Background()

	t.Run("requires login without fetching", func(t *testing.T) {
		list := LoadTuneList(ctx, failingTunes{}, auth.State{}, "en", nil)
		if !list.LoginRequired {
			t.Error("expected login to be required")
		}
		if list.Len() != 0 {
			t.Errorf("expected no tunes, got %d", list.Len())
		}
	})

	t.Run("lists only the user's tunes sorted by name", func(t *testing.T) {
		f := setupFixture(t)
		f.addTune(t, alice, "The Silver Spear")
		f.addTune(t, alice, "banish misfortune")
		f.addTune(t, alice, "Drowsy Maggie")
		f.addTune(t, bob, "A Tune Bob Owns")

		list := LoadTuneList(ctx, f.tunes, signedIn(alice), "en", nil)
		if list.LoginRequired {
			t.Fatal("expected list for signed in user")
		}

		want := []string{"banish misfortune", "Drowsy Maggie", "The Silver Spear"}
		if list.Len() != len(want) {
			t.Fatalf("expected %d tunes, got %d", len(want), list.Len())
		}
		for i, tune := range list.Tunes {
			if tune.UserID() != alice.ID {
				t.Errorf("tune %q belongs to %s", tune.Name(), tune.UserID())
			}
			if tune.Name() != want[i] {
				t.Errorf("position %d: expected %q, got %q", i, want[i], tune.Name())
			}
		}
	})

	t.Run("equal names keep insertion order", func(t *testing.T) {
		f := setupFixture(t)
		first := f.addTune(t, alice, "Kesh Jig")
		second := f.addTune(t, alice, "Kesh Jig")

		list := LoadTuneList(ctx, f.tunes, signedIn(alice), "en", nil)
		if list.Len() != 2 {
			t.Fatalf("expected 2 tunes, got %d", list.Len())
		}
		if list.Tunes[0].ID() != first.ID() || list.Tunes[1].ID() != second.ID() {
			t.Error("expected equal names to keep insertion order")
		}
	})

	t.Run("new tune is placed among existing entries", func(t *testing.T) {
		f := setupFixture(t)
		f.addTune(t, alice, "Banish Misfortune")
		f.addTune(t, alice, "Drowsy Maggie")

		form := &AddTuneForm{Name: "Cooley's"}
		target, err := form.Submit(ctx, f.tunes, signedIn(alice))
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if target != "/" {
			t.Errorf("expected redirect to /, got %s", target)
		}

		list := LoadTuneList(ctx, f.tunes, signedIn(alice), "en", nil)
		if list.Len() != 3 || list.Tunes[1].Name() != "Cooley's" {
			t.Errorf("expected Cooley's in the middle, got %v", tuneNames(list.Tunes))
		}
		if list.Tunes[1].Year() != nil || list.Tunes[1].Composer() != "" {
			t.Error("expected blank composer and absent year")
		}
	})

	t.Run("fetch failure renders an empty list", func(t *testing.T) {
		list := LoadTuneList(ctx, failingTunes{}, signedIn(alice), "en", shared.NewLogger(nil))
		if list.LoginRequired {
			t.Error("expected no login prompt")
		}
		if list.Tunes == nil || list.Len() != 0 {
			t.Errorf("expected empty list, got %v", list.Tunes)
		}
	})
}

func TestTuneDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("loads tune with ordered recordings and enrichment", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "The Kesh")
		late := f.addRecording(t, alice, tune.ID(), "Late", "https://youtu.be/bbbbbbbbbbb", "9")
		early := f.addRecording(t, alice, tune.ID(), "Early", "https://www.youtube.com/watch?v=aaaaaaaaaaa", "1")
		f.addRecording(t, alice, tune.ID(), "Tie", "", "1")

		svc := &th.MockVideoService{Videos: map[string]*models.VideoMetadata{
			"aaaaaaaaaaa": {VideoID: "aaaaaaaaaaa", Title: "Early video"},
		}}
		v := NewTuneDetail(f.tunes, f.recs, tasks.NewEnricher(svc, tasks.EnrichOpts{}), alice.ID, nil)

		if status := v.Load(ctx, tune.ID()); status != Saved {
			t.Fatalf("expected Saved, got %s (%s)", status, v.Error())
		}

		recs := v.Recordings()
		if len(recs) != 3 {
			t.Fatalf("expected 3 recordings, got %d", len(recs))
		}
		for i := 1; i < len(recs); i++ {
			if recs[i].SortOrder() < recs[i-1].SortOrder() {
				t.Errorf("recordings out of order at %d", i)
			}
		}
		if recs[2].ID() != late.ID() {
			t.Error("expected highest sort order last")
		}

		if meta, ok := v.Video(early.ID()); !ok || meta.Title != "Early video" {
			t.Errorf("expected enrichment for early recording, got %+v", meta)
		}
		if _, ok := v.Video(late.ID()); ok {
			t.Error("expected no enrichment for failed lookup")
		}
		if svc.Calls("bbbbbbbbbbb") != 1 {
			t.Error("expected lookup attempted for late recording")
		}
	})

	t.Run("not found for other users and bad ids", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Private")

		v := NewTuneDetail(f.tunes, f.recs, nil, bob.ID, nil)
		if status := v.Load(ctx, tune.ID()); status != NotFound {
			t.Errorf("expected NotFound for another user's tune, got %s", status)
		}

		if status := v.Load(ctx, "not-a-uuid"); status != NotFound {
			t.Errorf("expected NotFound for malformed id, got %s", status)
		}
		if v.Error() == "" {
			t.Error("expected an error message")
		}
	})

	t.Run("failed without a session", func(t *testing.T) {
		f := setupFixture(t)
		v := NewTuneDetail(f.tunes, f.recs, nil, "", nil)
		if status := v.Load(ctx, shared.GenerateID()); status != Failed {
			t.Errorf("expected Failed, got %s", status)
		}
	})

	t.Run("edit marks dirty without a store call", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Drowsy Maggie")

		v := NewTuneDetail(f.tunes, f.recs, nil, alice.ID, nil)
		v.Load(ctx, tune.ID())

		if err := v.Edit(TuneComposer, "Trad."); err != nil {
			t.Fatalf("Edit failed: %v", err)
		}
		if v.Status() != Dirty {
			t.Errorf("expected Dirty, got %s", v.Status())
		}
		if f.tunes.updates.Load() != 0 {
			t.Error("expected no store update on edit")
		}

		if err := v.Edit("tempo", "fast"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for unknown field, got %v", err)
		}
	})

	t.Run("edit before load is rejected", func(t *testing.T) {
		f := setupFixture(t)
		v := NewTuneDetail(f.tunes, f.recs, nil, alice.ID, nil)
		if err := v.Edit(TuneName, "x"); err == nil {
			t.Error("expected error editing a loading view")
		}
	})

	t.Run("save persists fields and returns to saved", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Drowsy Maggie")

		v := NewTuneDetail(f.tunes, f.recs, nil, alice.ID, nil)
		v.Load(ctx, tune.ID())
		v.Edit(TuneName, "Drowsy Maggie (reel)")
		v.Edit(TuneYear, "c. 1900")
		v.Edit(TuneNotes, "Learned from a session")

		if err := v.Save(ctx); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if v.Status() != Saved {
			t.Errorf("expected Saved, got %s", v.Status())
		}

		stored, err := f.tunes.GetForUser(ctx, alice.ID, tune.ID())
		if err != nil {
			t.Fatalf("GetForUser failed: %v", err)
		}
		if stored.Name() != "Drowsy Maggie (reel)" || stored.YearString() != "c. 1900" || stored.Notes() != "Learned from a session" {
			t.Errorf("unexpected stored tune: %q %q %q", stored.Name(), stored.YearString(), stored.Notes())
		}
	})

	t.Run("empty year saves as absent", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Morrison's")

		v := NewTuneDetail(f.tunes, f.recs, nil, alice.ID, nil)
		v.Load(ctx, tune.ID())
		v.Edit(TuneYear, "1936")
		v.Save(ctx)
		v.Edit(TuneYear, "")
		if err := v.Save(ctx); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		stored, _ := f.tunes.GetForUser(ctx, alice.ID, tune.ID())
		if stored.Year() != nil {
			t.Errorf("expected nil year, got %q", *stored.Year())
		}
	})

	t.Run("saving unchanged fields keeps values", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Tarbolton")

		v := NewTuneDetail(f.tunes, f.recs, nil, alice.ID, nil)
		v.Load(ctx, tune.ID())
		before := v.Fields()

		if err := v.Save(ctx); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if v.Status() != Saved {
			t.Errorf("expected Saved, got %s", v.Status())
		}

		stored, _ := f.tunes.GetForUser(ctx, alice.ID, tune.ID())
		if got := tuneFieldsOf(stored); got != before {
			t.Errorf("expected %+v, got %+v", before, got)
		}
	})

	t.Run("edit during save stays dirty", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Tarbolton")

		v := NewTuneDetail(f.tunes, f.recs, nil, alice.ID, nil)
		v.Load(ctx, tune.ID())
		v.Edit(TuneName, "Tarbolton Lodge")

		f.tunes.onUpdate = func() {
			f.tunes.onUpdate = nil
			if err := v.Edit(TuneComposer, "Trad."); err != nil {
				t.Errorf("edit during save: %v", err)
			}
		}
		if err := v.Save(ctx); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if v.Status() != Dirty {
			t.Errorf("expected Dirty, got %s", v.Status())
		}
		if got := v.Fields(); got.Name != "Tarbolton Lodge" || got.Composer != "Trad." {
			t.Errorf("expected later edit to be kept, got %+v", got)
		}
		if v.Tune().Name() != "Tarbolton Lodge" {
			t.Errorf("expected saved name on the record, got %q", v.Tune().Name())
		}

		if err := v.Save(ctx); err != nil {
			t.Fatalf("second save failed: %v", err)
		}
		if v.Status() != Saved {
			t.Errorf("expected Saved, got %s", v.Status())
		}
	})

	t.Run("failed save stays dirty with message", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Tarbolton")

		v := NewTuneDetail(f.tunes, f.recs, nil, alice.ID, nil)
		v.Load(ctx, tune.ID())
		v.Edit(TuneName, "Tarbolton Lodge")

		f.tunes.failNext = errors.New("database is locked")
		if err := v.Save(ctx); err == nil {
			t.Fatal("expected save error")
		}
		if v.Status() != Dirty {
			t.Errorf("expected Dirty, got %s", v.Status())
		}
		if v.Error() != "database is locked" {
			t.Errorf("unexpected message %q", v.Error())
		}
		if v.Fields().Name != "Tarbolton Lodge" {
			t.Error("expected edits to be kept")
		}
		if v.Tune().Name() != "Tarbolton" {
			t.Error("expected loaded record to be unchanged")
		}
	})

	t.Run("empty name fails validation", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Tarbolton")

		v := NewTuneDetail(f.tunes, f.recs, nil, alice.ID, nil)
		v.Load(ctx, tune.ID())
		v.Edit(TuneName, "   ")

		if err := v.Save(ctx); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if v.Status() != Dirty {
			t.Errorf("expected Dirty, got %s", v.Status())
		}
	})

	t.Run("delete requires confirmation", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Out on the Ocean")

		v := NewTuneDetail(f.tunes, f.recs, nil, alice.ID, nil)
		v.Load(ctx, tune.ID())

		if err := v.Delete(ctx, false); !errors.Is(err, shared.ErrNotConfirmed) {
			t.Errorf("expected ErrNotConfirmed, got %v", err)
		}
		if _, err := f.tunes.GetForUser(ctx, alice.ID, tune.ID()); err != nil {
			t.Error("expected tune to remain")
		}
	})

	t.Run("delete cascades to recordings", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Out on the Ocean")
		rec := f.addRecording(t, alice, tune.ID(), "Take", "", "")

		v := NewTuneDetail(f.tunes, f.recs, nil, alice.ID, nil)
		v.Load(ctx, tune.ID())

		if err := v.Delete(ctx, true); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if v.Status() != Deleted {
			t.Errorf("expected Deleted, got %s", v.Status())
		}
		if _, err := f.recs.GetForUser(ctx, alice.ID, rec.ID()); !errors.Is(err, shared.ErrRecordingNotFound) {
			t.Errorf("expected recording to be deleted, got %v", err)
		}
	})

	t.Run("deleting an already deleted tune stays on the page", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Out on the Ocean")

		v := NewTuneDetail(f.tunes, f.recs, nil, alice.ID, nil)
		v.Load(ctx, tune.ID())

		if err := f.tunes.DeleteForUser(ctx, alice.ID, tune.ID()); err != nil {
			t.Fatalf("setup delete failed: %v", err)
		}

		if err := v.Delete(ctx, true); !errors.Is(err, shared.ErrTuneNotFound) {
			t.Errorf("expected ErrTuneNotFound, got %v", err)
		}
		if v.Status() != Saved {
			t.Errorf("expected to stay Saved, got %s", v.Status())
		}
		if v.Error() == "" {
			t.Error("expected an error message")
		}
	})

	t.Run("late results are dropped after close", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "Slow Loader")
		f.addRecording(t, alice, tune.ID(), "Take", "https://youtu.be/aaaaaaaaaaa", "")

		svc := &th.MockVideoService{
			Videos: map[string]*models.VideoMetadata{"aaaaaaaaaaa": {VideoID: "aaaaaaaaaaa"}},
			Delay:  100 * time.Millisecond,
		}
		v := NewTuneDetail(f.tunes, f.recs, tasks.NewEnricher(svc, tasks.EnrichOpts{}), alice.ID, nil)

		done := make(chan Status, 1)
		go func() { done <- v.Load(ctx, tune.ID()) }()

		time.Sleep(20 * time.Millisecond)
		v.Close()

		select {
		case status := <-done:
			if status == Saved {
				t.Error("expected closed view not to become ready")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Load did not return")
		}
		if v.Tune() != nil || len(v.Recordings()) != 0 {
			t.Error("expected no state applied after close")
		}
	})
}

func TestRecordingDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("loads with video metadata", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "The Kesh")
		rec := f.addRecording(t, alice, tune.ID(), "Live take", "https://youtu.be/abcdefghijk", "")

		svc := &th.MockVideoService{Videos: map[string]*models.VideoMetadata{
			"abcdefghijk": {VideoID: "abcdefghijk", Title: "The Kesh live"},
		}}
		v := NewRecordingDetail(f.recs, tasks.NewEnricher(svc, tasks.EnrichOpts{}), alice.ID, nil)

		if status := v.Load(ctx, rec.ID()); status != Saved {
			t.Fatalf("expected Saved, got %s (%s)", status, v.Error())
		}
		if v.Video() == nil || v.Video().Title != "The Kesh live" {
			t.Errorf("expected video metadata, got %+v", v.Video())
		}
		if svc.Calls("abcdefghijk") != 1 {
			t.Error("expected enrichment attempted for abcdefghijk")
		}
	})

	t.Run("keeps the video id when lookups are disabled", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "The Kesh")
		rec := f.addRecording(t, alice, tune.ID(), "Live take", "https://youtu.be/abcdefghijk", "")

		svc := &th.MockVideoService{Disabled: true}
		v := NewRecordingDetail(f.recs, tasks.NewEnricher(svc, tasks.EnrichOpts{}), alice.ID, nil)

		if status := v.Load(ctx, rec.ID()); status != Saved {
			t.Fatalf("expected Saved, got %s (%s)", status, v.Error())
		}
		if v.Video() != nil {
			t.Errorf("expected no metadata, got %+v", v.Video())
		}
		if v.VideoID() != "abcdefghijk" {
			t.Errorf("expected video id abcdefghijk, got %q", v.VideoID())
		}
	})

	t.Run("no video without an extractable id", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "The Kesh")
		rec := f.addRecording(t, alice, tune.ID(), "Bandcamp", "https://example.bandcamp.com/track/kesh", "")

		svc := &th.MockVideoService{}
		v := NewRecordingDetail(f.recs, tasks.NewEnricher(svc, tasks.EnrichOpts{}), alice.ID, nil)
		v.Load(ctx, rec.ID())

		if v.Video() != nil {
			t.Error("expected no video")
		}
		if svc.TotalCalls() != 0 {
			t.Error("expected no lookups")
		}
	})

	t.Run("edit and save name and notes", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "The Kesh")
		rec := f.addRecording(t, alice, tune.ID(), "Take", "https://youtu.be/abcdefghijk", "")

		v := NewRecordingDetail(f.recs, nil, alice.ID, nil)
		v.Load(ctx, rec.ID())
		v.Edit(RecordingName, "Better take")
		v.Edit(RecordingNotes, "Nice ornaments")
		if v.Status() != Dirty {
			t.Errorf("expected Dirty, got %s", v.Status())
		}

		if err := v.Save(ctx); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if v.Status() != Saved {
			t.Errorf("expected Saved, got %s", v.Status())
		}

		stored, _ := f.recs.GetForUser(ctx, alice.ID, rec.ID())
		if stored.Name() != "Better take" || stored.Notes() != "Nice ornaments" {
			t.Errorf("unexpected stored recording: %q %q", stored.Name(), stored.Notes())
		}
		if stored.URLString() != "https://youtu.be/abcdefghijk" {
			t.Error("expected url to be untouched")
		}
	})

	t.Run("edit during save stays dirty", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "The Kesh")
		rec := f.addRecording(t, alice, tune.ID(), "Take", "", "")

		recs := &editingRecordings{RecordingRepository: f.recs}
		v := NewRecordingDetail(recs, nil, alice.ID, nil)
		v.Load(ctx, rec.ID())
		v.Edit(RecordingName, "Better take")

		recs.onUpdate = func() {
			recs.onUpdate = nil
			if err := v.Edit(RecordingNotes, "Nice ornaments"); err != nil {
				t.Errorf("edit during save: %v", err)
			}
		}
		if err := v.Save(ctx); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if v.Status() != Dirty {
			t.Errorf("expected Dirty, got %s", v.Status())
		}
		if got := v.Fields(); got.Name != "Better take" || got.Notes != "Nice ornaments" {
			t.Errorf("expected later edit to be kept, got %+v", got)
		}

		stored, _ := f.recs.GetForUser(ctx, alice.ID, rec.ID())
		if stored.Name() != "Better take" || stored.Notes() != "" {
			t.Errorf("unexpected stored recording: %q %q", stored.Name(), stored.Notes())
		}
	})

	t.Run("delete returns the parent tune", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "The Kesh")
		rec := f.addRecording(t, alice, tune.ID(), "Take", "", "")

		v := NewRecordingDetail(f.recs, nil, alice.ID, nil)
		v.Load(ctx, rec.ID())

		if _, err := v.Delete(ctx, false); !errors.Is(err, shared.ErrNotConfirmed) {
			t.Errorf("expected ErrNotConfirmed, got %v", err)
		}

		parent, err := v.Delete(ctx, true)
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if parent != tune.ID() {
			t.Errorf("expected parent %s, got %s", tune.ID(), parent)
		}
		if v.Status() != Deleted {
			t.Errorf("expected Deleted, got %s", v.Status())
		}
	})

	t.Run("not found for another user", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "The Kesh")
		rec := f.addRecording(t, alice, tune.ID(), "Take", "", "")

		v := NewRecordingDetail(f.recs, nil, bob.ID, nil)
		if status := v.Load(ctx, rec.ID()); status != NotFound {
			t.Errorf("expected NotFound, got %s", status)
		}
	})
}

func TestAddRecordingForm(t *testing.T) {
	ctx := context.Background()

	t.Run("lenient form defaults sort order", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "The Kesh")
		f.addRecording(t, alice, tune.ID(), "First", "", "5")

		form := &AddRecordingForm{TuneID: tune.ID(), Name: "Live take", URL: "https://youtu.be/abcdefghijk"}
		target, err := form.Submit(ctx, f.recs, signedIn(alice))
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if target != "/tune/"+tune.ID() {
			t.Errorf("unexpected redirect %s", target)
		}
		if form.Name != "" || form.TuneID != tune.ID() {
			t.Error("expected form to be cleared but keep its tune")
		}

		recs, _ := f.recs.ListByTune(ctx, alice.ID, tune.ID())
		if len(recs) != 2 {
			t.Fatalf("expected 2 recordings, got %d", len(recs))
		}
		last := recs[1]
		if last.Name() != "Live take" || last.SortOrder() != 6 || last.Rating() != nil {
			t.Errorf("unexpected recording: %q sort=%d rating=%v", last.Name(), last.SortOrder(), last.Rating())
		}
	})

	tests := []struct {
		name string
		form AddRecordingForm
		want error
	}{
		{"missing name", AddRecordingForm{Name: " "}, shared.ErrInvalidInput},
		{"rating too high", AddRecordingForm{Name: "Take", Rating: "6"}, shared.ErrInvalidInput},
		{"rating not a number", AddRecordingForm{Name: "Take", Rating: "great"}, shared.ErrInvalidInput},
		{"sort order not a number", AddRecordingForm{Name: "Take", SortOrder: "first"}, shared.ErrInvalidInput},
		{"malformed url", AddRecordingForm{Name: "Take", URL: "not a url"}, shared.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t)
			tune := f.addTune(t, alice, "The Kesh")

			form := tt.form
			form.TuneID = tune.ID()
			if _, err := form.Submit(ctx, f.recs, signedIn(alice)); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if form.Err == "" {
				t.Error("expected inline error")
			}
		})
	}

	t.Run("another user's tune is rejected", func(t *testing.T) {
		f := setupFixture(t)
		tune := f.addTune(t, alice, "The Kesh")

		form := &AddRecordingForm{TuneID: tune.ID(), Name: "Take"}
		if _, err := form.Submit(ctx, f.recs, signedIn(bob)); !errors.Is(err, shared.ErrTuneNotFound) {
			t.Errorf("expected ErrTuneNotFound, got %v", err)
		}
		if form.Name != "Take" {
			t.Error("expected form to stay populated")
		}
	})

	t.Run("requires a session", func(t *testing.T) {
		form := &AddRecordingForm{TuneID: shared.GenerateID(), Name: "Take"}
		if _, err := form.Submit(ctx, nil, auth.State{}); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestAddTuneForm(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		form := &AddTuneForm{Name: "Cooley's"}
		if _, err := form.Submit(ctx, nil, auth.State{}); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("requires a name", func(t *testing.T) {
		f := setupFixture(t)
		form := &AddTuneForm{Composer: "Trad."}
		if _, err := form.Submit(ctx, f.tunes, signedIn(alice)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if form.Composer != "Trad." {
			t.Error("expected form to stay populated")
		}
	})
}

type failingTunes struct{}

func (failingTunes) Create(context.Context, *models.Tune) error { return errors.New("store down") }
func (failingTunes) GetForUser(context.Context, string, string) (*models.Tune, error) {
	return nil, errors.New("store down")
}
func (failingTunes) Update(context.Context, *models.Tune) error          { return errors.New("store down") }
func (failingTunes) DeleteForUser(context.Context, string, string) error { return errors.New("store down") }
func (failingTunes) ListByUser(context.Context, string) ([]*models.Tune, error) {
	return nil, errors.New("store down")
}

func tuneNames(tunes []*models.Tune) []string {
	names := make([]string, 0, len(tunes))
	for _, t := range tunes {
		names = append(names, t.Name())
	}
	return names
}
