package formstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/etouchhq/insure-chat/internal/domain"
)

func newTestPersister(t *testing.T) *SQLitePersister {
	t.Helper()
	p, err := NewSQLitePersister(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("NewSQLitePersister: %v", err)
	}
	t.Cleanup(func() {
		if err := p.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return p
}

func TestSQLitePersister_LoadEmpty(t *testing.T) {
	p := newTestPersister(t)

	state, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state != nil {
		t.Errorf("fresh database must load nil, got %+v", state)
	}
}

func TestSQLitePersister_SaveLoadRoundTrip(t *testing.T) {
	p := newTestPersister(t)

	smoker := false
	saved := domain.FormSessionState{
		SessionID:    "sess-1",
		SessionState: "payment_initiated",
		CurrentStep:  3,
		PersonalDetails: domain.PersonalDetails{
			FullName:    "Asha Rao",
			TobaccoUser: &smoker,
		},
		QuoteDetails: domain.QuoteDetails{SumAssured: "10000000"},
		RiderSelections: []domain.RiderSelection{
			{ID: "adb", Name: "Accidental Death Benefit", Premium: 500, Selected: true},
		},
		PaymentDetails: domain.PaymentDetails{PaymentMethod: "upi", Status: domain.PaymentProcessing},
		FormCompletion: domain.FormCompletion{
			PersonalDetails: domain.SectionCompletion{CompletionPercentage: 13},
		},
	}
	if err := p.Save(context.Background(), &saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a record")
	}
	if loaded.SessionID != "sess-1" || loaded.CurrentStep != 3 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.PersonalDetails.TobaccoUser == nil || *loaded.PersonalDetails.TobaccoUser {
		t.Errorf("TobaccoUser = %v, want false", loaded.PersonalDetails.TobaccoUser)
	}
	if len(loaded.RiderSelections) != 1 || loaded.RiderSelections[0].Premium != 500 {
		t.Errorf("riders = %+v", loaded.RiderSelections)
	}
	if loaded.FormCompletion.PersonalDetails.CompletionPercentage != 13 {
		t.Errorf("completion = %+v", loaded.FormCompletion)
	}
}

func TestSQLitePersister_SaveOverwrites(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()

	first := domain.FormSessionState{SessionID: "sess-1"}
	second := domain.FormSessionState{SessionID: "sess-2", CurrentStep: 2}
	if err := p.Save(ctx, &first); err != nil {
		t.Fatal(err)
	}
	if err := p.Save(ctx, &second); err != nil {
		t.Fatal(err)
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.SessionID != "sess-2" || loaded.CurrentStep != 2 {
		t.Errorf("loaded = %+v, want the second save", loaded)
	}
}

func TestSQLitePersister_Clear(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()

	if err := p.Save(ctx, &domain.FormSessionState{SessionID: "sess-1"}); err != nil {
		t.Fatal(err)
	}
	if err := p.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Errorf("record survived Clear: %+v", loaded)
	}
}

func TestIsSQLiteConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"busy", errors.New("SQLITE_BUSY: database is busy"), true},
		{"locked", errors.New("database is locked (5)"), true},
		{"other", errors.New("no such table"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSQLiteConflict(tt.err); got != tt.want {
				t.Errorf("isSQLiteConflict(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
