package ledger_test

import (
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/ledger"
	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

func TestNew(t *testing.T) {
	t.Parallel()

	l := ledger.New("session-123")
	if l.SessionID() != "session-123" {
		t.Errorf("SessionID() = %s, want session-123", l.SessionID())
	}
	if l.Count() != 0 {
		t.Errorf("Count() = %d, want 0", l.Count())
	}
	if l.LastEntry() != nil {
		t.Error("LastEntry() should be nil for empty ledger")
	}
}

func TestLedger_Append(t *testing.T) {
	t.Parallel()

	t.Run("assigns sequence in order", func(t *testing.T) {
		t.Parallel()

		l := ledger.New("s")
		now := time.Now()
		l.Append(ledger.UserEntry(negotiation.PhaseIntroduction, "سلام", now))
		l.Append(
			ledger.ReplyEntry(negotiation.RoleConservativeInvestor, negotiation.PhaseIntroduction, "خوش آمدید", now),
			ledger.EvaluationEntry(negotiation.PhaseIntroduction, "feedback", now),
		)

		entries := l.Entries()
		if len(entries) != 3 {
			t.Fatalf("len(Entries()) = %d, want 3", len(entries))
		}
		for i, e := range entries {
			if e.Seq != i+1 {
				t.Errorf("entries[%d].Seq = %d, want %d", i, e.Seq, i+1)
			}
		}
		if entries[1].Sender != "آقای محمدی" {
			t.Errorf("reply sender = %q", entries[1].Sender)
		}
		if entries[2].Role != negotiation.RoleEvaluator {
			t.Errorf("evaluation role = %s", entries[2].Role)
		}
	})

	t.Run("fills zero timestamp", func(t *testing.T) {
		t.Parallel()

		l := ledger.New("s")
		l.Append(ledger.Entry{Kind: ledger.KindSystem, Message: "x"})
		if l.LastEntry().Timestamp.IsZero() {
			t.Error("Timestamp should be set")
		}
	})

	t.Run("keeps given timestamp", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		l := ledger.New("s")
		l.Append(ledger.SystemEntry(negotiation.PhaseCompleted, "done", at))
		if !l.LastEntry().Timestamp.Equal(at) {
			t.Errorf("Timestamp = %v, want %v", l.LastEntry().Timestamp, at)
		}
	})
}

func TestLedger_EntriesIsCopy(t *testing.T) {
	t.Parallel()

	l := ledger.New("s")
	l.Append(ledger.UserEntry(negotiation.PhaseIntroduction, "original", time.Now()))

	entries := l.Entries()
	entries[0].Message = "mutated"

	if l.Entries()[0].Message != "original" {
		t.Error("Entries() must return a copy")
	}
}

func TestLedger_EntriesByKind(t *testing.T) {
	t.Parallel()

	l := ledger.New("s")
	now := time.Now()
	l.Append(
		ledger.UserEntry(negotiation.PhaseIntroduction, "a", now),
		ledger.UserEntry(negotiation.PhaseIntroduction, "b", now),
		ledger.SystemEntry(negotiation.PhaseFinancialQuestions, "c", now),
	)

	if got := len(l.EntriesByKind(ledger.KindUser)); got != 2 {
		t.Errorf("user entries = %d, want 2", got)
	}
	if got := len(l.EntriesByKind(ledger.KindReply)); got != 0 {
		t.Errorf("reply entries = %d, want 0", got)
	}
}

func TestLedger_ConcurrentAppend(t *testing.T) {
	t.Parallel()

	l := ledger.New("s")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(ledger.UserEntry(negotiation.PhaseIntroduction, "m", time.Now()))
		}()
	}
	wg.Wait()

	entries := l.Entries()
	if len(entries) != 50 {
		t.Fatalf("Count = %d, want 50", len(entries))
	}
	for i, e := range entries {
		if e.Seq != i+1 {
			t.Fatalf("entries[%d].Seq = %d", i, e.Seq)
		}
	}
}
