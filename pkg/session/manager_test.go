package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
	"github.com/coderopp/smartneed/internal/domain/search/result"
)

type searcherMock struct {
	searchFunc func(ctx context.Context, text string, filters filter.Set) (result.Page, error)
}

func (m *searcherMock) Search(
	ctx context.Context, text string, filters filter.Set,
) (result.Page, error) {
	return m.searchFunc(ctx, text, filters)
}

type transcriberMock struct {
	transcribeFunc func(ctx context.Context) (string, error)
}

func (m *transcriberMock) Transcribe(ctx context.Context) (string, error) {
	return m.transcribeFunc(ctx)
}

func page(ids ...string) result.Page {
	p := result.Page{TotalMatches: len(ids), Took: 5 * time.Millisecond}
	for _, id := range ids {
		p.Results = append(p.Results, result.Result{
			Product:         domain.Product{ID: id},
			SimilarityScore: 0.9,
		})
	}
	return p
}

// waitFor drains updates until pred matches or the deadline passes.
func waitFor(t *testing.T, m *Manager, pred func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-m.Updates():
			if !ok {
				t.Fatal("updates channel closed before condition met")
			}
			if pred(snap) {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot; last state: %+v", m.Snapshot())
		}
	}
}

func TestSubmitSuccess(t *testing.T) {
	m := New(&searcherMock{
		searchFunc: func(_ context.Context, text string, _ filter.Set) (result.Page, error) {
			if text != "trail shoes" {
				t.Errorf("text = %q, want %q", text, "trail shoes")
			}
			return page("p-1", "p-2"), nil
		},
	})
	defer m.Close()

	if got := m.Snapshot().Status; got != StatusIdle {
		t.Fatalf("initial status = %v, want idle", got)
	}
	if err := m.Submit("trail shoes"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	loading := waitFor(t, m, func(s Snapshot) bool { return s.Status == StatusLoading })
	if loading.Query != "trail shoes" {
		t.Errorf("loading query = %q", loading.Query)
	}

	done := waitFor(t, m, func(s Snapshot) bool { return s.Status == StatusSuccess })
	if len(done.Results) != 2 || done.TotalMatches != 2 {
		t.Fatalf("unexpected success snapshot: %+v", done)
	}
	if done.Took != 5*time.Millisecond {
		t.Errorf("Took = %v, want server-reported 5ms", done.Took)
	}
}

func TestBlankSubmitIsValidationNotice(t *testing.T) {
	m := New(&searcherMock{
		searchFunc: func(context.Context, string, filter.Set) (result.Page, error) {
			t.Fatal("blank submit must not reach the searcher")
			return result.Page{}, nil
		},
	})
	defer m.Close()

	if err := m.Submit("   "); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	snap := waitFor(t, m, func(s Snapshot) bool { return s.Notice != "" })
	if snap.Status != StatusIdle {
		t.Errorf("status = %v, want idle (notice must not change state)", snap.Status)
	}
}

func TestSupersededResponseIsDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	m := New(&searcherMock{
		searchFunc: func(_ context.Context, text string, _ filter.Set) (result.Page, error) {
			if text == "query a" {
				close(firstStarted)
				<-releaseFirst
				return page("stale"), nil
			}
			return page("fresh"), nil
		},
	})
	defer m.Close()

	if err := m.Submit("query a"); err != nil {
		t.Fatalf("Submit a: %v", err)
	}
	<-firstStarted
	if err := m.Submit("query b"); err != nil {
		t.Fatalf("Submit b: %v", err)
	}

	done := waitFor(t, m, func(s Snapshot) bool { return s.Status == StatusSuccess })
	if done.Query != "query b" || done.Results[0].Product.ID != "fresh" {
		t.Fatalf("rendered superseded result: %+v", done)
	}

	// Let the stale response resolve; it must not overwrite state.
	close(releaseFirst)
	time.Sleep(50 * time.Millisecond)
	if got := m.Snapshot(); got.Query != "query b" || got.Results[0].Product.ID != "fresh" {
		t.Fatalf("stale response overwrote state: %+v", got)
	}
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"validation", domain.ErrInvalidQuery, CategoryValidation},
		{"rate limited", fmt.Errorf("call api: %w", domain.ErrRateLimited), CategoryRateLimited},
		{"embedding down", domain.ErrEmbeddingUnavailable, CategoryServerError},
		{"store down", domain.ErrStoreUnavailable, CategoryServerError},
		{"timeout", context.DeadlineExceeded, CategoryTimeout},
		{"unknown", errors.New("weird"), CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(&searcherMock{
				searchFunc: func(context.Context, string, filter.Set) (result.Page, error) {
					return result.Page{}, tt.err
				},
			})
			defer m.Close()

			if err := m.Submit("anything"); err != nil {
				t.Fatalf("Submit: %v", err)
			}
			snap := waitFor(t, m, func(s Snapshot) bool { return s.Status == StatusError })
			if snap.ErrCategory != tt.want {
				t.Errorf("category = %q, want %q", snap.ErrCategory, tt.want)
			}
			if snap.ErrMessage == "" {
				t.Error("error message must not be empty")
			}
		})
	}
}

func TestRequestTimeoutGuard(t *testing.T) {
	m := New(&searcherMock{
		searchFunc: func(ctx context.Context, _ string, _ filter.Set) (result.Page, error) {
			<-ctx.Done()
			return result.Page{}, ctx.Err()
		},
	}, WithTimeout(30*time.Millisecond))
	defer m.Close()

	if err := m.Submit("slow query"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	snap := waitFor(t, m, func(s Snapshot) bool { return s.Status == StatusError })
	if snap.ErrCategory != CategoryTimeout {
		t.Errorf("category = %q, want timeout", snap.ErrCategory)
	}
}

func TestRequestTimeoutWithStuckSearcher(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	m := New(&searcherMock{
		searchFunc: func(context.Context, string, filter.Set) (result.Page, error) {
			// Ignores cancellation entirely.
			<-block
			return result.Page{}, nil
		},
	}, WithTimeout(30*time.Millisecond))
	defer m.Close()

	if err := m.Submit("stuck query"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	snap := waitFor(t, m, func(s Snapshot) bool { return s.Status == StatusError })
	if snap.ErrCategory != CategoryTimeout {
		t.Errorf("category = %q, want timeout", snap.ErrCategory)
	}
}

func TestRetryOnlyFromError(t *testing.T) {
	var calls int
	m := New(&searcherMock{
		searchFunc: func(context.Context, string, filter.Set) (result.Page, error) {
			calls++
			if calls == 1 {
				return result.Page{}, domain.ErrStoreUnavailable
			}
			return page("p-1"), nil
		},
	})
	defer m.Close()

	if err := m.Retry(); !errors.Is(err, ErrNotRetryable) {
		t.Fatalf("Retry from idle = %v, want ErrNotRetryable", err)
	}

	maxPrice := 50.0
	m.SetFilters(filter.Set{MaxPrice: &maxPrice})
	if err := m.Submit("hiking boots"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitFor(t, m, func(s Snapshot) bool { return s.Status == StatusError })

	if err := m.Retry(); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	done := waitFor(t, m, func(s Snapshot) bool { return s.Status == StatusSuccess })
	if done.Query != "hiking boots" {
		t.Errorf("retried query = %q", done.Query)
	}
	if done.Filters.MaxPrice == nil || *done.Filters.MaxPrice != 50.0 {
		t.Errorf("retry dropped filters: %+v", done.Filters)
	}
	if calls != 2 {
		t.Errorf("searcher calls = %d, want 2", calls)
	}
}

func TestCaptureVoicePopulatesPendingOnly(t *testing.T) {
	m := New(&searcherMock{
		searchFunc: func(_ context.Context, text string, _ filter.Set) (result.Page, error) {
			if text != "wireless earbuds" {
				t.Errorf("text = %q, want transcript", text)
			}
			return page("p-1"), nil
		},
	}, WithTranscriber(&transcriberMock{
		transcribeFunc: func(context.Context) (string, error) {
			return "  wireless earbuds  ", nil
		},
	}))
	defer m.Close()

	text, err := m.CaptureVoice(context.Background())
	if err != nil {
		t.Fatalf("CaptureVoice: %v", err)
	}
	if text != "wireless earbuds" {
		t.Errorf("transcript = %q", text)
	}
	if got := m.Snapshot(); got.Status != StatusIdle || got.PendingText != "wireless earbuds" {
		t.Fatalf("capture changed result state: %+v", got)
	}

	if err := m.SubmitPending(); err != nil {
		t.Fatalf("SubmitPending: %v", err)
	}
	waitFor(t, m, func(s Snapshot) bool { return s.Status == StatusSuccess })
}

func TestTranscriberUnavailable(t *testing.T) {
	m := New(&searcherMock{
		searchFunc: func(context.Context, string, filter.Set) (result.Page, error) {
			return result.Page{}, nil
		},
	})
	defer m.Close()

	if _, err := m.CaptureVoice(context.Background()); !errors.Is(err, ErrTranscriptionUnavailable) {
		t.Fatalf("err = %v, want ErrTranscriptionUnavailable", err)
	}
}

func TestCloseRejectsOperations(t *testing.T) {
	m := New(&searcherMock{
		searchFunc: func(context.Context, string, filter.Set) (result.Page, error) {
			return result.Page{}, nil
		},
	})
	m.Close()
	m.Close() // idempotent

	if err := m.Submit("after close"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Submit after close = %v, want ErrClosed", err)
	}
	if _, ok := <-m.Updates(); ok {
		t.Fatal("updates channel should be closed")
	}
}
