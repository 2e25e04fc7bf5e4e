package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/coderopp/smartneed/internal/domain"
)

type storeMock struct {
	setNXFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

func (m *storeMock) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return m.setNXFunc(ctx, key, value, ttl)
}

func TestSubmit(t *testing.T) {
	var gotKey string
	var gotValue []byte
	s := &storeMock{
		setNXFunc: func(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
			gotKey, gotValue = key, value
			return true, nil
		},
	}

	accepted, err := New(s).Submit(context.Background(), "q-1", "p-1", SignalRelevant)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !accepted {
		t.Error("expected accepted")
	}
	if gotKey != keyPrefix+"q-1:p-1" {
		t.Errorf("key = %q", gotKey)
	}

	var rec record
	if err := json.Unmarshal(gotValue, &rec); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if rec.Signal != SignalRelevant || rec.Timestamp.IsZero() {
		t.Errorf("record = %+v", rec)
	}
}

func TestSubmitReplayRejected(t *testing.T) {
	s := &storeMock{
		setNXFunc: func(context.Context, string, []byte, time.Duration) (bool, error) {
			return false, nil
		},
	}

	accepted, err := New(s).Submit(context.Background(), "q-1", "p-1", SignalPurchased)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if accepted {
		t.Error("replay must not be accepted")
	}
}

func TestSubmitValidation(t *testing.T) {
	s := &storeMock{
		setNXFunc: func(context.Context, string, []byte, time.Duration) (bool, error) {
			t.Fatal("SetNX should not be called")
			return false, nil
		},
	}

	cases := []struct {
		name              string
		queryID, prodID   string
		signal            Signal
	}{
		{"missing query id", "", "p-1", SignalRelevant},
		{"missing product id", "q-1", "", SignalRelevant},
		{"unknown signal", "q-1", "p-1", Signal("meh")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(s).Submit(context.Background(), c.queryID, c.prodID, c.signal)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Errorf("want ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestSubmitStoreError(t *testing.T) {
	s := &storeMock{
		setNXFunc: func(context.Context, string, []byte, time.Duration) (bool, error) {
			return false, errors.New("connection refused")
		},
	}

	_, err := New(s).Submit(context.Background(), "q-1", "p-1", SignalIrrelevant)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("want ErrStoreUnavailable, got %v", err)
	}
}
