package bot

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/onnwee/moviebot/cache"
	"github.com/onnwee/moviebot/movies"
	"github.com/onnwee/moviebot/omdb"
	"github.com/onnwee/moviebot/telegram"
	"github.com/onnwee/moviebot/testutil"
)

func TestRunDrainsAndStopsCleanly(t *testing.T) {
	tg := testutil.NewMockTelegramServer(t)
	om := testutil.NewMockOMDBServer(t)
	om.MockTitle("Inception", map[string]string{"Year": "2010"})
	store := newMemStore()

	// Keep-alives off so no idle connection goroutines outlive the test.
	hc := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	b := &Bot{
		Client:      &telegram.Client{Token: "t", APIBase: tg.URL, HTTPClient: hc},
		Resolver:    &movies.Resolver{Cache: cache.New(time.Minute), Client: &omdb.Client{APIKey: "k", BaseURL: om.URL, HTTPClient: hc}},
		Store:       store,
		Workers:     2,
		PollTimeout: 50 * time.Millisecond,
	}

	tg.QueueUpdate(10, 42, 77, "Inception")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	// Wait for the queued update to be handled.
	deadline := time.After(5 * time.Second)
	for len(tg.SentMessages()) == 0 {
		select {
		case <-deadline:
			t.Fatalf("update never handled")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}

	// The confirmed offset was persisted, so a restart will not replay update 10.
	if v, _ := store.GetKV(context.Background(), offsetKey); v != "11" {
		t.Errorf("persisted offset = %q, want 11", v)
	}
	if h := store.history[77]; len(h) != 1 || h[0] != "Inception" {
		t.Errorf("history = %v, want [Inception]", h)
	}

	// Close the mock servers first so their accept loops don't read as leaks.
	tg.Close()
	om.Close()
	goleak.VerifyNone(t)
}
