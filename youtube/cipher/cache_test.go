package cipher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ytget/ytstream/client"
)

func newTestClient() *client.Client {
	return client.New()
}

func TestSourceCacheMemoizes(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		_, _ = w.Write([]byte(fixtureScript))
	}))
	defer srv.Close()

	sc := NewSourceCache(newTestClient())
	ctx := context.Background()

	first, err := sc.Get(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := sc.Get(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Second Get failed: %v", err)
	}

	if fetches != 1 {
		t.Errorf("Expected 1 fetch, got %d", fetches)
	}
	if first != second {
		t.Error("Expected memoized cipher instance to be returned")
	}
}

func TestSourceCacheConcurrentFirstRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixtureScript))
	}))
	defer srv.Close()

	sc := NewSourceCache(newTestClient())
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*CompiledCipher, 16)
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = sc.Get(ctx, srv.URL)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		if errs[i] != nil {
			t.Fatalf("Concurrent Get %d failed: %v", i, errs[i])
		}
		if len(results[i].Operations) != 3 {
			t.Errorf("Concurrent Get %d returned %d ops, want 3", i, len(results[i].Operations))
		}
	}

	// After settling every reader observes the same stored value.
	settled, err := sc.Get(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Settled Get failed: %v", err)
	}
	again, _ := sc.Get(ctx, srv.URL)
	if settled != again {
		t.Error("Expected a consistent stored cipher after settling")
	}
}

func TestSourceCacheDecipher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fixtureScript))
	}))
	defer srv.Close()

	sc := NewSourceCache(newTestClient())

	// fixtureScript ops: reverse, slice 3, swap 2.
	got, err := sc.Decipher(context.Background(), srv.URL, "ABCDEFGH")
	if err != nil {
		t.Fatalf("Decipher failed: %v", err)
	}
	if got != "CDEBA" {
		t.Errorf("Decipher = %q, want %q", got, "CDEBA")
	}
}

func TestSourceCacheCompileFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("var nothing = 1;"))
	}))
	defer srv.Close()

	sc := NewSourceCache(newTestClient())
	if _, err := sc.Decipher(context.Background(), srv.URL, "ABCD"); err == nil {
		t.Fatal("Expected compile failure to surface without fallback")
	}
}

func TestSourceCacheDownloadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	sc := NewSourceCache(newTestClient())
	_, err := sc.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Expected error for failed script download")
	}
	if e, ok := err.(*Error); !ok || e.Code != ErrCodeScriptDownload {
		t.Errorf("Expected SCRIPT_DOWNLOAD_FAILED, got %v", err)
	}
}
