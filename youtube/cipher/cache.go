package cipher

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ytget/ytstream/client"
)

const (
	scriptTTL = 10 * time.Minute

	compiledKeyPrefix = "cipher:"
	scriptKeyPrefix   = "script:"
)

// SourceCache memoizes compiled ciphers by player script URL for the lifetime
// of the owning client. Compiled entries never expire; the small number of
// distinct script versions bounds the cache in practice. Raw script bodies
// are kept briefly to serve the n-parameter transform and the script
// fallback without re-fetching.
//
// Concurrent first requests for the same URL may compile twice; compilation
// is pure, so the last stored value is consistent for all readers.
type SourceCache struct {
	httpClient     *client.Client
	store          *gocache.Cache
	scriptFallback bool
}

// NewSourceCache creates a cache using the given HTTP client for script fetches.
func NewSourceCache(httpClient *client.Client) *SourceCache {
	return &SourceCache{
		httpClient: httpClient,
		store:      gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// WithScriptFallback enables JavaScript execution of the extracted decipher
// snippet when structural compilation fails. Off by default: a compile
// failure then surfaces to the caller.
func (sc *SourceCache) WithScriptFallback(enabled bool) *SourceCache {
	sc.scriptFallback = enabled
	return sc
}

// Get returns the compiled cipher for a script URL, fetching and compiling
// on first request.
func (sc *SourceCache) Get(ctx context.Context, scriptURL string) (*CompiledCipher, error) {
	if v, ok := sc.store.Get(compiledKeyPrefix + scriptURL); ok {
		return v.(*CompiledCipher), nil
	}

	script, err := sc.script(ctx, scriptURL)
	if err != nil {
		return nil, err
	}
	compiled, err := Compile(scriptURL, script)
	if err != nil {
		return nil, err
	}
	sc.store.Set(compiledKeyPrefix+scriptURL, compiled, gocache.NoExpiration)
	return compiled, nil
}

// Decipher resolves a signature through the cached cipher for scriptURL.
// With the script fallback enabled, a structural compile failure falls back
// to executing the extracted decipher snippet.
func (sc *SourceCache) Decipher(ctx context.Context, scriptURL, signature string) (string, error) {
	compiled, err := sc.Get(ctx, scriptURL)
	if err == nil {
		return compiled.Decipher(signature), nil
	}
	if !sc.scriptFallback {
		return "", err
	}
	script, serr := sc.script(ctx, scriptURL)
	if serr != nil {
		return "", serr
	}
	log.Warn("structural compile failed, using script fallback", map[string]any{"source": scriptURL})
	return ExecDecipher(script, signature)
}

// DecipherN applies the player script's n-parameter transform. The original
// value is returned unchanged when the script carries no n-function.
func (sc *SourceCache) DecipherN(ctx context.Context, scriptURL, nval string) (string, error) {
	script, err := sc.script(ctx, scriptURL)
	if err != nil {
		return "", err
	}
	return TransformN(script, nval)
}

func (sc *SourceCache) script(ctx context.Context, scriptURL string) (string, error) {
	if v, ok := sc.store.Get(scriptKeyPrefix + scriptURL); ok {
		return v.(string), nil
	}
	body, err := sc.httpClient.GetBody(ctx, scriptURL)
	if err != nil {
		return "", NewError(ErrCodeScriptDownload, "player script download failed", err.Error())
	}
	script := string(body)
	sc.store.Set(scriptKeyPrefix+scriptURL, script, scriptTTL)
	return script, nil
}
