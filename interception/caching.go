package interception

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

const cachingHitKey = "phroxy.cache.hit"

// DefaultCacheSize is used when NewCachingInterceptor is given a non-positive size
const DefaultCacheSize = 256

// CachingInterceptor memoizes successful results per method and argument list.
// A hit short-circuits the call, so interceptors registered after it and the
// original member do not run.
type CachingInterceptor struct {
	cache *lru.Cache
}

// NewCachingInterceptor creates a caching interceptor holding up to size results
func NewCachingInterceptor(size int) (*CachingInterceptor, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("interception: create result cache: %w", err)
	}
	return &CachingInterceptor{cache: cache}, nil
}

// OnBeforeCall implements Interceptor
func (i *CachingInterceptor) OnBeforeCall(ctx *Context) {
	cached, ok := i.cache.Get(cacheKey(ctx))
	if !ok {
		return
	}
	values, _ := cached.([]any)
	ctx.SetReturnValues(values...)
	ctx.SetData(cachingHitKey, true)
	ctx.CallNext(false)
}

// OnAfterCall implements Interceptor
func (i *CachingInterceptor) OnAfterCall(ctx *Context) {
	if hit, _ := ctx.Data(cachingHitKey); hit == true {
		return
	}
	if ctx.Failure() != nil {
		return
	}
	values, ok := ctx.ReturnValues()
	if !ok {
		return
	}
	i.cache.Add(cacheKey(ctx), append([]any(nil), values...))
}

// Len returns the number of cached results
func (i *CachingInterceptor) Len() int {
	return i.cache.Len()
}

// Purge drops every cached result
func (i *CachingInterceptor) Purge() {
	i.cache.Purge()
}

// Name implements Named
func (i *CachingInterceptor) Name() string {
	return "CachingInterceptor"
}

func cacheKey(ctx *Context) string {
	var b strings.Builder
	b.WriteString(ctx.Method().Key().String())
	for _, arg := range ctx.Arguments() {
		fmt.Fprintf(&b, "|%T:%v", arg, arg)
	}
	return b.String()
}
