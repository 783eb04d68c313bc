package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	clusterStarts    int
	clusterCompletes int
	convertCompletes int
}

func (h *recordingPipelineHooks) OnClusterStart(context.Context, string) { h.clusterStarts++ }
func (h *recordingPipelineHooks) OnClusterComplete(context.Context, string, time.Duration, error) {
	h.clusterCompletes++
}
func (h *recordingPipelineHooks) OnConvertComplete(context.Context, int, int, time.Duration, error) {
	h.convertCompletes++
}

type recordingCacheHooks struct {
	hits, misses, sets int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *recordingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()

	// Must not panic.
	ctx := context.Background()
	Pipeline().OnClusterStart(ctx, "louvain")
	Pipeline().OnClusterComplete(ctx, "louvain", time.Second, nil)
	Pipeline().OnConvertComplete(ctx, 3, 5, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "document")
	Cache().OnCacheMiss(ctx, "document")
	Cache().OnCacheSet(ctx, "document", 128)
}

func TestSetPipelineHooks(t *testing.T) {
	defer Reset()

	h := &recordingPipelineHooks{}
	SetPipelineHooks(h)

	ctx := context.Background()
	Pipeline().OnClusterStart(ctx, "leiden")
	Pipeline().OnClusterComplete(ctx, "leiden", time.Second, nil)
	Pipeline().OnConvertComplete(ctx, 1, 2, time.Millisecond, nil)

	if h.clusterStarts != 1 || h.clusterCompletes != 1 || h.convertCompletes != 1 {
		t.Errorf("hook counts = %+v, want 1 each", h)
	}
}

func TestSetCacheHooks(t *testing.T) {
	defer Reset()

	h := &recordingCacheHooks{}
	SetCacheHooks(h)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "document")
	Cache().OnCacheMiss(ctx, "document")
	Cache().OnCacheSet(ctx, "document", 64)

	if h.hits != 1 || h.misses != 1 || h.sets != 1 {
		t.Errorf("hook counts = %+v, want 1 each", h)
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	defer Reset()

	h := &recordingCacheHooks{}
	SetCacheHooks(h)
	SetCacheHooks(nil)

	Cache().OnCacheHit(context.Background(), "document")
	if h.hits != 1 {
		t.Error("nil hooks should not replace the registered implementation")
	}
}

func TestReset(t *testing.T) {
	h := &recordingPipelineHooks{}
	SetPipelineHooks(h)
	Reset()

	Pipeline().OnClusterStart(context.Background(), "louvain")
	if h.clusterStarts != 0 {
		t.Error("Reset should restore the no-op hooks")
	}
}
