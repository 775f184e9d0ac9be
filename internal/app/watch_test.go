package app_test

import (
	"context"
	"iter"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/witshim/internal/app"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/witshim/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func chanEvents(ch <-chan ports.WatchEvent) iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for ev := range ch {
			if !yield(ev) {
				return
			}
		}
	}
}

func TestApp_Watch_RebuildsOnSourceChange(t *testing.T) {
	f := newFixture(t, buildYAML)
	writeSources(t, f.root)

	events := make(chan ports.WatchEvent, 8)
	t.Cleanup(func() { close(events) })

	ctrl := gomock.NewController(t)
	mockWatcher := mocks.NewMockWatcher(ctrl)
	mockWatcher.EXPECT().Start(gomock.Any(), f.root).Return(nil)
	mockWatcher.EXPECT().Events().Return(chanEvents(events))
	mockWatcher.EXPECT().Stop().Return(nil)

	f.app.WithWatcher(mockWatcher).WithDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.app.Watch(ctx, app.BuildOptions{}) }()

	require.Eventually(t, func() bool { return f.jco.calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	// Files the build writes must not trigger another build.
	folder := domain.DeriveCacheKey("calc", componentBytes).Folder()
	events <- ports.WatchEvent{Path: filepath.Join(f.root, "src", "calc.wasm.d.ts"), Operation: ports.OpWrite}
	events <- ports.WatchEvent{Path: filepath.Join(f.root, "dist", "main.js"), Operation: ports.OpWrite}
	events <- ports.WatchEvent{Path: filepath.Join(f.outRoot(), folder, "calc.js"), Operation: ports.OpCreate}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), f.jco.calls.Load())

	changed := append(append([]byte(nil), componentBytes...), 0x01)
	writeFile(t, filepath.Join(f.root, "src", "calc.wasm"), string(changed))
	events <- ports.WatchEvent{Path: filepath.Join(f.root, "src", "calc.wasm"), Operation: ports.OpWrite}

	require.Eventually(t, func() bool { return f.jco.calls.Load() == 2 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancellation")
	}
}

func TestApp_Watch_NoEntryPoints(t *testing.T) {
	f := newFixture(t, "")

	err := f.app.Watch(context.Background(), app.BuildOptions{})
	require.ErrorIs(t, err, domain.ErrNoEntryPoints)
}
