package scraper

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeControl struct {
	disabled    bool
	activateErr error
	activations int
}

func (c *fakeControl) Disabled() bool { return c.disabled }

func (c *fakeControl) Activate(ctx context.Context) error {
	c.activations++
	return c.activateErr
}

// fakePager serves scripted pages. failOn marks pages whose extraction
// errors, lastPage is the page whose next control is disabled.
type fakePager struct {
	pages      map[int][]string
	failOn     map[int]bool
	lastPage   int
	noControl  bool
	settleFail bool
	current    int
	controls   []*fakeControl
}

func (p *fakePager) Extract(ctx context.Context) ([]string, error) {
	p.current++
	if p.failOn[p.current] {
		return nil, assert.AnError
	}
	return p.pages[p.current], nil
}

func (p *fakePager) FindNext(ctx context.Context) (NextControl, bool) {
	if p.noControl {
		return nil, false
	}
	ctrl := &fakeControl{disabled: p.current >= p.lastPage}
	p.controls = append(p.controls, ctrl)
	return ctrl, true
}

func (p *fakePager) Settle(ctx context.Context) bool { return !p.settleFail }

func fivePages() map[int][]string {
	return map[int][]string{
		1: {"a1", "a2"},
		2: {"b1"},
		3: {"c1", "c2"},
		4: {"d1"},
		5: {"e1", "e2", "e3"},
	}
}

func TestWalkPagesAccumulatesAcrossPages(t *testing.T) {
	pager := &fakePager{pages: fivePages(), lastPage: 5}

	got := WalkPages[string](context.Background(), pager, 10, slog.Default())

	assert.Equal(t, []string{"a1", "a2", "b1", "c1", "c2", "d1", "e1", "e2", "e3"}, got)
}

func TestWalkPagesSkipsFailedPageAndContinues(t *testing.T) {
	pager := &fakePager{
		pages:    fivePages(),
		failOn:   map[int]bool{3: true},
		lastPage: 5,
	}

	got := WalkPages[string](context.Background(), pager, 10, slog.Default())

	// Page 3 is lost but pages 4 and 5 still arrive.
	assert.Equal(t, []string{"a1", "a2", "b1", "d1", "e1", "e2", "e3"}, got)
}

func TestWalkPagesStopsOnDisabledControl(t *testing.T) {
	pager := &fakePager{pages: fivePages(), lastPage: 2}

	got := WalkPages[string](context.Background(), pager, 10, slog.Default())

	assert.Equal(t, []string{"a1", "a2", "b1"}, got)
	// The disabled control must never be activated.
	last := pager.controls[len(pager.controls)-1]
	assert.True(t, last.disabled)
	assert.Zero(t, last.activations)
}

func TestWalkPagesStopsWhenNoControlFound(t *testing.T) {
	pager := &fakePager{pages: fivePages(), noControl: true}

	got := WalkPages[string](context.Background(), pager, 10, slog.Default())

	assert.Equal(t, []string{"a1", "a2"}, got)
}

func TestWalkPagesHonorsPageCeiling(t *testing.T) {
	pager := &fakePager{pages: fivePages(), lastPage: 5}

	got := WalkPages[string](context.Background(), pager, 2, slog.Default())

	assert.Equal(t, []string{"a1", "a2", "b1"}, got)
}

func TestWalkPagesStopsWhenPageNeverSettles(t *testing.T) {
	pager := &fakePager{pages: fivePages(), lastPage: 5, settleFail: true}

	got := WalkPages[string](context.Background(), pager, 10, slog.Default())

	assert.Equal(t, []string{"a1", "a2"}, got)
}

func TestWalkPagesReturnsAccumulatedOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pager := &fakePager{pages: fivePages(), lastPage: 5}

	got := WalkPages[string](ctx, pager, 10, slog.Default())

	assert.Empty(t, got)
}
