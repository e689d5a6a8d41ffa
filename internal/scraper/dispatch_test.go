package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChunkBounds(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		workers int
		want    [][2]int
	}{
		{"even split", 9, 3, [][2]int{{0, 3}, {3, 6}, {6, 9}}},
		{"remainder goes to early chunks", 10, 3, [][2]int{{0, 4}, {4, 7}, {7, 10}}},
		{"more workers than items", 2, 5, [][2]int{{0, 1}, {1, 2}}},
		{"single worker", 4, 1, [][2]int{{0, 4}}},
		{"zero workers clamps to one", 3, 0, [][2]int{{0, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chunkBounds(tt.n, tt.workers))
		})
	}
}

func TestDistributePreservesInputOrder(t *testing.T) {
	items := make([]int, 10)
	for i := range items {
		items[i] = i
	}

	// Earlier chunks sleep longer, so later workers finish first. The
	// reassembled output must still follow the input order.
	fn := func(ctx context.Context, workerID int, chunk []int) []string {
		time.Sleep(time.Duration(3-workerID) * 20 * time.Millisecond)
		out := make([]string, 0, len(chunk))
		for _, item := range chunk {
			out = append(out, fmt.Sprintf("w%d:%d", workerID, item))
		}
		return out
	}

	got := Distribute(context.Background(), items, 3, fn, slog.Default())

	want := []string{
		"w0:0", "w0:1", "w0:2", "w0:3",
		"w1:4", "w1:5", "w1:6",
		"w2:7", "w2:8", "w2:9",
	}
	assert.Equal(t, want, got)
}

func TestDistributeEmptyInput(t *testing.T) {
	fn := func(ctx context.Context, workerID int, chunk []int) []int { return chunk }

	got := Distribute(context.Background(), nil, 4, fn, slog.Default())

	assert.Nil(t, got)
}

func TestDistributeSurvivesWorkerPanic(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5}

	fn := func(ctx context.Context, workerID int, chunk []int) []int {
		if workerID == 1 {
			panic("worker blew up")
		}
		return chunk
	}

	got := Distribute(context.Background(), items, 3, fn, slog.Default())

	// The middle chunk is lost, the rest arrive in order.
	assert.Equal(t, []int{0, 1, 4, 5}, got)
}
