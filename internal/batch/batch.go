package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/textsuite/internal/logger"
)

// Item is one document of a batch file
type Item struct {
	Name      string `json:"name"`
	Text      string `json:"text"`
	NumTopics int    `json:"num_topics,omitempty"`
}

// LoadFromJSONL loads items from a JSONL file, one object per line.
// Malformed lines and lines without text are skipped with a warning.
func LoadFromJSONL(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	log := logger.WithComponent("batch")
	var items []Item
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 32<<20)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			log.Warn("skipping malformed line", "path", path, "line", n, "error", err)
			continue
		}
		if strings.TrimSpace(item.Text) == "" {
			log.Warn("skipping line without text", "path", path, "line", n)
			continue
		}
		if item.Name == "" {
			item.Name = fmt.Sprintf("line-%d", n)
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid items found in %s", path)
	}

	return items, nil
}

// Run calls fn for every item with at most workers calls in flight and
// returns the outputs in item order. The first error cancels the rest.
func Run[T any](ctx context.Context, items []Item, workers int, fn func(context.Context, Item) (T, error)) ([]T, error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]T, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			v, err := fn(ctx, item)
			if err != nil {
				return fmt.Errorf("%s: %w", item.Name, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
