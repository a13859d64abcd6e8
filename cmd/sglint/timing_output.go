package main

import (
	"fmt"
	"io"

	"sglint/internal/driver"
	"sglint/internal/observ"
)

func printTimings(out io.Writer, timings *observ.Aggregate, cache *driver.Cache) {
	if out == nil || timings == nil {
		return
	}
	fmt.Fprint(out, timings.Summary())
	if cache != nil {
		hits, misses := cache.Stats()
		fmt.Fprintf(out, "  cache: %d hit(s), %d miss(es)\n", hits, misses)
	}
}
