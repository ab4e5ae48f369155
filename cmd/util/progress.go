package util

import "fmt"

// Progress reports on a batch of runs as they finish. Failures are always
// logged; the running tally only with --verbose.
type Progress struct {
	results chan result
	done    chan int
}

type result struct {
	name string
	err  error
}

func NewProgress(total int) Progress {
	p := Progress{make(chan result), make(chan int)}
	go func() {
		completed, failed := 0, 0
		for r := range p.results {
			completed++
			if r.err != nil {
				failed++
				Warnf("%s: %s", r.name, r.err)
			}
			ratio := 100.0 * (float64(completed) / float64(total))
			Verbosef("%d of %d runs finished (%0.2f%% done, %d failed)",
				completed, total, ratio, failed)
		}
		p.done <- failed
	}()
	return p
}

func (p Progress) Done(name string, err error) {
	p.results <- result{name, err}
}

// Close waits for every reported run to be logged and returns an error
// counting the failures, if there were any.
func (p Progress) Close() error {
	close(p.results)
	if failed := <-p.done; failed > 0 {
		return fmt.Errorf("%d run(s) failed", failed)
	}
	return nil
}
