package generator

import (
	"runtime"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"martianoff/fakesmith/internal/metadata"
)

// Engine generates fakes for every declaration in a store. Declarations
// are independent, so they fan out over a fixed-size worker pool; each
// worker runs one synchronous assembly pass with no shared mutable state
// beyond the read-only store.
type Engine struct {
	store     *metadata.Store
	assembler *Assembler
	workers   int
	logger    *log.Logger
}

// NewEngine creates an engine over the given store. workers <= 0 selects
// one worker per CPU.
func NewEngine(store *metadata.Store, workers int, logger *log.Logger) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		store:     store,
		assembler: NewAssembler(store),
		workers:   workers,
		logger:    logger,
	}
}

// GenerateAll assembles every interface and class in the store and returns
// the units sorted by qualified name. Assembly is total per declaration;
// unresolvable member shapes degrade inside the generated text rather than
// failing the run.
func (e *Engine) GenerateAll() []*GeneratedUnit {
	type job struct {
		iface *metadata.Interface
		cls   *metadata.Class
	}

	var jobs []job
	for _, i := range e.store.Interfaces() {
		jobs = append(jobs, job{iface: i})
	}
	for _, c := range e.store.Classes() {
		jobs = append(jobs, job{cls: c})
	}

	units := make([]*GeneratedUnit, len(jobs))
	work := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				j := jobs[idx]
				if j.iface != nil {
					units[idx] = e.assembler.AssembleInterface(j.iface)
				} else {
					units[idx] = e.assembler.AssembleClass(j.cls)
				}
				e.logger.Debug("assembled fake", "declaration", units[idx].QualifiedName)
			}
		}()
	}
	for idx := range jobs {
		work <- idx
	}
	close(work)
	wg.Wait()

	sort.Slice(units, func(a, b int) bool { return units[a].QualifiedName < units[b].QualifiedName })
	return units
}
