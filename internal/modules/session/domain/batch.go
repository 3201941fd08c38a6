package domain

// LoadBatch tracks a group of files loaded together. Completions may arrive
// in any order; the batch is finished once Pending reaches zero.
type LoadBatch struct {
	ID      string
	Pending int
	Loaded  int
	Records int
	Failed  map[string]error
}

func NewLoadBatch(id string, files int) *LoadBatch {
	return &LoadBatch{ID: id, Pending: files, Failed: map[string]error{}}
}

// Done records one file outcome and reports whether the batch is finished.
func (b *LoadBatch) Done(path string, records int, err error) bool {
	if b.Pending > 0 {
		b.Pending--
	}
	if err != nil {
		b.Failed[path] = err
	} else {
		b.Loaded++
		b.Records += records
	}
	return b.Pending == 0
}

func (b *LoadBatch) Finished() bool {
	return b.Pending == 0
}
