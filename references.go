package citeproc

// SetReferences replaces the entire reference library (spec.md §6
// "set_references"). Entries that fail to parse are skipped (and the
// skipped ids returned) rather than rejecting the whole batch, matching
// spec.md §7's InvalidReference semantics.
func (p *Processor) SetReferences(raw []map[string]interface{}) (skipped []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	skipped = p.refs.SetAll(raw)
	p.refsRevision++
	return skipped
}

// InsertReference adds or replaces a single reference (spec.md §6
// "insert_reference").
func (p *Processor) InsertReference(raw map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.refs.Ingest(raw); err != nil {
		return err
	}
	p.refsRevision++
	return nil
}
