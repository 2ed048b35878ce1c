package frame

// ReservedAttachments names the media attachment field collectors add to each
// submission. It never takes part in tabularization.
const ReservedAttachments = "_attachments"

type IngestOptions struct {
	// Drop lists extra top-level fields to strip from every record.
	Drop []string
	// KeepAttachments keeps the ReservedAttachments field.
	KeepAttachments bool
}

// FromRecords builds a frame with one row per record. Columns are the union of
// record keys in first-appearance order; absent keys are null.
func FromRecords(records []*Object, opt IngestOptions) (*Frame, error) {
	drop := make(map[string]bool, len(opt.Drop)+1)
	for _, d := range opt.Drop {
		drop[d] = true
	}
	if !opt.KeepAttachments {
		drop[ReservedAttachments] = true
	}

	var cols []string
	seen := map[string]bool{}
	for _, rec := range records {
		for _, k := range rec.Keys() {
			if drop[k] || seen[k] {
				continue
			}
			seen[k] = true
			cols = append(cols, k)
		}
	}

	b := NewBuilder(cols)
	for _, rec := range records {
		row := make([]Value, len(cols))
		for i, c := range cols {
			if v, ok := rec.Get(c); ok {
				row[i] = v
			}
		}
		b.Append(row...)
	}
	return b.Frame()
}

// FromMaps is FromRecords for plain decoded JSON.
func FromMaps(records []map[string]any, opt IngestOptions) (*Frame, error) {
	objs := make([]*Object, len(records))
	for i, m := range records {
		objs[i] = ObjectFromMap(m)
	}
	return FromRecords(objs, opt)
}
