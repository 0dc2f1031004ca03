package reactive

// Batch runs fn and defers every notification it causes until fn
// returns. A listener notified several times inside the batch runs once.
// Nested batches flush when the outermost one completes.
//
//	Batch(func() {
//	    password.Set("s3cret")
//	    confirm.Set("s3cret")
//	})
//	// a group over both cells recomputes once
func Batch(fn func()) {
	sc := scopeFor()
	sc.depth++
	defer func() {
		sc.depth--
		if sc.depth == 0 {
			flush(sc)
			release(sc)
		}
	}()
	fn()
}

// flush runs the queued listeners in first-notification order. Listeners
// queued while flushing run in a later round.
func flush(sc *scope) {
	for len(sc.queue) > 0 {
		queued := sc.queue
		sc.queue = nil

		seen := make(map[uint64]struct{}, len(queued))
		for _, l := range queued {
			if _, dup := seen[l.ID()]; dup {
				continue
			}
			seen[l.ID()] = struct{}{}
			l.MarkDirty()
		}
	}
}
