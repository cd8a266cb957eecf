package text

// ============================================================================
// Run Maintenance
// ============================================================================
//
// Every run type embeds CharacterRun. The helpers below keep run arrays
// covering the text when a character range is erased or inserted.

func (r *CharacterRun) characterRun() *CharacterRun { return r }

type runPtr[T any] interface {
	*T
	characterRun() *CharacterRun
}

// InsertRuns splices created, which covers [start, start+count), into runs
// and shifts every run at or past start by count. A run spanning start is
// split around the inserted range.
func InsertRuns[T any, P runPtr[T]](runs, created []T, start, count int) []T {
	out := make([]T, 0, len(runs)+len(created)+1)
	inserted := false
	for i := range runs {
		run := P(&runs[i]).characterRun()
		switch {
		case run.Index >= start:
			if !inserted {
				out = append(out, created...)
				inserted = true
			}
			run.Index += count
			out = append(out, runs[i])
		case run.End() > start:
			head, tail := runs[i], runs[i]
			P(&head).characterRun().Count = start - run.Index
			t := P(&tail).characterRun()
			t.Index = start + count
			t.Count = run.End() - start
			out = append(out, head)
			out = append(out, created...)
			out = append(out, tail)
			inserted = true
		default:
			out = append(out, runs[i])
		}
	}
	if !inserted {
		out = append(out, created...)
	}
	return out
}

// ClearRuns erases the characters [start, end] from runs. Runs inside the
// range are dropped, overlapping runs shrink and later runs move back.
// Returns the updated runs and the index of the first run at or past start.
func ClearRuns[T any, P runPtr[T]](runs []T, start, end int) ([]T, int) {
	removed := end - start + 1
	out := runs[:0]
	first := -1
	for i := range runs {
		run := P(&runs[i]).characterRun()
		runEnd := run.Index + run.Count // exclusive

		switch {
		case runEnd <= start:
			// before the range
		case run.Index > end:
			run.Index -= removed
		default:
			overlapStart := max(run.Index, start)
			overlapEnd := min(runEnd, end+1)
			run.Count -= overlapEnd - overlapStart
			if run.Index > start {
				run.Index = start
			}
			if run.Count == 0 {
				continue
			}
		}
		if first < 0 && run.Index+run.Count > start {
			first = len(out)
		}
		out = append(out, runs[i])
	}
	if first < 0 {
		first = len(out)
	}
	return out, first
}

// ShiftRuns adds delta to the index of every run starting at or after index.
func ShiftRuns[T any, P runPtr[T]](runs []T, index, delta int) {
	for i := range runs {
		run := P(&runs[i]).characterRun()
		if run.Index >= index {
			run.Index += delta
		}
	}
}

// RunAt returns the position of the run containing index, or -1.
func RunAt[T any, P runPtr[T]](runs []T, index int) int {
	for i := range runs {
		if P(&runs[i]).characterRun().Contains(index) {
			return i
		}
	}
	return -1
}

// EraseRange removes s[from:to].
func EraseRange[T any](s []T, from, to int) []T {
	if from >= to {
		return s
	}
	return append(s[:from], s[to:]...)
}

// InsertAt inserts values into s at index.
func InsertAt[T any](s []T, index int, values ...T) []T {
	if len(values) == 0 {
		return s
	}
	out := make([]T, 0, len(s)+len(values))
	out = append(out, s[:index]...)
	out = append(out, values...)
	out = append(out, s[index:]...)
	return out
}
