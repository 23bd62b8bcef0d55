package escalate

import "time"

// Ledger records crash timestamps for one supervised command. It is owned by
// that command's supervision task and never shared.
type Ledger struct {
	crashes []time.Time
}

// Record appends a crash time.
func (l *Ledger) Record(at time.Time) {
	l.crashes = append(l.crashes, at)
}

// CountAfter returns how many recorded crashes are strictly newer than cutoff.
func (l *Ledger) CountAfter(cutoff time.Time) int {
	n := 0
	for _, at := range l.crashes {
		if at.After(cutoff) {
			n++
		}
	}
	return n
}

// Len returns the total number of recorded crashes.
func (l *Ledger) Len() int { return len(l.crashes) }
