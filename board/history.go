// Position history for detecting repetitions

package board

// Map: zobrist -> count
type HistoryTableT map[uint64]int

// Add a position and return the resulting count for this position
func (ht HistoryTableT) Add(zobrist uint64) int {
	count := ht[zobrist]
	count++
	ht[zobrist] = count
	return count
}

// Remove a position and return the resulting count for this position.
// Entries with count zero are dropped so the table only holds the live game line.
func (ht HistoryTableT) Remove(zobrist uint64) int {
	count := ht[zobrist]
	count--
	if count > 0 {
		ht[zobrist] = count
	} else {
		delete(ht, zobrist)
	}
	return count
}

func (ht HistoryTableT) Count(zobrist uint64) int {
	return ht[zobrist]
}

func (ht HistoryTableT) clone() HistoryTableT {
	c := make(HistoryTableT, len(ht))
	for k, v := range ht {
		c[k] = v
	}
	return c
}
