package main

// splitBatches slices records into groups of at most size, preserving order.
// An empty input yields no batches. size must be >= 1 (enforced by config
// validation); a smaller value is clamped rather than panicking.
func splitBatches(records []RawRecord, size int) [][]RawRecord {
	if size < 1 {
		size = 1
	}
	var batches [][]RawRecord
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}
