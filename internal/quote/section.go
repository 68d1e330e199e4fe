package quote

// FindAnchor returns the index of the first line at or after from that
// satisfies match, or -1.
func FindAnchor(lines []string, from int, match func(string) bool) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(lines); i++ {
		if match(lines[i]) {
			return i
		}
	}
	return -1
}

// GatherBlock returns lines from start up to, but excluding, the first later
// line satisfying stop. The start line is never tested against stop. A
// non-positive max means no line limit.
func GatherBlock(lines []string, start int, stop func(string) bool, max int) []string {
	if start < 0 || start >= len(lines) {
		return nil
	}
	var block []string
	for i := start; i < len(lines); i++ {
		if max > 0 && len(block) >= max {
			break
		}
		line := lines[i]
		if line == "" {
			continue
		}
		if i != start && stop != nil && stop(line) {
			break
		}
		block = append(block, line)
	}
	return block
}
