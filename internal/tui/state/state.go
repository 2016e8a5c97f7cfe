package state

import "github.com/glabrego/network-cli/internal/network"

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

// ListHeight is the number of rows left for the listing once the header,
// the pager and the status lines are drawn.
func ListHeight(height int, hasHeader bool) int {
	if height <= 0 {
		return 10
	}
	chrome := 7
	if hasHeader {
		chrome += 3
	}
	rows := height - chrome
	if rows < 3 {
		rows = 3
	}
	return rows
}

func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

func PostIndexByID(posts []network.Post, postID int64) int {
	for i, p := range posts {
		if p.ID == postID {
			return i
		}
	}
	return -1
}

// RestoreCursor keeps the cursor on anchorID when it is still listed and
// otherwise clamps the old position.
func RestoreCursor(posts []network.Post, anchorID int64, cursor int) int {
	if anchorID != 0 {
		if idx := PostIndexByID(posts, anchorID); idx >= 0 {
			return idx
		}
	}
	return ClampCursor(cursor, len(posts))
}
