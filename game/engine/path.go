package engine

import "strings"

// neighbors are the 8 adjacent offsets, diagonals included
var neighbors = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// FindsPath reports whether word can be traced through the grid along
// 8-adjacent cells without visiting a cell twice. Matching is
// case-insensitive. Dictionary and length checks are not done here.
func FindsPath(word string, grid Grid) bool {
	letters := []rune(strings.ToUpper(word))
	size := grid.Size()
	if len(letters) == 0 || size == 0 || len(letters) > size*size {
		return false
	}

	// visited is scoped to this call so concurrent searches never share it
	visited := make([][]bool, size)
	for i := range visited {
		visited[i] = make([]bool, len(grid.Letters[i]))
	}

	var search func(row, col, idx int) bool
	search = func(row, col, idx int) bool {
		if row < 0 || row >= size || col < 0 || col >= len(grid.Letters[row]) {
			return false
		}
		if visited[row][col] || !cellMatches(grid.Letters[row][col], letters[idx]) {
			return false
		}
		if idx == len(letters)-1 {
			return true
		}

		visited[row][col] = true
		for _, d := range neighbors {
			if search(row+d[0], col+d[1], idx+1) {
				return true
			}
		}
		visited[row][col] = false
		return false
	}

	for row := range grid.Letters {
		for col := range grid.Letters[row] {
			if search(row, col, 0) {
				return true
			}
		}
	}

	return false
}

func cellMatches(cell string, r rune) bool {
	return strings.ToUpper(cell) == string(r)
}
