// Package engine provides the core word grid rules.
//
// The engine package implements:
//   - Weighted random letter grid generation
//   - Word path search over 8-adjacent, non-repeating cells
//   - Word scoring
//   - The validation pipeline applied to submitted words
//
// Core Types:
//
// Grid holds the n×n letter matrix. Validator combines a dictionary
// (Lexicon) with the path finder and a ScoringPolicy. WordError carries the
// stable rejection code reported to clients.
//
// Usage:
//
//	grid, err := engine.CreateGrid(4)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	v := engine.NewValidator(dict)
//	points, err := v.Check("mais", grid)
//	var werr *engine.WordError
//	if errors.As(err, &werr) {
//		fmt.Println(werr.Code)
//	}
//
// Game Rules:
//
// A word is accepted when it is in the dictionary, has at least three
// letters, is no longer than the number of cells, and can be traced through
// the grid moving horizontally, vertically or diagonally without reusing a
// cell. A word scores its length.
package engine
