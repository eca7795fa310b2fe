// internal/game/utils.go
package game

// mod returns the non-negative remainder of a divided by n.
func mod(a, n int) int {
	if n <= 0 {
		return 0
	}
	return ((a % n) + n) % n
}
