package types

// Point is a token projected into two dimensions, tagged with the character
// class that decides its draw color. Points are produced by the reducer and
// classifier and consumed exactly once by the renderer.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Token Token   `json:"token"`
	Class string  `json:"class"`
}
