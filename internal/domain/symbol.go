package domain

// Symbol is the module matrix of one QR code, quiet zone included.
// Modules[y][x] is true for dark modules.
type Symbol struct {
	Version int
	Level   ECLevel
	Modules [][]bool
}

// Size returns the width (and height) of the matrix in modules.
func (s Symbol) Size() int { return len(s.Modules) }
