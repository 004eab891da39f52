package ports

import "github.com/bft-labs/qrship/internal/domain"

// SymbolEncoder turns wire frame bytes into a QR symbol of a fixed version.
// It returns an error wrapping domain.ErrCapacityExceeded when data does not
// fit the version/level combination, and domain.ErrRender otherwise.
type SymbolEncoder interface {
	Encode(data []byte, version int, level domain.ECLevel) (domain.Symbol, error)
}

// ImageRenderer turns a symbol into image markup.
type ImageRenderer interface {
	Render(symbol domain.Symbol) (string, error)
}
