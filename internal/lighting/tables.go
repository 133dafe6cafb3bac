package lighting

// FullBright is the maximum light level, also skylight's value in an
// unobstructed open-air column.
const FullBright byte = 15

// opaque lists block ids that fully block both skylight and block light.
// Every id not listed (besides air) is treated as transparent — a coarse
// simplification relative to real per-block opacity, but one that keeps
// propagation a uniform "minus one per step" walk.
var opaque = map[byte]bool{
	1: true, 2: true, 3: true, 4: true, 5: true, 7: true, 12: true,
	13: true, 14: true, 15: true, 16: true, 17: true, 24: true, 41: true,
	42: true, 43: true, 45: true, 48: true, 49: true, 56: true, 57: true,
	58: true, 61: true, 62: true, 73: true, 74: true, 82: true, 87: true,
	88: true, 89: true, 97: true, 98: true,
}

// emission maps a light-emitting block id to the light level it radiates.
var emission = map[byte]byte{
	10: 15, 11: 15, // lava
	50: 14, // torch
	51: 15, // fire
	62: 14, // burning furnace
	74: 9,  // redstone ore (lit)
	76: 7,  // redstone torch (lit)
	89: 15, // glowstone
	90: 11, // portal
	91: 15, // jack o'lantern
}

// IsOpaque reports whether id blocks light from passing through.
func IsOpaque(id byte) bool {
	return opaque[id]
}

// Emission returns the light level id radiates on its own, 0 if none.
func Emission(id byte) byte {
	return emission[id]
}
