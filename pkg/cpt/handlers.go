package cpt

import "fmt"

// Fixed payload sizes of the decoded chunks.
const (
	gridPayloadSize       = 64
	pathFixedSize         = 20
	objectInfoNameLenANSI = 112
	objectInfoNameLenWide = 128
	objectInfoFixedSize   = 19*4 + objectInfoNameLenANSI + objectInfoNameLenWide
)

// GridUnit is the measurement unit of a grid axis.
type GridUnit uint32

const (
	GridUnitInch        GridUnit = 1
	GridUnitMM          GridUnit = 2
	GridUnitPicaPoint   GridUnit = 3
	GridUnitPoint       GridUnit = 4
	GridUnitCM          GridUnit = 5
	GridUnitPixel       GridUnit = 6
	GridUnitCiceroDidot GridUnit = 12
	GridUnitDidot       GridUnit = 13
)

// gridScale maps a unit to the factor applied to the stored density.
// Slots without a unit are zero.
var gridScale = [14]float64{
	GridUnitInch:        1 / (25.4 * 10000),
	GridUnitMM:          1.0 / 10000,
	GridUnitPicaPoint:   1 / ((25.4 * 10000) / 6),
	GridUnitPoint:       1 / ((25.4 * 10000) / 72),
	GridUnitCM:          1 / (10 * 10000),
	GridUnitPixel:       1 / (25.4 * 10000),
	GridUnitCiceroDidot: 1 / (4.5118699999999997 * 10000),
	GridUnitDidot:       1 / (0.37591999999999998 * 10000),
}

func (u GridUnit) String() string {
	switch u {
	case GridUnitInch:
		return "inch"
	case GridUnitMM:
		return "mm"
	case GridUnitPicaPoint:
		return "pica;point"
	case GridUnitPoint:
		return "point"
	case GridUnitCM:
		return "cm"
	case GridUnitPixel:
		return "pixel"
	case GridUnitCiceroDidot:
		return "cicero;didot"
	case GridUnitDidot:
		return "didot"
	default:
		return "unknown"
	}
}

func (u GridUnit) Known() bool {
	return u.String() != "unknown"
}

func (u GridUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// GridAxis is the grid spacing along one axis.
type GridAxis struct {
	Density float64  `json:"density" yaml:"density"` // raw stored value
	Unit    GridUnit `json:"unit" yaml:"unit"`
	Value   float64  `json:"value" yaml:"value"` // spacing in Unit, 0 when the unit is unknown
}

// Grid is the decoded "grid" chunk.
type Grid struct {
	X        GridAxis  `json:"x" yaml:"x"`
	Y        GridAxis  `json:"y" yaml:"y"`
	Unknown0 [2]uint32 `json:"unknown0" yaml:"unknown0,flow"`
	Unknown1 [8]uint32 `json:"unknown1" yaml:"unknown1,flow"`
}

func (*Grid) ChunkKind() string { return "grid" }

func gridAxis(density float64, unit GridUnit, dpi int) GridAxis {
	a := GridAxis{Density: density, Unit: unit}
	if uint32(unit) < uint32(len(gridScale)) {
		a.Value = gridScale[unit] * density
		if unit == GridUnitPixel {
			a.Value *= float64(dpi)
		}
	}
	return a
}

func decodeGrid(ctx chunkContext, p ByteView) (ChunkDetail, error) {
	if !p.Has(0, gridPayloadSize) {
		return nil, shortPayload(p, "grid", gridPayloadSize)
	}
	head, _ := p.U32s(0, 2)
	xd, _ := p.F64(8)
	yd, _ := p.F64(16)
	xu, _ := p.U32(24)
	yu, _ := p.U32(28)
	tail, _ := p.U32s(32, 8)

	g := &Grid{
		X: gridAxis(xd, GridUnit(xu), ctx.res.X),
		Y: gridAxis(yd, GridUnit(yu), ctx.res.Y),
	}
	copy(g.Unknown0[:], head)
	copy(g.Unknown1[:], tail)
	return g, nil
}

// Path is the decoded "path" chunk.
type Path struct {
	Unknown [5]uint32 `json:"unknown" yaml:"unknown,flow"`
	Name    string    `json:"name" yaml:"name"`
}

func (*Path) ChunkKind() string { return "path" }

func decodePath(ctx chunkContext, p ByteView) (ChunkDetail, error) {
	if !p.Has(0, pathFixedSize) {
		return nil, shortPayload(p, "path", pathFixedSize)
	}
	f, _ := p.U32s(0, 5)
	name, _ := p.Slice(pathFixedSize, p.Len()-pathFixedSize)
	d := &Path{Name: ctx.text.ansi(name)}
	copy(d.Unknown[:], f)
	return d, nil
}

// PathWide is the decoded "pthw" chunk, a bare UCS-2 path name.
type PathWide struct {
	Name string `json:"name" yaml:"name"`
}

func (*PathWide) ChunkKind() string { return "pthw" }

func decodePathWide(ctx chunkContext, p ByteView) (ChunkDetail, error) {
	b, _ := p.Slice(0, p.Len())
	return &PathWide{Name: ctx.text.wide(b)}, nil
}

// BackgroundName is the decoded "bnam" or "bnwm" chunk.
type BackgroundName struct {
	Name string `json:"name" yaml:"name"`
	Wide bool   `json:"wide" yaml:"wide"`
}

func (d *BackgroundName) ChunkKind() string {
	if d.Wide {
		return "bnwm"
	}
	return "bnam"
}

func decodeBackgroundName(ctx chunkContext, p ByteView) (ChunkDetail, error) {
	b, _ := p.Slice(0, p.Len())
	return &BackgroundName{Name: ctx.text.ansi(b)}, nil
}

func decodeBackgroundNameWide(ctx chunkContext, p ByteView) (ChunkDetail, error) {
	b, _ := p.Slice(0, p.Len())
	return &BackgroundName{Name: ctx.text.wide(b), Wide: true}, nil
}

// ObjectInfo is the decoded "oinf" chunk carried by object blocks.
type ObjectInfo struct {
	Unknown0 [6]uint32 `json:"unknown0" yaml:"unknown0,flow"`
	Unknown1 [6]uint32 `json:"unknown1" yaml:"unknown1,flow"`
	Unknown2 [7]uint32 `json:"unknown2" yaml:"unknown2,flow"`
	NameANSI string    `json:"name_ansi" yaml:"name_ansi"`
	NameWide string    `json:"name_wide" yaml:"name_wide"`
}

func (*ObjectInfo) ChunkKind() string { return "oinf" }

func decodeObjectInfo(ctx chunkContext, p ByteView) (ChunkDetail, error) {
	if !p.Has(0, objectInfoFixedSize) {
		return nil, shortPayload(p, "oinf", objectInfoFixedSize)
	}
	f, _ := p.U32s(0, 19)
	nameA, _ := p.Slice(19*4, objectInfoNameLenANSI)
	nameW, _ := p.Slice(19*4+objectInfoNameLenANSI, objectInfoNameLenWide)

	d := &ObjectInfo{
		NameANSI: ctx.text.ansi(nameA),
		NameWide: ctx.text.wide(nameW),
	}
	copy(d.Unknown0[:], f[0:6])
	copy(d.Unknown1[:], f[6:12])
	copy(d.Unknown2[:], f[12:19])
	return d, nil
}

func shortPayload(p ByteView, tag string, need int) error {
	return newError(ErrCorruptChunk, p.Base(), "%s payload is %d bytes, need %d", tag, p.Len(), need)
}

// String renders a one-line summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("%.4f %s / %.4f %s", g.X.Value, g.X.Unit, g.Y.Value, g.Y.Unit)
}
