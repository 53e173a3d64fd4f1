package cpt

import "sort"

// ChunkID is the 32-bit tag of a chunk. Read as a big-endian word it spells
// four ASCII characters.
type ChunkID uint32

const (
	ChunkGrid               ChunkID = 0x67726964 // "grid"
	ChunkBackgroundName     ChunkID = 0x626e616d // "bnam"
	ChunkBackgroundNameWide ChunkID = 0x626e776d // "bnwm"
	ChunkPath               ChunkID = 0x70617468 // "path"
	ChunkPathWide           ChunkID = 0x70746877 // "pthw"
	ChunkObjectInfo         ChunkID = 0x6f696e66 // "oinf"
)

// String renders the tag as text, with non-printable bytes shown as spaces.
func (id ChunkID) String() string {
	var a [4]byte
	for i := range a {
		c := byte(id >> (24 - 8*i))
		if c <= ' ' || c >= 0x7F {
			c = ' '
		}
		a[i] = c
	}
	return string(a[:])
}

// knownChunks lists every chunk tag seen in PHOTO-PAINT 9+ files, sorted.
var knownChunks = [...]ChunkID{
	0x61657874, // aext
	0x616e616d, // anam
	0x616e6177, // anaw
	0x616f7672, // aovr
	ChunkBackgroundName,
	ChunkBackgroundNameWide,
	0x636c7061, // clpa
	0x646f6373, // docs
	0x64756f74, // duot
	ChunkGrid,
	0x67756964, // guid
	0x69736772, // isgr
	0x6c726573, // lres
	0x6c74686d, // lthm
	0x6e6d7061, // nmpa
	0x6e6f7a7a, // nozz
	0x6e757061, // nupa
	0x6f626c6e, // obln
	0x6f64756f, // oduo
	ChunkObjectInfo,
	0x6f6c6578, // olex
	0x6f6c6e73, // olns
	0x6f736477, // osdw
	0x6f743130, // ot10
	0x6f743132, // ot12
	0x6f74686d, // othm
	0x6f747070, // otpp
	0x6f747839, // otx9
	0x6f747874, // otxt
	ChunkPath,
	0x70736470, // psdp
	ChunkPathWide,
	0x70746878, // pthx
	0x726f6964, // roid
	0x74677061, // tgpa
	0x7469746c, // titl
	0x75726c61, // urla
	0x75726c63, // urlc
	0x75726c73, // urls
	0x75726c74, // urlt
	0x75727761, // urwa
	0x75727763, // urwc
	0x75727773, // urws
	0x75727774, // urwt
	0x76626169, // vbai
	0x76626178, // vbax
	0x76696163, // viac
	0x76726873, // vrhs
	0x76736574, // vset
	0x776b7061, // wkpa
}

// KnownChunkCount is the size of the known chunk table.
const KnownChunkCount = len(knownChunks)

// IsKnownChunk reports whether id is one of the known chunk tags.
func IsKnownChunk(id ChunkID) bool {
	i := sort.Search(len(knownChunks), func(i int) bool { return knownChunks[i] >= id })
	return i < len(knownChunks) && knownChunks[i] == id
}

// KnownChunks returns a copy of the known chunk table.
func KnownChunks() []ChunkID {
	out := make([]ChunkID, len(knownChunks))
	copy(out, knownChunks[:])
	return out
}

// Chunk is one tagged record from a block's chunk area.
type Chunk struct {
	Offset int // absolute offset of the length field
	Length uint32
	ID     ChunkID
	Known  bool
	Detail ChunkDetail // nil when no handler decodes this tag
}

// ChunkDetail is the typed content decoded by a chunk handler.
type ChunkDetail interface {
	ChunkKind() string
}

type chunkContext struct {
	res  Resolution
	text textDecoder
}

// chunkHandler decodes a chunk payload. Handlers only read their input.
type chunkHandler func(ctx chunkContext, payload ByteView) (ChunkDetail, error)

var chunkHandlers = map[ChunkID]chunkHandler{
	ChunkGrid:               decodeGrid,
	ChunkPath:               decodePath,
	ChunkPathWide:           decodePathWide,
	ChunkBackgroundName:     decodeBackgroundName,
	ChunkBackgroundNameWide: decodeBackgroundNameWide,
	ChunkObjectInfo:         decodeObjectInfo,
}

// HasChunkHandler reports whether chunks tagged id are decoded into a ChunkDetail.
func HasChunkHandler(id ChunkID) bool {
	_, ok := chunkHandlers[id]
	return ok
}
