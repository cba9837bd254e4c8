package core

// Kind is the type of a named data-block in a scene document.
type Kind string

const (
	KindObject   Kind = "object"
	KindImage    Kind = "image"
	KindMesh     Kind = "mesh"
	KindMaterial Kind = "material"
)

// Kinds lists every data-block kind in display order.
var Kinds = []Kind{KindObject, KindMesh, KindMaterial, KindImage}

func (k Kind) Valid() bool {
	switch k {
	case KindObject, KindImage, KindMesh, KindMaterial:
		return true
	}
	return false
}
