package core

// Ref identifies a data-block inside a document.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Block is a named data-block together with its usage count.
type Block struct {
	Ref
	Name  string `json:"name"`
	Users int    `json:"users"`
}

// Object is a scene object. Data is its mesh (nil for an empty) and
// Materials holds one entry per material slot, nil for an empty slot.
type Object struct {
	Ref
	Name      string   `json:"name"`
	Data      *Block   `json:"data,omitempty"`
	Materials []*Block `json:"materials,omitempty"`
}

// SinglyUsed reports whether b is referenced by exactly one owner.
func (b *Block) SinglyUsed() bool {
	return b != nil && b.Users == 1
}
