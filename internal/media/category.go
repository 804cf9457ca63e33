package media

// Category is the destination bucket a media file is placed into.
type Category string

const (
	// Unclassified marks a file whose extension matches no known set. It is
	// never placed.
	Unclassified Category = ""
	Pictures     Category = "Pictures"
	Videos       Category = "Videos"
	Audio        Category = "Audio"
)

// Categories lists the placeable categories in display order.
func Categories() []Category {
	return []Category{Pictures, Videos, Audio}
}

// Placeable reports whether files of this category are copied into the library.
func (c Category) Placeable() bool {
	switch c {
	case Pictures, Videos, Audio:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	if c == Unclassified {
		return "Unclassified"
	}
	return string(c)
}
