package generic

// Void is a zero-size type for when a value is required but meaningless,
// e.g. the value type of a map being used as a set.
type Void = struct{}

func NewVoid() Void {
	return Void{}
}
