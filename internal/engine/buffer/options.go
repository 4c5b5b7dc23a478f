package buffer

// Option is a functional option for configuring a Document.
type Option func(*Document)

// WithCharCapacity preallocates room for n character nodes.
func WithCharCapacity(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.chars = make([]charNode, 0, n)
		}
	}
}

// WithLineCapacity preallocates room for n line nodes.
func WithLineCapacity(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.lines = make([]lineNode, 0, n)
		}
	}
}
