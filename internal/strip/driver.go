// Package strip abstracts the addressable LED strip as a stateless sink:
// drivers render the frame they are given and feed nothing back.
package strip

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}
