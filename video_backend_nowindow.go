//go:build headless

package main

// NewEbitenOutput falls back to the headless output in builds without a
// window system.
func NewEbitenOutput() (VideoOutput, error) {
	return NewHeadlessVideoOutput(), nil
}

func init() {
	compiledFeatures = append(compiledFeatures, "video:headless")
}
