package ports

// PPOptions configures the preprocessing (scaling / format conversion) stage.
type PPOptions struct {
	Width  int
	Height int
	Format PixelFormat

	// OutWidth/OutHeight request a low-resolution output; zero keeps the input size.
	OutWidth  int
	OutHeight int
	// OutFormat is the output pixel format; empty keeps the input format.
	OutFormat PixelFormat

	NbOutputs     int
	Force10Bit    bool
	DisableTCache bool
}

// Preprocessor abstracts the preprocessing plugin.
type Preprocessor interface {
	// Init configures the preprocessor.
	Init(opts PPOptions) error

	// Process converts in into out. out is owned by the caller.
	Process(in, out *Frame) error

	// Close releases the preprocessor.
	Close() error
}
