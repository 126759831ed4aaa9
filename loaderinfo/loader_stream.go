package loaderinfo

import "github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"

// LoaderStream is what a LoaderInfo describes: either the implicit stage
// content or one loaded movie. The set of implementations is closed.
type LoaderStream interface {
	isLoaderStream()
}

// StageRoot is the stream of the top-level content. It carries no movie.
type StageRoot struct{}

// LoadedMovie is the stream of an explicitly loaded movie. Movie is shared
// and must not be mutated once the stream exists.
type LoadedMovie struct {
	Movie *swfutil.Movie
	Root  ContentRef
}

func (StageRoot) isLoaderStream()   {}
func (LoadedMovie) isLoaderStream() {}
