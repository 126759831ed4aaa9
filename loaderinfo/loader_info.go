package loaderinfo

import (
	"fmt"

	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/bytearray"
	lierrors "github.com/flaneur2020/swf-loaderinfo/loaderinfo/errors"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
)

// LoaderInfo reports information about the stage content or a loaded movie.
// Instances are created by a Loader; the stream never changes afterwards.
type LoaderInfo struct {
	stream  LoaderStream
	runtime *Runtime
}

func newLoaderInfo(stream LoaderStream, runtime *Runtime) *LoaderInfo {
	return &LoaderInfo{stream: stream, runtime: runtime}
}

func (li *LoaderInfo) Stream() LoaderStream {
	return li.stream
}

func invalidStream(stream LoaderStream) error {
	return lierrors.ErrInvalidStream.WithDetail("stream", fmt.Sprintf("%T", stream))
}

func stageUnsupported(property, what string) error {
	return lierrors.NewStageUnsupportedError(property, what)
}

// ActionScriptVersion is 2 for AVM1 movies and 3 for AVM2 movies.
func (li *LoaderInfo) ActionScriptVersion() (uint, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		return 0, stageUnsupported("actionScriptVersion", "an AS version")
	case LoadedMovie:
		return li.runtime.Classifier.AVMType(s.Movie).LoaderVersion(), nil
	default:
		return 0, invalidStream(li.stream)
	}
}

func (li *LoaderInfo) ApplicationDomain() (*ApplicationDomain, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		return li.runtime.Domains.GlobalDomain(), nil
	case LoadedMovie:
		return li.runtime.Domains.ResolveDomain(s.Movie), nil
	default:
		return nil, invalidStream(li.stream)
	}
}

// BytesLoaded always equals BytesTotal: loads are never partial.
func (li *LoaderInfo) BytesLoaded() (uint32, error) {
	return li.BytesTotal()
}

func (li *LoaderInfo) BytesTotal() (uint32, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		if li.runtime.Stage == nil || li.runtime.Stage.Movie == nil {
			return 0, nil
		}
		return li.runtime.Stage.Movie.CompressedLength, nil
	case LoadedMovie:
		return s.Movie.CompressedLength, nil
	default:
		return 0, invalidStream(li.stream)
	}
}

func (li *LoaderInfo) Content() (ContentRef, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		return li.runtime.Roots.StageRoot(), nil
	case LoadedMovie:
		return s.Root, nil
	default:
		return nil, invalidStream(li.stream)
	}
}

// ContentType returns nil for the stage.
func (li *LoaderInfo) ContentType() (*string, error) {
	switch li.stream.(type) {
	case StageRoot:
		return nil, nil
	case LoadedMovie:
		ct := swfutil.ContentType
		return &ct, nil
	default:
		return nil, invalidStream(li.stream)
	}
}

func (li *LoaderInfo) FrameRate() (float64, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		return 0, stageUnsupported("frameRate", "a frame rate")
	case LoadedMovie:
		return s.Movie.Header.FrameRate.Float64(), nil
	default:
		return 0, invalidStream(li.stream)
	}
}

// Height is the stage height declared in the movie header, in pixels.
func (li *LoaderInfo) Height() (float64, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		return 0, stageUnsupported("height", "a height")
	case LoadedMovie:
		return s.Movie.Header.StageSize.Height().ToPixels(), nil
	default:
		return 0, invalidStream(li.stream)
	}
}

// Width is the stage width declared in the movie header, in pixels.
func (li *LoaderInfo) Width() (float64, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		return 0, stageUnsupported("width", "a width")
	case LoadedMovie:
		return s.Movie.Header.StageSize.Width().ToPixels(), nil
	default:
		return 0, invalidStream(li.stream)
	}
}

// IsURLInaccessible is always false.
func (li *LoaderInfo) IsURLInaccessible() (bool, error) {
	return false, nil
}

func (li *LoaderInfo) SWFVersion() (uint8, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		return 0, stageUnsupported("swfVersion", "a SWF version")
	case LoadedMovie:
		return s.Movie.Header.Version, nil
	default:
		return 0, invalidStream(li.stream)
	}
}

func (li *LoaderInfo) URL() (string, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		return "", stageUnsupported("url", "a URL")
	case LoadedMovie:
		return s.Movie.URL, nil
	default:
		return "", invalidStream(li.stream)
	}
}

// LoaderURL falls back to the movie's own URL when no loader URL was given.
func (li *LoaderInfo) LoaderURL() (string, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		return "", stageUnsupported("loaderUrl", "a loader URL")
	case LoadedMovie:
		if s.Movie.HasLoaderURL() {
			return s.Movie.LoaderURL, nil
		}
		return s.Movie.URL, nil
	default:
		return "", invalidStream(li.stream)
	}
}

// Parameters returns a fresh copy on every call.
func (li *LoaderInfo) Parameters() (map[string]string, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		return nil, stageUnsupported("parameters", "parameters")
	case LoadedMovie:
		params := make(map[string]string, len(s.Movie.Parameters))
		for k, v := range s.Movie.Parameters {
			params[k] = v
		}
		return params, nil
	default:
		return nil, invalidStream(li.stream)
	}
}

// Bytes rebuilds the movie as an uncompressed SWF. See Reconstruct.
func (li *LoaderInfo) Bytes() (*bytearray.ByteArray, error) {
	switch s := li.stream.(type) {
	case StageRoot:
		return nil, stageUnsupported("bytes", "a bytestream")
	case LoadedMovie:
		return Reconstruct(s.Movie)
	default:
		return nil, invalidStream(li.stream)
	}
}
