package loaderinfo

import (
	"errors"
	"testing"

	lierrors "github.com/flaneur2020/swf-loaderinfo/loaderinfo/errors"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
)

func TestClass_ConstructForbidden(t *testing.T) {
	li, err := LoaderInfoClass.Construct()
	if li != nil {
		t.Errorf("Construct() = %v, want nil", li)
	}
	if !errors.Is(err, lierrors.ErrConstructionForbidden) {
		t.Errorf("Construct() error = %v, want ErrConstructionForbidden", err)
	}
}

func TestClass_Definition(t *testing.T) {
	if LoaderInfoClass.Name != "flash.display.LoaderInfo" {
		t.Errorf("Name = %q", LoaderInfoClass.Name)
	}
	if LoaderInfoClass.SuperName != "flash.events.EventDispatcher" {
		t.Errorf("SuperName = %q", LoaderInfoClass.SuperName)
	}
	if !LoaderInfoClass.Sealed {
		t.Error("Sealed = false, want true")
	}

	names := LoaderInfoClass.PropertyNames()
	if len(names) != 15 {
		t.Fatalf("PropertyNames() returned %d names, want 15", len(names))
	}
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate property %q", n)
		}
		seen[n] = true
	}
}

// Every registered property resolves on a loaded movie.
func TestClass_AllPropertiesReadable(t *testing.T) {
	movie, _ := encodeMovie(t, stageHeader(swfutil.CompressionNone), as3Tags())
	movie.URL = "http://example.com/a.swf"
	li := loadedInfo(NewRuntime(nil), movie)

	for _, name := range LoaderInfoClass.PropertyNames() {
		t.Run(name, func(t *testing.T) {
			v, err := li.GetProperty(name)
			if err != nil {
				t.Fatalf("GetProperty(%q) error = %v", name, err)
			}
			if v == nil {
				t.Errorf("GetProperty(%q) = nil on a loaded movie", name)
			}
		})
	}
}

func TestGetProperty_Unknown(t *testing.T) {
	li := loadedInfo(NewRuntime(nil), &swfutil.Movie{})
	_, err := li.GetProperty("sharedEvents")
	if lierrors.GetErrorCode(err) != "PROPERTY_NOT_FOUND" {
		t.Errorf("GetProperty() error = %v, want PROPERTY_NOT_FOUND", err)
	}
}
