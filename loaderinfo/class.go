package loaderinfo

import (
	lierrors "github.com/flaneur2020/swf-loaderinfo/loaderinfo/errors"
)

const (
	ClassName      = "flash.display.LoaderInfo"
	SuperClassName = "flash.events.EventDispatcher"
)

// Getter reads one property. A nil value with a nil error is null.
type Getter func(li *LoaderInfo) (interface{}, error)

// Property is a read-only property exposed to scripts.
type Property struct {
	Name string
	Get  Getter
}

func getter[T any](read func(*LoaderInfo) (T, error)) Getter {
	return func(li *LoaderInfo) (interface{}, error) {
		v, err := read(li)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Class describes LoaderInfo to the script runtime.
type Class struct {
	Name       string
	SuperName  string
	Sealed     bool
	properties []Property
	byName     map[string]Getter
}

// LoaderInfoClass is the class definition registered with the runtime.
var LoaderInfoClass = newClass([]Property{
	{"actionScriptVersion", getter((*LoaderInfo).ActionScriptVersion)},
	{"applicationDomain", getter((*LoaderInfo).ApplicationDomain)},
	{"bytesLoaded", getter((*LoaderInfo).BytesLoaded)},
	{"bytesTotal", getter((*LoaderInfo).BytesTotal)},
	{"content", getter((*LoaderInfo).Content)},
	{"contentType", func(li *LoaderInfo) (interface{}, error) {
		ct, err := li.ContentType()
		if err != nil || ct == nil {
			return nil, err
		}
		return *ct, nil
	}},
	{"frameRate", getter((*LoaderInfo).FrameRate)},
	{"height", getter((*LoaderInfo).Height)},
	{"isURLInaccessible", getter((*LoaderInfo).IsURLInaccessible)},
	{"swfVersion", getter((*LoaderInfo).SWFVersion)},
	{"url", getter((*LoaderInfo).URL)},
	{"width", getter((*LoaderInfo).Width)},
	{"bytes", getter((*LoaderInfo).Bytes)},
	{"loaderUrl", getter((*LoaderInfo).LoaderURL)},
	{"parameters", getter((*LoaderInfo).Parameters)},
})

func newClass(props []Property) *Class {
	byName := make(map[string]Getter, len(props))
	for _, p := range props {
		byName[p.Name] = p.Get
	}
	return &Class{
		Name:       ClassName,
		SuperName:  SuperClassName,
		Sealed:     true,
		properties: props,
		byName:     byName,
	}
}

// PropertyNames lists the properties in registration order.
func (c *Class) PropertyNames() []string {
	names := make([]string, len(c.properties))
	for i, p := range c.properties {
		names[i] = p.Name
	}
	return names
}

// Construct always fails: only a Loader creates LoaderInfo instances.
func (c *Class) Construct(args ...interface{}) (*LoaderInfo, error) {
	return nil, lierrors.ErrConstructionForbidden
}

// GetProperty reads a property by its script-facing name.
func (li *LoaderInfo) GetProperty(name string) (interface{}, error) {
	get, ok := LoaderInfoClass.byName[name]
	if !ok {
		return nil, lierrors.ErrPropertyNotFound.
			WithMessage("property "+name+" not found on "+ClassName).
			WithDetail("property", name)
	}
	return get(li)
}
