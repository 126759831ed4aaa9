package loaderinfo

import (
	"path"
	"strings"
	"sync"

	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/storage"
	"github.com/flaneur2020/swf-loaderinfo/loaderinfo/swfutil"
)

// AVMType is the script virtual machine a movie targets.
type AVMType int

const (
	AVM1 AVMType = iota
	AVM2
)

// LoaderVersion is the value reported as actionScriptVersion.
func (t AVMType) LoaderVersion() uint {
	if t == AVM2 {
		return 3
	}
	return 2
}

// ApplicationDomain is a class-definition namespace. Movies loaded into the
// runtime each get a child of the global domain.
type ApplicationDomain struct {
	Name   string
	Parent *ApplicationDomain
}

// ContentRef is the root display object of some loaded content.
type ContentRef interface {
	Name() string
}

// DisplayObject is a minimal ContentRef for a movie's root clip.
type DisplayObject struct {
	name string
}

func NewDisplayObject(name string) *DisplayObject {
	return &DisplayObject{name: name}
}

func (d *DisplayObject) Name() string { return d.name }

type DomainRegistry interface {
	ResolveDomain(movie *swfutil.Movie) *ApplicationDomain
	GlobalDomain() *ApplicationDomain
}

type ScriptVersionClassifier interface {
	AVMType(movie *swfutil.Movie) AVMType
}

type ContentRootProvider interface {
	RootOf(movie *swfutil.Movie) ContentRef
	StageRoot() ContentRef
}

// Stage is the top-level content. Movie may be nil when nothing was loaded
// at the top level.
type Stage struct {
	Movie *swfutil.Movie
	Root  ContentRef
}

type libraryEntry struct {
	domain  *ApplicationDomain
	avmType AVMType
	root    ContentRef
}

// Library tracks per-movie runtime state: application domain, script VM and
// root clip. Entries are created on first use and live as long as the
// Library. It is safe for concurrent use.
type Library struct {
	mu      sync.Mutex
	global  *ApplicationDomain
	stage   *Stage
	entries map[*swfutil.Movie]*libraryEntry
}

var (
	_ DomainRegistry          = (*Library)(nil)
	_ ScriptVersionClassifier = (*Library)(nil)
	_ ContentRootProvider     = (*Library)(nil)
)

func NewLibrary(stage *Stage) *Library {
	if stage == nil {
		stage = &Stage{}
	}
	if stage.Root == nil {
		stage.Root = NewDisplayObject("root1")
	}
	return &Library{
		global:  &ApplicationDomain{Name: "global"},
		stage:   stage,
		entries: make(map[*swfutil.Movie]*libraryEntry),
	}
}

func (l *Library) entry(movie *swfutil.Movie) *libraryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[movie]; ok {
		return e
	}
	avmType := AVM1
	if swfutil.IsActionScript3(movie.Data) {
		avmType = AVM2
	}
	name := movieName(movie)
	e := &libraryEntry{
		domain:  &ApplicationDomain{Name: name, Parent: l.global},
		avmType: avmType,
		root:    NewDisplayObject(name),
	}
	l.entries[movie] = e
	return e
}

func (l *Library) ResolveDomain(movie *swfutil.Movie) *ApplicationDomain {
	return l.entry(movie).domain
}

func (l *Library) GlobalDomain() *ApplicationDomain {
	return l.global
}

func (l *Library) AVMType(movie *swfutil.Movie) AVMType {
	return l.entry(movie).avmType
}

func (l *Library) RootOf(movie *swfutil.Movie) ContentRef {
	return l.entry(movie).root
}

func (l *Library) StageRoot() ContentRef {
	return l.stage.Root
}

// movieName derives a readable name from the movie's URL, falling back to
// its digest for movies without one.
func movieName(movie *swfutil.Movie) string {
	if movie.URL != "" {
		base := path.Base(strings.SplitN(movie.URL, "?", 2)[0])
		if base != "." && base != "/" {
			return base
		}
	}
	return storage.MovieDigest(movie).Encoded()[:12]
}

// Runtime bundles the collaborators a LoaderInfo reads from.
type Runtime struct {
	Stage      *Stage
	Domains    DomainRegistry
	Classifier ScriptVersionClassifier
	Roots      ContentRootProvider
}

// NewRuntime wires a Library in as every collaborator.
func NewRuntime(stage *Stage) *Runtime {
	lib := NewLibrary(stage)
	return &Runtime{
		Stage:      lib.stage,
		Domains:    lib,
		Classifier: lib,
		Roots:      lib,
	}
}
