package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
)

// rawDoc is one undecoded YAML document plus the path/URL it came from,
// used only for diagnostics and sourcePath tagging.
type rawDoc struct {
	path    string
	content []byte
}

// Source discovers and reads zero or more YAML documents. Sources are
// consulted in increasing precedence order (§4.3); a later source's
// namespace wins on fully-qualified-name collision during merge.
type Source interface {
	Name() string
	Read(ctx context.Context) ([]rawDoc, error)
}

// DirSource reads every *.yaml file directly under one directory. Used for
// the built-in, user-level, project-level, and env-path sources (§4.3
// sources 1-4), which differ only in which directory they point at and at
// what precedence they're registered.
type DirSource struct {
	label string
	dir   string
}

func NewDirSource(label, dir string) *DirSource {
	return &DirSource{label: label, dir: dir}
}

func (d *DirSource) Name() string { return d.label }

func (d *DirSource) Read(ctx context.Context) ([]rawDoc, error) {
	if d.dir == "" {
		return nil, nil
	}
	matches, err := filepath.Glob(filepath.Join(d.dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("%s: globbing %s: %w", d.label, d.dir, err)
	}
	docs := make([]rawDoc, 0, len(matches))
	for _, path := range matches {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: reading %s: %w", d.label, path, err)
		}
		docs = append(docs, rawDoc{path: path, content: content})
	}
	return docs, nil
}

// PackageSource fetches named action-bundle YAML documents over HTTP
// (§4.3 source 5: "named package references declared in config"). Each
// entry in refs is a complete URL to one YAML document.
type PackageSource struct {
	client *resty.Client
	refs   []string
}

func NewPackageSource(client *resty.Client, refs []string) *PackageSource {
	if client == nil {
		client = resty.New()
	}
	return &PackageSource{client: client, refs: refs}
}

func (p *PackageSource) Name() string { return "packages" }

func (p *PackageSource) Read(ctx context.Context) ([]rawDoc, error) {
	docs := make([]rawDoc, 0, len(p.refs))
	for _, ref := range p.refs {
		resp, err := p.client.R().SetContext(ctx).Get(ref)
		if err != nil {
			return nil, fmt.Errorf("packages: fetching %s: %w", ref, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("packages: fetching %s: status %s", ref, resp.Status())
		}
		docs = append(docs, rawDoc{path: ref, content: resp.Body()})
	}
	return docs, nil
}
