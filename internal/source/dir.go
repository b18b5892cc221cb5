package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// DirTransport serves captured response documents from a directory,
// one file per resource: <dir>/<resource>.json. A missing file is an
// empty response. Envelopes are filtered to the requested projects.
type DirTransport struct {
	Dir string
}

var _ Transport = DirTransport{}

// Query reads the document of req.Kind.
func (d DirTransport) Query(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(d.Dir, req.Kind.Resource()+".json")
	doc, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte("[]"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(req.Projects) == 0 {
		return doc, nil
	}
	return filterProjects(doc, req)
}

func filterProjects(doc []byte, req Request) ([]byte, error) {
	var envelopes []map[string]json.RawMessage
	if err := json.Unmarshal(doc, &envelopes); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", req.Kind.Resource(), err)
	}

	want := make(map[string]bool, len(req.Projects))
	for _, s := range req.Projects {
		want[s.Project] = true
	}

	kept := make([]map[string]json.RawMessage, 0, len(envelopes))
	for _, env := range envelopes {
		var meta struct {
			Project string `json:"project"`
		}
		if raw, ok := env["meta"]; ok {
			// Unreadable meta is passed through for the client to report.
			if err := json.Unmarshal(raw, &meta); err != nil {
				kept = append(kept, env)
				continue
			}
		}
		if want[meta.Project] {
			kept = append(kept, env)
		}
	}
	return json.Marshal(kept)
}
