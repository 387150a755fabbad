package masterlist

import (
	"io"
	"os"

	"github.com/arthur-debert/lootlint/pkg/errors"
	"github.com/arthur-debert/lootlint/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Load parses a masterlist or userlist document from r.
func Load(r io.Reader) (*List, error) {
	var list List
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&list); err != nil {
		if err == io.EOF {
			// An empty document is a valid, empty list.
			return &List{}, nil
		}
		return nil, errors.Wrap(err, errors.ErrListParse, "failed to parse metadata list")
	}
	return &list, nil
}

// LoadFile reads and parses the list at path. A missing file is an
// ErrListRead error; callers that treat an absent userlist as empty
// check for it with errors.IsErrorCode.
func LoadFile(path string) (*List, error) {
	logger := logging.GetLogger("masterlist")

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrListRead, "failed to read metadata list %s", path).
			WithDetail("path", path)
	}
	defer f.Close()

	list, err := Load(f)
	if err != nil {
		var lintErr *errors.LintError
		if e, ok := err.(*errors.LintError); ok {
			lintErr = e.WithDetail("path", path)
		} else {
			lintErr = errors.Wrap(err, errors.ErrListParse, "failed to parse metadata list").
				WithDetail("path", path)
		}
		return nil, lintErr
	}

	logger.Debug().
		Str("path", path).
		Int("plugins", len(list.Plugins)).
		Int("globals", len(list.Globals)).
		Msg("loaded metadata list")
	return list, nil
}
