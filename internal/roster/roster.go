// Package roster loads the team roster from a YAML file. Load and capacity
// figures are inputs maintained by the surrounding task-lifecycle tooling;
// availability status is always derived at read time, never stored.
package roster

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devplan/devplan/internal/domain"
	devplanerrors "github.com/devplan/devplan/internal/errors"
)

// rosterFile is the on-disk document shape.
//
//	members:
//	  - name: Alex
//	    role: backend developer
//	    skills: [go, postgres]
//	    expertise: [reporting]
//	    current_load: 24
//	    capacity: 40
type rosterFile struct {
	Members []domain.TeamMember `yaml:"members"`
}

// Load reads and validates a roster file. Returns ErrRosterNotFound when
// the file does not exist and ErrRosterInvalid when it cannot be parsed or
// fails validation.
func Load(path string) ([]domain.TeamMember, error) {
	if path == "" {
		return nil, devplanerrors.Wrap(devplanerrors.ErrEmptyValue, "roster path is empty")
	}

	data, err := os.ReadFile(path) //nolint:gosec // Path comes from user configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, devplanerrors.Wrapf(devplanerrors.ErrRosterNotFound, "roster file %s", path)
		}
		return nil, devplanerrors.Wrapf(err, "reading roster file %s", path)
	}

	var doc rosterFile
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, devplanerrors.Wrapf(devplanerrors.ErrRosterInvalid, "parsing %s: %v", path, err)
	}
	if err = validate(doc.Members); err != nil {
		return nil, err
	}
	return doc.Members, nil
}

func validate(members []domain.TeamMember) error {
	if len(members) == 0 {
		return devplanerrors.Wrap(devplanerrors.ErrRosterInvalid, "roster has no members")
	}

	seen := make(map[string]bool, len(members))
	for i := range members {
		m := &members[i]
		switch {
		case m.Name == "":
			return devplanerrors.Wrapf(devplanerrors.ErrRosterInvalid, "member %d has no name", i)
		case seen[m.Name]:
			return devplanerrors.Wrapf(devplanerrors.ErrRosterInvalid, "duplicate member %q", m.Name)
		case m.Role == "":
			return devplanerrors.Wrapf(devplanerrors.ErrRosterInvalid, "member %q has no role", m.Name)
		case m.Capacity < 0:
			return devplanerrors.Wrapf(devplanerrors.ErrRosterInvalid, "member %q has negative capacity", m.Name)
		case m.CurrentLoad < 0:
			return devplanerrors.Wrapf(devplanerrors.ErrRosterInvalid, "member %q has negative load", m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}
