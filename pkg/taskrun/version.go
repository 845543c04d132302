package taskrun

import (
	"github.com/Masterminds/semver/v3"
	"github.com/rotisserie/eris"

	"github.com/mcmanager/devtask/pkg/buildinfo"
)

// CheckMinVersion verifies that the running devtask satisfies constraint, such as
// ">= 1.2". Development builds always pass.
func CheckMinVersion(constraint string) error {
	return checkVersion(constraint, buildinfo.Version)
}

func checkVersion(constraint, current string) error {
	if constraint == "" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return eris.Wrapf(err, "invalid min_version %q", constraint)
	}

	v, err := semver.NewVersion(current)
	if err != nil {
		// dev builds have no parsable version
		return nil
	}

	if !c.Check(v) {
		return eris.Errorf("this task file requires devtask %s but this is %s", constraint, v)
	}

	return nil
}
